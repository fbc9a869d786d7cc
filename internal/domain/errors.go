package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientFunds = errors.New("fondos de referencia insuficientes")
	ErrInvalidState      = errors.New("estado incompatible con la operación")
	ErrParse             = errors.New("archivo no interpretable")
)

// ParseError el archivo de una aseguradora no pudo decodificarse con ninguna estrategia.
type ParseError struct {
	Carrier string
	Cause   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("no se pudo leer el archivo de %s: %v", e.Carrier, e.Cause)
}

func (e *ParseError) Unwrap() error        { return e.Cause }
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// ValidationError una fila o un lote no cumple una regla estructural.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validación: " + e.Reason
	}
	return fmt.Sprintf("validación: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// NewValidationError atajo para errores de campo.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ConflictError un pago ya no está PENDIENTE o una transferencia ya no tiene saldo.
type ConflictError struct {
	Entity string
	ID     string
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicto en %s %s: %s", e.Entity, e.ID, e.Reason)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// InsufficientFundsError la suma de referencias no cubre el total del grupo.
type InsufficientFundsError struct {
	Required  decimal.Decimal
	Allocated decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("fondos de referencia insuficientes: asignado %s, requerido %s",
		e.Allocated.StringFixed(2), e.Required.StringFixed(2))
}

func (e *InsufficientFundsError) Is(target error) bool { return target == ErrInsufficientFunds }

// StateError operación invocada sobre un grupo, pago o recurrencia en un estado incompatible.
type StateError struct {
	Entity   string
	ID       string
	Current  string
	Expected string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s %s está en estado %s (se requiere %s)", e.Entity, e.ID, e.Current, e.Expected)
}

func (e *StateError) Is(target error) bool { return target == ErrInvalidState }

// ImportError falla de una ingesta completa; el lote no queda confirmado.
type ImportError struct {
	Carrier string
	Stage   string // detect | parse | commit
	Err     error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("importación %s (%s): %v", e.Carrier, e.Stage, e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }
