package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un lote de importación.
const (
	ImportStatusCreated   = "CREATED"
	ImportStatusFailed    = "FAILED"
	ImportStatusCommitted = "COMMITTED"
)

// ImportBatch cabecera de una carga de archivo de comisiones.
type ImportBatch struct {
	ID              string
	CarrierID       string
	PeriodID        string
	FileName        string
	DeclaredTotal   decimal.Decimal // monto total informado al subir el archivo
	ParsedTotal     decimal.Decimal // suma de las líneas aceptadas
	InvertNegatives bool
	SumMultiColumn  bool
	Status          string
	ItemCount       int
	RejectedCount   int
	CreatedBy       string
	CreatedAt       time.Time
	DeletedAt       *time.Time // borrado lógico al compensar
}

// CommissionLineItem línea normalizada de un lote. Inmutable una vez confirmada.
type CommissionLineItem struct {
	ID           string
	BatchID      string
	CarrierID    string
	PolicyNumber string
	InsuredName  *string
	GrossAmount  decimal.Decimal
	BrokerID     *string // lo asigna la resolución de corredores
	RawRow       map[string]string
	CreatedAt    time.Time
}
