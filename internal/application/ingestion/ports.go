package ingestion

import (
	"context"

	"github.com/jhoicas/Comisiones-api/internal/domain/commission"
	"github.com/jhoicas/Comisiones-api/internal/domain/repository"
)

// File archivo subido por el usuario.
type File struct {
	Name    string
	Content []byte
}

// Input entrada de una estrategia de lectura.
type Input struct {
	CarrierKey string
	File       File
	Options    commission.Options
}

// Parser estrategia de extracción de una aseguradora: bytes + nombre de archivo -> filas canónicas.
// Un error aborta la carga completa.
type Parser interface {
	Parse(ctx context.Context, in Input) ([]commission.Row, error)
}

// ParserFunc adapta una función a Parser.
type ParserFunc func(ctx context.Context, in Input) ([]commission.Row, error)

// Parse implementa Parser.
func (f ParserFunc) Parse(ctx context.Context, in Input) ([]commission.Row, error) {
	return f(ctx, in)
}

// TxRunner ejecuta la inserción de líneas de un lote dentro de una transacción.
type TxRunner interface {
	RunImport(ctx context.Context, fn func(
		batchRepo repository.ImportBatchRepository,
		itemRepo repository.CommissionItemRepository,
	) error) error
}
