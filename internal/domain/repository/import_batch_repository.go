package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
)

// ImportBatchRepository puerto de cabeceras de importación.
type ImportBatchRepository interface {
	Create(ctx context.Context, batch *entity.ImportBatch) error
	GetByID(ctx context.Context, id string) (*entity.ImportBatch, error)
	// MarkCommitted cierra el lote con los totales definitivos.
	MarkCommitted(ctx context.Context, id string, itemCount, rejectedCount int, total decimal.Decimal) error
	// SoftDelete compensa una carga fallida: estado FAILED y deleted_at.
	SoftDelete(ctx context.Context, id string) error
	List(ctx context.Context, carrierID string, limit, offset int) ([]*entity.ImportBatch, error)
}

// CommissionItemRepository líneas de comisión de un lote.
type CommissionItemRepository interface {
	CreateMany(ctx context.Context, items []*entity.CommissionLineItem) error
	ListByBatch(ctx context.Context, batchID string) ([]*entity.CommissionLineItem, error)
}
