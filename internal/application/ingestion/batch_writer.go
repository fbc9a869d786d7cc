package ingestion

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
	"github.com/jhoicas/Comisiones-api/internal/domain/repository"
)

// BatchWriter persiste la cabecera y luego todas las líneas en una transacción.
// Si la inserción de líneas falla la cabecera se borra lógicamente (delete compensatorio).
type BatchWriter struct {
	txRunner  TxRunner
	batchRepo repository.ImportBatchRepository
}

// NewBatchWriter construye el escritor de lotes.
func NewBatchWriter(txRunner TxRunner, batchRepo repository.ImportBatchRepository) *BatchWriter {
	return &BatchWriter{txRunner: txRunner, batchRepo: batchRepo}
}

// Commit devuelve el id del lote confirmado. Nunca deja un lote COMMITTED parcial.
func (w *BatchWriter) Commit(ctx context.Context, batch *entity.ImportBatch, items []*entity.CommissionLineItem) (string, error) {
	batch.Status = entity.ImportStatusCreated
	if err := w.batchRepo.Create(ctx, batch); err != nil {
		return "", fmt.Errorf("crear cabecera de lote: %w", err)
	}

	err := w.txRunner.RunImport(ctx, func(
		batchRepo repository.ImportBatchRepository,
		itemRepo repository.CommissionItemRepository,
	) error {
		if err := itemRepo.CreateMany(ctx, items); err != nil {
			return fmt.Errorf("insertar líneas: %w", err)
		}
		return batchRepo.MarkCommitted(ctx, batch.ID, len(items), batch.RejectedCount, batch.ParsedTotal)
	})
	if err != nil {
		// La cabecera se escribió fuera de la tx: compensar aunque el contexto se haya cancelado.
		if derr := w.batchRepo.SoftDelete(context.WithoutCancel(ctx), batch.ID); derr != nil {
			return "", errors.Join(err, fmt.Errorf("compensar lote %s: %w", batch.ID, derr))
		}
		batch.Status = entity.ImportStatusFailed
		return "", err
	}
	batch.Status = entity.ImportStatusCommitted
	batch.ItemCount = len(items)
	return batch.ID, nil
}
