package repository

import (
	"context"

	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
)

// AuditRepository bitácora de acciones; se escribe en la misma transacción que la acción.
type AuditRepository interface {
	Append(ctx context.Context, e *entity.AuditEntry) error
	ListByEntity(ctx context.Context, entityType, entityID string) ([]*entity.AuditEntry, error)
}
