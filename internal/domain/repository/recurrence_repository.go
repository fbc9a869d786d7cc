package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
)

// RecurrenceRepository puerto de cronogramas de cuotas.
type RecurrenceRepository interface {
	Create(ctx context.Context, r *entity.Recurrence) error
	GetByID(ctx context.Context, id string) (*entity.Recurrence, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Recurrence, error)
	// FindActive devuelve la recurrencia ACTIVA de una póliza y aseguradora, si existe.
	FindActive(ctx context.Context, policy, carrierID string) (*entity.Recurrence, error)
	Update(ctx context.Context, r *entity.Recurrence) error
	// ListDue recurrencias ACTIVA con next_due_date <= asOf.
	ListDue(ctx context.Context, asOf time.Time) ([]*entity.Recurrence, error)
	List(ctx context.Context, status string) ([]*entity.Recurrence, error)
}
