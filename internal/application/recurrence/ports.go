package recurrence

import (
	"context"

	"github.com/jhoicas/Comisiones-api/internal/domain/repository"
)

// TxRunner ejecuta una función con los repositorios de recurrencias atados a una transacción.
type TxRunner interface {
	RunRecurrence(ctx context.Context, fn func(
		recurrenceRepo repository.RecurrenceRepository,
		paymentRepo repository.PendingPaymentRepository,
		auditRepo repository.AuditRepository,
	) error) error
}
