package payments

import (
	"context"

	"github.com/jhoicas/Comisiones-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con los repositorios del libro
// de pagos atados a esa tx. Confirmar y liberar grupos dependen de que sea atómico.
type TxRunner interface {
	RunLedger(ctx context.Context, fn func(
		paymentRepo repository.PendingPaymentRepository,
		transferRepo repository.BankTransferRepository,
		groupRepo repository.PaymentGroupRepository,
		auditRepo repository.AuditRepository,
	) error) error
}
