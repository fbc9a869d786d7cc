package transfers

import (
	"context"

	"github.com/jhoicas/Comisiones-api/internal/domain/repository"
)

// TxRunner mismo contrato que payments.TxRunner; la implementación de postgres sirve a ambos.
type TxRunner interface {
	RunLedger(ctx context.Context, fn func(
		paymentRepo repository.PendingPaymentRepository,
		transferRepo repository.BankTransferRepository,
		groupRepo repository.PaymentGroupRepository,
		auditRepo repository.AuditRepository,
	) error) error
}
