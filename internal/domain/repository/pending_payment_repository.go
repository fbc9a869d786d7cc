package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
)

// PaymentFilter filtros del listado de pagos pendientes.
type PaymentFilter struct {
	Status    string
	CarrierID string
	Refund    *bool
	Search    string // cliente o póliza
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// PendingPaymentRepository puerto del libro de pagos pendientes.
type PendingPaymentRepository interface {
	Create(ctx context.Context, p *entity.PendingPayment) error
	GetByID(ctx context.Context, id string) (*entity.PendingPayment, error)
	// FindDuplicate busca la obligación equivalente (póliza, aseguradora, fecha, cuota).
	FindDuplicate(ctx context.Context, policy, carrierID string, paymentDate time.Time, installment *int) (*entity.PendingPayment, error)
	// LockByIDs bloquea las filas (SELECT FOR UPDATE) en orden de id.
	LockByIDs(ctx context.Context, ids []string) ([]*entity.PendingPayment, error)
	// SetStatus cambia estado y grupo de varios pagos.
	SetStatus(ctx context.Context, ids []string, status string, groupID *string) error
	SetRefund(ctx context.Context, id string, info entity.RefundInfo) error
	List(ctx context.Context, f PaymentFilter) ([]*entity.PendingPayment, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
}
