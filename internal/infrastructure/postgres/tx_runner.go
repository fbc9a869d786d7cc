package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Comisiones-api/internal/application/ingestion"
	"github.com/jhoicas/Comisiones-api/internal/application/payments"
	"github.com/jhoicas/Comisiones-api/internal/application/recurrence"
	"github.com/jhoicas/Comisiones-api/internal/application/transfers"
	"github.com/jhoicas/Comisiones-api/internal/domain/repository"
)

var (
	_ ingestion.TxRunner  = (*TxRunner)(nil)
	_ payments.TxRunner   = (*TxRunner)(nil)
	_ transfers.TxRunner  = (*TxRunner)(nil)
	_ recurrence.TxRunner = (*TxRunner)(nil)
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL con los repositorios atados a ella.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunImport transacción de la carga de un lote: cabecera y líneas.
func (r *TxRunner) RunImport(ctx context.Context, fn func(
	batchRepo repository.ImportBatchRepository,
	itemRepo repository.CommissionItemRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewImportBatchRepository(tx), NewCommissionItemRepository(tx))
	})
}

// RunLedger transacción del libro de pagos: confirmar, postear y liberar grupos, transferencias.
func (r *TxRunner) RunLedger(ctx context.Context, fn func(
	paymentRepo repository.PendingPaymentRepository,
	transferRepo repository.BankTransferRepository,
	groupRepo repository.PaymentGroupRepository,
	auditRepo repository.AuditRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(
			NewPendingPaymentRepository(tx),
			NewBankTransferRepository(tx),
			NewPaymentGroupRepository(tx),
			NewAuditRepository(tx),
		)
	})
}

// RunRecurrence transacción de una recurrencia y los pagos que materializa.
func (r *TxRunner) RunRecurrence(ctx context.Context, fn func(
	recurrenceRepo repository.RecurrenceRepository,
	paymentRepo repository.PendingPaymentRepository,
	auditRepo repository.AuditRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewRecurrenceRepository(tx), NewPendingPaymentRepository(tx), NewAuditRepository(tx))
	})
}

// inTx inicia la transacción, ejecuta fn y hace Commit; cualquier error deja Rollback.
func (r *TxRunner) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
