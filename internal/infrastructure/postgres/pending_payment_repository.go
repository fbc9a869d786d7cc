package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Comisiones-api/internal/domain"
	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
	"github.com/jhoicas/Comisiones-api/internal/domain/repository"
)

var _ repository.PendingPaymentRepository = (*PendingPaymentRepo)(nil)

// PendingPaymentRepo libro de pagos pendientes sobre PostgreSQL.
type PendingPaymentRepo struct {
	q Querier
}

// NewPendingPaymentRepository construye el repositorio.
func NewPendingPaymentRepository(q Querier) *PendingPaymentRepo {
	return &PendingPaymentRepo{q: q}
}

const paymentColumns = `
	id, client_name, policy_number, amount, carrier_id, payment_date, type, status, source,
	installment_num, recurrence_id, group_id, is_refund, refund_bank, refund_account,
	refund_account_type, refund_reason, notes, created_by, created_at, updated_at`

func (r *PendingPaymentRepo) Create(ctx context.Context, p *entity.PendingPayment) error {
	const q = `
		INSERT INTO pending_payments
			(id, client_name, policy_number, amount, carrier_id, payment_date, type, status, source,
			 installment_num, recurrence_id, group_id, is_refund, notes, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, q,
		p.ID, p.ClientName, p.PolicyNumber, p.Amount, p.CarrierID, p.PaymentDate, p.Type, p.Status, p.Source,
		p.InstallmentNum, p.RecurrenceID, p.GroupID, p.IsRefund, p.Notes, p.CreatedBy, p.CreatedAt, p.UpdatedAt,
	)
	return writeErr("insert pending_payment", err)
}

func (r *PendingPaymentRepo) GetByID(ctx context.Context, id string) (*entity.PendingPayment, error) {
	q := `SELECT ` + paymentColumns + ` FROM pending_payments WHERE id = $1`
	p, err := scanPayment(r.q.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get pending_payment by id: %w", err)
	}
	return p, nil
}

func (r *PendingPaymentRepo) FindDuplicate(ctx context.Context, policy, carrierID string, paymentDate time.Time, installment *int) (*entity.PendingPayment, error) {
	q := `SELECT ` + paymentColumns + `
		FROM pending_payments
		WHERE policy_number = $1
		  AND carrier_id    = $2
		  AND payment_date  = $3
		  AND installment_num IS NOT DISTINCT FROM $4::int
		LIMIT 1`
	p, err := scanPayment(r.q.QueryRow(ctx, q, policy, carrierID, paymentDate, installment))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find duplicate pending_payment: %w", err)
	}
	return p, nil
}

// LockByIDs bloquea en orden de id para que dos confirmaciones concurrentes no se crucen.
func (r *PendingPaymentRepo) LockByIDs(ctx context.Context, ids []string) ([]*entity.PendingPayment, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := `SELECT ` + paymentColumns + `
		FROM pending_payments
		WHERE id = ANY($1::uuid[])
		ORDER BY id
		FOR UPDATE`
	return r.list(ctx, "lock pending_payments", q, ids)
}

func (r *PendingPaymentRepo) SetStatus(ctx context.Context, ids []string, status string, groupID *string) error {
	if len(ids) == 0 {
		return nil
	}
	const q = `
		UPDATE pending_payments
		SET status = $2, group_id = $3, updated_at = now()
		WHERE id = ANY($1::uuid[])`
	tag, err := r.q.Exec(ctx, q, ids, status, groupID)
	if err != nil {
		return fmt.Errorf("update pending_payments status: %w", err)
	}
	if int(tag.RowsAffected()) < len(uniqueIDs(ids)) {
		return fmt.Errorf("update pending_payments status: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *PendingPaymentRepo) SetRefund(ctx context.Context, id string, info entity.RefundInfo) error {
	const q = `
		UPDATE pending_payments
		SET is_refund = true, refund_bank = $2, refund_account = $3, refund_account_type = $4,
		    refund_reason = $5, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, q, id, info.Bank, info.Account, info.AccountType, info.Reason)
	if err != nil {
		return fmt.Errorf("update pending_payment refund: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PendingPaymentRepo) List(ctx context.Context, f repository.PaymentFilter) ([]*entity.PendingPayment, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.CarrierID != "" {
		add("carrier_id::text = $%d", f.CarrierID)
	}
	if f.Refund != nil {
		add("is_refund = $%d", *f.Refund)
	}
	if f.From != nil {
		add("payment_date >= $%d", *f.From)
	}
	if f.To != nil {
		add("payment_date <= $%d", *f.To)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		add("(client_name ILIKE $%[1]d OR policy_number ILIKE $%[1]d)", "%"+s+"%")
	}

	q := `SELECT ` + paymentColumns + ` FROM pending_payments`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, limitOrAll(f.Limit), f.Offset)
	q += fmt.Sprintf(` ORDER BY payment_date, id LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	return r.list(ctx, "list pending_payments", q, args...)
}

func (r *PendingPaymentRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	const q = `SELECT status, count(*) FROM pending_payments GROUP BY status`
	rows, err := r.q.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("count pending_payments: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		out[status] = n
	}
	return out, rows.Err()
}

func (r *PendingPaymentRepo) list(ctx context.Context, op, q string, args ...any) ([]*entity.PendingPayment, error) {
	rows, err := r.q.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []*entity.PendingPayment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pending_payment: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPayment(row pgxScanner) (*entity.PendingPayment, error) {
	var (
		p                                  entity.PendingPayment
		bank, account, accountType, reason *string
	)
	err := row.Scan(
		&p.ID, &p.ClientName, &p.PolicyNumber, &p.Amount, &p.CarrierID, &p.PaymentDate, &p.Type, &p.Status, &p.Source,
		&p.InstallmentNum, &p.RecurrenceID, &p.GroupID, &p.IsRefund, &bank, &account,
		&accountType, &reason, &p.Notes, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if bank != nil || account != nil {
		p.Refund = &entity.RefundInfo{
			Bank:        derefString(bank),
			Account:     derefString(account),
			AccountType: derefString(accountType),
			Reason:      derefString(reason),
		}
	}
	return &p, nil
}

func uniqueIDs(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
