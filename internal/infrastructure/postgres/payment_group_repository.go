package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Comisiones-api/internal/domain"
	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
	"github.com/jhoicas/Comisiones-api/internal/domain/repository"
)

var _ repository.PaymentGroupRepository = (*PaymentGroupRepo)(nil)

// PaymentGroupRepo grupos de pago con ítems y referencias sobre PostgreSQL.
type PaymentGroupRepo struct {
	q Querier
}

// NewPaymentGroupRepository construye el repositorio.
func NewPaymentGroupRepository(q Querier) *PaymentGroupRepo {
	return &PaymentGroupRepo{q: q}
}

const groupColumns = `id, status, total_amount, notes, created_by, created_at, confirmed_at, posted_at, updated_at`

func (r *PaymentGroupRepo) Create(ctx context.Context, g *entity.PaymentGroup) error {
	const q = `
		INSERT INTO payment_groups
			(id, status, total_amount, notes, created_by, created_at, confirmed_at, posted_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, q,
		g.ID, g.Status, g.TotalAmount, g.Notes, g.CreatedBy, g.CreatedAt, g.ConfirmedAt, g.PostedAt, g.UpdatedAt,
	)
	return writeErr("insert payment_group", err)
}

func (r *PaymentGroupRepo) GetByID(ctx context.Context, id string) (*entity.PaymentGroup, error) {
	q := `SELECT ` + groupColumns + ` FROM payment_groups WHERE id = $1`
	return r.one(ctx, "get payment_group by id", q, id)
}

// GetForUpdate primer bloqueo de la confirmación: la fila del grupo.
func (r *PaymentGroupRepo) GetForUpdate(ctx context.Context, id string) (*entity.PaymentGroup, error) {
	q := `SELECT ` + groupColumns + ` FROM payment_groups WHERE id = $1 FOR UPDATE`
	return r.one(ctx, "lock payment_group", q, id)
}

func (r *PaymentGroupRepo) Update(ctx context.Context, g *entity.PaymentGroup) error {
	const q = `
		UPDATE payment_groups
		SET status = $2, total_amount = $3, notes = $4, confirmed_at = $5, posted_at = $6, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, q, g.ID, g.Status, g.TotalAmount, g.Notes, g.ConfirmedAt, g.PostedAt)
	if err != nil {
		return fmt.Errorf("update payment_group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PaymentGroupRepo) AddItems(ctx context.Context, items []entity.PaymentGroupItem) error {
	const q = `
		INSERT INTO payment_group_items (group_id, pending_payment_id, carrier_id, amount_applied)
		VALUES ($1, $2, $3, $4)`
	batch := &pgx.Batch{}
	for _, it := range items {
		batch.Queue(q, it.GroupID, it.PendingPaymentID, it.CarrierID, it.AmountApplied)
	}
	return r.sendBatch(ctx, "insert payment_group_item", batch)
}

func (r *PaymentGroupRepo) AddReferences(ctx context.Context, refs []entity.PaymentGroupReference) error {
	const q = `
		INSERT INTO payment_group_references (group_id, bank_transfer_id, amount_used)
		VALUES ($1, $2, $3)`
	batch := &pgx.Batch{}
	for _, ref := range refs {
		batch.Queue(q, ref.GroupID, ref.BankTransferID, ref.AmountUsed)
	}
	return r.sendBatch(ctx, "insert payment_group_reference", batch)
}

func (r *PaymentGroupRepo) ListItems(ctx context.Context, groupID string) ([]entity.PaymentGroupItem, error) {
	const q = `
		SELECT group_id, pending_payment_id, carrier_id, amount_applied
		FROM payment_group_items
		WHERE group_id = $1
		ORDER BY pending_payment_id`
	rows, err := r.q.Query(ctx, q, groupID)
	if err != nil {
		return nil, fmt.Errorf("list payment_group_items: %w", err)
	}
	defer rows.Close()

	out := make([]entity.PaymentGroupItem, 0)
	for rows.Next() {
		var it entity.PaymentGroupItem
		if err := rows.Scan(&it.GroupID, &it.PendingPaymentID, &it.CarrierID, &it.AmountApplied); err != nil {
			return nil, fmt.Errorf("scan payment_group_item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *PaymentGroupRepo) ListReferences(ctx context.Context, groupID string) ([]entity.PaymentGroupReference, error) {
	const q = `
		SELECT group_id, bank_transfer_id, amount_used
		FROM payment_group_references
		WHERE group_id = $1
		ORDER BY bank_transfer_id`
	rows, err := r.q.Query(ctx, q, groupID)
	if err != nil {
		return nil, fmt.Errorf("list payment_group_references: %w", err)
	}
	defer rows.Close()

	out := make([]entity.PaymentGroupReference, 0)
	for rows.Next() {
		var ref entity.PaymentGroupReference
		if err := rows.Scan(&ref.GroupID, &ref.BankTransferID, &ref.AmountUsed); err != nil {
			return nil, fmt.Errorf("scan payment_group_reference: %w", err)
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

func (r *PaymentGroupRepo) DeleteAllocations(ctx context.Context, groupID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM payment_group_items WHERE group_id = $1`, groupID); err != nil {
		return fmt.Errorf("delete payment_group_items: %w", err)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM payment_group_references WHERE group_id = $1`, groupID); err != nil {
		return fmt.Errorf("delete payment_group_references: %w", err)
	}
	return nil
}

func (r *PaymentGroupRepo) List(ctx context.Context, f repository.GroupFilter) ([]*entity.PaymentGroup, error) {
	q := `SELECT ` + groupColumns + `
		FROM payment_groups
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, q, f.Status, limitOrAll(f.Limit), f.Offset)
	if err != nil {
		return nil, fmt.Errorf("list payment_groups: %w", err)
	}
	defer rows.Close()

	var out []*entity.PaymentGroup
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment_group: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// SettlementLines une ítems con el pago y la aseguradora para la planilla de liquidación.
func (r *PaymentGroupRepo) SettlementLines(ctx context.Context, groupID string) ([]entity.SettlementLine, error) {
	const q = `
		SELECT it.carrier_id, COALESCE(c.name, it.carrier_id::text), p.client_name, p.policy_number, it.amount_applied
		FROM payment_group_items it
		JOIN pending_payments p ON p.id = it.pending_payment_id
		LEFT JOIN carriers c    ON c.id = it.carrier_id
		WHERE it.group_id = $1
		ORDER BY 2, p.client_name`
	rows, err := r.q.Query(ctx, q, groupID)
	if err != nil {
		return nil, fmt.Errorf("settlement lines: %w", err)
	}
	defer rows.Close()

	out := make([]entity.SettlementLine, 0)
	for rows.Next() {
		var l entity.SettlementLine
		if err := rows.Scan(&l.CarrierID, &l.CarrierName, &l.ClientName, &l.PolicyNumber, &l.AmountApplied); err != nil {
			return nil, fmt.Errorf("scan settlement line: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *PaymentGroupRepo) one(ctx context.Context, op, q string, args ...any) (*entity.PaymentGroup, error) {
	g, err := scanGroup(r.q.QueryRow(ctx, q, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return g, nil
}

func (r *PaymentGroupRepo) sendBatch(ctx context.Context, op string, batch *pgx.Batch) error {
	if batch.Len() == 0 {
		return nil
	}
	br := r.q.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return writeErr(op, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}
	return nil
}

func scanGroup(row pgxScanner) (*entity.PaymentGroup, error) {
	var g entity.PaymentGroup
	err := row.Scan(&g.ID, &g.Status, &g.TotalAmount, &g.Notes, &g.CreatedBy, &g.CreatedAt, &g.ConfirmedAt, &g.PostedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}
