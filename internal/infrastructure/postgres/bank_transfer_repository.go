package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Comisiones-api/internal/domain"
	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
	"github.com/jhoicas/Comisiones-api/internal/domain/repository"
)

var _ repository.BankTransferRepository = (*BankTransferRepo)(nil)

// BankTransferRepo pool de transferencias sobre PostgreSQL.
type BankTransferRepo struct {
	q Querier
}

// NewBankTransferRepository construye el repositorio.
func NewBankTransferRepository(q Querier) *BankTransferRepo {
	return &BankTransferRepo{q: q}
}

const transferColumns = `
	id, bank_name, reference_number, amount, remaining_amount, transfer_date, status,
	notes, created_by, created_at, updated_at`

func (r *BankTransferRepo) Create(ctx context.Context, t *entity.BankTransfer) error {
	const q = `
		INSERT INTO bank_transfers
			(id, bank_name, reference_number, amount, remaining_amount, transfer_date, status,
			 notes, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, q,
		t.ID, t.BankName, t.ReferenceNumber, t.Amount, t.RemainingAmount, t.TransferDate, t.Status,
		t.Notes, t.CreatedBy, t.CreatedAt, t.UpdatedAt,
	)
	return writeErr("insert bank_transfer", err)
}

func (r *BankTransferRepo) GetByID(ctx context.Context, id string) (*entity.BankTransfer, error) {
	q := `SELECT ` + transferColumns + ` FROM bank_transfers WHERE id = $1`
	return r.one(ctx, "get bank_transfer by id", q, id)
}

func (r *BankTransferRepo) GetByBankAndReference(ctx context.Context, bankName, reference string) (*entity.BankTransfer, error) {
	q := `SELECT ` + transferColumns + `
		FROM bank_transfers
		WHERE lower(bank_name) = lower($1) AND reference_number = $2`
	return r.one(ctx, "get bank_transfer by reference", q, bankName, reference)
}

// LockByIDs bloquea en orden de id; se toma después de los pagos del grupo.
func (r *BankTransferRepo) LockByIDs(ctx context.Context, ids []string) ([]*entity.BankTransfer, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := `SELECT ` + transferColumns + `
		FROM bank_transfers
		WHERE id = ANY($1::uuid[])
		ORDER BY id
		FOR UPDATE`
	return r.list(ctx, "lock bank_transfers", q, ids)
}

func (r *BankTransferRepo) UpdateBalance(ctx context.Context, id string, remaining decimal.Decimal, status string) error {
	const q = `
		UPDATE bank_transfers
		SET remaining_amount = $2, status = $3, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, q, id, remaining, status)
	if err != nil {
		return fmt.Errorf("update bank_transfer balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *BankTransferRepo) List(ctx context.Context, f repository.TransferFilter) ([]*entity.BankTransfer, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if b := strings.TrimSpace(f.BankName); b != "" {
		args = append(args, b)
		where = append(where, fmt.Sprintf("lower(bank_name) = lower($%d)", len(args)))
	}
	q := `SELECT ` + transferColumns + ` FROM bank_transfers`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, limitOrAll(f.Limit), f.Offset)
	q += fmt.Sprintf(` ORDER BY transfer_date DESC, id LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	return r.list(ctx, "list bank_transfers", q, args...)
}

func (r *BankTransferRepo) ListUsages(ctx context.Context, transferID string) ([]entity.TransferUsage, error) {
	const q = `
		SELECT g.id, g.status, ref.amount_used
		FROM payment_group_references ref
		JOIN payment_groups g ON g.id = ref.group_id
		WHERE ref.bank_transfer_id = $1
		ORDER BY g.id`
	rows, err := r.q.Query(ctx, q, transferID)
	if err != nil {
		return nil, fmt.Errorf("list transfer usages: %w", err)
	}
	defer rows.Close()

	out := make([]entity.TransferUsage, 0)
	for rows.Next() {
		var u entity.TransferUsage
		if err := rows.Scan(&u.GroupID, &u.GroupStatus, &u.AmountUsed); err != nil {
			return nil, fmt.Errorf("scan transfer usage: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *BankTransferRepo) one(ctx context.Context, op, q string, args ...any) (*entity.BankTransfer, error) {
	t, err := scanTransfer(r.q.QueryRow(ctx, q, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

func (r *BankTransferRepo) list(ctx context.Context, op, q string, args ...any) ([]*entity.BankTransfer, error) {
	rows, err := r.q.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []*entity.BankTransfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bank_transfer: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTransfer(row pgxScanner) (*entity.BankTransfer, error) {
	var t entity.BankTransfer
	err := row.Scan(
		&t.ID, &t.BankName, &t.ReferenceNumber, &t.Amount, &t.RemainingAmount, &t.TransferDate, &t.Status,
		&t.Notes, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
