package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Comisiones-api/internal/domain"
	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
	"github.com/jhoicas/Comisiones-api/internal/domain/repository"
)

var _ repository.RecurrenceRepository = (*RecurrenceRepo)(nil)

// RecurrenceRepo cronogramas de cuotas sobre PostgreSQL. El cronograma se guarda como JSONB.
type RecurrenceRepo struct {
	q Querier
}

// NewRecurrenceRepository construye el repositorio.
func NewRecurrenceRepository(q Querier) *RecurrenceRepo {
	return &RecurrenceRepo{q: q}
}

const recurrenceColumns = `
	id, client_name, policy_number, carrier_id, total_installments, frequency, installment_amount,
	start_date, end_date, next_due_date, status, schedule, cancelled_at, cancelled_by, cancel_reason,
	created_by, created_at, updated_at`

func (r *RecurrenceRepo) Create(ctx context.Context, rec *entity.Recurrence) error {
	const q = `
		INSERT INTO recurrences
			(id, client_name, policy_number, carrier_id, total_installments, frequency, installment_amount,
			 start_date, end_date, next_due_date, status, schedule, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	schedule, err := toJSON(rec.Schedule)
	if err != nil {
		return err
	}
	_, err = r.q.Exec(ctx, q,
		rec.ID, rec.ClientName, rec.PolicyNumber, rec.CarrierID, rec.TotalInstallments, rec.Frequency, rec.InstallmentAmount,
		rec.StartDate, rec.EndDate, rec.NextDueDate, rec.Status, schedule, rec.CreatedBy, rec.CreatedAt, rec.UpdatedAt,
	)
	return writeErr("insert recurrence", err)
}

func (r *RecurrenceRepo) GetByID(ctx context.Context, id string) (*entity.Recurrence, error) {
	q := `SELECT ` + recurrenceColumns + ` FROM recurrences WHERE id = $1`
	return r.one(ctx, "get recurrence by id", q, id)
}

func (r *RecurrenceRepo) GetForUpdate(ctx context.Context, id string) (*entity.Recurrence, error) {
	q := `SELECT ` + recurrenceColumns + ` FROM recurrences WHERE id = $1 FOR UPDATE`
	return r.one(ctx, "lock recurrence", q, id)
}

func (r *RecurrenceRepo) FindActive(ctx context.Context, policy, carrierID string) (*entity.Recurrence, error) {
	q := `SELECT ` + recurrenceColumns + `
		FROM recurrences
		WHERE policy_number = $1 AND carrier_id = $2 AND status = $3`
	return r.one(ctx, "find active recurrence", q, policy, carrierID, entity.RecurrenceStatusActive)
}

func (r *RecurrenceRepo) Update(ctx context.Context, rec *entity.Recurrence) error {
	const q = `
		UPDATE recurrences
		SET end_date = $2, next_due_date = $3, status = $4, schedule = $5,
		    cancelled_at = $6, cancelled_by = $7, cancel_reason = $8, updated_at = now()
		WHERE id = $1`
	schedule, err := toJSON(rec.Schedule)
	if err != nil {
		return err
	}
	tag, err := r.q.Exec(ctx, q,
		rec.ID, rec.EndDate, rec.NextDueDate, rec.Status, schedule,
		rec.CancelledAt, rec.CancelledBy, rec.CancelReason,
	)
	if err != nil {
		return fmt.Errorf("update recurrence: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *RecurrenceRepo) ListDue(ctx context.Context, asOf time.Time) ([]*entity.Recurrence, error) {
	q := `SELECT ` + recurrenceColumns + `
		FROM recurrences
		WHERE status = $1 AND next_due_date <= $2
		ORDER BY next_due_date, id`
	return r.list(ctx, "list due recurrences", q, entity.RecurrenceStatusActive, asOf)
}

func (r *RecurrenceRepo) List(ctx context.Context, status string) ([]*entity.Recurrence, error) {
	q := `SELECT ` + recurrenceColumns + `
		FROM recurrences
		WHERE ($1 = '' OR status = $1)
		ORDER BY next_due_date, id`
	return r.list(ctx, "list recurrences", q, status)
}

func (r *RecurrenceRepo) one(ctx context.Context, op, q string, args ...any) (*entity.Recurrence, error) {
	rec, err := scanRecurrence(r.q.QueryRow(ctx, q, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rec, nil
}

func (r *RecurrenceRepo) list(ctx context.Context, op, q string, args ...any) ([]*entity.Recurrence, error) {
	rows, err := r.q.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []*entity.Recurrence
	for rows.Next() {
		rec, err := scanRecurrence(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recurrence: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanRecurrence(row pgxScanner) (*entity.Recurrence, error) {
	var (
		rec      entity.Recurrence
		schedule []byte
	)
	err := row.Scan(
		&rec.ID, &rec.ClientName, &rec.PolicyNumber, &rec.CarrierID, &rec.TotalInstallments, &rec.Frequency, &rec.InstallmentAmount,
		&rec.StartDate, &rec.EndDate, &rec.NextDueDate, &rec.Status, &schedule, &rec.CancelledAt, &rec.CancelledBy, &rec.CancelReason,
		&rec.CreatedBy, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(schedule) > 0 {
		if err := json.Unmarshal(schedule, &rec.Schedule); err != nil {
			return nil, fmt.Errorf("decode schedule: %w", err)
		}
	}
	return &rec, nil
}
