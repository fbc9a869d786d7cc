package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Comisiones-api/internal/domain"
	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
	"github.com/jhoicas/Comisiones-api/internal/domain/repository"
)

var (
	_ repository.ImportBatchRepository    = (*ImportBatchRepo)(nil)
	_ repository.CommissionItemRepository = (*CommissionItemRepo)(nil)
)

// ImportBatchRepo cabeceras de importación sobre PostgreSQL.
type ImportBatchRepo struct {
	q Querier
}

// NewImportBatchRepository construye el repositorio.
func NewImportBatchRepository(q Querier) *ImportBatchRepo {
	return &ImportBatchRepo{q: q}
}

const batchColumns = `
	id, carrier_id, period_id, file_name, declared_total, parsed_total, invert_negatives,
	sum_multi_column, status, item_count, rejected_count, created_by, created_at, deleted_at`

func (r *ImportBatchRepo) Create(ctx context.Context, b *entity.ImportBatch) error {
	const q = `
		INSERT INTO import_batches
			(id, carrier_id, period_id, file_name, declared_total, parsed_total, invert_negatives,
			 sum_multi_column, status, item_count, rejected_count, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, q,
		b.ID, b.CarrierID, b.PeriodID, b.FileName, b.DeclaredTotal, b.ParsedTotal, b.InvertNegatives,
		b.SumMultiColumn, b.Status, b.ItemCount, b.RejectedCount, b.CreatedBy, b.CreatedAt,
	)
	return writeErr("insert import_batch", err)
}

func (r *ImportBatchRepo) GetByID(ctx context.Context, id string) (*entity.ImportBatch, error) {
	q := `SELECT ` + batchColumns + ` FROM import_batches WHERE id = $1 AND deleted_at IS NULL`
	b, err := scanBatch(r.q.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get import_batch by id: %w", err)
	}
	return b, nil
}

func (r *ImportBatchRepo) MarkCommitted(ctx context.Context, id string, itemCount, rejectedCount int, total decimal.Decimal) error {
	const q = `
		UPDATE import_batches
		SET status = $2, item_count = $3, rejected_count = $4, parsed_total = $5
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, q, id, entity.ImportStatusCommitted, itemCount, rejectedCount, total)
	if err != nil {
		return fmt.Errorf("commit import_batch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ImportBatchRepo) SoftDelete(ctx context.Context, id string) error {
	const q = `UPDATE import_batches SET status = $2, deleted_at = now() WHERE id = $1`
	if _, err := r.q.Exec(ctx, q, id, entity.ImportStatusFailed); err != nil {
		return fmt.Errorf("soft delete import_batch: %w", err)
	}
	return nil
}

func (r *ImportBatchRepo) List(ctx context.Context, carrierID string, limit, offset int) ([]*entity.ImportBatch, error) {
	q := `SELECT ` + batchColumns + `
		FROM import_batches
		WHERE deleted_at IS NULL AND ($1 = '' OR carrier_id::text = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, q, carrierID, limitOrAll(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list import_batches: %w", err)
	}
	defer rows.Close()

	var out []*entity.ImportBatch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan import_batch: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanBatch(row pgxScanner) (*entity.ImportBatch, error) {
	var b entity.ImportBatch
	err := row.Scan(
		&b.ID, &b.CarrierID, &b.PeriodID, &b.FileName, &b.DeclaredTotal, &b.ParsedTotal, &b.InvertNegatives,
		&b.SumMultiColumn, &b.Status, &b.ItemCount, &b.RejectedCount, &b.CreatedBy, &b.CreatedAt, &b.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// CommissionItemRepo líneas de comisión sobre PostgreSQL.
type CommissionItemRepo struct {
	q Querier
}

// NewCommissionItemRepository construye el repositorio.
func NewCommissionItemRepository(q Querier) *CommissionItemRepo {
	return &CommissionItemRepo{q: q}
}

// CreateMany inserta todas las líneas en un solo pgx.Batch; el primer error aborta la carga.
func (r *CommissionItemRepo) CreateMany(ctx context.Context, items []*entity.CommissionLineItem) error {
	if len(items) == 0 {
		return nil
	}
	const q = `
		INSERT INTO commission_line_items
			(id, batch_id, carrier_id, policy_number, insured_name, gross_amount, broker_id, raw_row, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	batch := &pgx.Batch{}
	for _, it := range items {
		raw, err := toJSON(it.RawRow)
		if err != nil {
			return err
		}
		batch.Queue(q, it.ID, it.BatchID, it.CarrierID, it.PolicyNumber, it.InsuredName,
			it.GrossAmount, it.BrokerID, raw, it.CreatedAt)
	}

	br := r.q.SendBatch(ctx, batch)
	for i := range items {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return writeErr(fmt.Sprintf("insert commission_line_item %d", i+1), err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}
	return nil
}

func (r *CommissionItemRepo) ListByBatch(ctx context.Context, batchID string) ([]*entity.CommissionLineItem, error) {
	const q = `
		SELECT id, batch_id, carrier_id, policy_number, insured_name, gross_amount, broker_id, raw_row, created_at
		FROM commission_line_items
		WHERE batch_id = $1
		ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, q, batchID)
	if err != nil {
		return nil, fmt.Errorf("list commission_line_items: %w", err)
	}
	defer rows.Close()

	var out []*entity.CommissionLineItem
	for rows.Next() {
		var (
			it  entity.CommissionLineItem
			raw []byte
		)
		if err := rows.Scan(&it.ID, &it.BatchID, &it.CarrierID, &it.PolicyNumber, &it.InsuredName,
			&it.GrossAmount, &it.BrokerID, &raw, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan commission_line_item: %w", err)
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &it.RawRow); err != nil {
				return nil, fmt.Errorf("decode raw_row: %w", err)
			}
		}
		out = append(out, &it)
	}
	return out, rows.Err()
}
