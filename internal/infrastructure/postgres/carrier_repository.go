package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
	"github.com/jhoicas/Comisiones-api/internal/domain/repository"
)

var _ repository.CarrierRepository = (*CarrierRepo)(nil)

// CarrierRepo catálogo de aseguradoras sobre PostgreSQL.
type CarrierRepo struct {
	q Querier
}

// NewCarrierRepository construye el repositorio.
func NewCarrierRepository(q Querier) *CarrierRepo {
	return &CarrierRepo{q: q}
}

const carrierColumns = `id, key, name, invert_negatives, use_multi_commission_columns, active, created_at`

func (r *CarrierRepo) GetByID(ctx context.Context, id string) (*entity.Carrier, error) {
	q := `SELECT ` + carrierColumns + ` FROM carriers WHERE id = $1`
	c, err := scanCarrier(r.q.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get carrier by id: %w", err)
	}
	return c, nil
}

func (r *CarrierRepo) List(ctx context.Context) ([]*entity.Carrier, error) {
	q := `SELECT ` + carrierColumns + ` FROM carriers ORDER BY name`
	rows, err := r.q.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list carriers: %w", err)
	}
	defer rows.Close()

	var out []*entity.Carrier
	for rows.Next() {
		c, err := scanCarrier(rows)
		if err != nil {
			return nil, fmt.Errorf("scan carrier: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Upsert sincroniza una aseguradora del catálogo por su clave. Conserva el id existente.
func (r *CarrierRepo) Upsert(ctx context.Context, c *entity.Carrier) error {
	const q = `
		INSERT INTO carriers (id, key, name, invert_negatives, use_multi_commission_columns, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (key) DO UPDATE SET
			name                         = EXCLUDED.name,
			invert_negatives             = EXCLUDED.invert_negatives,
			use_multi_commission_columns = EXCLUDED.use_multi_commission_columns,
			active                       = EXCLUDED.active
		RETURNING id`
	err := r.q.QueryRow(ctx, q,
		c.ID, c.Key, c.Name, c.InvertNegatives, c.UseMultiCommissionColumns, c.Active,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("upsert carrier: %w", err)
	}
	return nil
}

func scanCarrier(row pgxScanner) (*entity.Carrier, error) {
	var c entity.Carrier
	err := row.Scan(&c.ID, &c.Key, &c.Name, &c.InvertNegatives, &c.UseMultiCommissionColumns, &c.Active, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
