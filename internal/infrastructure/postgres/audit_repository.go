package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
	"github.com/jhoicas/Comisiones-api/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo bitácora sobre PostgreSQL; el detalle se guarda como JSONB.
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el repositorio.
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

func (r *AuditRepo) Append(ctx context.Context, e *entity.AuditEntry) error {
	const q = `
		INSERT INTO audit_log (id, action, entity_type, entity_id, user_id, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	detail, err := toJSON(e.Detail)
	if err != nil {
		return err
	}
	_, err = r.q.Exec(ctx, q, e.ID, e.Action, e.EntityType, e.EntityID, e.UserID, detail, e.CreatedAt)
	return writeErr("insert audit_log", err)
}

func (r *AuditRepo) ListByEntity(ctx context.Context, entityType, entityID string) ([]*entity.AuditEntry, error) {
	const q = `
		SELECT id, action, entity_type, entity_id, user_id, detail, created_at
		FROM audit_log
		WHERE entity_type = $1 AND ($2 = '' OR entity_id = $2)
		ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, q, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("list audit_log: %w", err)
	}
	defer rows.Close()

	out := make([]*entity.AuditEntry, 0)
	for rows.Next() {
		var (
			e      entity.AuditEntry
			detail []byte
		)
		if err := rows.Scan(&e.ID, &e.Action, &e.EntityType, &e.EntityID, &e.UserID, &detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit_log: %w", err)
		}
		if len(detail) > 0 {
			if err := json.Unmarshal(detail, &e.Detail); err != nil {
				return nil, fmt.Errorf("decode audit detail: %w", err)
			}
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
