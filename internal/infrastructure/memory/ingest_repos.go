package memory

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Comisiones-api/internal/domain"
	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
	"github.com/jhoicas/Comisiones-api/internal/domain/repository"
)

var (
	_ repository.CarrierRepository        = (*CarrierRepo)(nil)
	_ repository.ImportBatchRepository    = (*ImportBatchRepo)(nil)
	_ repository.CommissionItemRepository = (*CommissionItemRepo)(nil)
)

// CarrierRepo catálogo de aseguradoras en memoria.
type CarrierRepo struct{ s *Store }

func (r *CarrierRepo) GetByID(ctx context.Context, id string) (*entity.Carrier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.carriers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *CarrierRepo) List(ctx context.Context) ([]*entity.Carrier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Carrier, 0, len(r.s.carriers))
	for _, c := range r.s.carriers {
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ImportBatchRepo cabeceras de lote en memoria.
type ImportBatchRepo struct{ s *Store }

func (r *ImportBatchRepo) Create(ctx context.Context, b *entity.ImportBatch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.batches[b.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.batches[b.ID] = *b
	return nil
}

func (r *ImportBatchRepo) GetByID(ctx context.Context, id string) (*entity.ImportBatch, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.batches[id]
	if !ok || b.DeletedAt != nil {
		return nil, nil
	}
	return &b, nil
}

func (r *ImportBatchRepo) MarkCommitted(ctx context.Context, id string, itemCount, rejectedCount int, total decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.batches[id]
	if !ok {
		return domain.ErrNotFound
	}
	b.Status = entity.ImportStatusCommitted
	b.ItemCount = itemCount
	b.RejectedCount = rejectedCount
	b.ParsedTotal = total
	r.s.batches[id] = b
	return nil
}

func (r *ImportBatchRepo) SoftDelete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.batches[id]
	if !ok {
		return nil
	}
	now := time.Now()
	b.Status = entity.ImportStatusFailed
	b.DeletedAt = &now
	r.s.batches[id] = b
	return nil
}

func (r *ImportBatchRepo) List(ctx context.Context, carrierID string, limit, offset int) ([]*entity.ImportBatch, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.ImportBatch, 0)
	for _, b := range r.s.batches {
		if b.DeletedAt != nil || (carrierID != "" && b.CarrierID != carrierID) {
			continue
		}
		b := b
		out = append(out, &b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, limit, offset), nil
}

// Raw devuelve la cabecera aunque esté borrada lógicamente (aserciones de test).
func (r *ImportBatchRepo) Raw(id string) (entity.ImportBatch, bool) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.batches[id]
	return b, ok
}

// CommissionItemRepo líneas de comisión en memoria.
type CommissionItemRepo struct{ s *Store }

func (r *CommissionItemRepo) CreateMany(ctx context.Context, items []*entity.CommissionLineItem) error {
	if r.s.FailItemInsert != nil {
		return r.s.FailItemInsert
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, it := range items {
		r.s.items[it.BatchID] = append(slices.Clone(r.s.items[it.BatchID]), *it)
	}
	return nil
}

func (r *CommissionItemRepo) ListByBatch(ctx context.Context, batchID string) ([]*entity.CommissionLineItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	src := r.s.items[batchID]
	out := make([]*entity.CommissionLineItem, len(src))
	for i := range src {
		it := src[i]
		out[i] = &it
	}
	return out, nil
}
