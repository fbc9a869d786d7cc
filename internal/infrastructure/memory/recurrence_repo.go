package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/Comisiones-api/internal/domain"
	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
	"github.com/jhoicas/Comisiones-api/internal/domain/repository"
)

var _ repository.RecurrenceRepository = (*RecurrenceRepo)(nil)

// RecurrenceRepo cronogramas en memoria.
type RecurrenceRepo struct{ s *Store }

func (r *RecurrenceRepo) Create(ctx context.Context, rec *entity.Recurrence) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.recurrences[rec.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.recurrences[rec.ID] = cloneRecurrence(*rec)
	return nil
}

func (r *RecurrenceRepo) GetByID(ctx context.Context, id string) (*entity.Recurrence, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rec, ok := r.s.recurrences[id]
	if !ok {
		return nil, nil
	}
	rec = cloneRecurrence(rec)
	return &rec, nil
}

func (r *RecurrenceRepo) GetForUpdate(ctx context.Context, id string) (*entity.Recurrence, error) {
	return r.GetByID(ctx, id)
}

func (r *RecurrenceRepo) FindActive(ctx context.Context, policy, carrierID string) (*entity.Recurrence, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, rec := range r.s.recurrences {
		if rec.PolicyNumber == policy && rec.CarrierID == carrierID && rec.Status == entity.RecurrenceStatusActive {
			rec = cloneRecurrence(rec)
			return &rec, nil
		}
	}
	return nil, nil
}

func (r *RecurrenceRepo) Update(ctx context.Context, rec *entity.Recurrence) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.recurrences[rec.ID]; !ok {
		return domain.ErrNotFound
	}
	rec.UpdatedAt = time.Now()
	r.s.recurrences[rec.ID] = cloneRecurrence(*rec)
	return nil
}

func (r *RecurrenceRepo) ListDue(ctx context.Context, asOf time.Time) ([]*entity.Recurrence, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Recurrence, 0)
	for _, rec := range r.s.recurrences {
		if rec.Status == entity.RecurrenceStatusActive && !rec.NextDueDate.After(asOf) {
			rec = cloneRecurrence(rec)
			out = append(out, &rec)
		}
	}
	sortByNextDue(out)
	return out, nil
}

func (r *RecurrenceRepo) List(ctx context.Context, status string) ([]*entity.Recurrence, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Recurrence, 0)
	for _, rec := range r.s.recurrences {
		if status != "" && rec.Status != status {
			continue
		}
		rec = cloneRecurrence(rec)
		out = append(out, &rec)
	}
	sortByNextDue(out)
	return out, nil
}

func sortByNextDue(out []*entity.Recurrence) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].NextDueDate.Equal(out[j].NextDueDate) {
			return out[i].ID < out[j].ID
		}
		return out[i].NextDueDate.Before(out[j].NextDueDate)
	})
}
