package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Comisiones-api/internal/domain"
	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
	"github.com/jhoicas/Comisiones-api/internal/domain/repository"
)

var (
	_ repository.PendingPaymentRepository = (*PendingPaymentRepo)(nil)
	_ repository.BankTransferRepository   = (*BankTransferRepo)(nil)
	_ repository.PaymentGroupRepository   = (*PaymentGroupRepo)(nil)
	_ repository.AuditRepository          = (*AuditRepo)(nil)
)

// PendingPaymentRepo libro de pagos en memoria.
type PendingPaymentRepo struct{ s *Store }

func (r *PendingPaymentRepo) Create(ctx context.Context, p *entity.PendingPayment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.payments[p.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, other := range r.s.payments {
		if sameObligation(other, p.PolicyNumber, p.CarrierID, p.PaymentDate, p.InstallmentNum) {
			return domain.ErrDuplicate
		}
	}
	r.s.payments[p.ID] = *p
	return nil
}

func (r *PendingPaymentRepo) GetByID(ctx context.Context, id string) (*entity.PendingPayment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.payments[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *PendingPaymentRepo) FindDuplicate(ctx context.Context, policy, carrierID string, paymentDate time.Time, installment *int) (*entity.PendingPayment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.payments {
		if sameObligation(p, policy, carrierID, paymentDate, installment) {
			return &p, nil
		}
	}
	return nil, nil
}

func (r *PendingPaymentRepo) LockByIDs(ctx context.Context, ids []string) ([]*entity.PendingPayment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	out := make([]*entity.PendingPayment, 0, len(sorted))
	for _, id := range slices.Compact(sorted) {
		if p, ok := r.s.payments[id]; ok {
			out = append(out, &p)
		}
	}
	return out, nil
}

func (r *PendingPaymentRepo) SetStatus(ctx context.Context, ids []string, status string, groupID *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	for _, id := range ids {
		p, ok := r.s.payments[id]
		if !ok {
			return domain.ErrNotFound
		}
		p.Status = status
		p.GroupID = groupID
		p.UpdatedAt = now
		r.s.payments[id] = p
	}
	return nil
}

func (r *PendingPaymentRepo) SetRefund(ctx context.Context, id string, info entity.RefundInfo) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payments[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Refund = &info
	p.IsRefund = true
	p.UpdatedAt = time.Now()
	r.s.payments[id] = p
	return nil
}

func (r *PendingPaymentRepo) List(ctx context.Context, f repository.PaymentFilter) ([]*entity.PendingPayment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]*entity.PendingPayment, 0)
	for _, p := range r.s.payments {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.CarrierID != "" && p.CarrierID != f.CarrierID {
			continue
		}
		if f.Refund != nil && p.IsRefund != *f.Refund {
			continue
		}
		if f.From != nil && p.PaymentDate.Before(*f.From) {
			continue
		}
		if f.To != nil && p.PaymentDate.After(*f.To) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.ClientName), search) &&
			!strings.Contains(strings.ToLower(p.PolicyNumber), search) {
			continue
		}
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PaymentDate.Equal(out[j].PaymentDate) {
			return out[i].ID < out[j].ID
		}
		return out[i].PaymentDate.Before(out[j].PaymentDate)
	})
	return page(out, f.Limit, f.Offset), nil
}

func (r *PendingPaymentRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[string]int)
	for _, p := range r.s.payments {
		out[p.Status]++
	}
	return out, nil
}

func sameObligation(p entity.PendingPayment, policy, carrierID string, date time.Time, installment *int) bool {
	if p.PolicyNumber != policy || p.CarrierID != carrierID || !sameDay(p.PaymentDate, date) {
		return false
	}
	if p.InstallmentNum == nil || installment == nil {
		return p.InstallmentNum == nil && installment == nil
	}
	return *p.InstallmentNum == *installment
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// BankTransferRepo pool de transferencias en memoria.
type BankTransferRepo struct{ s *Store }

func (r *BankTransferRepo) Create(ctx context.Context, t *entity.BankTransfer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.transfers {
		if strings.EqualFold(other.BankName, t.BankName) && other.ReferenceNumber == t.ReferenceNumber {
			return domain.ErrDuplicate
		}
	}
	r.s.transfers[t.ID] = *t
	return nil
}

func (r *BankTransferRepo) GetByID(ctx context.Context, id string) (*entity.BankTransfer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.transfers[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *BankTransferRepo) GetByBankAndReference(ctx context.Context, bankName, reference string) (*entity.BankTransfer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, t := range r.s.transfers {
		if strings.EqualFold(t.BankName, bankName) && t.ReferenceNumber == reference {
			return &t, nil
		}
	}
	return nil, nil
}

func (r *BankTransferRepo) LockByIDs(ctx context.Context, ids []string) ([]*entity.BankTransfer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	out := make([]*entity.BankTransfer, 0, len(sorted))
	for _, id := range slices.Compact(sorted) {
		if t, ok := r.s.transfers[id]; ok {
			out = append(out, &t)
		}
	}
	return out, nil
}

func (r *BankTransferRepo) UpdateBalance(ctx context.Context, id string, remaining decimal.Decimal, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.transfers[id]
	if !ok {
		return domain.ErrNotFound
	}
	t.RemainingAmount = remaining
	t.Status = status
	t.UpdatedAt = time.Now()
	r.s.transfers[id] = t
	return nil
}

func (r *BankTransferRepo) List(ctx context.Context, f repository.TransferFilter) ([]*entity.BankTransfer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.BankTransfer, 0)
	for _, t := range r.s.transfers {
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.BankName != "" && !strings.EqualFold(t.BankName, f.BankName) {
			continue
		}
		t := t
		out = append(out, &t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TransferDate.After(out[j].TransferDate) })
	return page(out, f.Limit, f.Offset), nil
}

func (r *BankTransferRepo) ListUsages(ctx context.Context, transferID string) ([]entity.TransferUsage, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]entity.TransferUsage, 0)
	for groupID, refs := range r.s.groupRefs {
		for _, ref := range refs {
			if ref.BankTransferID == transferID {
				out = append(out, entity.TransferUsage{
					GroupID:     groupID,
					GroupStatus: r.s.groups[groupID].Status,
					AmountUsed:  ref.AmountUsed,
				})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GroupID < out[j].GroupID })
	return out, nil
}

// PaymentGroupRepo grupos de pago en memoria.
type PaymentGroupRepo struct{ s *Store }

func (r *PaymentGroupRepo) Create(ctx context.Context, g *entity.PaymentGroup) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.groups[g.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.groups[g.ID] = *g
	return nil
}

func (r *PaymentGroupRepo) GetByID(ctx context.Context, id string) (*entity.PaymentGroup, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	g, ok := r.s.groups[id]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

func (r *PaymentGroupRepo) GetForUpdate(ctx context.Context, id string) (*entity.PaymentGroup, error) {
	return r.GetByID(ctx, id)
}

func (r *PaymentGroupRepo) Update(ctx context.Context, g *entity.PaymentGroup) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.groups[g.ID]; !ok {
		return domain.ErrNotFound
	}
	g.UpdatedAt = time.Now()
	r.s.groups[g.ID] = *g
	return nil
}

func (r *PaymentGroupRepo) AddItems(ctx context.Context, items []entity.PaymentGroupItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, it := range items {
		r.s.groupItems[it.GroupID] = append(slices.Clone(r.s.groupItems[it.GroupID]), it)
	}
	return nil
}

func (r *PaymentGroupRepo) AddReferences(ctx context.Context, refs []entity.PaymentGroupReference) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, ref := range refs {
		r.s.groupRefs[ref.GroupID] = append(slices.Clone(r.s.groupRefs[ref.GroupID]), ref)
	}
	return nil
}

func (r *PaymentGroupRepo) ListItems(ctx context.Context, groupID string) ([]entity.PaymentGroupItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return slices.Clone(r.s.groupItems[groupID]), nil
}

func (r *PaymentGroupRepo) ListReferences(ctx context.Context, groupID string) ([]entity.PaymentGroupReference, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return slices.Clone(r.s.groupRefs[groupID]), nil
}

func (r *PaymentGroupRepo) DeleteAllocations(ctx context.Context, groupID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.groupItems, groupID)
	delete(r.s.groupRefs, groupID)
	return nil
}

func (r *PaymentGroupRepo) List(ctx context.Context, f repository.GroupFilter) ([]*entity.PaymentGroup, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.PaymentGroup, 0)
	for _, g := range r.s.groups {
		if f.Status != "" && g.Status != f.Status {
			continue
		}
		g := g
		out = append(out, &g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, f.Limit, f.Offset), nil
}

func (r *PaymentGroupRepo) SettlementLines(ctx context.Context, groupID string) ([]entity.SettlementLine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	items := r.s.groupItems[groupID]
	out := make([]entity.SettlementLine, 0, len(items))
	for _, it := range items {
		p := r.s.payments[it.PendingPaymentID]
		c := r.s.carriers[it.CarrierID]
		name := c.Name
		if name == "" {
			name = it.CarrierID
		}
		out = append(out, entity.SettlementLine{
			CarrierID:     it.CarrierID,
			CarrierName:   name,
			ClientName:    p.ClientName,
			PolicyNumber:  p.PolicyNumber,
			AmountApplied: it.AmountApplied,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CarrierName < out[j].CarrierName })
	return out, nil
}

// AuditRepo bitácora en memoria.
type AuditRepo struct{ s *Store }

func (r *AuditRepo) Append(ctx context.Context, e *entity.AuditEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.audit = append(slices.Clone(r.s.audit), *e)
	return nil
}

func (r *AuditRepo) ListByEntity(ctx context.Context, entityType, entityID string) ([]*entity.AuditEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.AuditEntry, 0)
	for _, e := range r.s.audit {
		if e.EntityType == entityType && (entityID == "" || e.EntityID == entityID) {
			e := e
			out = append(out, &e)
		}
	}
	return out, nil
}
