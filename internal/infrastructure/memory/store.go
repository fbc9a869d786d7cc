package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
	"github.com/jhoicas/Comisiones-api/internal/domain/repository"
)

// Store base de datos en memoria para tests y ejecución local sin PostgreSQL.
// Las transacciones se serializan (txMu) y se revierten restaurando una copia del estado.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	carriers    map[string]entity.Carrier
	batches     map[string]entity.ImportBatch
	items       map[string][]entity.CommissionLineItem
	payments    map[string]entity.PendingPayment
	transfers   map[string]entity.BankTransfer
	groups      map[string]entity.PaymentGroup
	groupItems  map[string][]entity.PaymentGroupItem
	groupRefs   map[string][]entity.PaymentGroupReference
	recurrences map[string]entity.Recurrence
	audit       []entity.AuditEntry

	// FailItemInsert si no es nil, CreateMany de líneas devuelve este error.
	FailItemInsert error
}

// NewStore construye un store vacío.
func NewStore() *Store {
	return &Store{
		carriers:    make(map[string]entity.Carrier),
		batches:     make(map[string]entity.ImportBatch),
		items:       make(map[string][]entity.CommissionLineItem),
		payments:    make(map[string]entity.PendingPayment),
		transfers:   make(map[string]entity.BankTransfer),
		groups:      make(map[string]entity.PaymentGroup),
		groupItems:  make(map[string][]entity.PaymentGroupItem),
		groupRefs:   make(map[string][]entity.PaymentGroupReference),
		recurrences: make(map[string]entity.Recurrence),
	}
}

// Repositorios sobre el store.
func (s *Store) Carriers() *CarrierRepo { return &CarrierRepo{s: s} }
func (s *Store) Batches() *ImportBatchRepo { return &ImportBatchRepo{s: s} }
func (s *Store) Items() *CommissionItemRepo { return &CommissionItemRepo{s: s} }
func (s *Store) Payments() *PendingPaymentRepo { return &PendingPaymentRepo{s: s} }
func (s *Store) Transfers() *BankTransferRepo { return &BankTransferRepo{s: s} }
func (s *Store) Groups() *PaymentGroupRepo { return &PaymentGroupRepo{s: s} }
func (s *Store) Recurrences() *RecurrenceRepo { return &RecurrenceRepo{s: s} }
func (s *Store) Audit() *AuditRepo { return &AuditRepo{s: s} }
func (s *Store) TxRunner() *TxRunner { return &TxRunner{s: s} }

// AddCarrier alta directa de una aseguradora (semilla).
func (s *Store) AddCarrier(c entity.Carrier) {
	s.mu.Lock()
	s.carriers[c.ID] = c
	s.mu.Unlock()
}

type snapshot struct {
	batches     map[string]entity.ImportBatch
	items       map[string][]entity.CommissionLineItem
	payments    map[string]entity.PendingPayment
	transfers   map[string]entity.BankTransfer
	groups      map[string]entity.PaymentGroup
	groupItems  map[string][]entity.PaymentGroupItem
	groupRefs   map[string][]entity.PaymentGroupReference
	recurrences map[string]entity.Recurrence
	audit       []entity.AuditEntry
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := snapshot{
		batches:     maps.Clone(s.batches),
		items:       maps.Clone(s.items),
		payments:    maps.Clone(s.payments),
		transfers:   maps.Clone(s.transfers),
		groups:      maps.Clone(s.groups),
		groupItems:  maps.Clone(s.groupItems),
		groupRefs:   maps.Clone(s.groupRefs),
		recurrences: make(map[string]entity.Recurrence, len(s.recurrences)),
		audit:       slices.Clone(s.audit),
	}
	for id, r := range s.recurrences {
		snap.recurrences[id] = cloneRecurrence(r)
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = snap.batches
	s.items = snap.items
	s.payments = snap.payments
	s.transfers = snap.transfers
	s.groups = snap.groups
	s.groupItems = snap.groupItems
	s.groupRefs = snap.groupRefs
	s.recurrences = snap.recurrences
	s.audit = snap.audit
}

// TxRunner ejecuta callbacks de forma serializada con rollback por copia.
type TxRunner struct {
	s *Store
}

func (t *TxRunner) run(fn func() error) error {
	t.s.txMu.Lock()
	defer t.s.txMu.Unlock()
	snap := t.s.snapshot()
	if err := fn(); err != nil {
		t.s.restore(snap)
		return err
	}
	return nil
}

// RunImport implementa ingestion.TxRunner.
func (t *TxRunner) RunImport(ctx context.Context, fn func(
	batchRepo repository.ImportBatchRepository,
	itemRepo repository.CommissionItemRepository,
) error) error {
	return t.run(func() error { return fn(t.s.Batches(), t.s.Items()) })
}

// RunLedger implementa payments.TxRunner y transfers.TxRunner.
func (t *TxRunner) RunLedger(ctx context.Context, fn func(
	paymentRepo repository.PendingPaymentRepository,
	transferRepo repository.BankTransferRepository,
	groupRepo repository.PaymentGroupRepository,
	auditRepo repository.AuditRepository,
) error) error {
	return t.run(func() error { return fn(t.s.Payments(), t.s.Transfers(), t.s.Groups(), t.s.Audit()) })
}

// RunRecurrence implementa recurrence.TxRunner.
func (t *TxRunner) RunRecurrence(ctx context.Context, fn func(
	recurrenceRepo repository.RecurrenceRepository,
	paymentRepo repository.PendingPaymentRepository,
	auditRepo repository.AuditRepository,
) error) error {
	return t.run(func() error { return fn(t.s.Recurrences(), t.s.Payments(), t.s.Audit()) })
}

func cloneRecurrence(r entity.Recurrence) entity.Recurrence {
	r.Schedule = slices.Clone(r.Schedule)
	return r
}

func page[T any](in []T, limit, offset int) []T {
	if offset >= len(in) {
		return []T{}
	}
	in = in[offset:]
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}
