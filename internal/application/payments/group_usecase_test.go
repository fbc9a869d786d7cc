package payments_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Comisiones-api/internal/application/payments"
	"github.com/jhoicas/Comisiones-api/internal/domain"
	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
	"github.com/jhoicas/Comisiones-api/internal/infrastructure/memory"
	"github.com/jhoicas/Comisiones-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testUser    = "00000000-0000-0000-0000-0000000000aa"
	carrierASSA = "carrier-assa"
	carrierVUMI = "carrier-vumi"
)

type fixture struct {
	store  *memory.Store
	ledger *payments.LedgerUseCase
	groups *payments.GroupUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.AddCarrier(entity.Carrier{ID: carrierASSA, Key: "ASSA", Name: "ASSA Compañía de Seguros", Active: true})
	store.AddCarrier(entity.Carrier{ID: carrierVUMI, Key: "VUMI", Name: "VUMI Group", Active: true})
	log := logger.Nop()
	return &fixture{
		store:  store,
		ledger: payments.NewLedgerUseCase(store.TxRunner(), store.Payments(), log),
		groups: payments.NewGroupUseCase(store.TxRunner(), store.Groups(), log),
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (f *fixture) pending(t *testing.T, policy, carrierID, amount string) *entity.PendingPayment {
	t.Helper()
	p, created, err := f.ledger.CreatePending(context.Background(), payments.CreatePendingInput{
		ClientName:   "Cliente " + policy,
		PolicyNumber: policy,
		CarrierID:    carrierID,
		Amount:       dec(amount),
		PaymentDate:  time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		UserID:       testUser,
	})
	require.NoError(t, err)
	require.True(t, created)
	return p
}

func (f *fixture) transfer(t *testing.T, ref, amount string) *entity.BankTransfer {
	t.Helper()
	tr := &entity.BankTransfer{
		ID:              "tr-" + ref,
		BankName:        "Banco General",
		ReferenceNumber: ref,
		Amount:          dec(amount),
		RemainingAmount: dec(amount),
		TransferDate:    time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
		Status:          entity.TransferStatusOpen,
	}
	require.NoError(t, f.store.Transfers().Create(context.Background(), tr))
	return tr
}

func (f *fixture) draft(t *testing.T) *entity.PaymentGroup {
	t.Helper()
	g, err := f.groups.CreateGroup(context.Background(), testUser, "")
	require.NoError(t, err)
	require.Equal(t, entity.GroupStatusDraft, g.Status)
	return g
}

func itemFor(p *entity.PendingPayment) payments.ConfirmItem {
	return payments.ConfirmItem{PendingPaymentID: p.ID, AmountApplied: p.Amount}
}

func refFor(tr *entity.BankTransfer, amount string) payments.ConfirmReference {
	return payments.ConfirmReference{BankTransferID: tr.ID, AmountUsed: dec(amount)}
}

func (f *fixture) payment(t *testing.T, id string) *entity.PendingPayment {
	t.Helper()
	p, err := f.store.Payments().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}

func (f *fixture) transferByID(t *testing.T, id string) *entity.BankTransfer {
	t.Helper()
	tr, err := f.store.Transfers().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, tr)
	return tr
}

// ──────────────────────────────────────────────────────────────────────────────
// confirm_group
// ──────────────────────────────────────────────────────────────────────────────

func TestConfirmGroup_FondosInsuficientesNoModificaNada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p1 := f.pending(t, "POL-1", carrierASSA, "100")
	p2 := f.pending(t, "POL-2", carrierASSA, "100")
	tr := f.transfer(t, "REF-150", "150")
	g := f.draft(t)

	_, err := f.groups.ConfirmGroup(ctx, payments.ConfirmGroupInput{
		GroupID:    g.ID,
		UserID:     testUser,
		Items:      []payments.ConfirmItem{itemFor(p1), itemFor(p2)},
		References: []payments.ConfirmReference{refFor(tr, "150")},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	var funds *domain.InsufficientFundsError
	require.True(t, errors.As(err, &funds))
	assert.True(t, funds.Required.Equal(dec("200")))
	assert.True(t, funds.Allocated.Equal(dec("150")))

	assert.Equal(t, entity.PaymentStatusPending, f.payment(t, p1.ID).Status)
	assert.Equal(t, entity.PaymentStatusPending, f.payment(t, p2.ID).Status)
	assert.True(t, f.transferByID(t, tr.ID).RemainingAmount.Equal(dec("150")))

	detail, err := f.groups.GetGroup(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.GroupStatusDraft, detail.Group.Status)
	assert.Empty(t, detail.Items)
}

func TestConfirmGroup_ExitoConsumeSaldoYCierraTransferencia(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p1 := f.pending(t, "POL-1", carrierASSA, "100")
	p2 := f.pending(t, "POL-2", carrierVUMI, "100")
	tr := f.transfer(t, "REF-200", "200")
	g := f.draft(t)

	confirmed, err := f.groups.ConfirmGroup(ctx, payments.ConfirmGroupInput{
		GroupID:    g.ID,
		UserID:     testUser,
		Items:      []payments.ConfirmItem{itemFor(p1), itemFor(p2)},
		References: []payments.ConfirmReference{refFor(tr, "200")},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.GroupStatusConfirmed, confirmed.Status)
	assert.True(t, confirmed.TotalAmount.Equal(dec("200")))
	assert.NotNil(t, confirmed.ConfirmedAt)

	for _, id := range []string{p1.ID, p2.ID} {
		p := f.payment(t, id)
		assert.Equal(t, entity.PaymentStatusGrouped, p.Status)
		require.NotNil(t, p.GroupID)
		assert.Equal(t, g.ID, *p.GroupID)
	}
	after := f.transferByID(t, tr.ID)
	assert.True(t, after.RemainingAmount.IsZero())
	assert.Equal(t, entity.TransferStatusClosed, after.Status)

	detail, err := f.groups.GetGroup(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, detail.Items, 2)
	require.Len(t, detail.References, 1)
	carriers := map[string]string{}
	for _, it := range detail.Items {
		carriers[it.PendingPaymentID] = it.CarrierID
	}
	assert.Equal(t, carrierASSA, carriers[p1.ID], "la aseguradora del ítem se toma del pago")
	assert.Equal(t, carrierVUMI, carriers[p2.ID])
}

func TestConfirmGroup_ExcedenteQuedaEnTransferencia(t *testing.T) {
	f := newFixture(t)
	p := f.pending(t, "POL-1", carrierASSA, "80")
	tr := f.transfer(t, "REF-100", "100")
	g := f.draft(t)

	_, err := f.groups.ConfirmGroup(context.Background(), payments.ConfirmGroupInput{
		GroupID:    g.ID,
		Items:      []payments.ConfirmItem{itemFor(p)},
		References: []payments.ConfirmReference{refFor(tr, "80")},
	})
	require.NoError(t, err)
	after := f.transferByID(t, tr.ID)
	assert.True(t, after.RemainingAmount.Equal(dec("20")))
	assert.Equal(t, entity.TransferStatusOpen, after.Status)
}

func TestConfirmGroup_ReferenciaMayorQueSaldoEsConflicto(t *testing.T) {
	f := newFixture(t)
	p := f.pending(t, "POL-1", carrierASSA, "100")
	tr := f.transfer(t, "REF-50", "50")
	g := f.draft(t)

	_, err := f.groups.ConfirmGroup(context.Background(), payments.ConfirmGroupInput{
		GroupID:    g.ID,
		Items:      []payments.ConfirmItem{itemFor(p)},
		References: []payments.ConfirmReference{refFor(tr, "100")},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, entity.PaymentStatusPending, f.payment(t, p.ID).Status)
	assert.True(t, f.transferByID(t, tr.ID).RemainingAmount.Equal(dec("50")))
}

func TestConfirmGroup_PagoYaAgrupadoEsConflicto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.pending(t, "POL-1", carrierASSA, "100")
	tr := f.transfer(t, "REF-300", "300")
	g1 := f.draft(t)
	g2 := f.draft(t)

	_, err := f.groups.ConfirmGroup(ctx, payments.ConfirmGroupInput{
		GroupID: g1.ID, Items: []payments.ConfirmItem{itemFor(p)}, References: []payments.ConfirmReference{refFor(tr, "100")},
	})
	require.NoError(t, err)

	_, err = f.groups.ConfirmGroup(ctx, payments.ConfirmGroupInput{
		GroupID: g2.ID, Items: []payments.ConfirmItem{itemFor(p)}, References: []payments.ConfirmReference{refFor(tr, "100")},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.True(t, f.transferByID(t, tr.ID).RemainingAmount.Equal(dec("200")), "el segundo intento no descuenta saldo")
}

func TestConfirmGroup_AseguradoraDistintaEsValidacion(t *testing.T) {
	f := newFixture(t)
	p := f.pending(t, "POL-1", carrierASSA, "100")
	tr := f.transfer(t, "REF-100", "100")
	g := f.draft(t)

	item := itemFor(p)
	item.CarrierID = carrierVUMI
	_, err := f.groups.ConfirmGroup(context.Background(), payments.ConfirmGroupInput{
		GroupID: g.ID, Items: []payments.ConfirmItem{item}, References: []payments.ConfirmReference{refFor(tr, "100")},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, entity.PaymentStatusPending, f.payment(t, p.ID).Status)
}

func TestConfirmGroup_GrupoYaConfirmadoEsErrorDeEstado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p1 := f.pending(t, "POL-1", carrierASSA, "100")
	p2 := f.pending(t, "POL-2", carrierASSA, "100")
	tr := f.transfer(t, "REF-300", "300")
	g := f.draft(t)

	_, err := f.groups.ConfirmGroup(ctx, payments.ConfirmGroupInput{
		GroupID: g.ID, Items: []payments.ConfirmItem{itemFor(p1)}, References: []payments.ConfirmReference{refFor(tr, "100")},
	})
	require.NoError(t, err)
	_, err = f.groups.ConfirmGroup(ctx, payments.ConfirmGroupInput{
		GroupID: g.ID, Items: []payments.ConfirmItem{itemFor(p2)}, References: []payments.ConfirmReference{refFor(tr, "100")},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestConfirmGroup_GrupoInexistente(t *testing.T) {
	f := newFixture(t)
	p := f.pending(t, "POL-1", carrierASSA, "100")
	tr := f.transfer(t, "REF-100", "100")
	_, err := f.groups.ConfirmGroup(context.Background(), payments.ConfirmGroupInput{
		GroupID: "no-existe", Items: []payments.ConfirmItem{itemFor(p)}, References: []payments.ConfirmReference{refFor(tr, "100")},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Dos grupos compiten por los mismos $100 de una transferencia: exactamente uno confirma.
func TestConfirmGroup_ConcurrenteSobreMismaTransferencia(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pa := f.pending(t, "POL-A", carrierASSA, "100")
	pb := f.pending(t, "POL-B", carrierASSA, "100")
	tr := f.transfer(t, "REF-100", "100")
	ga := f.draft(t)
	gb := f.draft(t)

	inputs := []payments.ConfirmGroupInput{
		{GroupID: ga.ID, Items: []payments.ConfirmItem{itemFor(pa)}, References: []payments.ConfirmReference{refFor(tr, "100")}},
		{GroupID: gb.ID, Items: []payments.ConfirmItem{itemFor(pb)}, References: []payments.ConfirmReference{refFor(tr, "100")}},
	}
	errs := make([]error, len(inputs))
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := range inputs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = f.groups.ConfirmGroup(ctx, inputs[i])
		}(i)
	}
	close(start)
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrConflict)
	}
	assert.Equal(t, 1, succeeded)

	after := f.transferByID(t, tr.ID)
	assert.True(t, after.RemainingAmount.IsZero(), "el saldo nunca queda negativo")
	assert.Equal(t, entity.TransferStatusClosed, after.Status)

	grouped := 0
	for _, id := range []string{pa.ID, pb.ID} {
		if f.payment(t, id).Status == entity.PaymentStatusGrouped {
			grouped++
		}
	}
	assert.Equal(t, 1, grouped)
}

// ──────────────────────────────────────────────────────────────────────────────
// post_group / release_group / discard_group
// ──────────────────────────────────────────────────────────────────────────────

func (f *fixture) confirmedGroup(t *testing.T) (*entity.PaymentGroup, *entity.PendingPayment, *entity.BankTransfer) {
	t.Helper()
	p := f.pending(t, "POL-1", carrierASSA, "100")
	tr := f.transfer(t, "REF-100", "100")
	g := f.draft(t)
	confirmed, err := f.groups.ConfirmGroup(context.Background(), payments.ConfirmGroupInput{
		GroupID: g.ID, UserID: testUser, Items: []payments.ConfirmItem{itemFor(p)}, References: []payments.ConfirmReference{refFor(tr, "100")},
	})
	require.NoError(t, err)
	return confirmed, p, tr
}

func TestPostGroup_MarcaPagadoYEsIdempotente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g, p, _ := f.confirmedGroup(t)

	posted, err := f.groups.PostGroup(ctx, g.ID, testUser)
	require.NoError(t, err)
	assert.Equal(t, entity.GroupStatusPosted, posted.Status)
	require.NotNil(t, posted.PostedAt)
	assert.Equal(t, entity.PaymentStatusPaid, f.payment(t, p.ID).Status)

	entries, err := f.store.Audit().ListByEntity(ctx, "group", g.ID)
	require.NoError(t, err)
	before := len(entries)

	again, err := f.groups.PostGroup(ctx, g.ID, testUser)
	require.NoError(t, err, "un segundo post no es error")
	assert.Equal(t, entity.GroupStatusPosted, again.Status)
	assert.Equal(t, posted.PostedAt.Unix(), again.PostedAt.Unix())

	entries, err = f.store.Audit().ListByEntity(ctx, "group", g.ID)
	require.NoError(t, err)
	assert.Len(t, entries, before, "el segundo post no audita")
}

func TestPostGroup_BorradorEsErrorDeEstado(t *testing.T) {
	f := newFixture(t)
	g := f.draft(t)
	_, err := f.groups.PostGroup(context.Background(), g.ID, testUser)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestReleaseGroup_RestauraSaldoYPagos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g, p, tr := f.confirmedGroup(t)
	require.Equal(t, entity.TransferStatusClosed, f.transferByID(t, tr.ID).Status)

	released, err := f.groups.ReleaseGroup(ctx, g.ID, testUser, "error de digitación")
	require.NoError(t, err)
	assert.Equal(t, entity.GroupStatusDraft, released.Status)
	assert.True(t, released.TotalAmount.IsZero())

	after := f.payment(t, p.ID)
	assert.Equal(t, entity.PaymentStatusPending, after.Status)
	assert.Nil(t, after.GroupID)
	restored := f.transferByID(t, tr.ID)
	assert.True(t, restored.RemainingAmount.Equal(dec("100")))
	assert.Equal(t, entity.TransferStatusOpen, restored.Status)

	detail, err := f.groups.GetGroup(ctx, g.ID)
	require.NoError(t, err)
	assert.Empty(t, detail.Items)
	assert.Empty(t, detail.References)

	// el pago liberado puede volver a agruparse
	_, err = f.groups.ConfirmGroup(ctx, payments.ConfirmGroupInput{
		GroupID: g.ID, Items: []payments.ConfirmItem{itemFor(p)}, References: []payments.ConfirmReference{refFor(tr, "100")},
	})
	require.NoError(t, err)
}

func TestReleaseGroup_PosteadoEsErrorDeEstado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g, _, _ := f.confirmedGroup(t)
	_, err := f.groups.PostGroup(ctx, g.ID, testUser)
	require.NoError(t, err)

	_, err = f.groups.ReleaseGroup(ctx, g.ID, testUser, "")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestDiscardGroup_SoloBorradores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.draft(t)
	require.NoError(t, f.groups.DiscardGroup(ctx, d.ID, testUser))
	detail, err := f.groups.GetGroup(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.GroupStatusDiscarded, detail.Group.Status)

	g, _, _ := f.confirmedGroup(t)
	assert.ErrorIs(t, f.groups.DiscardGroup(ctx, g.ID, testUser), domain.ErrInvalidState)
}
