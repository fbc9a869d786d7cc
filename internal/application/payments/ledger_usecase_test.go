package payments_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Comisiones-api/internal/application/payments"
	"github.com/jhoicas/Comisiones-api/internal/domain"
	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
	"github.com/jhoicas/Comisiones-api/internal/domain/repository"
)

func TestCreatePending_EsIdempotente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cuota := 3
	in := payments.CreatePendingInput{
		ClientName:     "María Pérez",
		PolicyNumber:   "PJ-7501",
		CarrierID:      carrierASSA,
		Amount:         dec("45.90"),
		PaymentDate:    time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		InstallmentNum: &cuota,
		UserID:         testUser,
	}
	first, created, err := f.ledger.CreatePending(ctx, in)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, entity.PaymentStatusPending, first.Status)
	assert.Equal(t, entity.PaymentTypeCarrierPayout, first.Type)

	second, created, err := f.ledger.CreatePending(ctx, in)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	list, summary, err := f.ledger.ListPending(ctx, repository.PaymentFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, summary[entity.PaymentStatusPending])
}

func TestCreatePending_Validaciones(t *testing.T) {
	f := newFixture(t)
	base := payments.CreatePendingInput{
		ClientName:   "Cliente",
		PolicyNumber: "P-1",
		CarrierID:    carrierASSA,
		Amount:       dec("10"),
		PaymentDate:  time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	cases := map[string]func(in *payments.CreatePendingInput){
		"sin cliente":    func(in *payments.CreatePendingInput) { in.ClientName = "  " },
		"sin póliza":     func(in *payments.CreatePendingInput) { in.PolicyNumber = "" },
		"monto cero":     func(in *payments.CreatePendingInput) { in.Amount = dec("0") },
		"monto negativo": func(in *payments.CreatePendingInput) { in.Amount = dec("-5") },
		"tipo inválido":  func(in *payments.CreatePendingInput) { in.Type = "OTRO" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := base
			mutate(&in)
			_, _, err := f.ledger.CreatePending(context.Background(), in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func refundPayment(t *testing.T, f *fixture) *entity.PendingPayment {
	t.Helper()
	p, _, err := f.ledger.CreatePending(context.Background(), payments.CreatePendingInput{
		ClientName:   "Juan Gómez",
		PolicyNumber: "AC-900",
		CarrierID:    carrierVUMI,
		Amount:       dec("120"),
		PaymentDate:  time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC),
		Type:         entity.PaymentTypeRefundToClient,
		UserID:       testUser,
	})
	require.NoError(t, err)
	require.True(t, p.IsRefund)
	return p
}

func TestMarkRefund_UnaSolaVez(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := refundPayment(t, f)
	in := payments.MarkRefundInput{
		PaymentID:   p.ID,
		Bank:        "Banistmo",
		Account:     "0123456789",
		AccountType: "AHORROS",
		Reason:      "cancelación de póliza",
		UserID:      testUser,
	}
	require.NoError(t, f.ledger.MarkRefund(ctx, in))

	got, err := f.ledger.GetPayment(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Refund)
	assert.Equal(t, "Banistmo", got.Refund.Bank)
	assert.Equal(t, "AHORROS", got.Refund.AccountType)

	err = f.ledger.MarkRefund(ctx, in)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestMarkRefund_PagoNoDevolucionEsConflicto(t *testing.T) {
	f := newFixture(t)
	p := f.pending(t, "POL-1", carrierASSA, "100")
	err := f.ledger.MarkRefund(context.Background(), payments.MarkRefundInput{
		PaymentID: p.ID, Bank: "Banistmo", Account: "1", AccountType: "CORRIENTE",
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestMarkRefund_PagoAgrupadoEsErrorDeEstado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := refundPayment(t, f)
	tr := f.transfer(t, "REF-120", "120")
	g := f.draft(t)
	_, err := f.groups.ConfirmGroup(ctx, payments.ConfirmGroupInput{
		GroupID: g.ID, Items: []payments.ConfirmItem{itemFor(p)}, References: []payments.ConfirmReference{refFor(tr, "120")},
	})
	require.NoError(t, err)

	err = f.ledger.MarkRefund(ctx, payments.MarkRefundInput{
		PaymentID: p.ID, Bank: "Banistmo", Account: "1", AccountType: "CORRIENTE",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestMarkRefund_PagoInexistente(t *testing.T) {
	f := newFixture(t)
	err := f.ledger.MarkRefund(context.Background(), payments.MarkRefundInput{
		PaymentID: "no-existe", Bank: "B", Account: "1", AccountType: "AHORROS",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConfirmRecurringPayment_SoloDesdePendienteConfirmacion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()
	p := &entity.PendingPayment{
		ID:           "pago-cron",
		ClientName:   "Cliente",
		PolicyNumber: "REC-1",
		Amount:       dec("30"),
		CarrierID:    carrierASSA,
		PaymentDate:  now,
		Type:         entity.PaymentTypeCarrierPayout,
		Status:       entity.PaymentStatusPendingConfirmation,
		Source:       entity.PaymentSourceRecurrence,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, f.store.Payments().Create(ctx, p))

	require.NoError(t, f.ledger.ConfirmRecurringPayment(ctx, p.ID, testUser))
	assert.Equal(t, entity.PaymentStatusPending, f.payment(t, p.ID).Status)

	err := f.ledger.ConfirmRecurringPayment(ctx, p.ID, testUser)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}
