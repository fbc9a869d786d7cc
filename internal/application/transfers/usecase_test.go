package transfers_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Comisiones-api/internal/application/payments"
	"github.com/jhoicas/Comisiones-api/internal/application/transfers"
	"github.com/jhoicas/Comisiones-api/internal/domain"
	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
	"github.com/jhoicas/Comisiones-api/internal/domain/repository"
	"github.com/jhoicas/Comisiones-api/internal/infrastructure/memory"
	"github.com/jhoicas/Comisiones-api/pkg/logger"
)

const testUser = "00000000-0000-0000-0000-0000000000bb"

func newTransfers(t *testing.T) (*transfers.UseCase, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	return transfers.NewUseCase(store.TxRunner(), store.Transfers(), logger.Nop()), store
}

func importInput(ref, amount string) transfers.ImportInput {
	return transfers.ImportInput{
		BankName:        "Banco General",
		ReferenceNumber: ref,
		Amount:          decimal.RequireFromString(amount),
		TransferDate:    time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC),
		UserID:          testUser,
	}
}

func TestImportTransfer_QuedaAbiertaConSaldoCompleto(t *testing.T) {
	uc, store := newTransfers(t)
	ctx := context.Background()

	tr, err := uc.ImportTransfer(ctx, importInput("ACH-0001", "1500.75"))
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusOpen, tr.Status)
	assert.True(t, tr.RemainingAmount.Equal(tr.Amount))

	entries, err := store.Audit().ListByEntity(ctx, "transfer", tr.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "import_transfer", entries[0].Action)
}

func TestImportTransfer_ReferenciaRepetidaEsDuplicado(t *testing.T) {
	uc, _ := newTransfers(t)
	ctx := context.Background()
	_, err := uc.ImportTransfer(ctx, importInput("ACH-0001", "100"))
	require.NoError(t, err)

	_, err = uc.ImportTransfer(ctx, importInput(" ACH-0001 ", "250"))
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	list, err := uc.ListTransfers(ctx, repository.TransferFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestImportTransfer_Validaciones(t *testing.T) {
	uc, _ := newTransfers(t)
	in := importInput("", "100")
	_, err := uc.ImportTransfer(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	in = importInput("ACH-1", "0")
	_, err = uc.ImportTransfer(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestListTransfers_MuestraUsosPorGrupo(t *testing.T) {
	uc, store := newTransfers(t)
	ctx := context.Background()
	store.AddCarrier(entity.Carrier{ID: "c1", Key: "ASSA", Name: "ASSA", Active: true})
	tr, err := uc.ImportTransfer(ctx, importInput("ACH-9", "300"))
	require.NoError(t, err)

	ledger := payments.NewLedgerUseCase(store.TxRunner(), store.Payments(), logger.Nop())
	groups := payments.NewGroupUseCase(store.TxRunner(), store.Groups(), logger.Nop())
	p, _, err := ledger.CreatePending(ctx, payments.CreatePendingInput{
		ClientName: "Cliente", PolicyNumber: "P-1", CarrierID: "c1",
		Amount: decimal.NewFromInt(120), PaymentDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	g, err := groups.CreateGroup(ctx, testUser, "")
	require.NoError(t, err)
	_, err = groups.ConfirmGroup(ctx, payments.ConfirmGroupInput{
		GroupID:    g.ID,
		Items:      []payments.ConfirmItem{{PendingPaymentID: p.ID, AmountApplied: p.Amount}},
		References: []payments.ConfirmReference{{BankTransferID: tr.ID, AmountUsed: decimal.NewFromInt(120)}},
	})
	require.NoError(t, err)

	detail, err := uc.GetTransfer(ctx, tr.ID)
	require.NoError(t, err)
	assert.True(t, detail.Transfer.RemainingAmount.Equal(decimal.NewFromInt(180)))
	require.Len(t, detail.Usages, 1)
	assert.Equal(t, g.ID, detail.Usages[0].GroupID)
	assert.Equal(t, entity.GroupStatusConfirmed, detail.Usages[0].GroupStatus)
	assert.True(t, detail.Usages[0].AmountUsed.Equal(decimal.NewFromInt(120)))

	open, err := uc.ListTransfers(ctx, repository.TransferFilter{Status: entity.TransferStatusOpen})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Len(t, open[0].Usages, 1)
}

func TestCloseTransfer(t *testing.T) {
	uc, _ := newTransfers(t)
	ctx := context.Background()
	tr, err := uc.ImportTransfer(ctx, importInput("ACH-2", "50"))
	require.NoError(t, err)

	closed, err := uc.CloseTransfer(ctx, tr.ID, testUser)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusClosed, closed.Status)

	_, err = uc.CloseTransfer(ctx, tr.ID, testUser)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = uc.CloseTransfer(ctx, "no-existe", testUser)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
