package allocation_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Comisiones-api/internal/domain"
	"github.com/jhoicas/Comisiones-api/internal/domain/allocation"
	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func items(amounts ...int64) []entity.PaymentGroupItem {
	out := make([]entity.PaymentGroupItem, len(amounts))
	for i, a := range amounts {
		out[i] = entity.PaymentGroupItem{PendingPaymentID: string(rune('a' + i)), AmountApplied: dec(a)}
	}
	return out
}

func transfer(id string, remaining int64) *entity.BankTransfer {
	return &entity.BankTransfer{ID: id, Amount: dec(remaining), RemainingAmount: dec(remaining), Status: entity.TransferStatusOpen}
}

func TestCheckCoverage_Insuficiente(t *testing.T) {
	refs := []entity.PaymentGroupReference{{BankTransferID: "t1", AmountUsed: dec(150)}}
	err := allocation.CheckCoverage(items(100, 100), refs)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientFunds))

	var ife *domain.InsufficientFundsError
	require.True(t, errors.As(err, &ife))
	assert.True(t, dec(200).Equal(ife.Required))
	assert.True(t, dec(150).Equal(ife.Allocated))
}

func TestCheckCoverage_ExcedentePermitido(t *testing.T) {
	refs := []entity.PaymentGroupReference{{BankTransferID: "t1", AmountUsed: dec(250)}}
	assert.NoError(t, allocation.CheckCoverage(items(100, 100), refs))
}

func TestConsume_CierraAlLlegarACero(t *testing.T) {
	transfers := map[string]*entity.BankTransfer{"t1": transfer("t1", 200)}
	err := allocation.Consume([]entity.PaymentGroupReference{{BankTransferID: "t1", AmountUsed: dec(200)}}, transfers)
	require.NoError(t, err)
	assert.True(t, transfers["t1"].RemainingAmount.IsZero())
	assert.Equal(t, entity.TransferStatusClosed, transfers["t1"].Status)
}

func TestConsume_TodoONada(t *testing.T) {
	transfers := map[string]*entity.BankTransfer{"t1": transfer("t1", 100), "t2": transfer("t2", 50)}
	refs := []entity.PaymentGroupReference{
		{BankTransferID: "t1", AmountUsed: dec(100)},
		{BankTransferID: "t2", AmountUsed: dec(80)},
	}
	err := allocation.Consume(refs, transfers)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.True(t, dec(100).Equal(transfers["t1"].RemainingAmount), "t1 no debe descontarse si t2 falla")
	assert.Equal(t, entity.TransferStatusOpen, transfers["t1"].Status)
}

func TestRestore_ReabreTransferencia(t *testing.T) {
	tr := transfer("t1", 100)
	tr.RemainingAmount = decimal.Zero
	tr.Status = entity.TransferStatusClosed
	transfers := map[string]*entity.BankTransfer{"t1": tr}

	err := allocation.Restore([]entity.PaymentGroupReference{{BankTransferID: "t1", AmountUsed: dec(100)}}, transfers)
	require.NoError(t, err)
	assert.True(t, dec(100).Equal(tr.RemainingAmount))
	assert.Equal(t, entity.TransferStatusOpen, tr.Status)
}

func TestCheckPayments_PagoYaAgrupado(t *testing.T) {
	gid := "g0"
	payments := map[string]*entity.PendingPayment{
		"a": {ID: "a", Amount: dec(100), Status: entity.PaymentStatusGrouped, GroupID: &gid},
	}
	err := allocation.CheckPayments(items(100), payments)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestValidateRequest_PagoRepetido(t *testing.T) {
	its := []entity.PaymentGroupItem{
		{PendingPaymentID: "a", AmountApplied: dec(10)},
		{PendingPaymentID: "a", AmountApplied: dec(10)},
	}
	err := allocation.ValidateRequest(its, []entity.PaymentGroupReference{{BankTransferID: "t1", AmountUsed: dec(20)}})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}
