package allocation

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Comisiones-api/internal/domain"
	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
)

// TotalApplied suma los montos aplicados de los ítems.
func TotalApplied(items []entity.PaymentGroupItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.AmountApplied)
	}
	return total
}

// TotalUsed suma los montos usados de las referencias.
func TotalUsed(refs []entity.PaymentGroupReference) decimal.Decimal {
	total := decimal.Zero
	for _, r := range refs {
		total = total.Add(r.AmountUsed)
	}
	return total
}

// ValidateRequest reglas estructurales de una confirmación: ítems y referencias no vacíos,
// montos positivos y sin pagos ni transferencias repetidos.
func ValidateRequest(items []entity.PaymentGroupItem, refs []entity.PaymentGroupReference) error {
	if len(items) == 0 {
		return domain.NewValidationError("items", "el grupo no tiene pagos")
	}
	if len(refs) == 0 {
		return domain.NewValidationError("references", "el grupo no tiene referencias bancarias")
	}
	seenPayments := make(map[string]bool, len(items))
	for _, it := range items {
		if it.PendingPaymentID == "" {
			return domain.NewValidationError("pending_payment_id", "requerido")
		}
		if seenPayments[it.PendingPaymentID] {
			return domain.NewValidationError("pending_payment_id", "pago repetido "+it.PendingPaymentID)
		}
		seenPayments[it.PendingPaymentID] = true
		if !it.AmountApplied.IsPositive() {
			return domain.NewValidationError("amount_applied", "debe ser mayor que cero")
		}
	}
	seenTransfers := make(map[string]bool, len(refs))
	for _, r := range refs {
		if r.BankTransferID == "" {
			return domain.NewValidationError("bank_transfer_id", "requerido")
		}
		if seenTransfers[r.BankTransferID] {
			return domain.NewValidationError("bank_transfer_id", "transferencia repetida "+r.BankTransferID)
		}
		seenTransfers[r.BankTransferID] = true
		if !r.AmountUsed.IsPositive() {
			return domain.NewValidationError("amount_used", "debe ser mayor que cero")
		}
	}
	return nil
}

// CheckCoverage exige sum(referencias) >= sum(ítems). El excedente queda en la transferencia.
func CheckCoverage(items []entity.PaymentGroupItem, refs []entity.PaymentGroupReference) error {
	required := TotalApplied(items)
	allocated := TotalUsed(refs)
	if allocated.LessThan(required) {
		return &domain.InsufficientFundsError{Required: required, Allocated: allocated}
	}
	return nil
}

// CheckPayments verifica que cada pago exista, siga PENDIENTE y que el monto aplicado
// coincida con el monto del pago.
func CheckPayments(items []entity.PaymentGroupItem, payments map[string]*entity.PendingPayment) error {
	for _, it := range items {
		p, ok := payments[it.PendingPaymentID]
		if !ok || p == nil {
			return &domain.ConflictError{Entity: "pago", ID: it.PendingPaymentID, Reason: "no existe"}
		}
		if !p.Selectable() {
			return &domain.ConflictError{Entity: "pago", ID: p.ID, Reason: "ya no está PENDIENTE (" + p.Status + ")"}
		}
		if !p.Amount.Equal(it.AmountApplied) {
			return &domain.ConflictError{Entity: "pago", ID: p.ID,
				Reason: "el monto aplicado " + it.AmountApplied.StringFixed(2) + " no coincide con " + p.Amount.StringFixed(2)}
		}
	}
	return nil
}

// Consume descuenta las referencias del saldo de cada transferencia y cierra las que quedan en cero.
// Valida todo antes de modificar: si una referencia excede el saldo no se toca ninguna transferencia.
func Consume(refs []entity.PaymentGroupReference, transfers map[string]*entity.BankTransfer) error {
	for _, r := range refs {
		t, ok := transfers[r.BankTransferID]
		if !ok || t == nil {
			return &domain.ConflictError{Entity: "transferencia", ID: r.BankTransferID, Reason: "no existe"}
		}
		if t.Status != entity.TransferStatusOpen {
			return &domain.ConflictError{Entity: "transferencia", ID: t.ID, Reason: "está cerrada"}
		}
		if r.AmountUsed.GreaterThan(t.RemainingAmount) {
			return &domain.ConflictError{Entity: "transferencia", ID: t.ID,
				Reason: "saldo disponible " + t.RemainingAmount.StringFixed(2) + " menor que " + r.AmountUsed.StringFixed(2)}
		}
	}
	for _, r := range refs {
		t := transfers[r.BankTransferID]
		t.RemainingAmount = t.RemainingAmount.Sub(r.AmountUsed)
		if t.RemainingAmount.IsZero() {
			t.Status = entity.TransferStatusClosed
		}
	}
	return nil
}

// Restore devuelve a cada transferencia el monto usado por un grupo liberado y la reabre.
func Restore(refs []entity.PaymentGroupReference, transfers map[string]*entity.BankTransfer) error {
	for _, r := range refs {
		t, ok := transfers[r.BankTransferID]
		if !ok || t == nil {
			return &domain.ConflictError{Entity: "transferencia", ID: r.BankTransferID, Reason: "no existe"}
		}
		restored := t.RemainingAmount.Add(r.AmountUsed)
		if restored.GreaterThan(t.Amount) {
			return &domain.ConflictError{Entity: "transferencia", ID: t.ID, Reason: "el saldo restaurado excede el monto original"}
		}
		t.RemainingAmount = restored
		t.Status = entity.TransferStatusOpen
	}
	return nil
}
