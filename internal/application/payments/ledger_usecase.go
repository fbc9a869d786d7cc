package payments

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Comisiones-api/internal/application/auditlog"
	"github.com/jhoicas/Comisiones-api/internal/domain"
	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
	"github.com/jhoicas/Comisiones-api/internal/domain/repository"
	"github.com/jhoicas/Comisiones-api/pkg/logger"
)

// LedgerUseCase operaciones sobre pagos pendientes individuales.
type LedgerUseCase struct {
	txRunner    TxRunner
	paymentRepo repository.PendingPaymentRepository
	log         *logger.Logger
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(txRunner TxRunner, paymentRepo repository.PendingPaymentRepository, log *logger.Logger) *LedgerUseCase {
	return &LedgerUseCase{txRunner: txRunner, paymentRepo: paymentRepo, log: log.Component("pagos")}
}

// CreatePendingInput alta de una obligación de pago o devolución.
type CreatePendingInput struct {
	ClientName     string
	PolicyNumber   string
	CarrierID      string
	Amount         decimal.Decimal
	PaymentDate    time.Time
	Type           string
	InstallmentNum *int
	Notes          string
	UserID         string
}

// CreatePending crea el pago o devuelve el existente si ya hay uno equivalente
// (póliza, aseguradora, fecha, cuota). created=false en el segundo caso.
func (uc *LedgerUseCase) CreatePending(ctx context.Context, in CreatePendingInput) (*entity.PendingPayment, bool, error) {
	in.ClientName = strings.TrimSpace(in.ClientName)
	in.PolicyNumber = strings.TrimSpace(in.PolicyNumber)
	switch {
	case in.ClientName == "":
		return nil, false, domain.NewValidationError("client_name", "requerido")
	case in.PolicyNumber == "":
		return nil, false, domain.NewValidationError("policy_number", "requerido")
	case in.CarrierID == "":
		return nil, false, domain.NewValidationError("carrier_id", "requerido")
	case !in.Amount.IsPositive():
		return nil, false, domain.NewValidationError("amount", "debe ser mayor que cero")
	case in.PaymentDate.IsZero():
		return nil, false, domain.NewValidationError("payment_date", "requerido")
	}
	if in.Type == "" {
		in.Type = entity.PaymentTypeCarrierPayout
	}
	if in.Type != entity.PaymentTypeCarrierPayout && in.Type != entity.PaymentTypeRefundToClient {
		return nil, false, domain.NewValidationError("type", "tipo de pago desconocido")
	}

	var (
		result  *entity.PendingPayment
		created bool
	)
	err := uc.txRunner.RunLedger(ctx, func(
		paymentRepo repository.PendingPaymentRepository,
		_ repository.BankTransferRepository,
		_ repository.PaymentGroupRepository,
		auditRepo repository.AuditRepository,
	) error {
		existing, err := paymentRepo.FindDuplicate(ctx, in.PolicyNumber, in.CarrierID, in.PaymentDate, in.InstallmentNum)
		if err != nil {
			return err
		}
		if existing != nil {
			result = existing
			return nil
		}
		now := time.Now()
		p := &entity.PendingPayment{
			ID:             uuid.New().String(),
			ClientName:     in.ClientName,
			PolicyNumber:   in.PolicyNumber,
			Amount:         in.Amount,
			CarrierID:      in.CarrierID,
			PaymentDate:    in.PaymentDate,
			Type:           in.Type,
			Status:         entity.PaymentStatusPending,
			Source:         entity.PaymentSourceManual,
			InstallmentNum: in.InstallmentNum,
			IsRefund:       in.Type == entity.PaymentTypeRefundToClient,
			Notes:          in.Notes,
			CreatedBy:      in.UserID,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := paymentRepo.Create(ctx, p); err != nil {
			return err
		}
		result, created = p, true
		return auditlog.Record(ctx, auditRepo, auditlog.ActionCreatePending, auditlog.EntityPayment, p.ID, in.UserID,
			map[string]any{"policy": p.PolicyNumber, "carrier_id": p.CarrierID, "amount": p.Amount.String(), "type": p.Type})
	})
	if err != nil {
		return nil, false, err
	}
	if created {
		uc.log.Info().
			Str("payment_id", result.ID).
			Str("policy", result.PolicyNumber).
			Bool("refund", result.IsRefund).
			Msg("pago pendiente registrado")
	}
	return result, created, nil
}

// MarkRefundInput datos bancarios de una devolución.
type MarkRefundInput struct {
	PaymentID   string
	Bank        string
	Account     string
	AccountType string
	Reason      string
	UserID      string
}

// MarkRefund anota los datos de devolución una sola vez mientras el pago sigue PENDIENTE.
func (uc *LedgerUseCase) MarkRefund(ctx context.Context, in MarkRefundInput) error {
	switch {
	case in.PaymentID == "":
		return domain.NewValidationError("payment_id", "requerido")
	case strings.TrimSpace(in.Bank) == "":
		return domain.NewValidationError("refund_bank", "requerido")
	case strings.TrimSpace(in.Account) == "":
		return domain.NewValidationError("refund_account", "requerido")
	case strings.TrimSpace(in.AccountType) == "":
		return domain.NewValidationError("refund_account_type", "requerido")
	}
	return uc.txRunner.RunLedger(ctx, func(
		paymentRepo repository.PendingPaymentRepository,
		_ repository.BankTransferRepository,
		_ repository.PaymentGroupRepository,
		auditRepo repository.AuditRepository,
	) error {
		locked, err := paymentRepo.LockByIDs(ctx, []string{in.PaymentID})
		if err != nil {
			return err
		}
		if len(locked) == 0 {
			return domain.ErrNotFound
		}
		p := locked[0]
		if p.Status != entity.PaymentStatusPending {
			return &domain.StateError{Entity: "pago", ID: p.ID, Current: p.Status, Expected: entity.PaymentStatusPending}
		}
		if !p.IsRefund {
			return &domain.ConflictError{Entity: "pago", ID: p.ID, Reason: "no es una devolución"}
		}
		if p.Refund != nil {
			return &domain.ConflictError{Entity: "pago", ID: p.ID, Reason: "los datos de devolución ya fueron registrados"}
		}
		info := entity.RefundInfo{
			Bank:        strings.TrimSpace(in.Bank),
			Account:     strings.TrimSpace(in.Account),
			AccountType: strings.TrimSpace(in.AccountType),
			Reason:      strings.TrimSpace(in.Reason),
		}
		if err := paymentRepo.SetRefund(ctx, p.ID, info); err != nil {
			return err
		}
		return auditlog.Record(ctx, auditRepo, auditlog.ActionMarkRefund, auditlog.EntityPayment, p.ID, in.UserID,
			map[string]any{"bank": info.Bank, "account_type": info.AccountType, "reason": info.Reason})
	})
}

// ConfirmRecurringPayment pasa una cuota generada por el proceso programado a PENDIENTE.
func (uc *LedgerUseCase) ConfirmRecurringPayment(ctx context.Context, paymentID, userID string) error {
	if paymentID == "" {
		return domain.NewValidationError("payment_id", "requerido")
	}
	return uc.txRunner.RunLedger(ctx, func(
		paymentRepo repository.PendingPaymentRepository,
		_ repository.BankTransferRepository,
		_ repository.PaymentGroupRepository,
		auditRepo repository.AuditRepository,
	) error {
		locked, err := paymentRepo.LockByIDs(ctx, []string{paymentID})
		if err != nil {
			return err
		}
		if len(locked) == 0 {
			return domain.ErrNotFound
		}
		p := locked[0]
		if p.Status != entity.PaymentStatusPendingConfirmation {
			return &domain.StateError{Entity: "pago", ID: p.ID, Current: p.Status, Expected: entity.PaymentStatusPendingConfirmation}
		}
		if err := paymentRepo.SetStatus(ctx, []string{p.ID}, entity.PaymentStatusPending, nil); err != nil {
			return err
		}
		return auditlog.Record(ctx, auditRepo, auditlog.ActionConfirmRecurring, auditlog.EntityPayment, p.ID, userID, nil)
	})
}

// GetPayment obtiene un pago por id.
func (uc *LedgerUseCase) GetPayment(ctx context.Context, id string) (*entity.PendingPayment, error) {
	p, err := uc.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// ListPending listado filtrado más el conteo por estado.
func (uc *LedgerUseCase) ListPending(ctx context.Context, f repository.PaymentFilter) ([]*entity.PendingPayment, map[string]int, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	list, err := uc.paymentRepo.List(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	summary, err := uc.paymentRepo.CountByStatus(ctx)
	if err != nil {
		return nil, nil, err
	}
	return list, summary, nil
}
