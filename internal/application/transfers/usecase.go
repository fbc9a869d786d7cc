package transfers

import (
	"context"
	"errors"
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

// UseCase pool de transferencias bancarias disponibles para asignar a grupos.
type UseCase struct {
	txRunner     TxRunner
	transferRepo repository.BankTransferRepository
	log          *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(txRunner TxRunner, transferRepo repository.BankTransferRepository, log *logger.Logger) *UseCase {
	return &UseCase{txRunner: txRunner, transferRepo: transferRepo, log: log.Component("transferencias")}
}

// ImportInput transferencia recibida según el extracto bancario.
type ImportInput struct {
	BankName        string
	ReferenceNumber string
	Amount          decimal.Decimal
	TransferDate    time.Time
	Notes           string
	UserID          string
}

// TransferDetail transferencia con los grupos que consumen su saldo.
type TransferDetail struct {
	Transfer *entity.BankTransfer
	Usages   []entity.TransferUsage
}

// ImportTransfer registra una transferencia OPEN con saldo igual al monto.
// La pareja banco + referencia es única: repetirla devuelve domain.ErrDuplicate.
func (uc *UseCase) ImportTransfer(ctx context.Context, in ImportInput) (*entity.BankTransfer, error) {
	in.BankName = strings.TrimSpace(in.BankName)
	in.ReferenceNumber = strings.TrimSpace(in.ReferenceNumber)
	switch {
	case in.BankName == "":
		return nil, domain.NewValidationError("bank_name", "requerido")
	case in.ReferenceNumber == "":
		return nil, domain.NewValidationError("reference_number", "requerido")
	case !in.Amount.IsPositive():
		return nil, domain.NewValidationError("amount", "debe ser mayor que cero")
	case in.TransferDate.IsZero():
		return nil, domain.NewValidationError("transfer_date", "requerido")
	}

	now := time.Now()
	t := &entity.BankTransfer{
		ID:              uuid.New().String(),
		BankName:        in.BankName,
		ReferenceNumber: in.ReferenceNumber,
		Amount:          in.Amount,
		RemainingAmount: in.Amount,
		TransferDate:    in.TransferDate,
		Status:          entity.TransferStatusOpen,
		Notes:           in.Notes,
		CreatedBy:       in.UserID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	err := uc.txRunner.RunLedger(ctx, func(
		_ repository.PendingPaymentRepository,
		transferRepo repository.BankTransferRepository,
		_ repository.PaymentGroupRepository,
		auditRepo repository.AuditRepository,
	) error {
		existing, err := transferRepo.GetByBankAndReference(ctx, t.BankName, t.ReferenceNumber)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicate
		}
		if err := transferRepo.Create(ctx, t); err != nil {
			return err
		}
		return auditlog.Record(ctx, auditRepo, auditlog.ActionImportTransfer, auditlog.EntityTransfer, t.ID, in.UserID,
			map[string]any{"bank": t.BankName, "reference": t.ReferenceNumber, "amount": t.Amount.String()})
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			uc.log.Warn().Str("bank", t.BankName).Str("reference", t.ReferenceNumber).Msg("transferencia duplicada")
		}
		return nil, err
	}
	uc.log.Info().
		Str("transfer_id", t.ID).
		Str("bank", t.BankName).
		Str("amount", t.Amount.StringFixed(2)).
		Msg("transferencia registrada")
	return t, nil
}

// CloseTransfer cierra manualmente una transferencia; el saldo remanente deja de estar disponible.
func (uc *UseCase) CloseTransfer(ctx context.Context, id, userID string) (*entity.BankTransfer, error) {
	var closed *entity.BankTransfer
	err := uc.txRunner.RunLedger(ctx, func(
		_ repository.PendingPaymentRepository,
		transferRepo repository.BankTransferRepository,
		_ repository.PaymentGroupRepository,
		auditRepo repository.AuditRepository,
	) error {
		locked, err := transferRepo.LockByIDs(ctx, []string{id})
		if err != nil {
			return err
		}
		if len(locked) == 0 {
			return domain.ErrNotFound
		}
		t := locked[0]
		if t.Status != entity.TransferStatusOpen {
			return &domain.StateError{Entity: "transferencia", ID: t.ID, Current: t.Status, Expected: entity.TransferStatusOpen}
		}
		t.Status = entity.TransferStatusClosed
		if err := transferRepo.UpdateBalance(ctx, t.ID, t.RemainingAmount, t.Status); err != nil {
			return err
		}
		closed = t
		return auditlog.Record(ctx, auditRepo, auditlog.ActionCloseTransfer, auditlog.EntityTransfer, t.ID, userID,
			map[string]any{"remaining": t.RemainingAmount.String()})
	})
	if err != nil {
		return nil, err
	}
	return closed, nil
}

// GetTransfer devuelve la transferencia y sus usos.
func (uc *UseCase) GetTransfer(ctx context.Context, id string) (*TransferDetail, error) {
	t, err := uc.transferRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	usages, err := uc.transferRepo.ListUsages(ctx, id)
	if err != nil {
		return nil, err
	}
	return &TransferDetail{Transfer: t, Usages: usages}, nil
}

// ListTransfers lista transferencias con sus usos por grupo.
func (uc *UseCase) ListTransfers(ctx context.Context, f repository.TransferFilter) ([]TransferDetail, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	list, err := uc.transferRepo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]TransferDetail, 0, len(list))
	for _, t := range list {
		usages, err := uc.transferRepo.ListUsages(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, TransferDetail{Transfer: t, Usages: usages})
	}
	return out, nil
}
