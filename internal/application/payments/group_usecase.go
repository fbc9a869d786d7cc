package payments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Comisiones-api/internal/application/auditlog"
	"github.com/jhoicas/Comisiones-api/internal/domain"
	"github.com/jhoicas/Comisiones-api/internal/domain/allocation"
	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
	"github.com/jhoicas/Comisiones-api/internal/domain/repository"
	"github.com/jhoicas/Comisiones-api/internal/observability/metrics"
	"github.com/jhoicas/Comisiones-api/pkg/logger"
)

// GroupUseCase ciclo de vida de grupos de pago: DRAFT -> CONFIRMED -> POSTED,
// con descarte de borradores y liberación de grupos confirmados.
type GroupUseCase struct {
	txRunner  TxRunner
	groupRepo repository.PaymentGroupRepository
	log       *logger.Logger
}

// NewGroupUseCase construye el caso de uso.
func NewGroupUseCase(txRunner TxRunner, groupRepo repository.PaymentGroupRepository, log *logger.Logger) *GroupUseCase {
	return &GroupUseCase{txRunner: txRunner, groupRepo: groupRepo, log: log.Component("grupos")}
}

// ConfirmItem pago a incluir en el grupo.
type ConfirmItem struct {
	PendingPaymentID string
	CarrierID        string
	AmountApplied    decimal.Decimal
}

// ConfirmReference monto a tomar de una transferencia.
type ConfirmReference struct {
	BankTransferID string
	AmountUsed     decimal.Decimal
}

// ConfirmGroupInput entrada de confirm_group.
type ConfirmGroupInput struct {
	GroupID    string
	UserID     string
	Items      []ConfirmItem
	References []ConfirmReference
}

// GroupDetail grupo con sus ítems y referencias.
type GroupDetail struct {
	Group      *entity.PaymentGroup
	Items      []entity.PaymentGroupItem
	References []entity.PaymentGroupReference
}

// CreateGroup reserva un id de grupo en DRAFT. No toca pagos ni transferencias.
func (uc *GroupUseCase) CreateGroup(ctx context.Context, userID, notes string) (*entity.PaymentGroup, error) {
	now := time.Now()
	g := &entity.PaymentGroup{
		ID:          uuid.New().String(),
		Status:      entity.GroupStatusDraft,
		TotalAmount: decimal.Zero,
		Notes:       notes,
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := uc.txRunner.RunLedger(ctx, func(
		_ repository.PendingPaymentRepository,
		_ repository.BankTransferRepository,
		groupRepo repository.PaymentGroupRepository,
		auditRepo repository.AuditRepository,
	) error {
		if err := groupRepo.Create(ctx, g); err != nil {
			return err
		}
		return auditlog.Record(ctx, auditRepo, auditlog.ActionCreateGroup, auditlog.EntityGroup, g.ID, userID, nil)
	})
	metrics.IncGroupTransition("create", err)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// ConfirmGroup valida y asigna en una sola transacción: bloquea grupo, pagos y transferencias
// (en ese orden y por id), verifica que los pagos sigan PENDIENTE y que cada referencia quepa en
// el saldo, descuenta saldos, inserta ítems y referencias y pasa los pagos a AGRUPADO.
// Ante cualquier error no queda ningún cambio.
func (uc *GroupUseCase) ConfirmGroup(ctx context.Context, in ConfirmGroupInput) (*entity.PaymentGroup, error) {
	if in.GroupID == "" {
		return nil, domain.NewValidationError("group_id", "requerido")
	}
	items := make([]entity.PaymentGroupItem, len(in.Items))
	paymentIDs := make([]string, len(in.Items))
	for i, it := range in.Items {
		items[i] = entity.PaymentGroupItem{
			GroupID:          in.GroupID,
			PendingPaymentID: it.PendingPaymentID,
			CarrierID:        it.CarrierID,
			AmountApplied:    it.AmountApplied,
		}
		paymentIDs[i] = it.PendingPaymentID
	}
	refs := make([]entity.PaymentGroupReference, len(in.References))
	transferIDs := make([]string, len(in.References))
	for i, r := range in.References {
		refs[i] = entity.PaymentGroupReference{GroupID: in.GroupID, BankTransferID: r.BankTransferID, AmountUsed: r.AmountUsed}
		transferIDs[i] = r.BankTransferID
	}

	if err := allocation.ValidateRequest(items, refs); err != nil {
		metrics.IncGroupTransition("confirm", err)
		return nil, err
	}
	if err := allocation.CheckCoverage(items, refs); err != nil {
		metrics.IncGroupTransition("confirm", err)
		return nil, err
	}

	var confirmed *entity.PaymentGroup
	err := uc.txRunner.RunLedger(ctx, func(
		paymentRepo repository.PendingPaymentRepository,
		transferRepo repository.BankTransferRepository,
		groupRepo repository.PaymentGroupRepository,
		auditRepo repository.AuditRepository,
	) error {
		g, err := groupRepo.GetForUpdate(ctx, in.GroupID)
		if err != nil {
			return err
		}
		if g == nil {
			return domain.ErrNotFound
		}
		if g.Status != entity.GroupStatusDraft {
			return &domain.StateError{Entity: "grupo", ID: g.ID, Current: g.Status, Expected: entity.GroupStatusDraft}
		}

		lockedPayments, err := paymentRepo.LockByIDs(ctx, paymentIDs)
		if err != nil {
			return err
		}
		payments := make(map[string]*entity.PendingPayment, len(lockedPayments))
		for _, p := range lockedPayments {
			payments[p.ID] = p
		}
		if err := allocation.CheckPayments(items, payments); err != nil {
			return err
		}
		for i := range items {
			p := payments[items[i].PendingPaymentID]
			if items[i].CarrierID == "" {
				items[i].CarrierID = p.CarrierID
			} else if items[i].CarrierID != p.CarrierID {
				return domain.NewValidationError("carrier", "la aseguradora del ítem no coincide con la del pago "+p.ID)
			}
		}

		lockedTransfers, err := transferRepo.LockByIDs(ctx, transferIDs)
		if err != nil {
			return err
		}
		transfers := make(map[string]*entity.BankTransfer, len(lockedTransfers))
		for _, t := range lockedTransfers {
			transfers[t.ID] = t
		}
		if err := allocation.Consume(refs, transfers); err != nil {
			return err
		}
		for _, r := range refs {
			t := transfers[r.BankTransferID]
			if err := transferRepo.UpdateBalance(ctx, t.ID, t.RemainingAmount, t.Status); err != nil {
				return err
			}
		}

		if err := groupRepo.AddItems(ctx, items); err != nil {
			return err
		}
		if err := groupRepo.AddReferences(ctx, refs); err != nil {
			return err
		}
		groupID := g.ID
		if err := paymentRepo.SetStatus(ctx, paymentIDs, entity.PaymentStatusGrouped, &groupID); err != nil {
			return err
		}

		now := time.Now()
		g.Status = entity.GroupStatusConfirmed
		g.TotalAmount = allocation.TotalApplied(items)
		g.ConfirmedAt = &now
		if err := groupRepo.Update(ctx, g); err != nil {
			return err
		}
		confirmed = g
		return auditlog.Record(ctx, auditRepo, auditlog.ActionConfirmGroup, auditlog.EntityGroup, g.ID, in.UserID, map[string]any{
			"items":      len(items),
			"references": len(refs),
			"total":      g.TotalAmount.String(),
			"allocated":  allocation.TotalUsed(refs).String(),
		})
	})
	metrics.IncGroupTransition("confirm", err)
	if err != nil {
		uc.log.Warn().Err(err).Str("group_id", in.GroupID).Msg("confirmación de grupo rechazada")
		return nil, err
	}
	allocated, _ := allocation.TotalUsed(refs).Float64()
	metrics.AddAllocated(allocated)
	uc.log.Info().
		Str("group_id", confirmed.ID).
		Int("items", len(items)).
		Str("total", confirmed.TotalAmount.StringFixed(2)).
		Msg("grupo confirmado")
	return confirmed, nil
}

// PostGroup pasa los pagos del grupo de AGRUPADO a PAGADO y el grupo a POSTED.
// Un grupo ya POSTED devuelve éxito sin cambios.
func (uc *GroupUseCase) PostGroup(ctx context.Context, groupID, userID string) (*entity.PaymentGroup, error) {
	if groupID == "" {
		return nil, domain.NewValidationError("group_id", "requerido")
	}
	var posted *entity.PaymentGroup
	err := uc.txRunner.RunLedger(ctx, func(
		paymentRepo repository.PendingPaymentRepository,
		_ repository.BankTransferRepository,
		groupRepo repository.PaymentGroupRepository,
		auditRepo repository.AuditRepository,
	) error {
		g, err := groupRepo.GetForUpdate(ctx, groupID)
		if err != nil {
			return err
		}
		if g == nil {
			return domain.ErrNotFound
		}
		if g.Status == entity.GroupStatusPosted {
			posted = g
			return nil
		}
		if g.Status != entity.GroupStatusConfirmed {
			return &domain.StateError{Entity: "grupo", ID: g.ID, Current: g.Status, Expected: entity.GroupStatusConfirmed}
		}

		paymentIDs, err := uc.lockGroupPayments(ctx, paymentRepo, groupRepo, g.ID)
		if err != nil {
			return err
		}
		if err := paymentRepo.SetStatus(ctx, paymentIDs, entity.PaymentStatusPaid, &g.ID); err != nil {
			return err
		}
		now := time.Now()
		g.Status = entity.GroupStatusPosted
		g.PostedAt = &now
		if err := groupRepo.Update(ctx, g); err != nil {
			return err
		}
		posted = g
		return auditlog.Record(ctx, auditRepo, auditlog.ActionPostGroup, auditlog.EntityGroup, g.ID, userID,
			map[string]any{"payments": len(paymentIDs)})
	})
	metrics.IncGroupTransition("post", err)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("group_id", posted.ID).Msg("grupo posteado")
	return posted, nil
}

// ReleaseGroup cierra sin postear un grupo CONFIRMED: los pagos vuelven a PENDIENTE, cada
// transferencia recupera el monto usado (y se reabre) y el grupo vuelve a DRAFT sin ítems.
func (uc *GroupUseCase) ReleaseGroup(ctx context.Context, groupID, userID, reason string) (*entity.PaymentGroup, error) {
	if groupID == "" {
		return nil, domain.NewValidationError("group_id", "requerido")
	}
	var released *entity.PaymentGroup
	err := uc.txRunner.RunLedger(ctx, func(
		paymentRepo repository.PendingPaymentRepository,
		transferRepo repository.BankTransferRepository,
		groupRepo repository.PaymentGroupRepository,
		auditRepo repository.AuditRepository,
	) error {
		g, err := groupRepo.GetForUpdate(ctx, groupID)
		if err != nil {
			return err
		}
		if g == nil {
			return domain.ErrNotFound
		}
		if g.Status != entity.GroupStatusConfirmed {
			return &domain.StateError{Entity: "grupo", ID: g.ID, Current: g.Status, Expected: entity.GroupStatusConfirmed}
		}

		paymentIDs, err := uc.lockGroupPayments(ctx, paymentRepo, groupRepo, g.ID)
		if err != nil {
			return err
		}
		refs, err := groupRepo.ListReferences(ctx, g.ID)
		if err != nil {
			return err
		}
		transferIDs := make([]string, len(refs))
		for i, r := range refs {
			transferIDs[i] = r.BankTransferID
		}
		lockedTransfers, err := transferRepo.LockByIDs(ctx, transferIDs)
		if err != nil {
			return err
		}
		transfers := make(map[string]*entity.BankTransfer, len(lockedTransfers))
		for _, t := range lockedTransfers {
			transfers[t.ID] = t
		}
		if err := allocation.Restore(refs, transfers); err != nil {
			return err
		}
		for _, t := range lockedTransfers {
			if err := transferRepo.UpdateBalance(ctx, t.ID, t.RemainingAmount, t.Status); err != nil {
				return err
			}
		}

		if err := paymentRepo.SetStatus(ctx, paymentIDs, entity.PaymentStatusPending, nil); err != nil {
			return err
		}
		if err := groupRepo.DeleteAllocations(ctx, g.ID); err != nil {
			return err
		}
		g.Status = entity.GroupStatusDraft
		g.TotalAmount = decimal.Zero
		g.ConfirmedAt = nil
		if err := groupRepo.Update(ctx, g); err != nil {
			return err
		}
		released = g
		return auditlog.Record(ctx, auditRepo, auditlog.ActionReleaseGroup, auditlog.EntityGroup, g.ID, userID,
			map[string]any{"payments": len(paymentIDs), "references": len(refs), "reason": reason})
	})
	metrics.IncGroupTransition("release", err)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("group_id", released.ID).Msg("grupo liberado sin postear")
	return released, nil
}

// DiscardGroup descarta un grupo DRAFT. No tiene efectos sobre pagos ni transferencias.
func (uc *GroupUseCase) DiscardGroup(ctx context.Context, groupID, userID string) error {
	err := uc.txRunner.RunLedger(ctx, func(
		_ repository.PendingPaymentRepository,
		_ repository.BankTransferRepository,
		groupRepo repository.PaymentGroupRepository,
		auditRepo repository.AuditRepository,
	) error {
		g, err := groupRepo.GetForUpdate(ctx, groupID)
		if err != nil {
			return err
		}
		if g == nil {
			return domain.ErrNotFound
		}
		if g.Status != entity.GroupStatusDraft {
			return &domain.StateError{Entity: "grupo", ID: g.ID, Current: g.Status, Expected: entity.GroupStatusDraft}
		}
		g.Status = entity.GroupStatusDiscarded
		if err := groupRepo.Update(ctx, g); err != nil {
			return err
		}
		return auditlog.Record(ctx, auditRepo, auditlog.ActionDiscardGroup, auditlog.EntityGroup, g.ID, userID, nil)
	})
	metrics.IncGroupTransition("discard", err)
	return err
}

// GetGroup devuelve el grupo con ítems y referencias.
func (uc *GroupUseCase) GetGroup(ctx context.Context, id string) (*GroupDetail, error) {
	g, err := uc.groupRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, domain.ErrNotFound
	}
	items, err := uc.groupRepo.ListItems(ctx, id)
	if err != nil {
		return nil, err
	}
	refs, err := uc.groupRepo.ListReferences(ctx, id)
	if err != nil {
		return nil, err
	}
	return &GroupDetail{Group: g, Items: items, References: refs}, nil
}

// ListGroups lista grupos por estado.
func (uc *GroupUseCase) ListGroups(ctx context.Context, f repository.GroupFilter) ([]*entity.PaymentGroup, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	return uc.groupRepo.List(ctx, f)
}

// lockGroupPayments bloquea los pagos del grupo y verifica que sigan AGRUPADO en él.
func (uc *GroupUseCase) lockGroupPayments(
	ctx context.Context,
	paymentRepo repository.PendingPaymentRepository,
	groupRepo repository.PaymentGroupRepository,
	groupID string,
) ([]string, error) {
	items, err := groupRepo.ListItems(ctx, groupID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.PendingPaymentID
	}
	locked, err := paymentRepo.LockByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(locked) != len(ids) {
		return nil, &domain.ConflictError{Entity: "grupo", ID: groupID, Reason: "faltan pagos del grupo"}
	}
	for _, p := range locked {
		if p.Status != entity.PaymentStatusGrouped || p.GroupID == nil || *p.GroupID != groupID {
			return nil, &domain.ConflictError{Entity: "pago", ID: p.ID, Reason: "no está AGRUPADO en el grupo " + groupID}
		}
	}
	return ids, nil
}
