package auditlog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
	"github.com/jhoicas/Comisiones-api/internal/domain/repository"
)

// Acciones registradas en la bitácora.
const (
	ActionCreatePending     = "create_pending"
	ActionMarkRefund        = "mark_refund"
	ActionConfirmRecurring  = "confirm_recurring_payment"
	ActionCreateGroup       = "create_group"
	ActionConfirmGroup      = "confirm_group"
	ActionPostGroup         = "post_group"
	ActionReleaseGroup      = "release_group"
	ActionDiscardGroup      = "discard_group"
	ActionImportTransfer    = "import_transfer"
	ActionCloseTransfer     = "close_transfer"
	ActionCreateRecurrence  = "create_recurrence"
	ActionUpdateRecurrence  = "update_recurrence"
	ActionCancelRecurrence  = "cancel_recurrence"
	ActionMaterializeCuota  = "materialize_installment"
)

// Tipos de entidad auditada.
const (
	EntityPayment    = "payment"
	EntityGroup      = "group"
	EntityTransfer   = "transfer"
	EntityRecurrence = "recurrence"
)

// Record agrega una entrada a la bitácora con el repositorio de la transacción en curso.
func Record(ctx context.Context, repo repository.AuditRepository, action, entityType, entityID, userID string, detail map[string]any) error {
	e := &entity.AuditEntry{
		ID:         uuid.New().String(),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		UserID:     userID,
		Detail:     detail,
		CreatedAt:  time.Now(),
	}
	if err := repo.Append(ctx, e); err != nil {
		return fmt.Errorf("auditoría %s: %w", action, err)
	}
	return nil
}
