package repository

import (
	"context"

	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
)

// GroupFilter filtros del listado de grupos.
type GroupFilter struct {
	Status string
	Limit  int
	Offset int
}

// PaymentGroupRepository puerto de grupos de pago con sus ítems y referencias.
type PaymentGroupRepository interface {
	Create(ctx context.Context, g *entity.PaymentGroup) error
	GetByID(ctx context.Context, id string) (*entity.PaymentGroup, error)
	// GetForUpdate bloquea la fila del grupo (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.PaymentGroup, error)
	Update(ctx context.Context, g *entity.PaymentGroup) error
	AddItems(ctx context.Context, items []entity.PaymentGroupItem) error
	AddReferences(ctx context.Context, refs []entity.PaymentGroupReference) error
	ListItems(ctx context.Context, groupID string) ([]entity.PaymentGroupItem, error)
	ListReferences(ctx context.Context, groupID string) ([]entity.PaymentGroupReference, error)
	// DeleteAllocations elimina ítems y referencias (liberación de un grupo confirmado).
	DeleteAllocations(ctx context.Context, groupID string) error
	List(ctx context.Context, f GroupFilter) ([]*entity.PaymentGroup, error)
	// SettlementLines proyección de exportación: ítems con cliente, póliza y aseguradora.
	SettlementLines(ctx context.Context, groupID string) ([]entity.SettlementLine, error)
}
