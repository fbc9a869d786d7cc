package repository

import (
	"context"

	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
)

// CarrierRepository catálogo de aseguradoras (solo lectura para la ingesta).
type CarrierRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Carrier, error)
	List(ctx context.Context) ([]*entity.Carrier, error)
}
