package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
)

// TransferFilter filtros del listado de transferencias.
type TransferFilter struct {
	Status   string
	BankName string
	Limit    int
	Offset   int
}

// BankTransferRepository puerto del pool de transferencias.
type BankTransferRepository interface {
	Create(ctx context.Context, t *entity.BankTransfer) error
	GetByID(ctx context.Context, id string) (*entity.BankTransfer, error)
	GetByBankAndReference(ctx context.Context, bankName, reference string) (*entity.BankTransfer, error)
	// LockByIDs bloquea las filas (SELECT FOR UPDATE) en orden de id.
	LockByIDs(ctx context.Context, ids []string) ([]*entity.BankTransfer, error)
	UpdateBalance(ctx context.Context, id string, remaining decimal.Decimal, status string) error
	List(ctx context.Context, f TransferFilter) ([]*entity.BankTransfer, error)
	ListUsages(ctx context.Context, transferID string) ([]entity.TransferUsage, error)
}
