package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una transferencia bancaria.
const (
	TransferStatusOpen   = "OPEN"
	TransferStatusClosed = "CLOSED"
)

// BankTransfer transferencia recibida con saldo asignable.
// RemainingAmount <= Amount; solo crece al liberar un grupo.
type BankTransfer struct {
	ID              string
	BankName        string
	ReferenceNumber string
	Amount          decimal.Decimal
	RemainingAmount decimal.Decimal
	TransferDate    time.Time
	Status          string
	Notes           string
	CreatedBy       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TransferUsage consumo de una transferencia por un grupo.
type TransferUsage struct {
	GroupID     string
	GroupStatus string
	AmountUsed  decimal.Decimal
}
