package dto

import "github.com/shopspring/decimal"

// ImportTransferRequest body para POST /api/transfers.
type ImportTransferRequest struct {
	BankName        string          `json:"bank_name" validate:"required,max=120"`
	ReferenceNumber string          `json:"reference_number" validate:"required,max=80"`
	Amount          decimal.Decimal `json:"amount"`
	TransferDate    string          `json:"transfer_date" validate:"required,datetime=2006-01-02"`
	Notes           string          `json:"notes" validate:"max=500"`
}

// TransferListQuery filtros de GET /api/transfers.
type TransferListQuery struct {
	PageRequest
	Status   string `query:"status" validate:"omitempty,oneof=OPEN CLOSED"`
	BankName string `query:"bank_name"`
}

// TransferUsageResponse uso de una transferencia por un grupo.
type TransferUsageResponse struct {
	GroupID     string          `json:"group_id"`
	GroupStatus string          `json:"group_status"`
	AmountUsed  decimal.Decimal `json:"amount_used"`
}

// TransferResponse transferencia bancaria.
type TransferResponse struct {
	ID              string                  `json:"id"`
	BankName        string                  `json:"bank_name"`
	ReferenceNumber string                  `json:"reference_number"`
	Amount          decimal.Decimal         `json:"amount"`
	RemainingAmount decimal.Decimal         `json:"remaining_amount"`
	TransferDate    string                  `json:"transfer_date"`
	Status          string                  `json:"status"`
	Notes           string                  `json:"notes,omitempty"`
	Usages          []TransferUsageResponse `json:"usages"`
}
