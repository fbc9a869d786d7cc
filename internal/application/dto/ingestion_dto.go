package dto

import "github.com/shopspring/decimal"

// ImportFormRequest campos del multipart de POST /api/imports (el archivo va en "file").
type ImportFormRequest struct {
	CarrierID       string `form:"carrier_id" validate:"required,uuid"`
	PeriodID        string `form:"period_id" validate:"required"`
	DeclaredTotal   string `form:"total_amount" validate:"max=30"`
	InvertNegatives bool   `form:"invert_negatives"`
	SumMultiColumn  bool   `form:"sum_multi_column"`
}

// ImportResponse resultado de una carga.
type ImportResponse struct {
	BatchID       string          `json:"batch_id"`
	CarrierID     string          `json:"carrier_id"`
	Format        string          `json:"format"`
	ItemCount     int             `json:"item_count"`
	RejectedCount int             `json:"rejected_count"`
	ParsedTotal   decimal.Decimal `json:"parsed_total"`
	DeclaredTotal decimal.Decimal `json:"declared_total"`
	Difference    decimal.Decimal `json:"difference"`
}

// BatchResponse cabecera de lote.
type BatchResponse struct {
	ID              string             `json:"id"`
	CarrierID       string             `json:"carrier_id"`
	PeriodID        string             `json:"period_id"`
	FileName        string             `json:"file_name"`
	Status          string             `json:"status"`
	DeclaredTotal   decimal.Decimal    `json:"declared_total"`
	ParsedTotal     decimal.Decimal    `json:"parsed_total"`
	InvertNegatives bool               `json:"invert_negatives"`
	SumMultiColumn  bool               `json:"sum_multi_column"`
	ItemCount       int                `json:"item_count"`
	RejectedCount   int                `json:"rejected_count"`
	CreatedAt       string             `json:"created_at"`
	Items           []LineItemResponse `json:"items,omitempty"`
}

// LineItemResponse línea de comisión.
type LineItemResponse struct {
	ID           string            `json:"id"`
	PolicyNumber string            `json:"policy_number"`
	InsuredName  *string           `json:"insured_name"`
	GrossAmount  decimal.Decimal   `json:"gross_amount"`
	BrokerID     *string           `json:"broker_id"`
	RawRow       map[string]string `json:"raw_row,omitempty"`
}
