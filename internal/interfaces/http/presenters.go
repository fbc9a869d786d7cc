package http

import (
	"time"

	"github.com/jhoicas/Comisiones-api/internal/application/dto"
	"github.com/jhoicas/Comisiones-api/internal/application/ingestion"
	"github.com/jhoicas/Comisiones-api/internal/application/payments"
	"github.com/jhoicas/Comisiones-api/internal/application/transfers"
	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
)

func formatDate(t time.Time) string { return t.Format(dto.DateLayout) }

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func parseDatePtr(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dto.DateLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func toImportResponse(r *ingestion.IngestResult) dto.ImportResponse {
	return dto.ImportResponse{
		BatchID:       r.BatchID,
		CarrierID:     r.CarrierID,
		Format:        r.Format,
		ItemCount:     r.ItemCount,
		RejectedCount: r.RejectedCount,
		ParsedTotal:   r.ParsedTotal,
		DeclaredTotal: r.DeclaredTotal,
		Difference:    r.Difference,
	}
}

func toBatchResponse(b *entity.ImportBatch, items []*entity.CommissionLineItem) dto.BatchResponse {
	out := dto.BatchResponse{
		ID:              b.ID,
		CarrierID:       b.CarrierID,
		PeriodID:        b.PeriodID,
		FileName:        b.FileName,
		Status:          b.Status,
		DeclaredTotal:   b.DeclaredTotal,
		ParsedTotal:     b.ParsedTotal,
		InvertNegatives: b.InvertNegatives,
		SumMultiColumn:  b.SumMultiColumn,
		ItemCount:       b.ItemCount,
		RejectedCount:   b.RejectedCount,
		CreatedAt:       b.CreatedAt.Format(time.RFC3339),
	}
	for _, it := range items {
		out.Items = append(out.Items, dto.LineItemResponse{
			ID:           it.ID,
			PolicyNumber: it.PolicyNumber,
			InsuredName:  it.InsuredName,
			GrossAmount:  it.GrossAmount,
			BrokerID:     it.BrokerID,
			RawRow:       it.RawRow,
		})
	}
	return out
}

func toPaymentResponse(p *entity.PendingPayment) dto.PaymentResponse {
	out := dto.PaymentResponse{
		ID:             p.ID,
		ClientName:     p.ClientName,
		PolicyNumber:   p.PolicyNumber,
		CarrierID:      p.CarrierID,
		Amount:         p.Amount,
		PaymentDate:    formatDate(p.PaymentDate),
		Type:           p.Type,
		Status:         p.Status,
		Source:         p.Source,
		InstallmentNum: p.InstallmentNum,
		RecurrenceID:   p.RecurrenceID,
		GroupID:        p.GroupID,
		IsRefund:       p.IsRefund,
		Notes:          p.Notes,
	}
	if p.Refund != nil {
		out.Refund = &dto.RefundResponse{
			Bank:        p.Refund.Bank,
			Account:     p.Refund.Account,
			AccountType: p.Refund.AccountType,
			Reason:      p.Refund.Reason,
		}
	}
	return out
}

func toGroupResponse(g *entity.PaymentGroup) dto.GroupResponse {
	return dto.GroupResponse{
		ID:          g.ID,
		Status:      g.Status,
		TotalAmount: g.TotalAmount,
		Notes:       g.Notes,
		CreatedAt:   g.CreatedAt.Format(time.RFC3339),
		ConfirmedAt: formatTimePtr(g.ConfirmedAt),
		PostedAt:    formatTimePtr(g.PostedAt),
	}
}

func toGroupDetailResponse(d *payments.GroupDetail) dto.GroupResponse {
	out := toGroupResponse(d.Group)
	for _, it := range d.Items {
		out.Items = append(out.Items, dto.GroupItemResponse{
			PendingPaymentID: it.PendingPaymentID,
			CarrierID:        it.CarrierID,
			AmountApplied:    it.AmountApplied,
		})
	}
	for _, r := range d.References {
		out.References = append(out.References, dto.GroupReferenceResponse{
			BankTransferID: r.BankTransferID,
			AmountUsed:     r.AmountUsed,
		})
	}
	return out
}

func toTransferResponse(t *entity.BankTransfer, usages []entity.TransferUsage) dto.TransferResponse {
	out := dto.TransferResponse{
		ID:              t.ID,
		BankName:        t.BankName,
		ReferenceNumber: t.ReferenceNumber,
		Amount:          t.Amount,
		RemainingAmount: t.RemainingAmount,
		TransferDate:    formatDate(t.TransferDate),
		Status:          t.Status,
		Notes:           t.Notes,
		Usages:          make([]dto.TransferUsageResponse, 0, len(usages)),
	}
	for _, u := range usages {
		out.Usages = append(out.Usages, dto.TransferUsageResponse{
			GroupID:     u.GroupID,
			GroupStatus: u.GroupStatus,
			AmountUsed:  u.AmountUsed,
		})
	}
	return out
}

func toTransferDetailResponse(d transfers.TransferDetail) dto.TransferResponse {
	return toTransferResponse(d.Transfer, d.Usages)
}

func toRecurrenceResponse(r *entity.Recurrence) dto.RecurrenceResponse {
	out := dto.RecurrenceResponse{
		ID:                r.ID,
		ClientName:        r.ClientName,
		PolicyNumber:      r.PolicyNumber,
		CarrierID:         r.CarrierID,
		TotalInstallments: r.TotalInstallments,
		Frequency:         r.Frequency,
		InstallmentAmount: r.InstallmentAmount,
		StartDate:         formatDate(r.StartDate),
		EndDate:           formatDate(r.EndDate),
		NextDueDate:       formatDate(r.NextDueDate),
		Status:            r.Status,
		CancelReason:      r.CancelReason,
		Schedule:          make([]dto.ScheduleEntryResponse, 0, len(r.Schedule)),
	}
	for _, e := range r.Schedule {
		out.Schedule = append(out.Schedule, dto.ScheduleEntryResponse{
			Num:       e.Num,
			DueDate:   formatDate(e.DueDate),
			Status:    e.Status,
			PaymentID: e.PaymentID,
		})
	}
	return out
}
