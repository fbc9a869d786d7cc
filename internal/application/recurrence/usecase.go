package recurrence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Comisiones-api/internal/application/auditlog"
	"github.com/jhoicas/Comisiones-api/internal/domain"
	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
	domrec "github.com/jhoicas/Comisiones-api/internal/domain/recurrence"
	"github.com/jhoicas/Comisiones-api/internal/domain/repository"
	"github.com/jhoicas/Comisiones-api/internal/observability/metrics"
	"github.com/jhoicas/Comisiones-api/pkg/logger"
)

// UseCase cronogramas de cuotas: alta, edición de fechas, cancelación y generación de cuotas vencidas.
type UseCase struct {
	txRunner       TxRunner
	recurrenceRepo repository.RecurrenceRepository
	log            *logger.Logger
	now            func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(txRunner TxRunner, recurrenceRepo repository.RecurrenceRepository, log *logger.Logger) *UseCase {
	return &UseCase{txRunner: txRunner, recurrenceRepo: recurrenceRepo, log: log.Component("recurrencias"), now: time.Now}
}

// CreateInput origen de una recurrencia.
type CreateInput struct {
	ClientName        string
	PolicyNumber      string
	CarrierID         string
	TotalInstallments int
	InstallmentAmount decimal.Decimal
	StartDate         time.Time
	UserID            string
}

// UpdateInput edición de la próxima fecha.
type UpdateInput struct {
	RecurrenceID string
	NewDate      time.Time
	ApplyTo      string // only_this | all_future
	UserID       string
}

// MaterializeReport resultado de una corrida del proceso programado.
type MaterializeReport struct {
	Created   int
	Skipped   int
	Completed int
	Failed    int
}

// Create arma el cronograma completo. Si ya existe una recurrencia ACTIVA para la póliza y
// aseguradora devuelve esa con created=false.
func (uc *UseCase) Create(ctx context.Context, in CreateInput) (*entity.Recurrence, bool, error) {
	in.ClientName = strings.TrimSpace(in.ClientName)
	in.PolicyNumber = strings.TrimSpace(in.PolicyNumber)
	switch {
	case in.ClientName == "":
		return nil, false, domain.NewValidationError("client_name", "requerido")
	case in.PolicyNumber == "":
		return nil, false, domain.NewValidationError("policy_number", "requerido")
	case in.CarrierID == "":
		return nil, false, domain.NewValidationError("carrier_id", "requerido")
	case !in.InstallmentAmount.IsPositive():
		return nil, false, domain.NewValidationError("installment_amount", "debe ser mayor que cero")
	case in.StartDate.IsZero():
		return nil, false, domain.NewValidationError("start_date", "requerido")
	}
	frequency, err := domrec.FrequencyFor(in.TotalInstallments)
	if err != nil {
		return nil, false, err
	}
	start := domrec.Day(in.StartDate)
	schedule, err := domrec.BuildSchedule(start, in.TotalInstallments, frequency)
	if err != nil {
		return nil, false, err
	}

	now := uc.now()
	rec := &entity.Recurrence{
		ID:                uuid.New().String(),
		ClientName:        in.ClientName,
		PolicyNumber:      in.PolicyNumber,
		CarrierID:         in.CarrierID,
		TotalInstallments: in.TotalInstallments,
		Frequency:         frequency,
		InstallmentAmount: in.InstallmentAmount,
		StartDate:         start,
		EndDate:           schedule[len(schedule)-1].DueDate,
		NextDueDate:       schedule[0].DueDate,
		Status:            entity.RecurrenceStatusActive,
		Schedule:          schedule,
		CreatedBy:         in.UserID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	var (
		result  *entity.Recurrence
		created bool
	)
	err = uc.txRunner.RunRecurrence(ctx, func(
		recurrenceRepo repository.RecurrenceRepository,
		_ repository.PendingPaymentRepository,
		auditRepo repository.AuditRepository,
	) error {
		existing, err := recurrenceRepo.FindActive(ctx, rec.PolicyNumber, rec.CarrierID)
		if err != nil {
			return err
		}
		if existing != nil {
			result = existing
			return nil
		}
		if err := recurrenceRepo.Create(ctx, rec); err != nil {
			return err
		}
		result, created = rec, true
		return auditlog.Record(ctx, auditRepo, auditlog.ActionCreateRecurrence, auditlog.EntityRecurrence, rec.ID, in.UserID,
			map[string]any{"installments": rec.TotalInstallments, "frequency": rec.Frequency, "amount": rec.InstallmentAmount.String()})
	})
	if err != nil {
		return nil, false, err
	}
	if created {
		uc.log.Info().
			Str("recurrence_id", result.ID).
			Str("policy", result.PolicyNumber).
			Int("installments", result.TotalInstallments).
			Str("frequency", result.Frequency).
			Msg("recurrencia creada")
	}
	return result, created, nil
}

// EditNextDate cambia la próxima fecha solo para esta cuota o re-ancla todas las futuras.
// Las cuotas ya generadas o pagadas no se tocan.
func (uc *UseCase) EditNextDate(ctx context.Context, in UpdateInput) (*entity.Recurrence, error) {
	if in.RecurrenceID == "" {
		return nil, domain.NewValidationError("recurrence_id", "requerido")
	}
	if in.NewDate.IsZero() {
		return nil, domain.NewValidationError("new_date", "requerido")
	}
	var updated *entity.Recurrence
	err := uc.txRunner.RunRecurrence(ctx, func(
		recurrenceRepo repository.RecurrenceRepository,
		_ repository.PendingPaymentRepository,
		auditRepo repository.AuditRepository,
	) error {
		rec, err := recurrenceRepo.GetForUpdate(ctx, in.RecurrenceID)
		if err != nil {
			return err
		}
		if rec == nil {
			return domain.ErrNotFound
		}
		previous := rec.NextDueDate
		if err := domrec.EditNextDate(rec, in.NewDate, in.ApplyTo); err != nil {
			return err
		}
		rec.UpdatedAt = uc.now()
		if err := recurrenceRepo.Update(ctx, rec); err != nil {
			return err
		}
		updated = rec
		return auditlog.Record(ctx, auditRepo, auditlog.ActionUpdateRecurrence, auditlog.EntityRecurrence, rec.ID, in.UserID,
			map[string]any{
				"apply_to": in.ApplyTo,
				"from":     previous.Format(time.DateOnly),
				"to":       rec.NextDueDate.Format(time.DateOnly),
			})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Cancel deja la recurrencia CANCELADA. Los pagos ya generados no cambian.
func (uc *UseCase) Cancel(ctx context.Context, id, reason, userID string) (*entity.Recurrence, error) {
	var cancelled *entity.Recurrence
	err := uc.txRunner.RunRecurrence(ctx, func(
		recurrenceRepo repository.RecurrenceRepository,
		_ repository.PendingPaymentRepository,
		auditRepo repository.AuditRepository,
	) error {
		rec, err := recurrenceRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if rec == nil {
			return domain.ErrNotFound
		}
		now := uc.now()
		if err := domrec.Cancel(rec, reason, userID, now); err != nil {
			return err
		}
		rec.UpdatedAt = now
		if err := recurrenceRepo.Update(ctx, rec); err != nil {
			return err
		}
		cancelled = rec
		return auditlog.Record(ctx, auditRepo, auditlog.ActionCancelRecurrence, auditlog.EntityRecurrence, rec.ID, userID,
			map[string]any{"reason": *rec.CancelReason})
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("recurrence_id", cancelled.ID).Str("reason", *cancelled.CancelReason).Msg("recurrencia cancelada")
	return cancelled, nil
}

// Get obtiene una recurrencia.
func (uc *UseCase) Get(ctx context.Context, id string) (*entity.Recurrence, error) {
	rec, err := uc.recurrenceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	return rec, nil
}

// List recurrencias por estado, ordenadas por próxima fecha.
func (uc *UseCase) List(ctx context.Context, status string) ([]*entity.Recurrence, error) {
	return uc.recurrenceRepo.List(ctx, status)
}

// MaterializeDue genera la cuota pendiente de cada recurrencia ACTIVA vencida a la fecha.
// Cada recurrencia va en su propia transacción: una falla no detiene al resto.
func (uc *UseCase) MaterializeDue(ctx context.Context, today time.Time) (MaterializeReport, error) {
	var report MaterializeReport
	asOf := domrec.Day(today)
	due, err := uc.recurrenceRepo.ListDue(ctx, asOf)
	if err != nil {
		return report, err
	}
	for _, r := range due {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		outcome, err := uc.materializeOne(ctx, r.ID, asOf)
		if err != nil {
			report.Failed++
			metrics.IncRecurrence(metrics.ResultError)
			uc.log.Error().Err(err).Str("recurrence_id", r.ID).Msg("no se pudo generar la cuota")
			continue
		}
		switch outcome {
		case outcomeCreated:
			report.Created++
		case outcomeCompleted:
			report.Created++
			report.Completed++
		default:
			report.Skipped++
		}
		metrics.IncRecurrence(outcome)
	}
	uc.log.Info().
		Int("created", report.Created).
		Int("skipped", report.Skipped).
		Int("completed", report.Completed).
		Int("failed", report.Failed).
		Msg("generación de cuotas finalizada")
	return report, nil
}

const (
	outcomeCreated   = "created"
	outcomeCompleted = "completed"
	outcomeSkipped   = "skipped"
)

func (uc *UseCase) materializeOne(ctx context.Context, id string, asOf time.Time) (string, error) {
	outcome := outcomeSkipped
	err := uc.txRunner.RunRecurrence(ctx, func(
		recurrenceRepo repository.RecurrenceRepository,
		paymentRepo repository.PendingPaymentRepository,
		auditRepo repository.AuditRepository,
	) error {
		rec, err := recurrenceRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if rec == nil || rec.Status != entity.RecurrenceStatusActive || rec.NextDueDate.After(asOf) {
			return nil
		}
		idx, ok := domrec.NextPending(rec.Schedule)
		if !ok {
			rec.Status = entity.RecurrenceStatusCompleted
			rec.UpdatedAt = uc.now()
			outcome = outcomeCompleted
			return recurrenceRepo.Update(ctx, rec)
		}
		num := rec.Schedule[idx].Num
		paymentDate := domrec.Day(rec.NextDueDate)

		existing, err := paymentRepo.FindDuplicate(ctx, rec.PolicyNumber, rec.CarrierID, paymentDate, &num)
		if err != nil {
			return err
		}
		paymentID := ""
		if existing != nil {
			paymentID = existing.ID
		} else {
			now := uc.now()
			p := &entity.PendingPayment{
				ID:             uuid.New().String(),
				ClientName:     rec.ClientName,
				PolicyNumber:   rec.PolicyNumber,
				Amount:         rec.InstallmentAmount,
				CarrierID:      rec.CarrierID,
				PaymentDate:    paymentDate,
				Type:           entity.PaymentTypeCarrierPayout,
				Status:         entity.PaymentStatusPendingConfirmation,
				Source:         entity.PaymentSourceRecurrence,
				InstallmentNum: &num,
				RecurrenceID:   &rec.ID,
				CreatedBy:      rec.CreatedBy,
				CreatedAt:      now,
				UpdatedAt:      now,
			}
			if err := paymentRepo.Create(ctx, p); err != nil {
				return err
			}
			paymentID = p.ID
			outcome = outcomeCreated
		}

		domrec.Advance(rec, idx, paymentID)
		rec.UpdatedAt = uc.now()
		if rec.Status == entity.RecurrenceStatusCompleted && outcome == outcomeCreated {
			outcome = outcomeCompleted
		}
		if err := recurrenceRepo.Update(ctx, rec); err != nil {
			return err
		}
		return auditlog.Record(ctx, auditRepo, auditlog.ActionMaterializeCuota, auditlog.EntityRecurrence, rec.ID, "",
			map[string]any{"installment": num, "payment_id": paymentID, "date": paymentDate.Format(time.DateOnly)})
	})
	return outcome, err
}
