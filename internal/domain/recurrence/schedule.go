package recurrence

import (
	"strings"
	"time"

	"github.com/jhoicas/Comisiones-api/internal/domain"
	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
)

// Alcance de una edición de fecha.
const (
	ScopeOnlyThis  = "only_this"
	ScopeAllFuture = "all_future"
)

// MaxInstallments tope de cuotas: una por mes durante un año.
const MaxInstallments = 12

// Day trunca una fecha al día calendario en UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FrequencyFor deriva la frecuencia del número de cuotas pactado.
// 2 cuotas = SEMESTRAL; 1 y de 3 a 12 = MENSUAL.
func FrequencyFor(installments int) (string, error) {
	switch {
	case installments == 2:
		return entity.FrequencySemiannual, nil
	case installments >= 1 && installments <= MaxInstallments:
		return entity.FrequencyMonthly, nil
	}
	return "", domain.NewValidationError("total_installments", "debe estar entre 1 y 12")
}

// StepMonths meses entre cuotas.
func StepMonths(frequency string) int {
	if frequency == entity.FrequencySemiannual {
		return 6
	}
	return 1
}

// AddMonths suma meses conservando el día; si el mes destino es más corto usa su último día.
func AddMonths(t time.Time, months int) time.Time {
	t = Day(t)
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, months, 0)
	last := first.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

// WithinYear indica si d cae dentro del año que inicia en start.
func WithinYear(start, d time.Time) bool {
	start, d = Day(start), Day(d)
	return !d.Before(start) && !d.After(start.AddDate(1, 0, 0))
}

// BuildSchedule genera el cronograma completo desde la fecha de inicio.
func BuildSchedule(start time.Time, installments int, frequency string) ([]entity.ScheduleEntry, error) {
	step := StepMonths(frequency)
	schedule := make([]entity.ScheduleEntry, 0, installments)
	for i := 0; i < installments; i++ {
		due := AddMonths(start, i*step)
		if !WithinYear(start, due) {
			return nil, domain.NewValidationError("total_installments", "el cronograma excede un año desde el inicio")
		}
		schedule = append(schedule, entity.ScheduleEntry{Num: i + 1, DueDate: due, Status: entity.InstallmentPending})
	}
	return schedule, nil
}

// NextPending índice de la primera cuota PENDIENTE aún no materializada.
func NextPending(schedule []entity.ScheduleEntry) (int, bool) {
	for i, e := range schedule {
		if e.Status == entity.InstallmentPending && !e.Materialized() {
			return i, true
		}
	}
	return -1, false
}

// EditNextDate cambia la próxima fecha. only_this solo toca next_due_date; all_future además
// reancla las cuotas no materializadas desde newDate con la frecuencia de la recurrencia.
// Las cuotas PAGADO o ya materializadas nunca se modifican.
func EditNextDate(r *entity.Recurrence, newDate time.Time, scope string) error {
	if r.Status != entity.RecurrenceStatusActive {
		return &domain.StateError{Entity: "recurrencia", ID: r.ID, Current: r.Status, Expected: entity.RecurrenceStatusActive}
	}
	newDate = Day(newDate)
	if !WithinYear(r.StartDate, newDate) {
		return domain.NewValidationError("new_date", "debe caer dentro del año desde el inicio de la recurrencia")
	}

	switch scope {
	case ScopeOnlyThis:
		r.NextDueDate = newDate
		return nil
	case ScopeAllFuture:
	default:
		return domain.NewValidationError("apply_to", "debe ser only_this o all_future")
	}

	step := StepMonths(r.Frequency)
	updated := make([]entity.ScheduleEntry, len(r.Schedule))
	copy(updated, r.Schedule)
	k := 0
	for i, e := range updated {
		if e.Status != entity.InstallmentPending || e.Materialized() {
			continue
		}
		due := AddMonths(newDate, k*step)
		if !WithinYear(r.StartDate, due) {
			return domain.NewValidationError("new_date", "las cuotas futuras excederían un año desde el inicio")
		}
		updated[i].DueDate = due
		k++
	}
	r.Schedule = updated
	r.NextDueDate = newDate
	if k > 0 {
		r.EndDate = latestDue(updated)
	}
	return nil
}

// Cancel marca la recurrencia como CANCELADA. El motivo es obligatorio.
// No altera cuotas ya materializadas ni pagos existentes.
func Cancel(r *entity.Recurrence, reason, by string, now time.Time) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return domain.NewValidationError("reason", "el motivo de cancelación es obligatorio")
	}
	if r.Status != entity.RecurrenceStatusActive {
		return &domain.StateError{Entity: "recurrencia", ID: r.ID, Current: r.Status, Expected: entity.RecurrenceStatusActive}
	}
	r.Status = entity.RecurrenceStatusCancelled
	r.CancelledAt = &now
	r.CancelReason = &reason
	if by != "" {
		r.CancelledBy = &by
	}
	return nil
}

// Advance enlaza la cuota idx con el pago generado y mueve next_due_date a la siguiente cuota
// pendiente. Sin cuotas restantes la recurrencia queda COMPLETADA.
func Advance(r *entity.Recurrence, idx int, paymentID string) {
	r.Schedule[idx].PaymentID = &paymentID
	next, ok := NextPending(r.Schedule)
	if !ok || r.Schedule[next].DueDate.After(Day(r.EndDate)) {
		r.Status = entity.RecurrenceStatusCompleted
		return
	}
	r.NextDueDate = r.Schedule[next].DueDate
}

func latestDue(schedule []entity.ScheduleEntry) time.Time {
	var last time.Time
	for _, e := range schedule {
		if e.DueDate.After(last) {
			last = e.DueDate
		}
	}
	return last
}
