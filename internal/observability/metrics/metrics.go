package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "comisiones_"

	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	registerOnce sync.Once

	importTotal   *prometheus.CounterVec
	importLatency *prometheus.HistogramVec
	rowsAccepted  *prometheus.CounterVec
	rowsRejected  *prometheus.CounterVec

	groupTransitions *prometheus.CounterVec
	allocatedAmount  prometheus.Counter

	recurrenceMaterialized *prometheus.CounterVec
	exportTotal            *prometheus.CounterVec
)

// Init registra las métricas en el registro por defecto de Prometheus.
// Sin Init las funciones Observe*/Inc* no hacen nada (tests y procesos auxiliares).
func Init() {
	registerOnce.Do(func() {
		importTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "imports_total",
				Help: "Total de cargas de archivos por aseguradora y resultado",
			},
			[]string{"carrier", "result"},
		)
		importLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "import_latency_seconds",
				Help:    "Duración de la ingesta de un archivo",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format"},
		)
		rowsAccepted = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "rows_accepted_total",
				Help: "Filas de comisión aceptadas por aseguradora",
			},
			[]string{"carrier"},
		)
		rowsRejected = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "rows_rejected_total",
				Help: "Filas descartadas por el filtro de normalización",
			},
			[]string{"carrier", "reason"},
		)
		groupTransitions = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "group_transitions_total",
				Help: "Transiciones de grupos de pago por acción y resultado",
			},
			[]string{"action", "result"},
		)
		allocatedAmount = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "allocated_amount_total",
				Help: "Monto total asignado desde transferencias a grupos confirmados",
			},
		)
		recurrenceMaterialized = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "recurrence_installments_total",
				Help: "Cuotas recurrentes generadas por el proceso programado",
			},
			[]string{"result"},
		)
		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "settlement_exports_total",
				Help: "Exportaciones de liquidación por formato y resultado",
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(
			importTotal,
			importLatency,
			rowsAccepted,
			rowsRejected,
			groupTransitions,
			allocatedAmount,
			recurrenceMaterialized,
			exportTotal,
		)
	})
}

// ObserveImport registra el resultado y la duración de una carga.
func ObserveImport(carrier, format, result string, duration time.Duration) {
	if result == "" {
		result = ResultSuccess
	}
	if importTotal != nil {
		importTotal.WithLabelValues(carrier, result).Inc()
	}
	if importLatency != nil {
		importLatency.WithLabelValues(format).Observe(duration.Seconds())
	}
}

// AddRows acumula filas aceptadas y rechazadas (por motivo) de una carga.
func AddRows(carrier string, accepted int, rejected map[string]int) {
	if rowsAccepted != nil {
		rowsAccepted.WithLabelValues(carrier).Add(float64(accepted))
	}
	if rowsRejected == nil {
		return
	}
	for reason, n := range rejected {
		rowsRejected.WithLabelValues(carrier, reason).Add(float64(n))
	}
}

// IncGroupTransition cuenta create/confirm/post/release/discard por resultado.
func IncGroupTransition(action string, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	if groupTransitions != nil {
		groupTransitions.WithLabelValues(action, result).Inc()
	}
}

// AddAllocated suma el monto asignado en una confirmación.
func AddAllocated(amount float64) {
	if allocatedAmount != nil {
		allocatedAmount.Add(amount)
	}
}

// IncRecurrence cuenta cuotas generadas u omitidas por el proceso programado.
func IncRecurrence(result string) {
	if recurrenceMaterialized != nil {
		recurrenceMaterialized.WithLabelValues(result).Inc()
	}
}

// IncExport cuenta exportaciones de liquidación.
func IncExport(format string, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
}
