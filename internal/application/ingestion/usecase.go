package ingestion

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Comisiones-api/internal/domain"
	"github.com/jhoicas/Comisiones-api/internal/domain/commission"
	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
	"github.com/jhoicas/Comisiones-api/internal/domain/repository"
	"github.com/jhoicas/Comisiones-api/internal/observability/metrics"
	"github.com/jhoicas/Comisiones-api/pkg/logger"
)

// IngestInput carga de un archivo de comisiones.
type IngestInput struct {
	CarrierID     string
	PeriodID      string
	DeclaredTotal decimal.Decimal
	UserID        string
	File          File
	Options       commission.Options
}

// IngestResult resumen devuelto al usuario. ItemCount solo cuenta líneas aceptadas.
type IngestResult struct {
	BatchID       string
	CarrierID     string
	CarrierKey    string
	Format        string
	ItemCount     int
	RejectedCount int
	ParsedTotal   decimal.Decimal
	DeclaredTotal decimal.Decimal
	Difference    decimal.Decimal // declarado - leído
	Options       commission.Options
}

// IngestUseCase pipeline completo: detector -> estrategia -> filtro -> signo -> lote.
type IngestUseCase struct {
	carrierRepo repository.CarrierRepository
	batchRepo   repository.ImportBatchRepository
	itemRepo    repository.CommissionItemRepository
	detector    *Detector
	writer      *BatchWriter
	filter      *commission.Filter
	log         *logger.Logger
}

// NewIngestUseCase construye el caso de uso.
func NewIngestUseCase(
	carrierRepo repository.CarrierRepository,
	batchRepo repository.ImportBatchRepository,
	itemRepo repository.CommissionItemRepository,
	detector *Detector,
	writer *BatchWriter,
	log *logger.Logger,
) *IngestUseCase {
	return &IngestUseCase{
		carrierRepo: carrierRepo,
		batchRepo:   batchRepo,
		itemRepo:    itemRepo,
		detector:    detector,
		writer:      writer,
		filter:      commission.NewFilter(),
		log:         log.Component("ingesta"),
	}
}

// Ingest lee el archivo, normaliza y confirma el lote. Cualquier falla de lectura o de escritura
// se devuelve como *domain.ImportError y no deja líneas confirmadas.
func (uc *IngestUseCase) Ingest(ctx context.Context, in IngestInput) (*IngestResult, error) {
	if strings.TrimSpace(in.CarrierID) == "" {
		return nil, domain.NewValidationError("carrier_id", "requerido")
	}
	if len(in.File.Content) == 0 {
		return nil, domain.NewValidationError("file", "archivo vacío")
	}
	carrier, err := uc.carrierRepo.GetByID(ctx, in.CarrierID)
	if err != nil {
		return nil, err
	}
	if carrier == nil {
		return nil, domain.ErrNotFound
	}

	start := time.Now()
	opts := in.Options.Merge(carrier.InvertNegatives, carrier.UseMultiCommissionColumns)

	format, parser, err := uc.detector.Detect(carrier.Key, in.File)
	if err != nil {
		return nil, uc.fail(carrier, format, "detect", err, start)
	}

	rows, err := parser.Parse(ctx, Input{CarrierKey: carrier.Key, File: in.File, Options: opts})
	if err != nil {
		var pe *domain.ParseError
		if !errors.As(err, &pe) {
			err = &domain.ParseError{Carrier: carrier.Key, Cause: err}
		}
		return nil, uc.fail(carrier, format, "parse", err, start)
	}

	accepted, rejected := uc.filter.Apply(rows)
	if opts.InvertNegatives {
		accepted = commission.Invert(accepted)
	}
	rejectedCount := 0
	for _, n := range rejected {
		rejectedCount += n
	}
	metrics.AddRows(carrier.Key, len(accepted), rejected)
	if rejectedCount > 0 {
		uc.log.Debug().
			Str("carrier", carrier.Key).
			Interface("rejected", rejected).
			Msg("filas descartadas por normalización")
	}
	if len(accepted) == 0 {
		err := domain.NewValidationError("file", "el archivo no contiene líneas de comisión válidas")
		return nil, uc.fail(carrier, format, "parse", err, start)
	}

	now := time.Now()
	batch := &entity.ImportBatch{
		ID:              uuid.New().String(),
		CarrierID:       carrier.ID,
		PeriodID:        in.PeriodID,
		FileName:        in.File.Name,
		DeclaredTotal:   in.DeclaredTotal,
		ParsedTotal:     commission.Total(accepted),
		InvertNegatives: opts.InvertNegatives,
		SumMultiColumn:  opts.SumMultiColumn,
		RejectedCount:   rejectedCount,
		CreatedBy:       in.UserID,
		CreatedAt:       now,
	}
	items := make([]*entity.CommissionLineItem, 0, len(accepted))
	for _, r := range accepted {
		item := &entity.CommissionLineItem{
			ID:           uuid.New().String(),
			BatchID:      batch.ID,
			CarrierID:    carrier.ID,
			PolicyNumber: r.PolicyNumber,
			GrossAmount:  r.Amount,
			RawRow:       r.Raw,
			CreatedAt:    now,
		}
		if r.InsuredName != "" {
			name := r.InsuredName
			item.InsuredName = &name
		}
		items = append(items, item)
	}

	batchID, err := uc.writer.Commit(ctx, batch, items)
	if err != nil {
		return nil, uc.fail(carrier, format, "commit", err, start)
	}

	metrics.ObserveImport(carrier.Key, format, metrics.ResultSuccess, time.Since(start))
	uc.log.Info().
		Str("carrier", carrier.Key).
		Str("batch_id", batchID).
		Str("format", format).
		Int("items", len(items)).
		Int("rejected", rejectedCount).
		Str("total", batch.ParsedTotal.StringFixed(2)).
		Msg("lote de comisiones confirmado")

	return &IngestResult{
		BatchID:       batchID,
		CarrierID:     carrier.ID,
		CarrierKey:    carrier.Key,
		Format:        format,
		ItemCount:     len(items),
		RejectedCount: rejectedCount,
		ParsedTotal:   batch.ParsedTotal,
		DeclaredTotal: in.DeclaredTotal,
		Difference:    in.DeclaredTotal.Sub(batch.ParsedTotal),
		Options:       opts,
	}, nil
}

// GetBatch devuelve la cabecera y sus líneas.
func (uc *IngestUseCase) GetBatch(ctx context.Context, id string) (*entity.ImportBatch, []*entity.CommissionLineItem, error) {
	batch, err := uc.batchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if batch == nil {
		return nil, nil, domain.ErrNotFound
	}
	items, err := uc.itemRepo.ListByBatch(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return batch, items, nil
}

// ListBatches lista cargas, opcionalmente de una aseguradora.
func (uc *IngestUseCase) ListBatches(ctx context.Context, carrierID string, limit, offset int) ([]*entity.ImportBatch, error) {
	if limit <= 0 {
		limit = 20
	}
	return uc.batchRepo.List(ctx, carrierID, limit, offset)
}

func (uc *IngestUseCase) fail(carrier *entity.Carrier, format, stage string, err error, start time.Time) error {
	metrics.ObserveImport(carrier.Key, format, metrics.ResultError, time.Since(start))
	uc.log.Error().Err(err).
		Str("carrier", carrier.Key).
		Str("stage", stage).
		Msg("importación rechazada")
	return &domain.ImportError{Carrier: carrier.Key, Stage: stage, Err: err}
}
