package ingestion_test

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Comisiones-api/internal/application/ingestion"
	"github.com/jhoicas/Comisiones-api/internal/domain"
	"github.com/jhoicas/Comisiones-api/internal/domain/commission"
	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
	"github.com/jhoicas/Comisiones-api/internal/infrastructure/memory"
	"github.com/jhoicas/Comisiones-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const carrierID = "carrier-x"

func row(policy, amount string) commission.Row {
	return commission.Row{
		PolicyNumber: policy,
		InsuredName:  "Asegurado " + policy,
		Amount:       decimal.RequireFromString(amount),
		Raw:          map[string]string{"poliza": policy, "comision": amount},
	}
}

// stubParser estrategia fija que devuelve siempre las mismas filas.
func stubParser(rows ...commission.Row) ingestion.Parser {
	return ingestion.ParserFunc(func(_ context.Context, _ ingestion.Input) ([]commission.Row, error) {
		return rows, nil
	})
}

func newIngest(t *testing.T, store *memory.Store, generic ingestion.Parser) *ingestion.IngestUseCase {
	t.Helper()
	store.AddCarrier(entity.Carrier{ID: carrierID, Key: "X", Name: "Aseguradora X", Active: true})
	registry := ingestion.NewRegistry(generic)
	writer := ingestion.NewBatchWriter(store.TxRunner(), store.Batches())
	return ingestion.NewIngestUseCase(
		store.Carriers(), store.Batches(), store.Items(),
		ingestion.NewDetector(registry), writer, logger.Nop(),
	)
}

func csvFile() ingestion.File {
	return ingestion.File{Name: "estado_marzo.csv", Content: []byte("poliza,comision\n")}
}

func amountsByPolicy(t *testing.T, items []*entity.CommissionLineItem) map[string]string {
	t.Helper()
	out := make(map[string]string, len(items))
	for _, it := range items {
		out[it.PolicyNumber] = it.GrossAmount.String()
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Ingest
// ──────────────────────────────────────────────────────────────────────────────

func TestIngest_DescartaPolizaVaciaYConfirmaLote(t *testing.T) {
	store := memory.NewStore()
	uc := newIngest(t, store, stubParser(row("A100", "200"), row("", "50"), row("A200", "-30")))
	ctx := context.Background()

	res, err := uc.Ingest(ctx, ingestion.IngestInput{
		CarrierID:     carrierID,
		PeriodID:      "2025-03",
		DeclaredTotal: decimal.RequireFromString("170"),
		File:          csvFile(),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.ItemCount)
	assert.Equal(t, 1, res.RejectedCount)
	assert.Equal(t, ingestion.FormatCSV, res.Format)
	assert.True(t, res.ParsedTotal.Equal(decimal.RequireFromString("170")))
	assert.True(t, res.Difference.IsZero())

	batch, items, err := uc.GetBatch(ctx, res.BatchID)
	require.NoError(t, err)
	assert.Equal(t, entity.ImportStatusCommitted, batch.Status)
	assert.Equal(t, map[string]string{"A100": "200", "A200": "-30"}, amountsByPolicy(t, items))
}

func TestIngest_InversionDeSignoEsUnToggle(t *testing.T) {
	rows := []commission.Row{row("A100", "200"), row("", "50"), row("A200", "-30")}
	ctx := context.Background()

	plainStore := memory.NewStore()
	plain, err := newIngest(t, plainStore, stubParser(rows...)).Ingest(ctx, ingestion.IngestInput{
		CarrierID: carrierID, File: csvFile(),
	})
	require.NoError(t, err)

	invStore := memory.NewStore()
	invUC := newIngest(t, invStore, stubParser(rows...))
	inverted, err := invUC.Ingest(ctx, ingestion.IngestInput{
		CarrierID: carrierID, File: csvFile(), Options: commission.Options{InvertNegatives: true},
	})
	require.NoError(t, err)
	assert.True(t, inverted.Options.InvertNegatives)

	_, plainItems, err := newIngestReader(plainStore).GetBatch(ctx, plain.BatchID)
	require.NoError(t, err)
	_, invItems, err := invUC.GetBatch(ctx, inverted.BatchID)
	require.NoError(t, err)
	require.Len(t, invItems, len(plainItems))

	byPolicy := make(map[string]decimal.Decimal)
	for _, it := range plainItems {
		byPolicy[it.PolicyNumber] = it.GrossAmount
	}
	for _, it := range invItems {
		assert.True(t, it.GrossAmount.Equal(byPolicy[it.PolicyNumber].Neg()), "póliza %s", it.PolicyNumber)
	}
	assert.Equal(t, map[string]string{"A100": "-200", "A200": "30"}, amountsByPolicy(t, invItems))
}

// Estado de cuenta que reporta comisiones en negativo: la inversión las deja positivas.
func TestIngest_EstadoConMontosNegativosInvertido(t *testing.T) {
	store := memory.NewStore()
	uc := newIngest(t, store, stubParser(row("A100", "-200"), row("", "-50"), row("A200", "-30")))
	res, err := uc.Ingest(context.Background(), ingestion.IngestInput{
		CarrierID: carrierID, File: csvFile(), Options: commission.Options{InvertNegatives: true},
	})
	require.NoError(t, err)
	_, items, err := uc.GetBatch(context.Background(), res.BatchID)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"A100": "200", "A200": "30"}, amountsByPolicy(t, items))
}

func TestIngest_AseguradoraConInversionConfigurada(t *testing.T) {
	store := memory.NewStore()
	store.AddCarrier(entity.Carrier{ID: "carrier-neg", Key: "NEG", Name: "Negativa", InvertNegatives: true, Active: true})
	uc := newIngest(t, store, stubParser(row("P1", "-10")))
	res, err := uc.Ingest(context.Background(), ingestion.IngestInput{CarrierID: "carrier-neg", File: csvFile()})
	require.NoError(t, err)
	assert.True(t, res.Options.InvertNegatives)
	assert.True(t, res.ParsedTotal.Equal(decimal.NewFromInt(10)))
}

func TestIngest_FallaAlInsertarLineasCompensaLaCabecera(t *testing.T) {
	store := memory.NewStore()
	store.FailItemInsert = errors.New("conexión perdida")
	uc := newIngest(t, store, stubParser(row("A100", "200")))
	ctx := context.Background()

	_, err := uc.Ingest(ctx, ingestion.IngestInput{CarrierID: carrierID, File: csvFile()})
	require.Error(t, err)
	var ie *domain.ImportError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "commit", ie.Stage)

	batches, err := uc.ListBatches(ctx, carrierID, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, batches, "no queda ningún lote visible")
}

func TestIngest_ErrorDelParserEsParseError(t *testing.T) {
	store := memory.NewStore()
	failing := ingestion.ParserFunc(func(context.Context, ingestion.Input) ([]commission.Row, error) {
		return nil, errors.New("hoja vacía")
	})
	uc := newIngest(t, store, failing)
	_, err := uc.Ingest(context.Background(), ingestion.IngestInput{CarrierID: carrierID, File: csvFile()})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrParse)
	var ie *domain.ImportError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "parse", ie.Stage)
}

func TestIngest_SinFilasValidasFalla(t *testing.T) {
	store := memory.NewStore()
	uc := newIngest(t, store, stubParser(row("", "10"), row("TOTAL", "0")))
	_, err := uc.Ingest(context.Background(), ingestion.IngestInput{CarrierID: carrierID, File: csvFile()})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIngest_PDFSinEstrategiaEsParseError(t *testing.T) {
	store := memory.NewStore()
	uc := newIngest(t, store, stubParser(row("A1", "1")))
	_, err := uc.Ingest(context.Background(), ingestion.IngestInput{
		CarrierID: carrierID,
		File:      ingestion.File{Name: "estado.pdf", Content: []byte("%PDF-1.4")},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrParse)
}

func TestIngest_AseguradoraInexistente(t *testing.T) {
	store := memory.NewStore()
	uc := newIngest(t, store, stubParser())
	_, err := uc.Ingest(context.Background(), ingestion.IngestInput{CarrierID: "otra", File: csvFile()})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Detector y registro
// ──────────────────────────────────────────────────────────────────────────────

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		name    string
		content []byte
		want    string
	}{
		{"estado.xlsx", nil, ingestion.FormatXLSX},
		{"estado.XLS", nil, ingestion.FormatXLS},
		{"estado.csv", nil, ingestion.FormatCSV},
		{"estado.pdf", nil, ingestion.FormatPDF},
		{"foto.JPG", nil, ingestion.FormatImage},
		{"sin_extension", []byte("%PDF-1.7"), ingestion.FormatPDF},
		{"sin_extension", []byte("PK\x03\x04resto"), ingestion.FormatXLSX},
		{"sin_extension", []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, ingestion.FormatXLS},
		{"sin_extension", []byte("texto"), ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ingestion.DetectFormat(tc.name, tc.content), tc.name)
	}
}

func TestRegistry_EstrategiaPropiaTienePrioridad(t *testing.T) {
	generic := stubParser(row("GEN", "1"))
	own := stubParser(row("PROPIA", "1"))
	reg := ingestion.NewRegistry(generic)
	reg.Register("banesco", own, ingestion.FormatXLSX, ingestion.FormatPDF)

	p, err := reg.Lookup("BANESCO", ingestion.FormatPDF)
	require.NoError(t, err)
	rows, err := p.Parse(context.Background(), ingestion.Input{})
	require.NoError(t, err)
	assert.Equal(t, "PROPIA", rows[0].PolicyNumber)

	p, err = reg.Lookup("ASSA", ingestion.FormatCSV)
	require.NoError(t, err)
	rows, err = p.Parse(context.Background(), ingestion.Input{})
	require.NoError(t, err)
	assert.Equal(t, "GEN", rows[0].PolicyNumber)

	_, err = reg.Lookup("ASSA", ingestion.FormatImage)
	assert.ErrorIs(t, err, domain.ErrParse)

	carriers := reg.Carriers()
	sort.Strings(carriers)
	assert.Equal(t, []string{"BANESCO"}, carriers)
}

func newIngestReader(store *memory.Store) *ingestion.IngestUseCase {
	return ingestion.NewIngestUseCase(store.Carriers(), store.Batches(), store.Items(), nil, nil, logger.Nop())
}
