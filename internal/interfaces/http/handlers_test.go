package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appexport "github.com/jhoicas/Comisiones-api/internal/application/export"
	"github.com/jhoicas/Comisiones-api/internal/application/ingestion"
	"github.com/jhoicas/Comisiones-api/internal/application/payments"
	"github.com/jhoicas/Comisiones-api/internal/application/recurrence"
	"github.com/jhoicas/Comisiones-api/internal/application/transfers"
	"github.com/jhoicas/Comisiones-api/internal/domain/commission"
	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
	infraexport "github.com/jhoicas/Comisiones-api/internal/infrastructure/export"
	"github.com/jhoicas/Comisiones-api/internal/infrastructure/memory"
	"github.com/jhoicas/Comisiones-api/internal/infrastructure/parsers"
	apphttp "github.com/jhoicas/Comisiones-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Comisiones-api/pkg/jwt"
	"github.com/jhoicas/Comisiones-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Aplicación completa sobre el almacén en memoria
// ──────────────────────────────────────────────────────────────────────────────

const carrierID = "3f0b6a52-8c1e-4d7a-9b25-6e4c1d9a7f30"

func newAPI(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	store.AddCarrier(entity.Carrier{ID: carrierID, Key: "ASSA", Name: "ASSA Compañía de Seguros", Active: true})

	log := logger.Nop()
	registry := parsers.NewRegistry(commission.AliasBook{Default: commission.DefaultAliases()}, nil, nil)
	ingestUC := ingestion.NewIngestUseCase(
		store.Carriers(), store.Batches(), store.Items(),
		ingestion.NewDetector(registry),
		ingestion.NewBatchWriter(store.TxRunner(), store.Batches()),
		log,
	)
	exportUC := appexport.NewUseCase(
		store.Groups(),
		infraexport.NewExcelizeSettlement(),
		infraexport.NewMarotoGroupSummary(),
		infraexport.NewZipArchiver(),
		log,
	)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		IngestUC:     ingestUC,
		LedgerUC:     payments.NewLedgerUseCase(store.TxRunner(), store.Payments(), log),
		GroupUC:      payments.NewGroupUseCase(store.TxRunner(), store.Groups(), log),
		TransferUC:   transfers.NewUseCase(store.TxRunner(), store.Transfers(), log),
		RecurrenceUC: recurrence.NewUseCase(store.TxRunner(), store.Recurrences(), log),
		ExportUC:     exportUC,
		JWTSecret:    testJWTSecret,
	})
	return app
}

func send(t *testing.T, app *fiber.App, role, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", tokenForRole(t, role))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	out := map[string]any{}
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp, out
}

func createTransfer(t *testing.T, app *fiber.App, ref, amount string) string {
	t.Helper()
	resp, body := send(t, app, pkgjwt.RoleMaster, http.MethodPost, "/api/transfers", map[string]any{
		"bank_name":        "Banco General",
		"reference_number": ref,
		"amount":           amount,
		"transfer_date":    "2024-03-01",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	return body["id"].(string)
}

func createPayment(t *testing.T, app *fiber.App, policy, amount string) string {
	t.Helper()
	resp, body := send(t, app, pkgjwt.RoleMaster, http.MethodPost, "/api/payments", map[string]any{
		"client_name":   "Ana Díaz",
		"policy_number": policy,
		"carrier_id":    carrierID,
		"amount":        amount,
		"payment_date":  "2024-03-05",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	return body["id"].(string)
}

// ──────────────────────────────────────────────────────────────────────────────
// Transferencias y pagos
// ──────────────────────────────────────────────────────────────────────────────

func TestTransfers_ImportarYDuplicado(t *testing.T) {
	app := newAPI(t)
	createTransfer(t, app, "REF-001", "500.00")

	resp, body := send(t, app, pkgjwt.RoleMaster, http.MethodPost, "/api/transfers", map[string]any{
		"bank_name":        "Banco General",
		"reference_number": "REF-001",
		"amount":           "10",
		"transfer_date":    "2024-03-02",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "DUPLICATE", body["code"])
}

func TestPayments_CrearEsIdempotente(t *testing.T) {
	app := newAPI(t)
	req := map[string]any{
		"client_name":   "Ana Díaz",
		"policy_number": "P-100",
		"carrier_id":    carrierID,
		"amount":        "120.50",
		"payment_date":  "2024-03-05",
	}
	first, b1 := send(t, app, pkgjwt.RoleMaster, http.MethodPost, "/api/payments", req)
	require.Equal(t, http.StatusCreated, first.StatusCode)
	assert.Equal(t, true, b1["created"])

	second, b2 := send(t, app, pkgjwt.RoleMaster, http.MethodPost, "/api/payments", req)
	assert.Equal(t, http.StatusOK, second.StatusCode)
	assert.Equal(t, false, b2["created"])
	assert.Equal(t, b1["id"], b2["id"])
}

func TestPayments_ValidacionRetorna400(t *testing.T) {
	app := newAPI(t)
	resp, body := send(t, app, pkgjwt.RoleMaster, http.MethodPost, "/api/payments", map[string]any{
		"client_name":  "Sin póliza",
		"carrier_id":   carrierID,
		"amount":       "10",
		"payment_date": "05/03/2024",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body["code"])
}

func TestPayments_BrokerNoPuedeCrear(t *testing.T) {
	app := newAPI(t)
	resp, _ := send(t, app, pkgjwt.RoleBroker, http.MethodPost, "/api/payments", map[string]any{
		"client_name":   "Ana Díaz",
		"policy_number": "P-1",
		"carrier_id":    carrierID,
		"amount":        "10",
		"payment_date":  "2024-03-05",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	list, body := send(t, app, pkgjwt.RoleBroker, http.MethodGet, "/api/payments", nil)
	assert.Equal(t, http.StatusOK, list.StatusCode)
	assert.Contains(t, body, "items")
}

// ──────────────────────────────────────────────────────────────────────────────
// Ciclo de vida del grupo
// ──────────────────────────────────────────────────────────────────────────────

func TestGroups_ConfirmarPostearYExportar(t *testing.T) {
	app := newAPI(t)
	transferID := createTransfer(t, app, "REF-777", "200.00")
	p1 := createPayment(t, app, "P-1", "100.00")
	p2 := createPayment(t, app, "P-2", "50.25")

	resp, group := send(t, app, pkgjwt.RoleMaster, http.MethodPost, "/api/groups", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	groupID := group["id"].(string)
	assert.Equal(t, entity.GroupStatusDraft, group["status"])

	resp, confirmed := send(t, app, pkgjwt.RoleMaster, http.MethodPost, "/api/groups/"+groupID+"/confirm", map[string]any{
		"items": []map[string]any{
			{"pending_payment_id": p1, "amount_applied": "100.00"},
			{"pending_payment_id": p2, "amount_applied": "50.25"},
		},
		"references": []map[string]any{
			{"bank_transfer_id": transferID, "amount_used": "150.25"},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, confirmed)
	assert.Equal(t, entity.GroupStatusConfirmed, confirmed["status"])
	assert.Equal(t, "150.25", confirmed["total_amount"])

	_, transfer := send(t, app, pkgjwt.RoleBroker, http.MethodGet, "/api/transfers/"+transferID, nil)
	assert.Equal(t, "49.75", transfer["remaining_amount"])

	_, payment := send(t, app, pkgjwt.RoleBroker, http.MethodGet, "/api/payments/"+p1, nil)
	assert.Equal(t, entity.PaymentStatusGrouped, payment["status"])

	// Exportar antes de postear no está permitido.
	resp, _ = send(t, app, pkgjwt.RoleBroker, http.MethodGet, "/api/groups/"+groupID+"/export", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, posted := send(t, app, pkgjwt.RoleMaster, http.MethodPost, "/api/groups/"+groupID+"/post", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, posted)
	assert.Equal(t, entity.GroupStatusPosted, posted["status"])

	_, payment = send(t, app, pkgjwt.RoleBroker, http.MethodGet, "/api/payments/"+p1, nil)
	assert.Equal(t, entity.PaymentStatusPaid, payment["status"])

	resp, _ = send(t, app, pkgjwt.RoleBroker, http.MethodGet, "/api/groups/"+groupID+"/export", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, appexport.ContentTypeXLSX, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "_ASSA_Compania_de_Seguros.xlsx")

	resp, _ = send(t, app, pkgjwt.RoleBroker, http.MethodGet, "/api/groups/"+groupID+"/summary.pdf", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, appexport.ContentTypePDF, resp.Header.Get("Content-Type"))
}

func TestGroups_FondosInsuficientesRetorna422(t *testing.T) {
	app := newAPI(t)
	transferID := createTransfer(t, app, "REF-900", "100.00")
	p1 := createPayment(t, app, "P-9", "150.00")

	_, group := send(t, app, pkgjwt.RoleMaster, http.MethodPost, "/api/groups", nil)
	groupID := group["id"].(string)

	resp, body := send(t, app, pkgjwt.RoleMaster, http.MethodPost, "/api/groups/"+groupID+"/confirm", map[string]any{
		"items":      []map[string]any{{"pending_payment_id": p1, "amount_applied": "150.00"}},
		"references": []map[string]any{{"bank_transfer_id": transferID, "amount_used": "100.00"}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_FUNDS", body["code"])

	// Nada cambió: el pago sigue seleccionable y la transferencia intacta.
	_, payment := send(t, app, pkgjwt.RoleBroker, http.MethodGet, "/api/payments/"+p1, nil)
	assert.Equal(t, entity.PaymentStatusPending, payment["status"])
	_, transfer := send(t, app, pkgjwt.RoleBroker, http.MethodGet, "/api/transfers/"+transferID, nil)
	assert.Equal(t, "100", transfer["remaining_amount"])
}

func TestGroups_NoEncontrado(t *testing.T) {
	app := newAPI(t)
	resp, body := send(t, app, pkgjwt.RoleBroker, http.MethodGet, "/api/groups/no-existe", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", body["code"])
}

func TestIDsMalformados_NoRetornan500(t *testing.T) {
	app := newAPI(t)
	transferID := createTransfer(t, app, "REF-404", "100.00")
	_, group := send(t, app, pkgjwt.RoleMaster, http.MethodPost, "/api/groups", nil)
	groupID := group["id"].(string)

	for _, path := range []string{
		"/api/payments/abc",
		"/api/transfers/abc",
		"/api/imports/abc",
		"/api/recurrences/abc",
		"/api/groups/abc/export",
	} {
		resp, body := send(t, app, pkgjwt.RoleBroker, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
		assert.Equal(t, "NOT_FOUND", body["code"], path)
	}

	resp, body := send(t, app, pkgjwt.RoleMaster, http.MethodPost, "/api/groups/"+groupID+"/confirm", map[string]any{
		"items":      []map[string]any{{"pending_payment_id": "abc", "amount_applied": "10.00"}},
		"references": []map[string]any{{"bank_transfer_id": transferID, "amount_used": "10.00"}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body["code"])

	resp, body = send(t, app, pkgjwt.RoleMaster, http.MethodPost, "/api/payments", map[string]any{
		"client_name":   "Ana Díaz",
		"policy_number": "P-1",
		"carrier_id":    "carrier-assa",
		"amount":        "10.00",
		"payment_date":  "2024-03-05",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body["code"])

	resp, body = send(t, app, pkgjwt.RoleBroker, http.MethodGet, "/api/payments?carrier_id=abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body["code"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Carga de archivos
// ──────────────────────────────────────────────────────────────────────────────

func TestImports_SubirCSV(t *testing.T) {
	app := newAPI(t)
	csv := "Estado de comisiones;;\nPóliza;Asegurado;Comisión\nA100;Juan Perez;200,00\nA200;Ana Diaz;-30\n"

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("carrier_id", carrierID))
	require.NoError(t, mw.WriteField("period_id", "2024-03"))
	require.NoError(t, mw.WriteField("total_amount", "170.00"))
	fw, err := mw.CreateFormFile("file", "comisiones.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/imports", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", tokenForRole(t, pkgjwt.RoleMaster))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	assert.Equal(t, float64(2), body["item_count"])
	assert.Equal(t, "170", body["parsed_total"])
	assert.Equal(t, "0", body["difference"])

	list, batches := send(t, app, pkgjwt.RoleBroker, http.MethodGet, "/api/imports/"+body["batch_id"].(string), nil)
	assert.Equal(t, http.StatusOK, list.StatusCode)
	assert.Equal(t, "comisiones.csv", batches["file_name"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Recurrencias
// ──────────────────────────────────────────────────────────────────────────────

func TestRecurrences_CrearMaterializarYConfirmar(t *testing.T) {
	app := newAPI(t)
	req := map[string]any{
		"client_name":        "Luis Gómez",
		"policy_number":      "R-300",
		"carrier_id":         carrierID,
		"total_installments": 3,
		"installment_amount": "45.00",
		"start_date":         "2024-01-15",
	}
	resp, rec := send(t, app, pkgjwt.RoleMaster, http.MethodPost, "/api/recurrences", req)
	require.Equal(t, http.StatusCreated, resp.StatusCode, rec)
	assert.Equal(t, "2024-01-15", rec["next_due_date"])

	again, dup := send(t, app, pkgjwt.RoleMaster, http.MethodPost, "/api/recurrences", req)
	assert.Equal(t, http.StatusOK, again.StatusCode)
	assert.Equal(t, rec["id"], dup["id"])

	resp, report := send(t, app, pkgjwt.RoleMaster, http.MethodPost, "/api/recurrences/materialize?date=2024-01-20", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), report["created"])

	_, list := send(t, app, pkgjwt.RoleBroker, http.MethodGet, "/api/payments?status=PENDIENTE_CONFIRMACION", nil)
	items := list["items"].([]any)
	require.Len(t, items, 1)
	paymentID := items[0].(map[string]any)["id"].(string)

	resp, _ = send(t, app, pkgjwt.RoleMaster, http.MethodPost, "/api/payments/"+paymentID+"/confirm", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, payment := send(t, app, pkgjwt.RoleBroker, http.MethodGet, "/api/payments/"+paymentID, nil)
	assert.Equal(t, entity.PaymentStatusPending, payment["status"])
}

func TestRecurrences_CancelarSinMotivoRetorna400(t *testing.T) {
	app := newAPI(t)
	resp, body := send(t, app, pkgjwt.RoleMaster, http.MethodPost, "/api/recurrences/9a1d2c3e-4b5f-4a6b-8c7d-0e1f2a3b4c5d/cancel", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body["code"])
}
