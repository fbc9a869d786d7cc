package ocr_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Comisiones-api/internal/infrastructure/ocr"
)

func visionServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "clave", r.URL.Query().Get("key"))
		var req map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestVision_DevuelveLineas(t *testing.T) {
	srv := visionServer(t, http.StatusOK, `{"responses":[{"fullTextAnnotation":{"text":"VOUCHER\n1234567890 PEREZ, JUAN\n\n 12.50 \n"}}]}`)
	svc := ocr.NewVisionService("clave", srv.URL, time.Second)

	lines, err := svc.Lines(context.Background(), []byte{0x89, 'P', 'N', 'G'})
	require.NoError(t, err)
	assert.Equal(t, []string{"VOUCHER", "1234567890 PEREZ, JUAN", "12.50"}, lines)
}

func TestVision_ErrorDeLaAPI(t *testing.T) {
	srv := visionServer(t, http.StatusForbidden, `{"error":{"code":403,"message":"API key not valid"}}`)
	svc := ocr.NewVisionService("clave", srv.URL, time.Second)

	_, err := svc.Text(context.Background(), []byte("img"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key not valid")
}

func TestVision_SinTexto(t *testing.T) {
	srv := visionServer(t, http.StatusOK, `{"responses":[{}]}`)
	svc := ocr.NewVisionService("clave", srv.URL, time.Second)

	_, err := svc.Text(context.Background(), []byte("img"))
	require.Error(t, err)
}

func TestVision_SinClave(t *testing.T) {
	svc := ocr.NewVisionService("", "", 0)
	_, err := svc.Text(context.Background(), []byte("img"))
	assert.ErrorIs(t, err, ocr.ErrNoAPIKey)
}
