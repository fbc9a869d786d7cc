package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNoAPIKey el servicio no tiene VISION_API_KEY configurada.
var ErrNoAPIKey = errors.New("OCR: VISION_API_KEY no configurado")

const defaultEndpoint = "https://vision.googleapis.com/v1/images:annotate"

// VisionService adaptador de la API REST de Google Cloud Vision (DOCUMENT_TEXT_DETECTION).
type VisionService struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// NewVisionService construye el adaptador. endpoint vacío usa el de producción.
func NewVisionService(apiKey, endpoint string, timeout time.Duration) *VisionService {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &VisionService{
		apiKey:     apiKey,
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ── Estructuras de la API de Vision ───────────────────────────────────────────

type annotateRequest struct {
	Requests []imageRequest `json:"requests"`
}

type imageRequest struct {
	Image        imageContent `json:"image"`
	Features     []feature    `json:"features"`
	ImageContext *imageCtx    `json:"imageContext,omitempty"`
}

type imageContent struct {
	Content string `json:"content"`
}

type feature struct {
	Type string `json:"type"`
}

type imageCtx struct {
	LanguageHints []string `json:"languageHints,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type annotateResponse struct {
	Responses []struct {
		FullTextAnnotation *struct {
			Text string `json:"text"`
		} `json:"fullTextAnnotation"`
		Error *apiError `json:"error"`
	} `json:"responses"`
	Error *apiError `json:"error"`
}

// Text devuelve el texto completo detectado en la imagen.
func (s *VisionService) Text(ctx context.Context, image []byte) (string, error) {
	if s.apiKey == "" {
		return "", ErrNoAPIKey
	}

	payload := annotateRequest{Requests: []imageRequest{{
		Image:        imageContent{Content: base64.StdEncoding.EncodeToString(image)},
		Features:     []feature{{Type: "DOCUMENT_TEXT_DETECTION"}},
		ImageContext: &imageCtx{LanguageHints: []string{"es", "en"}},
	}}}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("OCR: serializar request: %w", err)
	}

	u := s.endpoint + "?key=" + url.QueryEscape(s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("OCR: crear HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("OCR: timeout o cancelación: %w", ctx.Err())
		}
		return "", fmt.Errorf("OCR: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("OCR: leer respuesta: %w", err)
	}

	var out annotateResponse
	if resp.StatusCode != http.StatusOK {
		if jsonErr := json.Unmarshal(rawBody, &out); jsonErr == nil && out.Error != nil {
			return "", fmt.Errorf("OCR: Vision error %d: %s", out.Error.Code, out.Error.Message)
		}
		return "", fmt.Errorf("OCR: Vision HTTP %d", resp.StatusCode)
	}
	if err := json.Unmarshal(rawBody, &out); err != nil {
		return "", fmt.Errorf("OCR: deserializar respuesta: %w", err)
	}
	if len(out.Responses) == 0 {
		return "", fmt.Errorf("OCR: Vision devolvió respuesta vacía")
	}
	first := out.Responses[0]
	if first.Error != nil {
		return "", fmt.Errorf("OCR: Vision error %d: %s", first.Error.Code, first.Error.Message)
	}
	if first.FullTextAnnotation == nil || strings.TrimSpace(first.FullTextAnnotation.Text) == "" {
		return "", fmt.Errorf("OCR: no se detectó texto en la imagen")
	}
	return first.FullTextAnnotation.Text, nil
}

// Lines texto detectado partido en líneas no vacías.
func (s *VisionService) Lines(ctx context.Context, image []byte) ([]string, error) {
	text, err := s.Text(ctx, image)
	if err != nil {
		return nil, err
	}
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines, nil
}
