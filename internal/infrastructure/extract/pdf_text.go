package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFText extrae el texto de un PDF agrupado por filas visuales, una línea por fila.
type PDFText struct{}

// NewPDFText construye el extractor.
func NewPDFText() *PDFText { return &PDFText{} }

// Lines devuelve las filas de texto de todas las páginas en orden.
func (e *PDFText) Lines(ctx context.Context, content []byte) (lines []string, err error) {
	defer func() {
		// la librería entra en pánico con algunos PDF corruptos
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf ilegible: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("abrir pdf: %w", err)
	}
	for n := 1; n <= reader.NumPage(); n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(n)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("leer página %d: %w", n, err)
		}
		for _, row := range rows {
			var b strings.Builder
			for _, word := range row.Content {
				b.WriteString(word.S)
			}
			if l := strings.TrimSpace(b.String()); l != "" {
				lines = append(lines, l)
			}
		}
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("el pdf no contiene texto extraíble")
	}
	return lines, nil
}
