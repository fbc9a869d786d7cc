package parsers

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jhoicas/Comisiones-api/internal/application/ingestion"
	"github.com/jhoicas/Comisiones-api/internal/domain"
	"github.com/jhoicas/Comisiones-api/internal/domain/commission"
)

var (
	ifsPolicy  = regexp.MustCompile(`[A-Z]{2,10}-\d{2,6}(?:-[A-Z]-\d{1,3})?`)
	ifsPercent = regexp.MustCompile(`\d{1,3}(?:\.\d+)?%`)
	ifsMoney   = regexp.MustCompile(`\d{1,3}(?:,\d{3})*\.\d{2}|\d+\.\d{2}`)
	ifsDigitUp = regexp.MustCompile(`(\d)([A-Z])`)
	ifsUpDigit = regexp.MustCompile(`([A-Z])(\d)`)
	ifsSpaces  = regexp.MustCompile(`\s{2,}`)
)

// ifsMinText por debajo de esta cantidad de caracteres el PDF se considera escaneado.
const ifsMinText = 100

// IFSPDF estrategia para el PDF de IFS. Sus fuentes no traen tabla ToUnicode y el texto sale
// en el área de uso privado (U+F020..U+F07E); se decodifica restando 0xF000.
type IFSPDF struct {
	text LineSource
	ocr  LineSource
}

// NewIFSPDF construye la estrategia. ocr es opcional y se usa con PDF escaneados.
func NewIFSPDF(text, ocr LineSource) *IFSPDF { return &IFSPDF{text: text, ocr: ocr} }

func (p *IFSPDF) Parse(ctx context.Context, in ingestion.Input) ([]commission.Row, error) {
	lines, err := p.lines(ctx, in.File.Content)
	if err != nil {
		return nil, &domain.ParseError{Carrier: in.CarrierKey, Cause: err}
	}
	rows := ParseIFSLines(lines)
	if len(rows) == 0 {
		return nil, &domain.ParseError{Carrier: in.CarrierKey, Cause: fmt.Errorf("no se detectaron filas póliza / %% / comisión")}
	}
	return rows, nil
}

func (p *IFSPDF) lines(ctx context.Context, content []byte) ([]string, error) {
	lines, err := p.text.Lines(ctx, content)
	if err == nil && len(strings.Join(lines, "")) >= ifsMinText {
		return lines, nil
	}
	if p.ocr == nil {
		if err == nil {
			err = errors.New("PDF escaneado: conviértalo a imagen o habilite OCR")
		}
		return nil, err
	}
	lines, err = p.ocr.Lines(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("OCR del PDF escaneado: %w", err)
	}
	return lines, nil
}

// ParseIFSLines toma por fila la póliza, el nombre entre póliza y porcentaje, y el primer
// monto después del porcentaje.
func ParseIFSLines(lines []string) []commission.Row {
	var rows []commission.Row
	for _, raw := range lines {
		line := strings.ToUpper(normalizeIFS(raw))
		pl := ifsPolicy.FindStringIndex(line)
		if pl == nil {
			continue
		}
		pc := ifsPercent.FindStringIndex(line)
		if pc == nil {
			continue
		}
		money := ifsMoney.FindString(line[pc[1]:])
		amount, ok := commission.ParseAmount(money)
		if !ok || amount.IsZero() {
			continue
		}
		var name string
		if pc[0] > pl[1] {
			if n := commission.CleanText(line[pl[1]:pc[0]]); ifsLikelyName(n) {
				name = n
			}
		}
		rows = append(rows, commission.Row{
			PolicyNumber: line[pl[0]:pl[1]],
			InsuredName:  name,
			Amount:       amount,
			Raw:          map[string]string{"line": line},
		})
	}
	return rows
}

// normalizeIFS decodifica los glifos privados, descarta lo que no es ASCII imprimible y separa
// dígitos y letras que la fuente dejó pegados.
func normalizeIFS(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= 0xF020 && r <= 0xF07E {
			r -= 0xF000
		}
		if r < 0x20 || r > 0x7E {
			r = ' '
		}
		b.WriteRune(r)
	}
	t := ifsDigitUp.ReplaceAllString(b.String(), "$1 $2")
	t = ifsUpDigit.ReplaceAllString(t, "$1 $2")
	return strings.TrimSpace(ifsSpaces.ReplaceAllString(t, " "))
}

func ifsLikelyName(s string) bool {
	if containsAny(s, "DETALLE", "COMISION", "RESUMEN", "LIDERES EN SEGUROS") {
		return false
	}
	letters := 0
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			letters++
		}
	}
	return letters >= 6
}
