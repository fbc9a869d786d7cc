package parsers

import (
	"context"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Comisiones-api/internal/application/ingestion"
	"github.com/jhoicas/Comisiones-api/internal/domain"
	"github.com/jhoicas/Comisiones-api/internal/domain/commission"
)

var (
	assistMoney = regexp.MustCompile(`^-?\d+\.\d+$`)
	assistDigit = regexp.MustCompile(`^\d{6,}$`)
)

var assistHeaderWords = []string{"AGENCY", "DOC", "VOUCHER", "NOMBRE", "PAX", "NET", "SALES", "COMISSION", "COMMISSION"}

// AssistcardImage estrategia OCR para los reportes de ASSISTCARD enviados como imagen.
type AssistcardImage struct {
	ocr LineSource
}

// NewAssistcardImage construye la estrategia con el servicio OCR.
func NewAssistcardImage(ocr LineSource) *AssistcardImage { return &AssistcardImage{ocr: ocr} }

func (p *AssistcardImage) Parse(ctx context.Context, in ingestion.Input) ([]commission.Row, error) {
	lines, err := p.ocr.Lines(ctx, in.File.Content)
	if err != nil {
		return nil, &domain.ParseError{Carrier: in.CarrierKey, Cause: err}
	}
	return ParseAssistcardLines(lines), nil
}

// ParseAssistcardLines lee el texto OCR en bloques (voucher + nombre, luego montos bajo el
// encabezado de comisión). Si no encuentra bloques intenta una fila por línea.
func ParseAssistcardLines(lines []string) []commission.Row {
	if rows := assistcardBlocks(lines); len(rows) > 0 {
		return rows
	}
	return assistcardInline(lines)
}

type assistPending struct {
	voucher string
	name    string
}

func assistcardBlocks(lines []string) []commission.Row {
	var (
		rows       []commission.Row
		pending    *assistPending
		seenHeader bool
		captured   []decimal.Decimal
	)
	emit := func(amount decimal.Decimal) {
		if !amount.IsZero() {
			rows = append(rows, commission.Row{
				PolicyNumber: pending.voucher,
				InsuredName:  pending.name,
				Amount:       amount,
				Raw:          map[string]string{"voucher": pending.voucher, "name": pending.name},
			})
		}
		pending, seenHeader, captured = nil, false, nil
	}

	for i, line := range lines {
		upper := strings.ToUpper(line)
		if containsAny(upper, assistHeaderWords...) {
			if containsAny(upper, "COMISSION", "COMMISSION") {
				seenHeader = true
				captured = nil
			}
			continue
		}

		if pending != nil && seenHeader && assistMoney.MatchString(line) {
			if d, ok := commission.ParseAmount(line); ok && !d.IsZero() {
				captured = append(captured, d)
			}
			switch {
			case len(captured) >= 2:
				// neto de ventas y luego comisión
				emit(captured[1])
			case len(captured) == 1 && (i+1 >= len(lines) || !assistMoney.MatchString(lines[i+1])):
				emit(captured[0])
			}
			continue
		}

		tokens := strings.Fields(line)
		voucher, lastDigit := "", -1
		for idx, t := range tokens {
			if !assistDigit.MatchString(t) {
				continue
			}
			if voucher == "" || (len(t) == 10 && len(voucher) != 10) {
				voucher = t
			}
			lastDigit = idx
		}
		if voucher == "" || !strings.Contains(line, ",") {
			continue
		}
		if name := strings.Join(tokens[lastDigit+1:], " "); name != "" {
			pending = &assistPending{voucher: voucher, name: name}
			seenHeader = false
		}
	}
	return rows
}

func assistcardInline(lines []string) []commission.Row {
	var rows []commission.Row
	for _, line := range lines {
		if containsAny(strings.ToUpper(line), assistHeaderWords...) {
			continue
		}
		tokens := strings.Fields(line)
		if len(tokens) < 4 {
			continue
		}
		firstDigit, commissionIdx := -1, -1
		for idx, t := range tokens {
			if firstDigit < 0 && assistDigit.MatchString(t) {
				firstDigit = idx
			}
			if assistMoney.MatchString(t) {
				commissionIdx = idx
			}
		}
		if firstDigit < 0 || commissionIdx < 0 {
			continue
		}
		amount, ok := commission.ParseAmount(tokens[commissionIdx])
		if !ok || amount.IsZero() {
			continue
		}

		voucher, nameStart := "", firstDigit+1
		for idx := firstDigit; idx < len(tokens) && idx < firstDigit+3; idx++ {
			if !assistDigit.MatchString(tokens[idx]) {
				break
			}
			if voucher == "" || (len(tokens[idx]) == 10 && len(voucher) != 10) {
				voucher = tokens[idx]
			}
			nameStart = idx + 1
		}
		if nameStart >= commissionIdx {
			continue
		}
		name := strings.Join(tokens[nameStart:commissionIdx], " ")
		rows = append(rows, commission.Row{
			PolicyNumber: voucher,
			InsuredName:  name,
			Amount:       amount,
			Raw:          map[string]string{"line": line},
		})
	}
	return rows
}
