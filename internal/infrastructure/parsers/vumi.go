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

// Secciones del estado VUMI; cada una es una tabla independiente dentro del mismo PDF.
var vumiSections = map[string]bool{
	"NUEVOS NEGOCIOS": true,
	"RENOVACIONES":    true,
	"OTROS AJUSTES":   true,
}

var (
	vumiPolicy    = regexp.MustCompile(`\b(\d{10})\b`)
	vumiDate      = regexp.MustCompile(`\d{2}/\d{2}/\d{4}`)
	vumiRowStart  = regexp.MustCompile(`^\d{10}`)
	vumiMoney     = regexp.MustCompile(`\$\s?([\d,]+(?:\.\d+)?)`)
	vumiNameToken = regexp.MustCompile(`^[A-ZÑÁÉÍÓÚÜ]+$`)
)

// vumiLookahead líneas siguientes a la póliza donde pueden aparecer nombre y comisión.
const vumiLookahead = 10

var vumiStopWords = []string{"COMMISSION", "LIDERES", "LISSA", "SEGUROS", "AGENTE", "GRUPO"}

// VumiPDF estrategia por secciones para el PDF de VUMI.
type VumiPDF struct {
	text LineSource
}

// NewVumiPDF construye la estrategia con el extractor de texto PDF.
func NewVumiPDF(text LineSource) *VumiPDF { return &VumiPDF{text: text} }

func (p *VumiPDF) Parse(ctx context.Context, in ingestion.Input) ([]commission.Row, error) {
	lines, err := p.text.Lines(ctx, in.File.Content)
	if err != nil {
		return nil, &domain.ParseError{Carrier: in.CarrierKey, Cause: err}
	}
	return parseVumiLines(lines), nil
}

func parseVumiLines(lines []string) []commission.Row {
	var (
		rows    []commission.Row
		section string
		inData  bool
	)
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		upper := strings.ToUpper(line)

		if !inData && vumiSections[upper] {
			section = upper
			continue
		}
		if section != "" && !inData {
			if containsAny(upper, "NÚMERO", "PÓLIZA", "TITULAR", "MONTO") {
				continue
			}
			if vumiDate.MatchString(line) || vumiRowStart.MatchString(line) {
				inData = true
			}
		}
		if inData && containsAny(upper, "NO GENERÓ COMISIONES", "TOTAL") {
			inData, section = false, ""
			continue
		}
		if section == "" || !inData {
			continue
		}

		m := vumiPolicy.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name, amount := vumiScan(lines[i:min(i+vumiLookahead, len(lines))])
		if len(name) < 2 || !amount.IsPositive() {
			continue
		}
		rows = append(rows, commission.Row{
			PolicyNumber: m[1],
			InsuredName:  strings.Join(name, " "),
			Amount:       amount,
			Raw:          map[string]string{"section": section, "line": line},
		})
		i += 5
	}
	return rows
}

// vumiScan junta los tokens en mayúsculas del nombre y toma el último monto con $ como comisión.
func vumiScan(window []string) ([]string, decimal.Decimal) {
	var (
		name   []string
		amount decimal.Decimal
	)
	for _, l := range window {
		u := strings.ToUpper(l)
		if containsAny(u, "TOTAL", "NO GENERÓ", "CICLO DE") {
			break
		}
		if ms := vumiMoney.FindAllStringSubmatch(l, -1); len(ms) > 0 {
			if d, ok := commission.ParseAmount(ms[len(ms)-1][1]); ok {
				amount = d
			}
		}
		for _, w := range strings.Fields(l) {
			wu := strings.ToUpper(w)
			if len([]rune(w)) > 2 && vumiNameToken.MatchString(wu) && !containsAny(wu, vumiStopWords...) {
				name = append(name, w)
			}
		}
	}
	return name, amount
}
