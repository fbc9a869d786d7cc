package parsers

import (
	"context"
	"regexp"
	"strings"

	"github.com/jhoicas/Comisiones-api/internal/application/ingestion"
	"github.com/jhoicas/Comisiones-api/internal/domain"
	"github.com/jhoicas/Comisiones-api/internal/domain/commission"
)

var (
	// nombre (última secuencia de letras) seguido del bloque comisión+póliza pegado.
	paligName       = regexp.MustCompile(`(?i)([A-ZÑÁÉÍÓÚÜ][A-ZÑÁÉÍÓÚÜ\s,.]*)\s*\d+\.?\d*`)
	paligCommission = regexp.MustCompile(`^(\d+\.\d{2})`)
	paligAlphaPol   = regexp.MustCompile(`(?i)^([A-Z]\d+)`)
	paligNumPol     = regexp.MustCompile(`^(\d+-?\d*)`)
)

// PaligPDF estrategia para el PDF de PALIG: varias tablas (una por línea de negocio) en el
// mismo documento, cada una abierta por el encabezado "PÓLIZA / CERT".
type PaligPDF struct {
	text LineSource
}

// NewPaligPDF construye la estrategia con el extractor de texto PDF.
func NewPaligPDF(text LineSource) *PaligPDF { return &PaligPDF{text: text} }

func (p *PaligPDF) Parse(ctx context.Context, in ingestion.Input) ([]commission.Row, error) {
	lines, err := p.text.Lines(ctx, in.File.Content)
	if err != nil {
		return nil, &domain.ParseError{Carrier: in.CarrierKey, Cause: err}
	}
	return parsePaligLines(lines), nil
}

func parsePaligLines(lines []string) []commission.Row {
	var (
		rows   []commission.Row
		inData bool
	)
	for _, line := range lines {
		upper := strings.ToUpper(line)
		if strings.Contains(upper, "PÓLIZA") && strings.Contains(upper, "CERT") {
			inData = true
			continue
		}
		if strings.HasPrefix(upper, "TOTAL") ||
			containsAny(upper, "LINEA DE NEGOCIO", "CODIGO DE AGENTE", "REGULADO Y SUPERVISADO") {
			inData = false
			continue
		}
		if !inData {
			continue
		}
		if row, ok := paligRow(line); ok {
			rows = append(rows, row)
		}
	}
	return rows
}

// paligRow separa "PRIMA % DÉBITOS CRÉDITOS NOMBRE COMISIÓNPÓLIZA [/ CERT]".
// La comisión siempre trae dos decimales; lo que sigue es la póliza.
func paligRow(line string) (commission.Row, bool) {
	loc := paligName.FindStringSubmatchIndex(line)
	if loc == nil {
		return commission.Row{}, false
	}
	name := strings.TrimSpace(line[loc[2]:loc[3]])
	rest := strings.TrimSpace(line[loc[3]:])

	cm := paligCommission.FindString(rest)
	if cm == "" {
		return commission.Row{}, false
	}
	amount, ok := commission.ParseAmount(cm)
	if !ok {
		return commission.Row{}, false
	}

	policyPart := strings.TrimSpace(rest[len(cm):])
	if before, _, found := strings.Cut(policyPart, "/"); found {
		policyPart = strings.TrimSpace(before)
	}
	var policy string
	if m := paligAlphaPol.FindStringSubmatch(policyPart); m != nil {
		policy = m[1]
	} else if m := paligNumPol.FindStringSubmatch(policyPart); m != nil {
		policy = strings.TrimLeft(m[1], "0")
	}
	if len(policy) < 4 {
		return commission.Row{}, false
	}
	if strings.Contains(rest, "(") {
		amount = amount.Abs().Neg()
	}
	if containsAny(strings.ToUpper(name), "REFERENCIA", "PRIMA", "DÉBITOS", "TOTAL") {
		return commission.Row{}, false
	}
	return commission.Row{
		PolicyNumber: policy,
		InsuredName:  commission.CleanText(name),
		Amount:       amount,
		Raw:          map[string]string{"line": line},
	}, true
}
