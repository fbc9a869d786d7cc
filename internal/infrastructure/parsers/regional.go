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

var regionalNameOnly = regexp.MustCompile(`^[A-ZÑÁÉÍÓÚÜ\s,.]+$`)

// RegionalPDF estrategia para el PDF de REGIONAL, que también se extrae por columnas: la
// póliza completa se arma como sucursal-ramo-número-certificado.
type RegionalPDF struct {
	text LineSource
}

// NewRegionalPDF construye la estrategia con el extractor de texto PDF.
func NewRegionalPDF(text LineSource) *RegionalPDF { return &RegionalPDF{text: text} }

func (p *RegionalPDF) Parse(ctx context.Context, in ingestion.Input) ([]commission.Row, error) {
	lines, err := p.text.Lines(ctx, in.File.Content)
	if err != nil {
		return nil, &domain.ParseError{Carrier: in.CarrierKey, Cause: err}
	}
	return ParseRegionalLines(lines), nil
}

// ParseRegionalLines alinea las columnas póliza, nombre y "Monto C. Pagado".
func ParseRegionalLines(lines []string) []commission.Row {
	lines = SplitLines(strings.Join(lines, "\n"))

	policies := digitRun(lines, indexWhere(lines, 0, lineIs("RAMO")), 0, 6, 10)
	ramos := digitRun(lines, indexWhere(lines, 0, lineIs("NRO.")), 1, 1, 3)
	var branches []string
	if idx := indexWhere(lines, 0, lineIs("SUC.")); idx > 0 {
		for _, d := range digitsBefore(lines, idx) {
			if len(d) <= 2 {
				branches = append(branches, d)
			}
		}
	}

	var (
		amounts []decimal.Decimal
		certs   []string
	)
	if idx := indexWhere(lines, 0, func(l string) bool { return strings.HasPrefix(foldUpper(l), "MONTO C.") }); idx >= 0 {
		i := idx + 1
		if i < len(lines) && foldUpper(lines[i]) == "PAGADO" {
			i++
		}
		for ; i < len(lines) && moneyOnly.MatchString(lines[i]); i++ {
			d, _ := commission.ParseAmount(lines[i])
			amounts = append(amounts, d)
		}
		// los certificados siguen a los montos hasta el encabezado "Cert"
		for ; i < len(lines) && foldUpper(lines[i]) != "CERT" && digitsOnly.MatchString(lines[i]); i++ {
			if len(lines[i]) <= 4 {
				certs = append(certs, lines[i])
			}
		}
	}

	names := regionalNames(lines)

	// El bloque de montos puede traer subtotales al inicio: se toman los últimos.
	if expected := min(len(policies), len(names)); expected > 0 && len(amounts) > expected {
		amounts = amounts[len(amounts)-expected:]
	}

	n := min(len(policies), len(names), len(amounts))
	rows := make([]commission.Row, 0, n)
	for i := 0; i < n; i++ {
		policy := policies[i]
		suc, ramo, cert := nth(branches, i), nth(ramos, i), nth(certs, i)
		if cert == "" {
			cert = "0"
		}
		if suc != "" && ramo != "" {
			policy = suc + "-" + ramo + "-" + policy + "-" + cert
		}
		if !amounts[i].IsPositive() {
			continue
		}
		rows = append(rows, commission.Row{
			PolicyNumber: policy,
			InsuredName:  names[i],
			Amount:       amounts[i],
			Raw:          map[string]string{"policy": policies[i]},
		})
	}
	return rows
}

// digitRun líneas numéricas de largo [minLen, maxLen] tras el marcador, saltando skip líneas.
func digitRun(lines []string, marker, skip, minLen, maxLen int) []string {
	if marker < 0 {
		return nil
	}
	var out []string
	for i := marker + 1 + skip; i < len(lines) && digitsOnly.MatchString(lines[i]); i++ {
		if len(lines[i]) >= minLen && len(lines[i]) <= maxLen {
			out = append(out, lines[i])
		}
	}
	return out
}

// nth valor i de la columna o, si falta, el primero (sucursal y ramo suelen repetirse).
func nth(values []string, i int) string {
	switch {
	case i < len(values):
		return values[i]
	case len(values) > 0:
		return values[0]
	}
	return ""
}

// regionalNames lista de nombres bajo "Operación". Un nombre partido en dos líneas deja una
// continuación corta (una o dos palabras) que se une al anterior.
func regionalNames(lines []string) []string {
	start := indexWhere(lines, 0, lineIs("OPERACION"))
	if start < 0 {
		return nil
	}
	var names []string
	for _, l := range lines[start+1:] {
		u := strings.ToUpper(l)
		if strings.HasPrefix(u, "NOMBRE ASEGURADO") || u == "CERT" {
			break
		}
		if strings.Contains(u, "PAGO DE") || strings.HasPrefix(u, "TOTAL ") ||
			moneyOnly.MatchString(l) || digitsOnly.MatchString(l) {
			continue
		}
		continuation := (len(strings.Fields(l)) <= 2 || len([]rune(l)) <= 12) && regionalNameOnly.MatchString(u)
		if continuation && len(names) > 0 {
			names[len(names)-1] = commission.CleanText(names[len(names)-1] + " " + l)
			continue
		}
		names = append(names, commission.CleanText(l))
	}
	return names
}
