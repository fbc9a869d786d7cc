package parsers

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Comisiones-api/internal/application/ingestion"
	"github.com/jhoicas/Comisiones-api/internal/domain"
	"github.com/jhoicas/Comisiones-api/internal/domain/commission"
)

// Algunos PDF se extraen columna por columna: cada encabezado ("Póliza", "Asegurado",
// "Ganados") queda en su propia línea y sus valores forman un bloque contiguo antes o
// después de él. Las funciones de este archivo rearman las filas alineando esos bloques.

var (
	digitsOnly  = regexp.MustCompile(`^\d+$`)
	moneyOnly   = regexp.MustCompile(`^\d+\.\d{2}$`)
	numericCell = regexp.MustCompile(`^[-+]?\d+[\d.,]*%?$`)
	periodNote  = regexp.MustCompile(`^\d{2}\s+AL\s+\d{2}\s+DE`)
	hasLetter   = regexp.MustCompile(`[A-ZÑ]`)
)

var reportNotes = []string{
	"PAGO DE", "HONORARIOS", "PROFESIONALES", "ENERO", "FEBRERO", "MARZO", "ABRIL", "MAYO", "JUNIO",
	"JULIO", "AGOSTO", "SEPTIEMBRE", "OCTUBRE", "NOVIEMBRE", "DICIEMBRE",
}

// foldUpper mayúsculas sin tildes, para comparar encabezados.
func foldUpper(s string) string {
	return strings.ToUpper(commission.FoldAccents(strings.TrimSpace(s)))
}

func indexWhere(lines []string, from int, match func(string) bool) int {
	for i := max(from, 0); i < len(lines); i++ {
		if match(lines[i]) {
			return i
		}
	}
	return -1
}

func lineIs(header string) func(string) bool {
	return func(l string) bool { return foldUpper(l) == header }
}

// between líneas estrictamente entre dos índices; vacío si alguno falta o están invertidos.
func between(lines []string, start, end int) []string {
	if start < 0 || end < 0 || end <= start {
		return nil
	}
	return lines[start+1 : end]
}

// digitsBefore bloque contiguo de líneas numéricas que termina justo antes de idx.
func digitsBefore(lines []string, idx int) []string {
	start := idx
	for start > 0 && digitsOnly.MatchString(lines[start-1]) {
		start--
	}
	if idx <= 0 || start == idx {
		return nil
	}
	return lines[start:idx]
}

// digitsAfter bloque contiguo de líneas numéricas que empieza justo después de idx, sin pasar stop.
func digitsAfter(lines []string, idx, stop int) []string {
	var out []string
	for i := idx + 1; i < len(lines) && i < stop; i++ {
		if !digitsOnly.MatchString(lines[i]) {
			break
		}
		out = append(out, lines[i])
	}
	return out
}

// ColumnReportPDF estrategia para los estados "Ref / Fecha / Tipo / Póliza / Asegurado /
// %Comisión / Ganados" que comparten ALIADO, MB y OPTIMA. La póliza viene partida en cuatro
// segmentos (ramo, subramo, número, certificado) y se arma como 01-02-000123-0.
type ColumnReportPDF struct {
	text LineSource
}

// NewColumnReportPDF construye la estrategia con el extractor de texto PDF.
func NewColumnReportPDF(text LineSource) *ColumnReportPDF { return &ColumnReportPDF{text: text} }

func (p *ColumnReportPDF) Parse(ctx context.Context, in ingestion.Input) ([]commission.Row, error) {
	lines, err := p.text.Lines(ctx, in.File.Content)
	if err != nil {
		return nil, &domain.ParseError{Carrier: in.CarrierKey, Cause: err}
	}
	rows, err := ParseColumnReport(lines)
	if err != nil {
		return nil, &domain.ParseError{Carrier: in.CarrierKey, Cause: err}
	}
	return rows, nil
}

// ParseColumnReport rearma las filas de un estado extraído por columnas.
func ParseColumnReport(lines []string) ([]commission.Row, error) {
	lines = SplitLines(strings.Join(lines, "\n"))

	policyIdx := indexWhere(lines, 0, lineIs("POLIZA"))
	if policyIdx < 0 {
		return nil, fmt.Errorf("no se encontró la columna Póliza")
	}
	insuredIdx := indexWhere(lines, 0, lineIs("ASEGURADO"))
	fechaIdx := indexWhere(lines, 0, lineIs("FECHA"))
	tipoIdx := indexWhere(lines, 0, lineIs("TIPO"))
	percentIdx := indexWhere(lines, 0, func(l string) bool { return strings.Contains(foldUpper(l), "%COMISION") })
	earnedIdx := indexWhere(lines, 0, lineIs("GANADOS"))

	stop := insuredIdx
	if stop < 0 {
		stop = indexWhere(lines, policyIdx+1, isInsuredLine)
	}

	// El primer segmento de la póliza suele quedar antes del encabezado.
	first := digitsBefore(lines, policyIdx)
	rest := digitsAfter(lines, policyIdx, stop)

	var (
		policies []string
		names    []string
	)
	if len(rest) > 0 {
		policies = policiesFromColumns(append(append([]string{}, first...), rest...))
		names = between(lines, policyIdx+len(rest), insuredIdx)
	} else {
		policies, names = policiesFromMixedLines(first, between(lines, policyIdx, insuredIdx))
	}

	var amounts []decimal.Decimal
	for _, raw := range between(lines, percentIdx, earnedIdx) {
		d, _ := commission.ParseAmount(raw)
		amounts = append(amounts, d)
	}

	// Las filas de cheque (Tipo CH) no llevan comisión y desalinean las columnas.
	var keep []int
	for i, t := range between(lines, fechaIdx, tipoIdx) {
		if t = strings.ToUpper(strings.TrimSpace(t)); t != "" && t != "CH" {
			keep = append(keep, i)
		}
	}
	if len(keep) > 0 {
		amounts = pick(amounts, keep, decimal.Zero)
		names = pick(names, keep, "")
	}

	insured := make([]string, 0, len(names))
	for _, n := range names {
		n = commission.CleanText(n)
		if len([]rune(n)) >= 3 && isInsuredLine(n) && !isReportNote(n) {
			insured = append(insured, n)
		}
	}

	n := min(len(policies), len(insured), len(amounts))
	rows := make([]commission.Row, 0, n)
	for i := 0; i < n; i++ {
		if len(policies[i]) < 10 || amounts[i].IsZero() {
			continue
		}
		rows = append(rows, commission.Row{
			PolicyNumber: policies[i],
			InsuredName:  insured[i],
			Amount:       amounts[i],
			Raw:          map[string]string{"row": fmt.Sprint(i + 1)},
		})
	}
	return rows, nil
}

func pick[T any](values []T, idx []int, zero T) []T {
	out := make([]T, 0, len(idx))
	for _, i := range idx {
		if i < len(values) {
			out = append(out, values[i])
		} else {
			out = append(out, zero)
		}
	}
	return out
}

// policiesFromColumns reparte los tokens en cuatro columnas de igual largo.
func policiesFromColumns(tokens []string) []string {
	if len(tokens) < 4 || len(tokens)%4 != 0 {
		return nil
	}
	n := len(tokens) / 4
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, formatPolicy(tokens[i], tokens[n+i], tokens[2*n+i], tokens[3*n+i]))
	}
	return out
}

// policiesFromMixedLines lee filas "02 49192 2 NOMBRE DEL CLIENTE": tres segmentos numéricos
// y el nombre en la misma línea; el primer segmento viene del bloque previo al encabezado.
func policiesFromMixedLines(first, lines []string) ([]string, []string) {
	var policies, names []string
	for _, l := range lines {
		fields := strings.Fields(l)
		k := 0
		for k < len(fields) && digitsOnly.MatchString(fields[k]) {
			k++
		}
		if k < 3 || k == len(fields) {
			continue
		}
		row := len(policies)
		if row >= len(first) {
			break
		}
		policies = append(policies, formatPolicy(first[row], fields[0], fields[1], fields[2]))
		names = append(names, strings.Join(fields[k:], " "))
	}
	return policies, names
}

func formatPolicy(ramo, subramo, number, cert string) string {
	return padZeros(ramo, 2) + "-" + padZeros(subramo, 2) + "-" + padZeros(number, 6) + "-" + cert
}

func padZeros(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

// isInsuredLine descarta encabezados, notas regulatorias, totales y celdas numéricas.
func isInsuredLine(l string) bool {
	u := foldUpper(l)
	switch {
	case u == "", u == "ASEGURADO", u == "POLIZA", u == "GANADOS":
		return false
	case containsAny(u, "REGULADO", "SUPERVISADO", "TOTALES", "SALDO", "HON PROF", "CORRESP"):
		return false
	case numericCell.MatchString(strings.TrimSpace(l)):
		return false
	}
	return hasLetter.MatchString(u)
}

// isReportNote anotaciones del estado que caen en la columna de nombres ("PAGO DE HONORARIOS
// ... 01 AL 15 DE MARZO").
func isReportNote(s string) bool {
	u := foldUpper(s)
	return containsAny(u, reportNotes...) || periodNote.MatchString(u)
}
