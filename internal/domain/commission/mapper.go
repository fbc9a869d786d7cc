package commission

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Comisiones-api/internal/domain"
)

// ColumnMap índices de columna resueltos para cada campo semántico (-1 = ausente).
type ColumnMap struct {
	Policy     int
	Insured    int
	Commission []int
}

// ColumnMapper resuelve encabezados a campos usando una configuración de alias explícita.
type ColumnMapper struct {
	cfg AliasConfig
}

// NewColumnMapper construye el mapeador con la configuración de una aseguradora.
func NewColumnMapper(cfg AliasConfig) *ColumnMapper {
	return &ColumnMapper{cfg: cfg}
}

// Resolve busca las columnas de póliza, asegurado y comisión.
// Con sumMulti agrega las columnas secundaria y terciaria configuradas.
func (m *ColumnMapper) Resolve(headers []string, sumMulti bool) (ColumnMap, error) {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = NormalizeHeader(h)
	}
	used := make(map[int]bool)

	cm := ColumnMap{Policy: -1, Insured: -1}
	cm.Policy = match(normalized, m.cfg.Policy, nil, used)
	if cm.Policy < 0 {
		return cm, domain.NewValidationError("poliza", "no se encontró la columna de póliza")
	}
	used[cm.Policy] = true

	cm.Insured = match(normalized, m.cfg.Insured, nil, used)
	if cm.Insured >= 0 {
		used[cm.Insured] = true
	}

	first := match(normalized, m.cfg.Commission, m.cfg.Exclude, used)
	if first < 0 {
		return cm, domain.NewValidationError("comision", "no se encontró la columna de comisión")
	}
	used[first] = true
	cm.Commission = []int{first}

	if sumMulti {
		for _, aliases := range [][]string{m.cfg.Commission2, m.cfg.Commission3} {
			if len(aliases) == 0 {
				continue
			}
			if idx := match(normalized, aliases, nil, used); idx >= 0 {
				used[idx] = true
				cm.Commission = append(cm.Commission, idx)
			}
		}
	}
	return cm, nil
}

// MapRow construye la fila canónica. Las columnas de comisión se suman con aritmética decimal
// exacta; el signo no se toca aquí.
func (m *ColumnMapper) MapRow(cm ColumnMap, headers, values []string) Row {
	r := Row{
		PolicyNumber: CleanText(cell(values, cm.Policy)),
		InsuredName:  CleanText(cell(values, cm.Insured)),
		Amount:       decimal.Zero,
		Raw:          make(map[string]string, len(headers)),
	}
	for _, idx := range cm.Commission {
		if v, ok := ParseAmount(cell(values, idx)); ok {
			r.Amount = r.Amount.Add(v)
		}
	}
	for i, h := range headers {
		if h == "" {
			continue
		}
		r.Raw[h] = cell(values, i)
	}
	return r
}

// match prueba primero igualdad exacta y luego subcadena, en el orden de los alias.
func match(headers, aliases, exclude []string, used map[int]bool) int {
	for _, alias := range aliases {
		a := NormalizeHeader(alias)
		for i, h := range headers {
			if !used[i] && h == a && !excluded(h, exclude) {
				return i
			}
		}
	}
	for _, alias := range aliases {
		a := NormalizeHeader(alias)
		if a == "" {
			continue
		}
		for i, h := range headers {
			if !used[i] && strings.Contains(h, a) && !excluded(h, exclude) {
				return i
			}
		}
	}
	return -1
}

func excluded(header string, exclude []string) bool {
	for _, e := range exclude {
		if e != "" && strings.Contains(header, NormalizeHeader(e)) {
			return true
		}
	}
	return false
}

func cell(values []string, idx int) string {
	if idx < 0 || idx >= len(values) {
		return ""
	}
	return values[idx]
}
