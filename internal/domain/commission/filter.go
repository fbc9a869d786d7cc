package commission

import (
	"strings"
	"unicode"
)

// Motivos de rechazo de una fila.
const (
	RejectPolicyEmpty       = "policy_empty"
	RejectPolicyPlaceholder = "policy_placeholder"
	RejectPolicyHeader      = "policy_header"
	RejectBoilerplate       = "boilerplate"
	RejectAmountZero        = "amount_zero"
)

// Filter filtro de normalización: descarta encabezados repetidos, totales y montos en cero.
type Filter struct {
	placeholders map[string]bool
	headerWords  []string
	boilerplate  map[string]bool
	connectors   map[string]bool
}

// NewFilter construye el filtro con las listas por defecto.
func NewFilter() *Filter {
	placeholders := map[string]bool{}
	for _, p := range []string{"-", "--", "n/a", "na", "s/n", "0", "null", "none", "sin poliza", "pendiente"} {
		placeholders[p] = true
	}
	return &Filter{
		placeholders: placeholders,
		headerWords:  []string{"poliza", "policy", "asegurado", "insured", "nombre", "voucher", "certificado"},
		boilerplate: wordSet(
			"total", "totales", "subtotal", "gran", "detail", "detalle", "period", "ending", "periodo",
			"resumen", "balance", "descuento", "descuentos", "monto", "pagar", "prima", "cobrada",
			"pagina", "page", "comisiones",
		),
		connectors: wordSet("del", "de", "la", "el", "los", "las", "a", "al", "por", "en", "y", "of", "the"),
	}
}

func wordSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// Check indica si la fila es válida y, si no, el motivo.
// El nombre del asegurado no es obligatorio: solo se rechaza si es una frase de relleno.
func (f *Filter) Check(r Row) (bool, string) {
	policy := NormalizeHeader(r.PolicyNumber)
	switch {
	case policy == "":
		return false, RejectPolicyEmpty
	case f.placeholders[policy]:
		return false, RejectPolicyPlaceholder
	case f.looksLikeHeader(policy):
		return false, RejectPolicyHeader
	case f.isBoilerplate(policy):
		return false, RejectBoilerplate
	}
	if name := NormalizeHeader(r.InsuredName); name != "" && f.isBoilerplate(name) {
		return false, RejectBoilerplate
	}
	if r.Amount.IsZero() {
		return false, RejectAmountZero
	}
	return true, ""
}

// Apply separa las filas aceptadas y cuenta los rechazos por motivo.
func (f *Filter) Apply(rows []Row) ([]Row, map[string]int) {
	accepted := make([]Row, 0, len(rows))
	rejected := make(map[string]int)
	for _, r := range rows {
		if ok, reason := f.Check(r); !ok {
			rejected[reason]++
			continue
		}
		accepted = append(accepted, r)
	}
	return accepted, rejected
}

func (f *Filter) looksLikeHeader(policy string) bool {
	if strings.ContainsAny(policy, ":") {
		return true
	}
	hasDigit := strings.IndexFunc(policy, unicode.IsDigit) >= 0
	if hasDigit {
		return false
	}
	for _, w := range f.headerWords {
		if strings.Contains(policy, w) {
			return true
		}
	}
	return false
}

// isBoilerplate es verdadero cuando el texto solo contiene palabras de relleno, conectores
// y tokens sin letras ("Total del periodo", "Subtotal 2024", "Pagina 3"). Un nombre real que
// empieza con una de esas palabras ("TOTAL PROTECCION S.A.") no califica.
func (f *Filter) isBoilerplate(s string) bool {
	found := false
	for _, tok := range strings.FieldsFunc(s, func(r rune) bool { return unicode.IsSpace(r) || r == ':' }) {
		tok = strings.Trim(tok, ".,;-()")
		if strings.IndexFunc(tok, unicode.IsLetter) < 0 {
			continue
		}
		switch {
		case f.boilerplate[tok]:
			found = true
		case f.connectors[tok]:
		default:
			return false
		}
	}
	return found
}
