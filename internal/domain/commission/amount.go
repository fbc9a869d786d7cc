package commission

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount convierte un monto textual de estado de cuenta a decimal.
// Acepta "$1,234.56", "1.234,56", "(1,234.56)" (negativo contable), "-15" y "15-".
// Devuelve ok=false si el texto no contiene un número; el monto queda en cero.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.Trim(s, "()")
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',':
			b.WriteRune(r)
		case r == '-' || r == '−':
			negative = true
		}
	}
	s = strings.TrimRight(b.String(), ".,")
	if strings.HasPrefix(s, ".") && !strings.ContainsAny(s[1:], ".,") {
		// ".50": fracción sin parte entera
		s = "0" + s
	}
	s = strings.TrimLeft(s, ".,")
	if s == "" {
		return decimal.Zero, false
	}

	comma := strings.Index(s, ",")
	dot := strings.Index(s, ".")
	switch {
	case comma > -1 && dot > -1:
		if dot < comma {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case comma > -1:
		s = strings.ReplaceAll(s, ",", ".")
	}
	if strings.Count(s, ".") > 1 {
		// 1.234.567 sin parte decimal
		s = strings.ReplaceAll(s, ".", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		d = d.Abs().Neg()
	}
	return d, true
}
