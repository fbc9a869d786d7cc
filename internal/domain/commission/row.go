package commission

import "github.com/shopspring/decimal"

// Row fila canónica emitida por cualquier estrategia de lectura.
type Row struct {
	PolicyNumber string
	InsuredName  string
	Amount       decimal.Decimal
	Raw          map[string]string
}

// Options opciones de una carga.
type Options struct {
	InvertNegatives bool `json:"invert_negatives"`
	SumMultiColumn  bool `json:"sum_multi_column"`
}

// Merge combina las opciones de la carga con los indicadores de la aseguradora.
func (o Options) Merge(invertNegatives, sumMultiColumn bool) Options {
	return Options{
		InvertNegatives: o.InvertNegatives || invertNegatives,
		SumMultiColumn:  o.SumMultiColumn || sumMultiColumn,
	}
}

// Invert niega todos los montos una sola vez. Devuelve una copia.
func Invert(rows []Row) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		r.Amount = r.Amount.Neg()
		out[i] = r
	}
	return out
}

// Total suma los montos de las filas.
func Total(rows []Row) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.Amount)
	}
	return total
}
