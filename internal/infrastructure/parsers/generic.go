package parsers

import (
	"context"
	"errors"

	"github.com/jhoicas/Comisiones-api/internal/application/ingestion"
	"github.com/jhoicas/Comisiones-api/internal/domain"
	"github.com/jhoicas/Comisiones-api/internal/domain/commission"
)

// headerScanRows filas iniciales donde se busca el encabezado; los estados suelen traer
// membrete, período y datos del corredor antes de la tabla.
const headerScanRows = 30

// Generic estrategia por alias para cualquier archivo tabular.
type Generic struct {
	book commission.AliasBook
}

// NewGeneric construye la estrategia con el diccionario de alias.
func NewGeneric(book commission.AliasBook) *Generic {
	return &Generic{book: book}
}

// Parse ubica la fila de encabezado, resuelve columnas y emite una fila canónica por fila de datos.
// No filtra ni cambia signos.
func (g *Generic) Parse(ctx context.Context, in ingestion.Input) ([]commission.Row, error) {
	table, err := ReadTable(in.File)
	if err != nil {
		return nil, &domain.ParseError{Carrier: in.CarrierKey, Cause: err}
	}
	mapper := commission.NewColumnMapper(g.book.For(in.CarrierKey))

	headerIdx, cm, err := locateHeader(mapper, table, in.Options.SumMultiColumn)
	if err != nil {
		return nil, &domain.ParseError{Carrier: in.CarrierKey, Cause: err}
	}
	headers := table[headerIdx]

	rows := make([]commission.Row, 0, len(table)-headerIdx)
	for i := headerIdx + 1; i < len(table); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if blank(table[i]) {
			continue
		}
		rows = append(rows, mapper.MapRow(cm, headers, table[i]))
	}
	return rows, nil
}

func locateHeader(mapper *commission.ColumnMapper, table Table, sumMulti bool) (int, commission.ColumnMap, error) {
	var firstErr error
	for i := 0; i < len(table) && i < headerScanRows; i++ {
		if blank(table[i]) {
			continue
		}
		cm, err := mapper.Resolve(table[i], sumMulti)
		if err == nil {
			return i, cm, nil
		}
		var ve *domain.ValidationError
		if firstErr == nil || (errors.As(err, &ve) && ve.Field != "poliza") {
			firstErr = err
		}
	}
	if firstErr == nil {
		firstErr = errors.New("el archivo está vacío")
	}
	return -1, commission.ColumnMap{}, firstErr
}
