package parsers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/Comisiones-api/internal/application/ingestion"
)

// Table filas de la primera hoja de un archivo tabular, como texto.
type Table [][]string

// ReadTable lee XLSX, XLS o CSV según el formato detectado.
func ReadTable(file ingestion.File) (Table, error) {
	switch format := ingestion.DetectFormat(file.Name, file.Content); format {
	case ingestion.FormatXLSX:
		return readXLSX(file.Content)
	case ingestion.FormatXLS:
		return readXLS(file.Content)
	case ingestion.FormatCSV:
		return readCSV(file.Content)
	default:
		return nil, fmt.Errorf("formato %q no es tabular", format)
	}
}

func readXLSX(data []byte) (Table, error) {
	xl, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("abrir xlsx: %w", err)
	}
	defer xl.Close()

	sheet := xl.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("el libro no tiene hojas")
	}
	rows, err := xl.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("leer hoja %s: %w", sheet, err)
	}
	return Table(rows), nil
}

func readXLS(data []byte) (Table, error) {
	book, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("abrir xls: %w", err)
	}
	sheet := book.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("el libro no tiene hojas")
	}
	out := make(Table, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			out = append(out, nil)
			continue
		}
		values := make([]string, row.LastCol())
		for j := row.FirstCol(); j < row.LastCol(); j++ {
			values[j] = row.Col(j)
		}
		out = append(out, values)
	}
	return out, nil
}

func readCSV(data []byte) (Table, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sniffDelimiter(data)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("leer csv: %w", err)
	}
	return Table(rows), nil
}

// sniffDelimiter elige entre coma, punto y coma y tabulador según la primera línea.
func sniffDelimiter(data []byte) rune {
	line, _, _ := strings.Cut(string(data), "\n")
	best, count := ',', strings.Count(line, ",")
	for _, d := range []rune{';', '\t'} {
		if n := strings.Count(line, string(d)); n > count {
			best, count = d, n
		}
	}
	return best
}

// Cell valor recortado de una celda; vacío si la columna no existe.
func (t Table) Cell(row, col int) string {
	if row < 0 || row >= len(t) || col < 0 || col >= len(t[row]) {
		return ""
	}
	return strings.TrimSpace(t[row][col])
}

func blank(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
