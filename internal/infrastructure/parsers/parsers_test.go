package parsers_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/Comisiones-api/internal/application/ingestion"
	"github.com/jhoicas/Comisiones-api/internal/domain"
	"github.com/jhoicas/Comisiones-api/internal/domain/commission"
	"github.com/jhoicas/Comisiones-api/internal/infrastructure/parsers"
)

type fakeLines []string

func (f fakeLines) Lines(ctx context.Context, content []byte) ([]string, error) {
	return f, nil
}

func input(carrier, name, content string, opts commission.Options) ingestion.Input {
	return ingestion.Input{
		CarrierKey: carrier,
		File:       ingestion.File{Name: name, Content: []byte(content)},
		Options:    opts,
	}
}

func amounts(t *testing.T, rows []commission.Row) map[string]string {
	t.Helper()
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.PolicyNumber] = r.Amount.StringFixed(2)
	}
	return out
}

const assaYAML = `
default:
  policy: [poliza, policy]
  insured: [asegurado, cliente]
  commission: [comision, monto]
carriers:
  assa:
    commission: ["honorarios profesionales (monto)"]
    commission_2: ["vida 1er. año"]
    commission_3: ["vida renov."]
catalog:
  - key: assa
    name: ASSA Compañía de Seguros
    use_multi_commission_columns: true
  - key: BANESCO
    name: Banesco Seguros
`

// ─── Genérico por alias ───────────────────────────────────────────────────────

func TestGeneric_CSVConMembreteYPuntoYComa(t *testing.T) {
	csv := strings.Join([]string{
		"Estado de comisiones;;",
		"Póliza;Asegurado;Comisión",
		"A100;Juan Perez;200,00",
		";TOTAL DEL PERIODO;50",
		";;",
		"A200;Ana Diaz;-30",
	}, "\n")
	g := parsers.NewGeneric(commission.AliasBook{Default: commission.DefaultAliases()})

	rows, err := g.Parse(context.Background(), input("X", "estado.csv", csv, commission.Options{}))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "A100", rows[0].PolicyNumber)
	assert.Equal(t, "Juan Perez", rows[0].InsuredName)
	assert.True(t, rows[0].Amount.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, "TOTAL DEL PERIODO", rows[1].InsuredName)
	assert.True(t, rows[2].Amount.Equal(decimal.NewFromInt(-30)))
	assert.Equal(t, "A100", rows[0].Raw["Póliza"])
}

func TestGeneric_SumaColumnasMultiples(t *testing.T) {
	cat, err := parsers.ParseCatalog([]byte(assaYAML))
	require.NoError(t, err)
	csv := "Poliza,Asegurado,Honorarios Profesionales (Monto),Vida 1er. Año,Vida renov.\nP1,Ana,100,50,0.10\n"
	g := parsers.NewGeneric(cat.AliasBook)

	rows, err := g.Parse(context.Background(), input("ASSA", "assa.csv", csv, commission.Options{SumMultiColumn: true}))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "150.10", rows[0].Amount.StringFixed(2))

	rows, err = g.Parse(context.Background(), input("ASSA", "assa.csv", csv, commission.Options{}))
	require.NoError(t, err)
	assert.Equal(t, "100.00", rows[0].Amount.StringFixed(2))
}

func TestGeneric_SinColumnaDeComision(t *testing.T) {
	g := parsers.NewGeneric(commission.AliasBook{})
	_, err := g.Parse(context.Background(), input("X", "x.csv", "Poliza,Asegurado\nA1,Ana\n", commission.Options{}))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrParse)
	assert.Contains(t, err.Error(), "comisi")
}

func TestGeneric_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	cells := map[string]any{
		"A1": "Nro Poliza", "B1": "Cliente", "C1": "Monto",
		"A2": "P-9", "B2": "Luis", "C2": 75.5,
	}
	for ref, v := range cells {
		require.NoError(t, f.SetCellValue("Sheet1", ref, v))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	g := parsers.NewGeneric(commission.AliasBook{})
	rows, err := g.Parse(context.Background(), ingestion.Input{
		CarrierKey: "X",
		File:       ingestion.File{Name: "estado.xlsx", Content: buf.Bytes()},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, map[string]string{"P-9": "75.50"}, amounts(t, rows))
}

func TestGeneric_XLSXIgnoraFormatoDeCelda(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	miles, err := f.NewStyle(&excelize.Style{NumFmt: 3})
	require.NoError(t, err)
	dosDecimales, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	require.NoError(t, err)

	cells := map[string]any{
		"A1": "Poliza", "B1": "Asegurado", "C1": "Comision",
		"A2": "P-1", "B2": "Ana", "C2": 1234,
		"A3": "P-2", "B3": "Luis", "C3": 10.005,
	}
	for ref, v := range cells {
		require.NoError(t, f.SetCellValue("Sheet1", ref, v))
	}
	require.NoError(t, f.SetCellStyle("Sheet1", "C2", "C2", miles))
	require.NoError(t, f.SetCellStyle("Sheet1", "C3", "C3", dosDecimales))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	rows, err := parsers.NewGeneric(commission.AliasBook{}).Parse(context.Background(), ingestion.Input{
		CarrierKey: "X",
		File:       ingestion.File{Name: "estado.xlsx", Content: buf.Bytes()},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].Amount.Equal(decimal.NewFromInt(1234)), "el formato #,##0 no debe leerse como coma decimal: %s", rows[0].Amount)
	assert.True(t, rows[1].Amount.Equal(decimal.RequireFromString("10.005")), "el formato 0.00 no debe redondear: %s", rows[1].Amount)
}

// ─── BANESCO ──────────────────────────────────────────────────────────────────

func TestBanescoXLSX_ColumnasFijas(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	cells := map[string]any{
		"A1": "BANESCO SEGUROS",
		"A3": "Póliza", "I3": "NOMBRE ASEGURADO", "R3": "COMISION",
		"A4": "1-1-35339-0 Factura 2695", "I4": "JOSE FERNANDEZ", "R4": "41.87",
		"A5": "TOTAL", "I5": "TOTAL", "R5": "41.87",
		"A6": "2-7-100 Factura 1", "I6": "ANA RUIZ", "R6": "0",
		"A7": "Factura sin poliza", "I7": "PEDRO", "R7": "10",
	}
	for ref, v := range cells {
		require.NoError(t, f.SetCellValue("Sheet1", ref, v))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	rows, err := parsers.NewBanescoXLSX().Parse(context.Background(), ingestion.Input{
		CarrierKey: "BANESCO",
		File:       ingestion.File{Name: "banesco.xlsx", Content: buf.Bytes()},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "1-1-35339-0", rows[0].PolicyNumber)
	assert.Equal(t, "JOSE FERNANDEZ", rows[0].InsuredName)
	assert.Equal(t, "41.87", rows[0].Amount.StringFixed(2))
}

func TestBanescoXLSX_SinEncabezado(t *testing.T) {
	_, err := parsers.NewBanescoXLSX().Parse(context.Background(), input("BANESCO", "b.csv", "a,b\n1,2\n", commission.Options{}))
	assert.ErrorIs(t, err, domain.ErrParse)
}

func TestBanescoPDF_Regex(t *testing.T) {
	src := fakeLines{
		"Póliza Nombre Asegurado Prima Cobrada",
		"1-1-35339-0 45.00JOSE LUIS FERNANDEZ 41.87",
		"2-10-4456 30.00 MARIA DEL CARMEN 12.00",
		"Total por Ramo 53.87",
		"3-1-1 10.00 TOTAL GENERAL XX 5.00",
	}
	rows, err := parsers.NewBanescoPDF(src).Parse(context.Background(), input("BANESCO", "b.pdf", "%PDF", commission.Options{}))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"1-1-35339-0": "41.87", "2-10-4456": "12.00"}, amounts(t, rows))
	assert.Equal(t, "JOSE LUIS FERNANDEZ", rows[0].InsuredName)
}

// ─── VUMI ─────────────────────────────────────────────────────────────────────

func TestVumiPDF_Secciones(t *testing.T) {
	src := fakeLines{
		"VUMI GROUP",
		"1111111111 fuera de sección $99.00",
		"NUEVOS NEGOCIOS",
		"Número de Póliza Titular Monto",
		"1234567890 01/02/2025",
		"JUAN PEREZ GOMEZ",
		"$1,000.00 $150.25",
		"TOTAL NUEVOS NEGOCIOS $150.25",
		"RENOVACIONES",
		"Número de Póliza Titular Monto",
		"9876543210 15/02/2025",
		"MARIA LOPEZ DIAZ",
		"$500.00 $40.00",
		"TOTAL RENOVACIONES $40.00",
		"OTROS AJUSTES",
		"NO GENERÓ COMISIONES",
	}
	rows, err := parsers.NewVumiPDF(src).Parse(context.Background(), input("VUMI", "v.pdf", "%PDF", commission.Options{}))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"1234567890": "150.25", "9876543210": "40.00"}, amounts(t, rows))
	assert.Equal(t, "JUAN PEREZ GOMEZ", rows[0].InsuredName)
}

// ─── ASSISTCARD ───────────────────────────────────────────────────────────────

func TestAssistcard_Bloques(t *testing.T) {
	rows := parsers.ParseAssistcardLines([]string{
		"AGENCY REPORT",
		"1234567890 PEREZ, JUAN",
		"NET SALES",
		"COMMISSION",
		"100.00",
		"15.00",
		"2233445566 LOPEZ, MARIA",
		"COMMISSION",
		"20.00",
	})
	assert.Equal(t, map[string]string{"1234567890": "15.00", "2233445566": "20.00"}, amounts(t, rows))
	assert.Equal(t, "PEREZ, JUAN", rows[0].InsuredName)
}

func TestAssistcard_FilaPorLinea(t *testing.T) {
	rows := parsers.ParseAssistcardLines([]string{
		"AGENCY VOUCHER NOMBRE",
		"AC 1234567890 GOMEZ ANA 12.00",
		"linea suelta",
	})
	require.Len(t, rows, 1)
	assert.Equal(t, "1234567890", rows[0].PolicyNumber)
	assert.Equal(t, "GOMEZ ANA", rows[0].InsuredName)
	assert.Equal(t, "12.00", rows[0].Amount.StringFixed(2))
}

// ─── PALIG ────────────────────────────────────────────────────────────────────

func TestPaligPDF_VariasTablas(t *testing.T) {
	src := fakeLines{
		"PAN AMERICAN LIFE",
		"LINEA DE NEGOCIO: SALUD",
		"PRIMA % DÉBITOS CRÉDITOS NOMBRE COMISIÓN PÓLIZA / CERT",
		"167.76 15.00 0.00 25.16BAYARDO A. HERRERA 25.166000130",
		"195.30 10.00 0.00 19.53JAMES THOMPSON 19.5366636 / 0000000976",
		"TOTAL 44.69",
		"99.00 3.00 0.00 2.97FUERA DE TABLA 2.971111111",
		"LINEA DE NEGOCIO: VIDA",
		"PÓLIZA / CERT REFERENCIA",
		"35.17 3.00 0.00 1.06RODRIGUEZ 1.064239-384",
		"50.00 3.00 0.00 1.50MARIA LOPEZ 1.50C8000 / C150000972",
		"0.00 0.00 0.00 0.00TOTAL RAMO 0.001234567",
	}
	rows, err := parsers.NewPaligPDF(src).Parse(context.Background(), input("PALIG", "p.pdf", "%PDF", commission.Options{}))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"6000130":  "25.16",
		"66636":    "19.53",
		"4239-384": "1.06",
		"C8000":    "1.50",
	}, amounts(t, rows))
	assert.Equal(t, "BAYARDO A. HERRERA", rows[0].InsuredName)
}

// ─── MERCANTIL ────────────────────────────────────────────────────────────────

func TestMercantilPDF_LineasFactura(t *testing.T) {
	src := fakeLines{
		"No. de Póliza Factura Comisión Nombre",
		"2032 Factura 178120 26.9820.00134.90ERIC ABDEL CHICHACORecibos Cobrados",
		"3051 Factura 178121 12.50 10.00 125.00 MARIA DEL MAR SOLIS USD",
		"4100 Factura 178122 0.0010.000.00ANA RUIZ PEREZRecibos",
		"Total por Ramo 39.48",
	}
	rows, err := parsers.NewMercantilPDF(src).Parse(context.Background(), input("MERCANTIL", "m.pdf", "%PDF", commission.Options{}))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"2032": "26.98", "3051": "12.50"}, amounts(t, rows))
	assert.Equal(t, "ERIC ABDEL CHICHACO", rows[0].InsuredName)
}

func TestMercantilXLSX_ColumnasVariables(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	cells := map[string]any{
		"A1": "MERCANTIL SEGUROS",
		"A3": "No. de Póliza", "B3": "Asegurado", "D3": "Comisión",
		"A4": "1-2-3456 Factura 10", "B4": "CARLOS MENDEZ RIOS", "D4": 15.75,
		"A5": "2-3-999", "B5": "ANA", "D5": 8,
		"A6": "Total", "D6": 15.75,
		"A7": "3-4-5", "B7": "LUIS HERRERA DIAZ", "D7": 9,
	}
	for ref, v := range cells {
		require.NoError(t, f.SetCellValue("Sheet1", ref, v))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	rows, err := parsers.NewMercantilXLSX().Parse(context.Background(), ingestion.Input{
		CarrierKey: "MERCANTIL",
		File:       ingestion.File{Name: "mercantil.xlsx", Content: buf.Bytes()},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"1-2-3456": "15.75"}, amounts(t, rows))
	assert.Equal(t, "CARLOS MENDEZ RIOS", rows[0].InsuredName)
}

func TestMercantilXLSX_SinEncabezado(t *testing.T) {
	_, err := parsers.NewMercantilXLSX().Parse(context.Background(), input("MERCANTIL", "m.csv", "a,b\n1,2\n", commission.Options{}))
	assert.ErrorIs(t, err, domain.ErrParse)
}

// ─── REGIONAL ─────────────────────────────────────────────────────────────────

func TestRegionalPDF_ColumnasAlineadas(t *testing.T) {
	src := fakeLines{
		"10",
		"Suc.",
		"Nro.",
		"Recibo",
		"29",
		"Ramo",
		"1234567",
		"7654321",
		"Monto C.",
		"Pagado",
		"30.00",
		"12.50",
		"7.25",
		"0",
		"0",
		"Cert",
		"Operación",
		"PAGO DE COMISIONES",
		"JUAN CARLOS PEREZ GOMEZ",
		"MARIA FERNANDA LOPEZ",
		"DE LA CRUZ",
		"Nombre Asegurado %Imp.",
	}
	rows, err := parsers.NewRegionalPDF(src).Parse(context.Background(), input("REGIONAL", "r.pdf", "%PDF", commission.Options{}))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"10-29-1234567-0": "12.50",
		"10-29-7654321-0": "7.25",
	}, amounts(t, rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "MARIA FERNANDA LOPEZ DE LA CRUZ", rows[1].InsuredName)
}

// ─── IFS ──────────────────────────────────────────────────────────────────────

// privateGlyphs reproduce el texto que sale de una fuente sin tabla ToUnicode.
func privateGlyphs(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= 0x20 && r <= 0x7E {
			r += 0xF000
		}
		b.WriteRune(r)
	}
	return b.String()
}

func TestIFSPDF_DecodificaGlifos(t *testing.T) {
	src := fakeLines{
		privateGlyphs("DETALLE DE COMISIONES LIDERES EN SEGUROS"),
		privateGlyphs("AUTO-12345 JUAN PEREZ GOMEZ 15% 187.50 1,250.00"),
		privateGlyphs("FIANZA-2201-B-7 CONSTRUCTORA DEL ISTMO 10% 1,020.40"),
		privateGlyphs("VIDA-5501MARIA ROSA 12.5%40.00"),
		privateGlyphs("AP-100 X 5% 0.00"),
	}
	rows, err := parsers.NewIFSPDF(src, nil).Parse(context.Background(), input("IFS", "i.pdf", "%PDF", commission.Options{}))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"AUTO-12345":      "187.50",
		"FIANZA-2201-B-7": "1020.40",
		"VIDA-5501":       "40.00",
	}, amounts(t, rows))
	assert.Equal(t, "JUAN PEREZ GOMEZ", rows[0].InsuredName)
	assert.Equal(t, "MARIA ROSA", rows[2].InsuredName)
}

func TestIFSPDF_EscaneadoUsaOCR(t *testing.T) {
	scanned := fakeLines{"1"}
	ocr := fakeLines{"SALUD-300 ROBERTO GARCIA MENA 20% 60.00 300.00 ...................................................."}

	_, err := parsers.NewIFSPDF(scanned, nil).Parse(context.Background(), input("IFS", "i.pdf", "%PDF", commission.Options{}))
	assert.ErrorIs(t, err, domain.ErrParse)

	rows, err := parsers.NewIFSPDF(scanned, ocr).Parse(context.Background(), input("IFS", "i.pdf", "%PDF", commission.Options{}))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"SALUD-300": "60.00"}, amounts(t, rows))
}

// ─── ALIADO / MB / OPTIMA ─────────────────────────────────────────────────────

func TestColumnReport_ColumnasVerticales(t *testing.T) {
	src := fakeLines{
		"Ref", "1001", "1002", "1003",
		"Fecha", "AD", "CH", "AD",
		"Tipo",
		"02", "14",
		"Póliza",
		"01", "03", "49192", "50210", "2", "0",
		"JUAN PEREZ",
		"PAGO DE HONORARIOS",
		"ANA MARIA DIAZ",
		"Asegurado",
		"Prima", "100.00", "20.00", "10.00",
		"%Comisión", "15.00", "0.00", ".50",
		"Ganados", "15.00", "120.00", ".50",
	}
	rows, err := parsers.NewColumnReportPDF(src).Parse(context.Background(), input("MB", "mb.pdf", "%PDF", commission.Options{}))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"02-01-049192-2": "15.00",
		"14-03-050210-0": "0.50",
	}, amounts(t, rows))
	assert.Equal(t, "ANA MARIA DIAZ", rows[1].InsuredName)
}

func TestColumnReport_LineasMixtas(t *testing.T) {
	rows, err := parsers.ParseColumnReport([]string{
		"Fecha", "AD", "AD", "Tipo",
		"02", "14",
		"Póliza",
		"01 49192 2 JUAN PEREZ",
		"03 50210 0 ANA MARIA DIAZ",
		"Asegurado",
		"%Comisión", "15.00", "7.00", "Ganados",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"02-01-049192-2": "15.00",
		"14-03-050210-0": "7.00",
	}, amounts(t, rows))
}

func TestColumnReport_SinColumnaPoliza(t *testing.T) {
	_, err := parsers.NewColumnReportPDF(fakeLines{"Ref", "1"}).Parse(context.Background(), input("OPTIMA", "o.pdf", "%PDF", commission.Options{}))
	assert.ErrorIs(t, err, domain.ErrParse)
}

// ─── ASSA códigos ─────────────────────────────────────────────────────────────

func TestAssaCodes_FiltraCodigosDeAgencia(t *testing.T) {
	csv := strings.Join([]string{
		"Reporte ASSA",
		"LICENCIA,NOMBRE,COMISION PAGADA",
		"PJ750-54,Corredor A,125.50",
		"PJ750-1,Agencia,90",
		"PJ750-054,Con cero,10",
		"pj750-7,Minúsculas,(20.00)",
		"PJ750-8,Sin comisión,0",
		",,",
	}, "\n")
	rows, err := parsers.NewAssaCodesXLSX().Parse(context.Background(), input("ASSA_CODIGOS", "codigos.csv", csv, commission.Options{}))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"PJ750-54": "125.50", "PJ750-7": "20.00"}, amounts(t, rows))
}

func TestAssaCodes_SinColumnas(t *testing.T) {
	_, err := parsers.NewAssaCodesXLSX().Parse(context.Background(), input("ASSA_CODIGOS", "c.csv", "a,b\n1,2\n", commission.Options{}))
	assert.ErrorIs(t, err, domain.ErrParse)
}

func TestIsAssaCode(t *testing.T) {
	for code, want := range map[string]bool{
		"PJ750-54":  true,
		"pj750-3":   true,
		"PJ750":     false,
		"PJ750-6":   false,
		"PJ750-054": false,
		"PJ751-54":  false,
		"PJ750-5A":  false,
	} {
		assert.Equal(t, want, parsers.IsAssaCode(code), code)
	}
}

// ─── Catálogo y registro ──────────────────────────────────────────────────────

func TestParseCatalog_NormalizaClaves(t *testing.T) {
	cat, err := parsers.ParseCatalog([]byte(assaYAML))
	require.NoError(t, err)
	require.Len(t, cat.Catalog, 2)
	assert.Equal(t, "ASSA", cat.Catalog[0].Key)
	assert.True(t, cat.Catalog[0].UseMultiCommissionColumns)
	assert.Equal(t, []string{"vida 1er. año"}, cat.For("assa").Commission2)
	assert.Equal(t, []string{"poliza", "policy"}, cat.For("assa").Policy)
}

func TestLoadCatalog_ArchivoInexistenteUsaDefecto(t *testing.T) {
	cat, err := parsers.LoadCatalog(filepath.Join(t.TempDir(), "no-existe.yaml"))
	require.NoError(t, err)
	assert.Equal(t, commission.DefaultAliases().Policy, cat.For("CUALQUIERA").Policy)
	assert.Empty(t, cat.Catalog)
}

func TestParseCatalog_ClaveVacia(t *testing.T) {
	_, err := parsers.ParseCatalog([]byte("catalog:\n  - name: Sin clave\n"))
	assert.Error(t, err)
}

func TestNewRegistry_EstrategiasPorFormato(t *testing.T) {
	reg := parsers.NewRegistry(commission.AliasBook{}, nil, nil)

	p, err := reg.Lookup("banesco", ingestion.FormatXLSX)
	require.NoError(t, err)
	assert.IsType(t, &parsers.BanescoXLSX{}, p)

	p, err = reg.Lookup("ASSA", ingestion.FormatCSV)
	require.NoError(t, err)
	assert.IsType(t, &parsers.Generic{}, p)

	_, err = reg.Lookup("VUMI", ingestion.FormatPDF)
	assert.ErrorIs(t, err, domain.ErrParse)

	reg = parsers.NewRegistry(commission.AliasBook{}, fakeLines{}, fakeLines{})
	p, err = reg.Lookup("VUMI", ingestion.FormatPDF)
	require.NoError(t, err)
	assert.IsType(t, &parsers.VumiPDF{}, p)
	p, err = reg.Lookup("ASSISTCARD", ingestion.FormatImage)
	require.NoError(t, err)
	assert.IsType(t, &parsers.AssistcardImage{}, p)

	for key, want := range map[string]ingestion.Parser{
		"PALIG":     &parsers.PaligPDF{},
		"MERCANTIL": &parsers.MercantilPDF{},
		"REGIONAL":  &parsers.RegionalPDF{},
		"IFS":       &parsers.IFSPDF{},
		"ALIADO":    &parsers.ColumnReportPDF{},
		"MB":        &parsers.ColumnReportPDF{},
		"OPTIMA":    &parsers.ColumnReportPDF{},
	} {
		p, err := reg.Lookup(key, ingestion.FormatPDF)
		require.NoError(t, err, key)
		assert.IsType(t, want, p, key)
	}
	p, err = reg.Lookup("mercantil", ingestion.FormatXLSX)
	require.NoError(t, err)
	assert.IsType(t, &parsers.MercantilXLSX{}, p)
	p, err = reg.Lookup("ASSA_CODIGOS", ingestion.FormatCSV)
	require.NoError(t, err)
	assert.IsType(t, &parsers.AssaCodesXLSX{}, p)
}
