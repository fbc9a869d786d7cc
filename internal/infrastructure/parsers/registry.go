package parsers

import (
	"github.com/jhoicas/Comisiones-api/internal/application/ingestion"
	"github.com/jhoicas/Comisiones-api/internal/domain/commission"
)

// Claves de las aseguradoras con estrategia propia.
const (
	CarrierBanesco    = "BANESCO"
	CarrierVumi       = "VUMI"
	CarrierAssistcard = "ASSISTCARD"
	CarrierPalig      = "PALIG"
	CarrierMercantil  = "MERCANTIL"
	CarrierRegional   = "REGIONAL"
	CarrierIFS        = "IFS"
	CarrierAliado     = "ALIADO"
	CarrierMB         = "MB"
	CarrierOptima     = "OPTIMA"
	CarrierAssaCodes  = "ASSA_CODIGOS"
)

// NewRegistry registra las estrategias propias sobre la genérica por alias.
// Sin extractor de PDF o sin OCR las estrategias que dependen de ellos no se registran y esos
// archivos terminan en ParseError.
func NewRegistry(book commission.AliasBook, pdfText, ocr LineSource) *ingestion.Registry {
	reg := ingestion.NewRegistry(NewGeneric(book))
	reg.Register(CarrierBanesco, NewBanescoXLSX(), ingestion.FormatXLSX, ingestion.FormatXLS)
	reg.Register(CarrierMercantil, NewMercantilXLSX(), ingestion.FormatXLSX, ingestion.FormatXLS)
	reg.Register(CarrierAssaCodes, NewAssaCodesXLSX(), ingestion.FormatXLSX, ingestion.FormatXLS, ingestion.FormatCSV)
	if pdfText != nil {
		reg.Register(CarrierBanesco, NewBanescoPDF(pdfText), ingestion.FormatPDF)
		reg.Register(CarrierVumi, NewVumiPDF(pdfText), ingestion.FormatPDF)
		reg.Register(CarrierPalig, NewPaligPDF(pdfText), ingestion.FormatPDF)
		reg.Register(CarrierMercantil, NewMercantilPDF(pdfText), ingestion.FormatPDF)
		reg.Register(CarrierRegional, NewRegionalPDF(pdfText), ingestion.FormatPDF)
		reg.Register(CarrierIFS, NewIFSPDF(pdfText, ocr), ingestion.FormatPDF)
		columns := NewColumnReportPDF(pdfText)
		for _, key := range []string{CarrierAliado, CarrierMB, CarrierOptima} {
			reg.Register(key, columns, ingestion.FormatPDF)
		}
	}
	if ocr != nil {
		reg.Register(CarrierAssistcard, NewAssistcardImage(ocr), ingestion.FormatImage)
	}
	return reg
}
