package ingestion

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jhoicas/Comisiones-api/internal/domain"
)

// Formatos de archivo reconocidos.
const (
	FormatXLSX  = "xlsx"
	FormatXLS   = "xls"
	FormatCSV   = "csv"
	FormatPDF   = "pdf"
	FormatImage = "image"
)

var (
	magicPDF  = []byte("%PDF")
	magicZip  = []byte("PK\x03\x04")
	magicOLE2 = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	magicPNG  = []byte{0x89, 'P', 'N', 'G'}
	magicJPEG = []byte{0xFF, 0xD8, 0xFF}
)

// DetectFormat decide el formato por extensión y, si no hay extensión conocida, por contenido.
func DetectFormat(name string, content []byte) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	case ".xls":
		return FormatXLS
	case ".csv", ".txt", ".tsv":
		return FormatCSV
	case ".pdf":
		return FormatPDF
	case ".png", ".jpg", ".jpeg", ".webp":
		return FormatImage
	}
	switch {
	case bytes.HasPrefix(content, magicPDF):
		return FormatPDF
	case bytes.HasPrefix(content, magicZip):
		return FormatXLSX
	case bytes.HasPrefix(content, magicOLE2):
		return FormatXLS
	case bytes.HasPrefix(content, magicPNG), bytes.HasPrefix(content, magicJPEG):
		return FormatImage
	}
	return ""
}

// IsTabular formatos que la estrategia genérica por alias sabe leer.
func IsTabular(format string) bool {
	return format == FormatXLSX || format == FormatXLS || format == FormatCSV
}

// Detector selecciona la estrategia de lectura para una aseguradora y un archivo.
type Detector struct {
	registry *Registry
}

// NewDetector construye el detector sobre el registro de estrategias.
func NewDetector(registry *Registry) *Detector {
	return &Detector{registry: registry}
}

// Detect devuelve el formato y la estrategia. Falla con ParseError si no hay estrategia.
func (d *Detector) Detect(carrierKey string, file File) (string, Parser, error) {
	format := DetectFormat(file.Name, file.Content)
	if format == "" {
		return "", nil, &domain.ParseError{Carrier: carrierKey, Cause: fmt.Errorf("formato no reconocido: %s", file.Name)}
	}
	p, err := d.registry.Lookup(carrierKey, format)
	if err != nil {
		return format, nil, err
	}
	return format, p, nil
}
