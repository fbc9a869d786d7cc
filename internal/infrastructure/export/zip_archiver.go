package export

import (
	"archive/zip"
	"bytes"
	"fmt"

	appexport "github.com/jhoicas/Comisiones-api/internal/application/export"
)

// ZipArchiver implementa export.Archiver en memoria.
type ZipArchiver struct{}

// NewZipArchiver construye el empaquetador.
func NewZipArchiver() *ZipArchiver { return &ZipArchiver{} }

// Archive empaqueta los archivos con sus nombres tal cual. Nombres repetidos son un error.
func (a *ZipArchiver) Archive(files []appexport.File) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	seen := make(map[string]bool, len(files))
	for _, f := range files {
		if seen[f.Name] {
			return nil, fmt.Errorf("zip: entrada duplicada %s", f.Name)
		}
		seen[f.Name] = true
		fw, err := zw.Create(f.Name)
		if err != nil {
			return nil, fmt.Errorf("zip: crear entrada %s: %w", f.Name, err)
		}
		if _, err := fw.Write(f.Content); err != nil {
			return nil, fmt.Errorf("zip: escribir %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zip: cerrar archivo: %w", err)
	}
	return buf.Bytes(), nil
}
