package parsers

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jhoicas/Comisiones-api/internal/domain/commission"
)

// CarrierEntry aseguradora declarada en el catálogo YAML.
type CarrierEntry struct {
	Key                       string `yaml:"key"`
	Name                      string `yaml:"name"`
	InvertNegatives           bool   `yaml:"invert_negatives"`
	UseMultiCommissionColumns bool   `yaml:"use_multi_commission_columns"`
}

// CarrierCatalog contenido de config/carriers.yaml: alias de columnas y aseguradoras conocidas.
type CarrierCatalog struct {
	commission.AliasBook `yaml:",inline"`
	Catalog              []CarrierEntry `yaml:"catalog"`
}

// LoadCatalog lee el archivo de alias. Si no existe devuelve el diccionario por defecto.
func LoadCatalog(path string) (*CarrierCatalog, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &CarrierCatalog{AliasBook: commission.AliasBook{Default: commission.DefaultAliases()}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("leer %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodifica el YAML y normaliza las claves de aseguradora a mayúsculas.
func ParseCatalog(data []byte) (*CarrierCatalog, error) {
	var c CarrierCatalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decodificar catálogo de aseguradoras: %w", err)
	}
	if len(c.Default.Policy) == 0 && len(c.Default.Commission) == 0 {
		c.Default = commission.DefaultAliases()
	}
	carriers := make(map[string]commission.AliasConfig, len(c.Carriers))
	for k, v := range c.Carriers {
		carriers[strings.ToUpper(strings.TrimSpace(k))] = v
	}
	c.Carriers = carriers
	for i := range c.Catalog {
		c.Catalog[i].Key = strings.ToUpper(strings.TrimSpace(c.Catalog[i].Key))
		if c.Catalog[i].Key == "" {
			return nil, fmt.Errorf("catálogo: la aseguradora %d no tiene clave", i+1)
		}
	}
	return &c, nil
}
