package commission

import "strings"

// AliasConfig listas de alias de encabezado por campo semántico.
type AliasConfig struct {
	Policy      []string `yaml:"policy"`
	Insured     []string `yaml:"insured"`
	Commission  []string `yaml:"commission"`
	Commission2 []string `yaml:"commission_2"`
	Commission3 []string `yaml:"commission_3"`
	// Exclude encabezados que nunca se toman como comisión (ej. "gasto").
	Exclude []string `yaml:"exclude"`
}

// AliasBook diccionario completo: alias por defecto más sobrescrituras por aseguradora.
// Es un valor inmutable que se pasa al mapeador; no hay estado global.
type AliasBook struct {
	Default  AliasConfig            `yaml:"default"`
	Carriers map[string]AliasConfig `yaml:"carriers"`
}

// DefaultAliases alias usados cuando no hay archivo de configuración.
func DefaultAliases() AliasConfig {
	return AliasConfig{
		Policy:     []string{"poliza", "nro poliza", "no. de poliza", "numero de poliza", "policy", "policy number"},
		Insured:    []string{"asegurado", "nombre asegurado", "nombre del asegurado", "insured", "cliente", "client", "contratante"},
		Commission: []string{"comision", "comision generada", "commission", "honorario", "monto", "amount", "bruto", "gross"},
		Exclude:    []string{"gasto", "prima", "%", "porcentaje", "tasa"},
	}
}

// For devuelve la configuración de una aseguradora, completando con los alias por defecto
// los campos que la aseguradora no define.
func (b AliasBook) For(carrierKey string) AliasConfig {
	def := b.Default
	if len(def.Policy) == 0 && len(def.Commission) == 0 {
		def = DefaultAliases()
	}
	c, ok := b.Carriers[strings.ToUpper(strings.TrimSpace(carrierKey))]
	if !ok {
		return def
	}
	if len(c.Policy) == 0 {
		c.Policy = def.Policy
	}
	if len(c.Insured) == 0 {
		c.Insured = def.Insured
	}
	if len(c.Commission) == 0 {
		c.Commission = def.Commission
	}
	if len(c.Exclude) == 0 {
		c.Exclude = def.Exclude
	}
	return c
}
