package ingestion

import (
	"fmt"
	"strings"
	"sync"

	"github.com/jhoicas/Comisiones-api/internal/domain"
)

// Registry mapa estático aseguradora -> formato -> estrategia, con la estrategia genérica
// por alias como respaldo para archivos tabulares. Agregar una aseguradora es solo registrar.
type Registry struct {
	mu      sync.RWMutex
	bespoke map[string]map[string]Parser
	generic Parser
}

// NewRegistry construye el registro con la estrategia genérica de respaldo.
func NewRegistry(generic Parser) *Registry {
	return &Registry{bespoke: make(map[string]map[string]Parser), generic: generic}
}

// Register asocia una estrategia a una aseguradora para los formatos indicados.
func (r *Registry) Register(carrierKey string, p Parser, formats ...string) {
	key := normalizeKey(carrierKey)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bespoke[key] == nil {
		r.bespoke[key] = make(map[string]Parser)
	}
	for _, f := range formats {
		r.bespoke[key][f] = p
	}
}

// Lookup busca la estrategia de la aseguradora para el formato; si no existe y el formato
// es tabular usa la genérica.
func (r *Registry) Lookup(carrierKey, format string) (Parser, error) {
	key := normalizeKey(carrierKey)
	r.mu.RLock()
	p, ok := r.bespoke[key][format]
	r.mu.RUnlock()
	if ok {
		return p, nil
	}
	if IsTabular(format) && r.generic != nil {
		return r.generic, nil
	}
	return nil, &domain.ParseError{
		Carrier: carrierKey,
		Cause:   fmt.Errorf("no hay estrategia registrada para archivos %s", format),
	}
}

// Carriers aseguradoras con estrategia propia.
func (r *Registry) Carriers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.bespoke))
	for k := range r.bespoke {
		out = append(out, k)
	}
	return out
}

func normalizeKey(k string) string {
	return strings.ToUpper(strings.TrimSpace(k))
}
