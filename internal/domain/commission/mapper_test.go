package commission_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Comisiones-api/internal/domain"
	"github.com/jhoicas/Comisiones-api/internal/domain/commission"
)

func assaAliases() commission.AliasConfig {
	cfg := commission.DefaultAliases()
	cfg.Commission = []string{"Vida 1er. Año"}
	cfg.Commission2 = []string{"Vida renov."}
	return cfg
}

func TestColumnMapper_SumaColumnasExacta(t *testing.T) {
	headers := []string{"Póliza", "Nombre Asegurado", "Vida 1er. Año", "Vida renov."}
	m := commission.NewColumnMapper(assaAliases())

	cm, err := m.Resolve(headers, true)
	require.NoError(t, err)
	require.Len(t, cm.Commission, 2, "con suma múltiple deben resolverse dos columnas")

	row := m.MapRow(cm, headers, []string{"A100", "JUAN PEREZ", "100", "50"})
	assert.True(t, decimal.NewFromInt(150).Equal(row.Amount), "100 + 50 debe ser exactamente 150, obtenido %s", row.Amount)
	assert.Equal(t, "A100", row.PolicyNumber)
	assert.Equal(t, "JUAN PEREZ", row.InsuredName)
	assert.Equal(t, "50", row.Raw["Vida renov."], "la fila cruda conserva encabezado -> valor")
}

func TestColumnMapper_SinSumaUsaSoloPrimeraColumna(t *testing.T) {
	headers := []string{"Póliza", "Nombre Asegurado", "Vida 1er. Año", "Vida renov."}
	m := commission.NewColumnMapper(assaAliases())

	cm, err := m.Resolve(headers, false)
	require.NoError(t, err)
	row := m.MapRow(cm, headers, []string{"A100", "JUAN PEREZ", "100", "50"})
	assert.True(t, decimal.NewFromInt(100).Equal(row.Amount))
}

func TestColumnMapper_AliasSinTildeNiMayusculas(t *testing.T) {
	headers := []string{"NO. DE PÓLIZA", "CLIENTE", "Gasto Administrativo", "Comisión Generada"}
	m := commission.NewColumnMapper(commission.DefaultAliases())

	cm, err := m.Resolve(headers, false)
	require.NoError(t, err)
	assert.Equal(t, 0, cm.Policy)
	assert.Equal(t, 1, cm.Insured)
	assert.Equal(t, []int{3}, cm.Commission, "la columna de gasto nunca se toma como comisión")
}

func TestColumnMapper_SinColumnaPoliza_ErrorValidacion(t *testing.T) {
	m := commission.NewColumnMapper(commission.DefaultAliases())
	_, err := m.Resolve([]string{"Fecha", "Comision"}, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestAliasBook_CompletaConDefaults(t *testing.T) {
	book := commission.AliasBook{
		Default: commission.DefaultAliases(),
		Carriers: map[string]commission.AliasConfig{
			"ASSA": {Commission: []string{"Honorarios Profesionales (Monto)"}},
		},
	}
	cfg := book.For("assa")
	assert.Equal(t, []string{"Honorarios Profesionales (Monto)"}, cfg.Commission)
	assert.Equal(t, commission.DefaultAliases().Policy, cfg.Policy)

	assert.Equal(t, commission.DefaultAliases().Commission, book.For("DESCONOCIDA").Commission)
}
