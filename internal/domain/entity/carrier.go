package entity

import "time"

// Carrier aseguradora emisora de estados de comisión.
// Key identifica la estrategia de lectura (ASSA, BANESCO, VUMI...).
type Carrier struct {
	ID                        string
	Key                       string
	Name                      string
	InvertNegatives           bool // negar todos los montos al importar
	UseMultiCommissionColumns bool // sumar columnas de comisión secundarias
	Active                    bool
	CreatedAt                 time.Time
}
