package entity

import "time"

// AuditEntry registro de una acción que modificó el libro de pagos.
type AuditEntry struct {
	ID         string
	Action     string
	EntityType string
	EntityID   string
	UserID     string
	Detail     map[string]any
	CreatedAt  time.Time
}
