package events

import "time"

// Ações publicadas no tópico "odds_changed"
const (
	ActionCreated     = "created"
	ActionUpdated     = "updated"
	ActionDeactivated = "deactivated"
	ActionDeleted     = "deleted"
)

// OddsChanged é emitido pelo odds-service após cada escrita confirmada no banco
type OddsChanged struct {
	OddsID    int64     `json:"odds_id"`
	Action    string    `json:"action"`
	Sport     string    `json:"sport,omitempty"`
	Active    bool      `json:"active"`
	UpdatedAt time.Time `json:"updated_at"`
	Source    string    `json:"source"` // instância que fez a escrita
}
