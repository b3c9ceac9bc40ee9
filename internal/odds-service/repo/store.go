// Package repo defines the persistence contract for odds records.
// PostgreSQL is the source of truth; the in-memory store serves tests and
// local development.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/radieske/odds-cache-service/internal/odds-service/model"
)

// ErrNotFound is returned when no odds row matches the id.
var ErrNotFound = errors.New("odds not found")

// Store is the odds system of record. Every method is exactly one round
// trip to the backing database.
type Store interface {
	// GetByID loads one record without resolving its creator.
	GetByID(ctx context.Context, id int64) (model.OddsRecord, error)

	// Create inserts rec and returns it with the assigned ID.
	Create(ctx context.Context, rec model.OddsRecord) (model.OddsRecord, error)

	// Update writes every mutable column of rec.
	Update(ctx context.Context, rec model.OddsRecord) error

	// SetActive writes only the active flag and updated_at.
	SetActive(ctx context.Context, id int64, active bool, updatedAt time.Time) error

	// Delete reports whether a row was removed.
	Delete(ctx context.Context, id int64) (bool, error)

	// ListWithCreators returns the records matching f with Creator resolved,
	// using a single joined query.
	ListWithCreators(ctx context.Context, f model.Filter) ([]model.OddsRecord, error)
}

// Query operation names, used for metrics and query accounting.
const (
	OpGetByID          = "get_by_id"
	OpCreate           = "create"
	OpUpdate           = "update"
	OpSetActive        = "set_active"
	OpDelete           = "delete"
	OpListWithCreators = "list_with_creators"
)
