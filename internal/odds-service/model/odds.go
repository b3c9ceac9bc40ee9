// Package model defines the odds domain types shared by the odds-service packages.
// Odds values use shopspring/decimal, never float64.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role is the closed set of creator roles owned by user management.
type Role string

const (
	RoleRegular       Role = "regular"
	RoleBookmaker     Role = "bookmaker"
	RoleAdministrator Role = "administrator"
)

// Creator is the user that created an odds record. The odds service never
// owns it; it is resolved only through the batch loader.
type Creator struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// OddsRecord is the persisted odds shape. ID, CreatedAt and UpdatedAt are
// assigned by the store.
type OddsRecord struct {
	ID        int64           `json:"id" msgpack:"id"`
	Sport     string          `json:"sport" msgpack:"sport"`
	HomeTeam  string          `json:"home_team" msgpack:"home_team"`
	AwayTeam  string          `json:"away_team" msgpack:"away_team"`
	HomeOdds  decimal.Decimal `json:"home_odds" msgpack:"home_odds"`
	DrawOdds  decimal.Decimal `json:"draw_odds" msgpack:"draw_odds"`
	AwayOdds  decimal.Decimal `json:"away_odds" msgpack:"away_odds"`
	MatchDate time.Time       `json:"match_date" msgpack:"match_date"`
	Active    bool            `json:"active" msgpack:"active"`
	CreatedBy int64           `json:"created_by" msgpack:"created_by"` // weak reference, 0 when unknown
	CreatedAt time.Time       `json:"created_at" msgpack:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" msgpack:"updated_at"`

	// Creator is only set by the batch loader.
	Creator *Creator `json:"creator,omitempty" msgpack:"-"`
}

// CreateInput carries the already-parsed fields of a create request.
type CreateInput struct {
	Sport     string
	HomeTeam  string
	AwayTeam  string
	HomeOdds  decimal.Decimal
	DrawOdds  decimal.Decimal
	AwayOdds  decimal.Decimal
	MatchDate time.Time
	CreatedBy int64
}

// UpdateInput carries the mutable fields of an update request. Active is
// only applied when set.
type UpdateInput struct {
	Sport     string
	HomeTeam  string
	AwayTeam  string
	HomeOdds  decimal.Decimal
	DrawOdds  decimal.Decimal
	AwayOdds  decimal.Decimal
	MatchDate time.Time
	Active    *bool
}

// Filter selects odds records for collection reads. Zero values mean "any".
// From and To bound the match date, both inclusive.
type Filter struct {
	Sport  string
	Active *bool
	From   *time.Time
	To     *time.Time
}
