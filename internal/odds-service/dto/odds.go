package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OddsView is the externally visible shape of an odds record
type OddsView struct {
	ID        int64           `json:"id"`
	Sport     string          `json:"sport"`
	HomeTeam  string          `json:"homeTeam"`
	AwayTeam  string          `json:"awayTeam"`
	HomeOdds  decimal.Decimal `json:"homeOdds"`
	DrawOdds  decimal.Decimal `json:"drawOdds"`
	AwayOdds  decimal.Decimal `json:"awayOdds"`
	MatchDate time.Time       `json:"matchDate"`
	Active    bool            `json:"active"`
	CreatedBy int64           `json:"createdBy,omitempty"`
	Creator   *CreatorView    `json:"creator,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`

	// Analytics, only filled by the margin view
	ImpliedProbability *ImpliedProbability `json:"impliedProbability,omitempty"`
	Margin             *decimal.Decimal    `json:"margin,omitempty"` // percent
}

// ImpliedProbability holds 1/odds for each side of a 1x2 market
type ImpliedProbability struct {
	Home decimal.Decimal `json:"home"`
	Draw decimal.Decimal `json:"draw"`
	Away decimal.Decimal `json:"away"`
}

// CreatorView is the resolved creator attached by collection reads
type CreatorView struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}
