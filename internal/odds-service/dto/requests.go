package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateOddsRequest é o payload de POST /v1/odds
type CreateOddsRequest struct {
	Sport     string          `json:"sport"`
	HomeTeam  string          `json:"homeTeam"`
	AwayTeam  string          `json:"awayTeam"`
	HomeOdds  decimal.Decimal `json:"homeOdds"`
	DrawOdds  decimal.Decimal `json:"drawOdds"`
	AwayOdds  decimal.Decimal `json:"awayOdds"`
	MatchDate time.Time       `json:"matchDate"`
}

// UpdateOddsRequest é o payload de PUT /v1/odds/{id}
type UpdateOddsRequest struct {
	Sport     string          `json:"sport"`
	HomeTeam  string          `json:"homeTeam"`
	AwayTeam  string          `json:"awayTeam"`
	HomeOdds  decimal.Decimal `json:"homeOdds"`
	DrawOdds  decimal.Decimal `json:"drawOdds"`
	AwayOdds  decimal.Decimal `json:"awayOdds"`
	MatchDate time.Time       `json:"matchDate"`
	Active    *bool           `json:"active,omitempty"`
}

// ErrorResponse é o corpo padrão de erro da API
type ErrorResponse struct {
	Error string `json:"error"`
}
