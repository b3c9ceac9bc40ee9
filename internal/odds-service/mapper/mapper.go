// Package mapper converts between the persisted odds shape and the API view.
// All functions are pure.
package mapper

import (
	"github.com/shopspring/decimal"

	"github.com/radieske/odds-cache-service/internal/odds-service/dto"
	"github.com/radieske/odds-cache-service/internal/odds-service/model"
)

const (
	probabilityPlaces = 4
	marginPlaces      = 2
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// ToPersisted copies a create input into a new record with Active set.
// ID and timestamps are left for the store.
func ToPersisted(in model.CreateInput) model.OddsRecord {
	return model.OddsRecord{
		Sport:     in.Sport,
		HomeTeam:  in.HomeTeam,
		AwayTeam:  in.AwayTeam,
		HomeOdds:  in.HomeOdds,
		DrawOdds:  in.DrawOdds,
		AwayOdds:  in.AwayOdds,
		MatchDate: in.MatchDate,
		Active:    true,
		CreatedBy: in.CreatedBy,
	}
}

// ApplyUpdate overwrites the mutable fields of rec. ID, CreatedAt and
// CreatedBy are never touched; Active only when the input carries it.
func ApplyUpdate(rec *model.OddsRecord, in model.UpdateInput) {
	rec.Sport = in.Sport
	rec.HomeTeam = in.HomeTeam
	rec.AwayTeam = in.AwayTeam
	rec.HomeOdds = in.HomeOdds
	rec.DrawOdds = in.DrawOdds
	rec.AwayOdds = in.AwayOdds
	rec.MatchDate = in.MatchDate
	if in.Active != nil {
		rec.Active = *in.Active
	}
}

func ToView(rec model.OddsRecord) dto.OddsView {
	v := dto.OddsView{
		ID:        rec.ID,
		Sport:     rec.Sport,
		HomeTeam:  rec.HomeTeam,
		AwayTeam:  rec.AwayTeam,
		HomeOdds:  rec.HomeOdds,
		DrawOdds:  rec.DrawOdds,
		AwayOdds:  rec.AwayOdds,
		MatchDate: rec.MatchDate,
		Active:    rec.Active,
		CreatedBy: rec.CreatedBy,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
	if rec.Creator != nil {
		v.Creator = &dto.CreatorView{
			ID:       rec.Creator.ID,
			Username: rec.Creator.Username,
			Role:     string(rec.Creator.Role),
		}
	}
	return v
}

// ToViewWithMargin is ToView plus implied probabilities and the bookmaker
// margin, always derived from the odds stored on rec.
func ToViewWithMargin(rec model.OddsRecord) dto.OddsView {
	v := ToView(rec)
	v.ImpliedProbability = &dto.ImpliedProbability{
		Home: ImpliedProbability(rec.HomeOdds).Round(probabilityPlaces),
		Draw: ImpliedProbability(rec.DrawOdds).Round(probabilityPlaces),
		Away: ImpliedProbability(rec.AwayOdds).Round(probabilityPlaces),
	}
	m := Margin(rec.HomeOdds, rec.DrawOdds, rec.AwayOdds).Round(marginPlaces)
	v.Margin = &m
	return v
}

// ImpliedProbability returns 1/odds, or zero for non-positive odds.
func ImpliedProbability(odds decimal.Decimal) decimal.Decimal {
	if !odds.IsPositive() {
		return decimal.Zero
	}
	return one.Div(odds)
}

// Margin returns the overround in percent: (1/home + 1/draw + 1/away - 1) * 100.
func Margin(home, draw, away decimal.Decimal) decimal.Decimal {
	sum := ImpliedProbability(home).
		Add(ImpliedProbability(draw)).
		Add(ImpliedProbability(away))
	return sum.Sub(one).Mul(hundred)
}
