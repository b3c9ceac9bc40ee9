package service

import (
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"

	"github.com/radieske/odds-cache-service/internal/odds-service/model"
)

// Accepted odds range, both ends inclusive.
var (
	MinOdds = decimal.RequireFromString("1.01")
	MaxOdds = decimal.RequireFromString("999.99")
)

const oddsPlaces = 2

// ValidateOdds checks one odds value against the accepted range and the
// two-decimal fixed-point format.
func ValidateOdds(side string, v decimal.Decimal) error {
	if v.LessThan(MinOdds) || v.GreaterThan(MaxOdds) {
		return fmt.Errorf("%w: %s odds %s outside [%s, %s]", ErrInvalidOdds, side, v, MinOdds.StringFixed(oddsPlaces), MaxOdds.StringFixed(oddsPlaces))
	}
	if !v.Equal(v.Truncate(oddsPlaces)) {
		return fmt.Errorf("%w: %s odds %s has more than %d decimal places", ErrInvalidOdds, side, v, oddsPlaces)
	}
	return nil
}

func validateTriple(home, draw, away decimal.Decimal) error {
	return errors.Join(
		ValidateOdds("home", home),
		ValidateOdds("draw", draw),
		ValidateOdds("away", away),
	)
}

func validateCreate(in model.CreateInput, now time.Time) error {
	if err := validateTriple(in.HomeOdds, in.DrawOdds, in.AwayOdds); err != nil {
		return err
	}
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Sport, validation.Required, validation.Length(1, 50)),
		validation.Field(&in.HomeTeam, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.AwayTeam, validation.Required, validation.Length(1, 100),
			validation.NotIn(in.HomeTeam).Error("must differ from the home team")),
		validation.Field(&in.MatchDate, validation.Required, validation.By(after(now))),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

func validateUpdate(in model.UpdateInput) error {
	if err := validateTriple(in.HomeOdds, in.DrawOdds, in.AwayOdds); err != nil {
		return err
	}
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Sport, validation.Required, validation.Length(1, 50)),
		validation.Field(&in.HomeTeam, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.AwayTeam, validation.Required, validation.Length(1, 100),
			validation.NotIn(in.HomeTeam).Error("must differ from the home team")),
		validation.Field(&in.MatchDate, validation.Required),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

func validateFilter(f model.Filter) error {
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return fmt.Errorf("%w: date range starts after it ends", ErrInvalidInput)
	}
	return nil
}

// after returns a rule that accepts only instants strictly after now.
func after(now time.Time) validation.RuleFunc {
	return func(value interface{}) error {
		t, ok := value.(time.Time)
		if !ok {
			return errors.New("must be a timestamp")
		}
		if !t.After(now) {
			return errors.New("must be in the future")
		}
		return nil
	}
}
