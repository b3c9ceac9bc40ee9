package cache_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/odds-cache-service/internal/odds-service/cache"
	"github.com/radieske/odds-cache-service/internal/odds-service/model"
)

func TestOddsKey(t *testing.T) {
	assert.Equal(t, "odds:42", cache.OddsKey(42))

	id, err := cache.ParseOddsKey("odds:42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"odds:", "user:42", "odds:abc", ""} {
		_, err := cache.ParseOddsKey(bad)
		assert.ErrorIs(t, err, cache.ErrBadKey, bad)
	}
}

func TestCodecs_PreserveFixedPointOdds(t *testing.T) {
	now := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	rec := model.OddsRecord{
		ID:        5,
		Sport:     "football",
		HomeTeam:  "Santos",
		AwayTeam:  "Grêmio",
		HomeOdds:  decimal.RequireFromString("1.01"),
		DrawOdds:  decimal.RequireFromString("999.99"),
		AwayOdds:  decimal.RequireFromString("3.60"),
		MatchDate: now.Add(48 * time.Hour),
		Active:    true,
		CreatedBy: 11,
		CreatedAt: now,
		UpdatedAt: now,
		Creator:   &model.Creator{ID: 11, Username: "ana", Role: model.RoleBookmaker},
	}

	for _, name := range []string{"json", "msgpack"} {
		t.Run(name, func(t *testing.T) {
			codec, err := cache.CodecByName(name)
			require.NoError(t, err)

			b, err := codec.Marshal(rec)
			require.NoError(t, err)
			got, err := codec.Unmarshal(b)
			require.NoError(t, err)

			assert.True(t, got.HomeOdds.Equal(rec.HomeOdds))
			assert.True(t, got.DrawOdds.Equal(rec.DrawOdds))
			assert.True(t, got.UpdatedAt.Equal(rec.UpdatedAt))
			assert.Equal(t, rec.AwayTeam, got.AwayTeam)
			assert.Nil(t, got.Creator, "creator is never cached")
		})
	}

	_, err := cache.CodecByName("gob")
	assert.Error(t, err)
}
