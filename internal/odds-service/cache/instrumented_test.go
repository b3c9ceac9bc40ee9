package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/odds-cache-service/internal/odds-service/cache"
)

type brokenCache struct{}

var errDown = errors.New("cache down")

func (brokenCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, errDown }
func (brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	return errDown
}
func (brokenCache) Delete(context.Context, string) (bool, error) { return false, errDown }

func TestInstrumented_CountsHitsAndMisses(t *testing.T) {
	local, err := cache.NewLocalCache(cache.DefaultLocalConfig(time.Minute))
	require.NoError(t, err)
	m := cache.NewMetrics(prometheus.NewRegistry())
	c := cache.NewInstrumented(local, zap.NewNop(), m)
	ctx := context.Background()

	_, hit, err := c.Get(ctx, "odds:1")
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, "odds:1", []byte("x"), time.Minute))
	_, hit, err = c.Get(ctx, "odds:1")
	require.NoError(t, err)
	assert.True(t, hit)

	_, err = c.Delete(ctx, "odds:1")
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Ops.WithLabelValues("get", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Ops.WithLabelValues("get", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Ops.WithLabelValues("set", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Ops.WithLabelValues("delete", "deleted")))
}

func TestInstrumented_PassesErrorsThrough(t *testing.T) {
	m := cache.NewMetrics(prometheus.NewRegistry())
	c := cache.NewInstrumented(brokenCache{}, zap.NewNop(), m)
	ctx := context.Background()

	_, _, err := c.Get(ctx, "odds:1")
	assert.ErrorIs(t, err, errDown)
	assert.ErrorIs(t, c.Set(ctx, "odds:1", nil, time.Minute), errDown)
	_, err = c.Delete(ctx, "odds:1")
	assert.ErrorIs(t, err, errDown)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Ops.WithLabelValues("get", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Ops.WithLabelValues("set", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Ops.WithLabelValues("delete", "error")))
}
