package invalidation

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/odds-cache-service/internal/odds-service/cache"
	"github.com/radieske/odds-cache-service/pkg/contracts/events"
)

// scriptedReader hands out the queued results, then cancels the run.
type scriptedReader struct {
	mu     sync.Mutex
	queue  []result
	cancel context.CancelFunc
}

type result struct {
	msg kafka.Message
	err error
}

func (r *scriptedReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) == 0 {
		r.mu.Unlock()
		r.cancel()
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	next := r.queue[0]
	r.queue = r.queue[1:]
	r.mu.Unlock()
	return next.msg, next.err
}

func eventMsg(t *testing.T, e events.OddsChanged) result {
	t.Helper()
	b, err := json.Marshal(e)
	require.NoError(t, err)
	return result{msg: kafka.Message{Value: b}}
}

type counters struct {
	consumed, evicted, skipped int
	errors                     []string
}

func newConsumer(t *testing.T, c cache.Cache, queue ...result) (*Consumer, *counters, context.Context) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	n := &counters{}
	return &Consumer{
		Log:        zap.NewNop(),
		Reader:     &scriptedReader{queue: queue, cancel: cancel},
		Cache:      c,
		Source:     "instance-a",
		Backoff:    time.Millisecond,
		OnConsumed: func() { n.consumed++ },
		OnEvicted:  func() { n.evicted++ },
		OnSkipped:  func() { n.skipped++ },
		OnError:    func(phase string) { n.errors = append(n.errors, phase) },
	}, n, ctx
}

func TestRun_EvictsForeignWrites(t *testing.T) {
	local, err := cache.NewLocalCache(cache.DefaultLocalConfig(time.Minute))
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, local.Set(ctx, cache.OddsKey(1), []byte("a"), time.Minute))
	require.NoError(t, local.Set(ctx, cache.OddsKey(2), []byte("b"), time.Minute))

	c, n, runCtx := newConsumer(t, local,
		eventMsg(t, events.OddsChanged{OddsID: 1, Action: events.ActionUpdated, Source: "instance-b"}),
		eventMsg(t, events.OddsChanged{OddsID: 2, Action: events.ActionUpdated, Source: "instance-a"}),
	)

	err = c.Run(runCtx)
	assert.ErrorIs(t, err, context.Canceled)

	_, hit, _ := local.Get(ctx, cache.OddsKey(1))
	assert.False(t, hit, "foreign write evicts")
	_, hit, _ = local.Get(ctx, cache.OddsKey(2))
	assert.True(t, hit, "own write is skipped")

	assert.Equal(t, 2, n.consumed)
	assert.Equal(t, 1, n.evicted)
	assert.Equal(t, 1, n.skipped)
	assert.Empty(t, n.errors)
}

func TestRun_SurvivesBadMessagesAndReadErrors(t *testing.T) {
	local, err := cache.NewLocalCache(cache.DefaultLocalConfig(time.Minute))
	require.NoError(t, err)
	require.NoError(t, local.Set(context.Background(), cache.OddsKey(3), []byte("c"), time.Minute))

	c, n, runCtx := newConsumer(t, local,
		result{err: errors.New("broker down")},
		result{msg: kafka.Message{Value: []byte("{")}},
		eventMsg(t, events.OddsChanged{OddsID: 3, Action: events.ActionDeleted, Source: "instance-b"}),
	)

	_ = c.Run(runCtx)

	_, hit, _ := local.Get(context.Background(), cache.OddsKey(3))
	assert.False(t, hit)
	assert.Equal(t, []string{"read", "decode"}, n.errors)
	assert.Equal(t, 1, n.evicted)
}
