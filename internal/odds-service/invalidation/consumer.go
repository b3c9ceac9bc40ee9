// Package invalidation evicts local cache entries when another odds-service
// instance reports a write. Only needed with the in-process cache backend:
// a shared Redis is already coherent across instances.
package invalidation

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/odds-cache-service/internal/odds-service/cache"
	"github.com/radieske/odds-cache-service/pkg/contracts/events"
)

// MessageReader é a parte do *kafka.Reader usada pelo consumer
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// Consumer lê odds_changed e remove a entrada correspondente do cache.
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa
type Consumer struct {
	Log    *zap.Logger
	Reader MessageReader
	Cache  cache.Cache
	Source string // eventos desta instância são ignorados

	Backoff time.Duration // espera após falha de leitura

	OnConsumed func()       // métricas (counter++)
	OnEvicted  func()       // métricas
	OnSkipped  func()       // métricas
	OnError    func(string) // métricas por fase
}

// Run consome até o contexto ser cancelado
func (c *Consumer) Run(ctx context.Context) error {
	backoff := c.Backoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}

	for {
		m, err := c.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.Log.Warn("kafka read failed", zap.Error(err))
			c.fail("read")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			continue
		}

		if c.OnConsumed != nil {
			c.OnConsumed()
		}

		var ev events.OddsChanged
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			c.Log.Warn("invalid message", zap.Int64("offset", m.Offset), zap.Error(err))
			c.fail("decode")
			continue
		}

		// escrita local já atualizou/removeu a própria entrada
		if ev.Source != "" && ev.Source == c.Source {
			if c.OnSkipped != nil {
				c.OnSkipped()
			}
			continue
		}

		key := cache.OddsKey(ev.OddsID)
		if _, err := c.Cache.Delete(ctx, key); err != nil {
			c.Log.Warn("cache evict failed", zap.String("key", key), zap.Error(err))
			c.fail("evict")
			continue
		}
		c.Log.Debug("cache entry invalidated",
			zap.String("key", key),
			zap.String("action", ev.Action),
			zap.String("source", ev.Source),
		)
		if c.OnEvicted != nil {
			c.OnEvicted()
		}
	}
}

func (c *Consumer) fail(phase string) {
	if c.OnError != nil {
		c.OnError(phase)
	}
}
