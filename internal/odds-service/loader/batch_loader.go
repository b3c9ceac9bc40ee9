// Package loader resolves odds collections together with their creators in
// one store round trip.
package loader

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/odds-cache-service/internal/odds-service/model"
)

// JoinedScanner is the store capability the loader needs: a filtered scan
// that returns creators already attached.
type JoinedScanner interface {
	ListWithCreators(ctx context.Context, f model.Filter) ([]model.OddsRecord, error)
}

// BatchLoader returns fully resolved odds records for a filter. It issues
// exactly one store query per call and never looks a creator up on its own.
type BatchLoader struct {
	store JoinedScanner
	log   *zap.Logger
}

func NewBatchLoader(store JoinedScanner, log *zap.Logger) *BatchLoader {
	return &BatchLoader{store: store, log: log}
}

// LoadWithCreators runs the joined scan. Store errors are returned as is.
func (b *BatchLoader) LoadWithCreators(ctx context.Context, f model.Filter) ([]model.OddsRecord, error) {
	start := time.Now()
	recs, err := b.store.ListWithCreators(ctx, f)
	if err != nil {
		return nil, err
	}
	b.log.Debug("odds batch loaded",
		zap.Int("count", len(recs)),
		zap.String("sport", f.Sport),
		zap.Duration("latency", time.Since(start)),
	)
	return recs, nil
}
