// Package service keeps cached odds coherent with the store of record.
//
// Single-record reads are read-through. Writes go to the store first, then
// the cache entry is either replaced (Update) or evicted (Deactivate,
// Delete); the choice is made explicitly per operation. Collection reads
// bypass the cache and go through the BatchLoader. Cache failures are
// logged and swallowed; store failures always propagate.
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/odds-cache-service/internal/odds-service/cache"
	"github.com/radieske/odds-cache-service/internal/odds-service/dto"
	"github.com/radieske/odds-cache-service/internal/odds-service/loader"
	"github.com/radieske/odds-cache-service/internal/odds-service/mapper"
	"github.com/radieske/odds-cache-service/internal/odds-service/model"
	"github.com/radieske/odds-cache-service/internal/odds-service/repo"
	"github.com/radieske/odds-cache-service/pkg/contracts/events"
)

// DefaultTTL is used when Config.TTL is not set.
const DefaultTTL = 10 * time.Minute

// Publisher receives a change event after every committed write.
type Publisher interface {
	PublishOddsChanged(ctx context.Context, e events.OddsChanged) error
}

// Config holds the optional collaborators of OddsCacheService.
type Config struct {
	TTL       time.Duration    // uniform TTL for every entry
	Codec     cache.Codec      // defaults to JSON
	Now       func() time.Time // defaults to time.Now
	Publisher Publisher        // nil disables change events
	Source    string           // instance id stamped on change events
}

type OddsCacheService struct {
	store  repo.Store
	cache  cache.Cache
	loader *loader.BatchLoader
	log    *zap.Logger

	ttl    time.Duration
	codec  cache.Codec
	now    func() time.Time
	pub    Publisher
	source string
}

func New(store repo.Store, c cache.Cache, l *loader.BatchLoader, log *zap.Logger, cfg Config) *OddsCacheService {
	s := &OddsCacheService{
		store:  store,
		cache:  c,
		loader: l,
		log:    log,
		ttl:    cfg.TTL,
		codec:  cfg.Codec,
		now:    cfg.Now,
		pub:    cfg.Publisher,
		source: cfg.Source,
	}
	if s.ttl <= 0 {
		s.ttl = DefaultTTL
	}
	if s.codec == nil {
		s.codec = cache.JSONCodec{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// GetByID returns the record from cache, or loads it from the store and
// populates the cache. At most one store query.
func (s *OddsCacheService) GetByID(ctx context.Context, id int64) (dto.OddsView, error) {
	rec, err := s.read(ctx, id)
	if err != nil {
		return dto.OddsView{}, err
	}
	return mapper.ToView(rec), nil
}

// GetByIDWithMargin is GetByID plus implied probabilities and margin,
// computed from the odds of the returned snapshot.
func (s *OddsCacheService) GetByIDWithMargin(ctx context.Context, id int64) (dto.OddsView, error) {
	rec, err := s.read(ctx, id)
	if err != nil {
		return dto.OddsView{}, err
	}
	return mapper.ToViewWithMargin(rec), nil
}

// Create validates and inserts a new active record. The cache is not
// touched; the first read populates it.
func (s *OddsCacheService) Create(ctx context.Context, in model.CreateInput) (dto.OddsView, error) {
	now := s.clock()
	if err := validateCreate(in, now); err != nil {
		return dto.OddsView{}, err
	}

	rec := mapper.ToPersisted(in)
	rec.CreatedAt = now
	rec.UpdatedAt = now

	created, err := s.store.Create(ctx, rec)
	if err != nil {
		return dto.OddsView{}, storeErr("create", 0, err)
	}

	s.publish(ctx, events.ActionCreated, created)
	return mapper.ToView(created), nil
}

// Update applies in to the stored record and replaces the cache entry with
// the new value, so the next read needs no store round trip.
func (s *OddsCacheService) Update(ctx context.Context, id int64, in model.UpdateInput) (dto.OddsView, error) {
	if err := validateUpdate(in); err != nil {
		return dto.OddsView{}, err
	}

	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		return dto.OddsView{}, storeErr("update: load", id, err)
	}

	mapper.ApplyUpdate(&rec, in)
	rec.UpdatedAt = s.stamp(rec.UpdatedAt)

	if err := s.store.Update(ctx, rec); err != nil {
		return dto.OddsView{}, storeErr("update", id, err)
	}

	s.refresh(ctx, rec)
	s.publish(ctx, events.ActionUpdated, rec)
	return mapper.ToView(rec), nil
}

// Deactivate clears the active flag and evicts the cache entry. Eviction
// (not refresh) forces the next read to take the value from the store.
// Calling it on an inactive record still advances UpdatedAt.
func (s *OddsCacheService) Deactivate(ctx context.Context, id int64) (dto.OddsView, error) {
	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		return dto.OddsView{}, storeErr("deactivate: load", id, err)
	}

	ts := s.stamp(rec.UpdatedAt)
	if err := s.store.SetActive(ctx, id, false, ts); err != nil {
		return dto.OddsView{}, storeErr("deactivate", id, err)
	}
	rec.Active = false
	rec.UpdatedAt = ts

	s.evict(ctx, id)
	s.publish(ctx, events.ActionDeactivated, rec)
	return mapper.ToView(rec), nil
}

// Delete removes the record and evicts its cache entry. The entry is
// evicted even when the store had no such row, and the call then fails
// with ErrNotFound.
func (s *OddsCacheService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return storeErr("delete", id, err)
	}

	s.evict(ctx, id)
	if !deleted {
		return notFound(id)
	}

	s.publish(ctx, events.ActionDeleted, model.OddsRecord{ID: id, UpdatedAt: s.clock()})
	return nil
}

// ListWithCreators returns the matching records with creators resolved and
// margins computed. Never cached; exactly one store query.
func (s *OddsCacheService) ListWithCreators(ctx context.Context, f model.Filter) ([]dto.OddsView, error) {
	if err := validateFilter(f); err != nil {
		return nil, err
	}

	recs, err := s.loader.LoadWithCreators(ctx, f)
	if err != nil {
		return nil, storeErr("list with creators", 0, err)
	}

	out := make([]dto.OddsView, 0, len(recs))
	for _, rec := range recs {
		out = append(out, mapper.ToViewWithMargin(rec))
	}
	return out, nil
}

func (s *OddsCacheService) read(ctx context.Context, id int64) (model.OddsRecord, error) {
	if rec, ok := s.lookup(ctx, id); ok {
		return rec, nil
	}

	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		return model.OddsRecord{}, storeErr("get", id, err)
	}

	s.populate(ctx, rec)
	return rec, nil
}

// clock returns now at the precision Postgres keeps, so cached snapshots
// compare equal to stored rows.
func (s *OddsCacheService) clock() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// stamp returns the next updated_at, never earlier than prev.
func (s *OddsCacheService) stamp(prev time.Time) time.Time {
	now := s.clock()
	if now.Before(prev) {
		return prev
	}
	return now
}

// lookup treats any cache error or undecodable entry as a miss.
func (s *OddsCacheService) lookup(ctx context.Context, id int64) (model.OddsRecord, bool) {
	key := cache.OddsKey(id)
	b, hit, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return model.OddsRecord{}, false
	}
	if !hit {
		return model.OddsRecord{}, false
	}

	rec, err := s.codec.Unmarshal(b)
	if err != nil {
		s.log.Warn("cache entry undecodable, evicting", zap.String("key", key), zap.String("codec", s.codec.Name()), zap.Error(err))
		s.evict(ctx, id)
		return model.OddsRecord{}, false
	}
	return rec, true
}

// populate fills the cache after a read miss. Failure only costs a future miss.
func (s *OddsCacheService) populate(ctx context.Context, rec model.OddsRecord) {
	if err := s.set(ctx, rec); err != nil {
		s.log.Warn("cache populate failed", zap.Int64("odds_id", rec.ID), zap.Error(err))
	}
}

// refresh replaces the entry after a write. If the replace fails the old
// snapshot may still be there, so fall back to evicting it.
func (s *OddsCacheService) refresh(ctx context.Context, rec model.OddsRecord) {
	ctx = context.WithoutCancel(ctx)
	if err := s.set(ctx, rec); err != nil {
		s.log.Warn("cache refresh failed, evicting", zap.Int64("odds_id", rec.ID), zap.Error(err))
		s.evict(ctx, rec.ID)
	}
}

func (s *OddsCacheService) set(ctx context.Context, rec model.OddsRecord) error {
	b, err := s.codec.Marshal(rec)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, cache.OddsKey(rec.ID), b, s.ttl)
}

// evict runs detached from the request context: the store write it follows
// has already committed.
func (s *OddsCacheService) evict(ctx context.Context, id int64) {
	key := cache.OddsKey(id)
	if _, err := s.cache.Delete(context.WithoutCancel(ctx), key); err != nil {
		s.log.Warn("cache evict failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *OddsCacheService) publish(ctx context.Context, action string, rec model.OddsRecord) {
	if s.pub == nil {
		return
	}
	ev := events.OddsChanged{
		OddsID:    rec.ID,
		Action:    action,
		Sport:     rec.Sport,
		Active:    rec.Active,
		UpdatedAt: rec.UpdatedAt,
		Source:    s.source,
	}
	if err := s.pub.PublishOddsChanged(context.WithoutCancel(ctx), ev); err != nil {
		s.log.Warn("odds change publish failed", zap.Int64("odds_id", rec.ID), zap.String("action", action), zap.Error(err))
	}
}
