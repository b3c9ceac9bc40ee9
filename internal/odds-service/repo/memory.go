package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/radieske/odds-cache-service/internal/odds-service/model"
)

// MemoryStore implements Store with in-memory maps. Used for testing and
// local development. Every call counts as one query so tests can assert
// round trips the same way they would against Postgres.
type MemoryStore struct {
	mu       sync.RWMutex
	odds     map[int64]model.OddsRecord
	creators map[int64]model.Creator
	nextID   int64
	queries  map[string]int
	fail     error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		odds:     make(map[int64]model.OddsRecord),
		creators: make(map[int64]model.Creator),
		queries:  make(map[string]int),
	}
}

// AddCreator registers a user for creator resolution. Not counted as a query.
func (s *MemoryStore) AddCreator(c model.Creator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creators[c.ID] = c
}

// FailWith makes every following call return err; nil restores normal behaviour.
func (s *MemoryStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

// Queries returns how many calls were made for op.
func (s *MemoryStore) Queries(op string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queries[op]
}

// TotalQueries returns the number of calls made for all operations.
func (s *MemoryStore) TotalQueries() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, n := range s.queries {
		total += n
	}
	return total
}

// ResetQueries zeroes the query counters.
func (s *MemoryStore) ResetQueries() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = make(map[string]int)
}

// begin must be called with s.mu held.
func (s *MemoryStore) begin(op string) error {
	s.queries[op]++
	return s.fail
}

func (s *MemoryStore) GetByID(_ context.Context, id int64) (model.OddsRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(OpGetByID); err != nil {
		return model.OddsRecord{}, err
	}

	rec, ok := s.odds[id]
	if !ok {
		return model.OddsRecord{}, ErrNotFound
	}
	return rec, nil
}

func (s *MemoryStore) Create(_ context.Context, rec model.OddsRecord) (model.OddsRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(OpCreate); err != nil {
		return model.OddsRecord{}, err
	}

	s.nextID++
	rec.ID = s.nextID
	rec.Creator = nil
	s.odds[rec.ID] = rec
	return rec, nil
}

func (s *MemoryStore) Update(_ context.Context, rec model.OddsRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(OpUpdate); err != nil {
		return err
	}

	cur, ok := s.odds[rec.ID]
	if !ok {
		return ErrNotFound
	}
	// created_by and created_at are not part of the UPDATE column list
	rec.CreatedBy = cur.CreatedBy
	rec.CreatedAt = cur.CreatedAt
	rec.Creator = nil
	s.odds[rec.ID] = rec
	return nil
}

func (s *MemoryStore) SetActive(_ context.Context, id int64, active bool, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(OpSetActive); err != nil {
		return err
	}

	rec, ok := s.odds[id]
	if !ok {
		return ErrNotFound
	}
	rec.Active = active
	rec.UpdatedAt = updatedAt
	s.odds[id] = rec
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(OpDelete); err != nil {
		return false, err
	}

	if _, ok := s.odds[id]; !ok {
		return false, nil
	}
	delete(s.odds, id)
	return true, nil
}

func (s *MemoryStore) ListWithCreators(_ context.Context, f model.Filter) ([]model.OddsRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(OpListWithCreators); err != nil {
		return nil, err
	}

	out := []model.OddsRecord{}
	for _, rec := range s.odds {
		if !matches(rec, f) {
			continue
		}
		if c, ok := s.creators[rec.CreatedBy]; ok {
			c := c
			rec.Creator = &c
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].MatchDate.Equal(out[j].MatchDate) {
			return out[i].MatchDate.Before(out[j].MatchDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func matches(rec model.OddsRecord, f model.Filter) bool {
	if f.Sport != "" && rec.Sport != f.Sport {
		return false
	}
	if f.Active != nil && rec.Active != *f.Active {
		return false
	}
	if f.From != nil && rec.MatchDate.Before(*f.From) {
		return false
	}
	if f.To != nil && rec.MatchDate.After(*f.To) {
		return false
	}
	return true
}
