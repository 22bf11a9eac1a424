package catalog

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"excursion-catalog/internal/domain"
	"excursion-catalog/internal/providers"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultTopLimit is the size of the "popular" selection.
const DefaultTopLimit = 6

// State is a point-in-time view of the store's load status.
type State struct {
	Loading  bool
	Err      error
	Count    int
	LoadedAt time.Time
}

// ErrorMessage returns the text of the last load failure, or "".
func (s State) ErrorMessage() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

// Store owns the loaded catalog and its derived views. The catalog is
// fetched once; after a failure the store stays empty and the next Load
// tries again. Safe for concurrent use.
type Store struct {
	source providers.CatalogSource
	norm   Normalizer
	logger *zap.Logger
	now    func() time.Time

	group singleflight.Group

	mu       sync.RWMutex
	raw      []domain.RawExcursion
	items    []domain.Excursion
	parts    Partition
	byID     map[string]int
	byURL    map[string]int
	loading  bool
	err      error
	loadedAt time.Time
}

type Option func(*Store)

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithNormalizer(n Normalizer) Option {
	return func(s *Store) { s.norm = n }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func NewStore(source providers.CatalogSource, opts ...Option) *Store {
	s := &Store{
		source: source,
		logger: zap.NewNop(),
		now:    time.Now,
		parts:  PartitionByCategory(nil),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.raw) > 0
}

// Load fetches and normalizes the catalog unless it is already cached.
// Concurrent callers share a single in-flight fetch, which is not tied to
// any one caller: a caller whose ctx ends stops waiting and gets ctx.Err()
// while the fetch goes on for the others. The returned error is also kept
// in State until the next attempt.
func (s *Store) Load(ctx context.Context) error {
	if s.loaded() {
		return nil
	}
	ch := s.group.DoChan("catalog", func() (any, error) {
		return nil, s.load(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		if res.Shared {
			s.logger.Debug("joined in-flight catalog load")
		}
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) load(ctx context.Context) error {
	if s.loaded() {
		return nil
	}

	s.mu.Lock()
	s.loading = true
	s.err = nil
	s.mu.Unlock()

	start := s.now()
	doc, err := s.source.Fetch(ctx)
	if err != nil {
		err = classify(s.source.Name(), err)
		s.mu.Lock()
		s.loading = false
		s.err = err
		s.mu.Unlock()
		s.logger.Error("catalog load failed", zap.String("source", s.source.Name()), zap.Error(err))
		return err
	}

	items := s.norm.NormalizeAll(doc.Excursions)
	byID := make(map[string]int, len(items))
	byURL := make(map[string]int, len(items))
	for i, ex := range items {
		if _, ok := byID[ex.ID]; !ok {
			byID[ex.ID] = i
		}
		if _, ok := byURL[ex.URL]; !ok && ex.URL != "" {
			byURL[ex.URL] = i
		}
	}
	parts := PartitionByCategory(items)

	s.mu.Lock()
	s.raw = doc.Excursions
	s.items = items
	s.parts = parts
	s.byID = byID
	s.byURL = byURL
	s.loading = false
	s.loadedAt = s.now()
	s.mu.Unlock()

	s.logger.Info("catalog loaded",
		zap.String("source", s.source.Name()),
		zap.Int("raw", len(doc.Excursions)),
		zap.Int("excursions", len(items)),
		zap.Int("sochi", len(parts.Sochi)),
		zap.Int("abkhazia", len(parts.Abkhazia)),
		zap.Duration("took", s.now().Sub(start)))
	return nil
}

// Reset drops the cached catalog so the next Load fetches again.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw = nil
	s.items = nil
	s.parts = PartitionByCategory(nil)
	s.byID = nil
	s.byURL = nil
	s.err = nil
	s.loadedAt = time.Time{}
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		Loading:  s.loading,
		Err:      s.err,
		Count:    len(s.items),
		LoadedAt: s.loadedAt,
	}
}

// Ready returns nil once a catalog is cached, the last load error if
// there is one, and ErrNotLoaded otherwise.
func (s *Store) Ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch {
	case len(s.raw) > 0:
		return nil
	case s.err != nil:
		return s.err
	}
	return ErrNotLoaded
}

// Raw returns the records as they were fetched, before filtering.
func (s *Store) Raw() []domain.RawExcursion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.raw)
}

// Excursions returns the filtered, normalized catalog in source order.
func (s *Store) Excursions() []domain.Excursion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.items == nil {
		return []domain.Excursion{}
	}
	return slices.Clone(s.items)
}

func (s *Store) ByCategory() Partition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Partition{
		All:      slices.Clone(s.parts.All),
		Sochi:    slices.Clone(s.parts.Sochi),
		Abkhazia: slices.Clone(s.parts.Abkhazia),
	}
}

// FindByID looks an excursion up by its id, then by its source url when
// id looks like one, then by the slug of id's last path segment.
func (s *Store) FindByID(id string) (domain.Excursion, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i, ok := s.byID[id]; ok {
		return s.items[i], true
	}
	if strings.Contains(id, "http") {
		if i, ok := s.byURL[id]; ok {
			return s.items[i], true
		}
	}
	last := id
	if j := strings.LastIndex(id, "/"); j >= 0 {
		last = id[j+1:]
	}
	if slug := trimSlug(last); slug != "" {
		if i, ok := s.byID[slug]; ok {
			return s.items[i], true
		}
	}
	return domain.Excursion{}, false
}

// Top returns the first limit excursions. A non-positive limit yields
// an empty slice.
func (s *Store) Top(limit int) []domain.Excursion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		return []domain.Excursion{}
	}
	if limit > len(s.items) {
		limit = len(s.items)
	}
	return slices.Clone(s.items[:limit])
}
