package storage

import (
	"context"
	"sync"

	"fenquote/core/catalog"
	"fenquote/core/codec"
	"fenquote/core/determinism"
	"fenquote/core/pricing"
	"fenquote/core/version"
	"fenquote/internal/errors"
)

// MemoryStore is an in-memory backend for tests and dev runs.
// Everything goes in and out as a deep copy so callers can never reach the
// stored state through a shared pointer.
type MemoryStore struct {
	mu sync.RWMutex

	catalog  *catalog.Catalog
	settings *catalog.GlobalSettings

	quotes        map[string]*pricing.Quote
	quoteVersions map[string][]*pricing.QuoteVersion
	versionSeen   map[string]bool

	versions       map[string]*version.PricingVersion
	versionHashes  map[string]string
	currentVersion string
}

// NewMemoryStore creates an empty memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		quotes:        make(map[string]*pricing.Quote),
		quoteVersions: make(map[string][]*pricing.QuoteVersion),
		versionSeen:   make(map[string]bool),
		versions:      make(map[string]*version.PricingVersion),
		versionHashes: make(map[string]string),
	}
}

func (s *MemoryStore) Catalog(ctx context.Context) (*catalog.Catalog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.catalog == nil {
		return catalog.New(), nil
	}
	return s.catalog.Clone(), nil
}

func (s *MemoryStore) SaveCatalog(ctx context.Context, cat *catalog.Catalog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.catalog = cat.Normalize().Clone()
	return nil
}

func (s *MemoryStore) Settings(ctx context.Context) (catalog.GlobalSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.settings == nil {
		return catalog.DefaultSettings(), nil
	}
	return s.settings.Clone(), nil
}

func (s *MemoryStore) SaveSettings(ctx context.Context, settings catalog.GlobalSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := settings.Clone()
	s.settings = &saved
	return nil
}

func (s *MemoryStore) Quote(ctx context.Context, id string) (*pricing.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.quotes[id]
	if !ok {
		return nil, errors.NotFound("quote", id)
	}
	return q.Clone(), nil
}

func (s *MemoryStore) SaveQuote(ctx context.Context, q *pricing.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.quotes[q.ID] = q.Clone()
	return nil
}

func (s *MemoryStore) ListQuotes(ctx context.Context) ([]*pricing.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*pricing.Quote, 0, len(s.quotes))
	for _, q := range s.quotes {
		out = append(out, q.Clone())
	}
	determinism.SortSlice(out, func(a, b *pricing.Quote) bool {
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.ID < b.ID
	})
	return out, nil
}

func (s *MemoryStore) AppendQuoteVersion(ctx context.Context, v *pricing.QuoteVersion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.versionSeen[v.ID] {
		return ErrVersionExists
	}
	s.versionSeen[v.ID] = true
	s.quoteVersions[v.QuoteID] = append(s.quoteVersions[v.QuoteID], v.Clone())
	return nil
}

func (s *MemoryStore) QuoteVersions(ctx context.Context, quoteID string) ([]*pricing.QuoteVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.quoteVersions[quoteID]
	out := make([]*pricing.QuoteVersion, len(stored))
	for i, v := range stored {
		out[i] = v.Clone()
	}
	return out, nil
}

func (s *MemoryStore) StorePricingVersion(ctx context.Context, v *version.PricingVersion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.versions[v.ID]; exists {
		return ErrVersionExists
	}

	data, err := codec.ExportJSON(v)
	if err != nil {
		return errors.Storage("serializing pricing version", err)
	}

	s.versions[v.ID] = v.Clone()
	s.versionHashes[v.ID] = determinism.ComputeHash(data).Hex()
	return nil
}

func (s *MemoryStore) PricingVersion(ctx context.Context, id string) (*version.PricingVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.versions[id]
	if !ok {
		return nil, errors.NotFound("pricing version", id)
	}

	data, err := codec.ExportJSON(v)
	if err != nil {
		return nil, errors.Storage("serializing pricing version", err)
	}
	if determinism.ComputeHash(data).Hex() != s.versionHashes[id] {
		return nil, ErrHashMismatch
	}
	return v.Clone(), nil
}

func (s *MemoryStore) ListPricingVersions(ctx context.Context) ([]VersionSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]VersionSummary, 0, len(s.versions))
	for id, v := range s.versions {
		out = append(out, summarize(v, s.versionHashes[id]))
	}
	sortSummaries(out)
	return out, nil
}

func (s *MemoryStore) CurrentVersionID(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentVersion, nil
}

func (s *MemoryStore) SetCurrentVersionID(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.versions[id]; !ok {
		return errors.NotFound("pricing version", id)
	}
	s.currentVersion = id
	return nil
}

func (s *MemoryStore) VerifyIntegrity(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var corrupted []string
	determinism.RangeMapSorted(s.versions, func(id string, v *version.PricingVersion) bool {
		data, err := codec.ExportJSON(v)
		if err != nil || determinism.ComputeHash(data).Hex() != s.versionHashes[id] {
			corrupted = append(corrupted, id+": hash mismatch")
		}
		return true
	})
	return corrupted, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

var _ Store = (*MemoryStore)(nil)
