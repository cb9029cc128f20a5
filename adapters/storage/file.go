package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"fenquote/core/catalog"
	"fenquote/core/codec"
	"fenquote/core/determinism"
	"fenquote/core/pricing"
	"fenquote/core/version"
	"fenquote/internal/errors"
)

const (
	catalogFile   = "catalog.json"
	settingsFile  = "settings.json"
	quotesDir     = "quotes"
	quoteVersDir  = "quote-versions"
	versionsDir   = "versions"
	indexFileName = "index.json"
)

// FileStore keeps everything as JSON documents under one data directory.
//
//	catalog.json
//	settings.json
//	quotes/<id>.json
//	quote-versions/<quoteID>/<versionID>.json   (written once, 0444)
//	versions/<id>_<hash8>.json                  (written once, 0444)
//	versions/index.json
//
// Pricing version files are never rewritten; the index records their
// content hash and reads verify it.
type FileStore struct {
	mu       sync.RWMutex
	basePath string

	index   map[string]*versionMeta
	current string
}

// versionMeta is the index entry for one stored pricing version
type versionMeta struct {
	ID          string    `json:"id"`
	Name        string    `json:"name,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Notes       string    `json:"notes,omitempty"`
	ContentHash string    `json:"contentHash"`
	Size        int64     `json:"size"`
	File        string    `json:"file"`
	Products    int       `json:"products"`
	Addons      int       `json:"addons"`
}

type indexFile struct {
	Versions  map[string]*versionMeta `json:"versions"`
	Current   string                  `json:"current,omitempty"`
	UpdatedAt time.Time               `json:"updatedAt"`
}

// NewFileStore opens (creating if needed) a file store rooted at basePath
func NewFileStore(basePath string) (*FileStore, error) {
	for _, dir := range []string{basePath, filepath.Join(basePath, quotesDir), filepath.Join(basePath, quoteVersDir), filepath.Join(basePath, versionsDir)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Storage("creating data directory", err)
		}
	}

	s := &FileStore{
		basePath: basePath,
		index:    make(map[string]*versionMeta),
	}
	if err := s.loadIndex(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) Catalog(ctx context.Context) (*catalog.Catalog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(filepath.Join(s.basePath, catalogFile))
	if os.IsNotExist(err) {
		return catalog.New(), nil
	}
	if err != nil {
		return nil, errors.Storage("reading catalog", err)
	}

	var cat catalog.Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, errors.Storage("decoding catalog", err)
	}
	return cat.Normalize(), nil
}

func (s *FileStore) SaveCatalog(ctx context.Context, cat *catalog.Catalog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writeDocument(filepath.Join(s.basePath, catalogFile), cat.Normalize())
}

func (s *FileStore) Settings(ctx context.Context) (catalog.GlobalSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(filepath.Join(s.basePath, settingsFile))
	if os.IsNotExist(err) {
		return catalog.DefaultSettings(), nil
	}
	if err != nil {
		return catalog.GlobalSettings{}, errors.Storage("reading settings", err)
	}

	var settings catalog.GlobalSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return catalog.GlobalSettings{}, errors.Storage("decoding settings", err)
	}
	return settings, nil
}

func (s *FileStore) SaveSettings(ctx context.Context, settings catalog.GlobalSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writeDocument(filepath.Join(s.basePath, settingsFile), settings)
}

func (s *FileStore) Quote(ctx context.Context, id string) (*pricing.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.quotePath(id))
	if os.IsNotExist(err) {
		return nil, errors.NotFound("quote", id)
	}
	if err != nil {
		return nil, errors.Storage("reading quote", err)
	}

	var q pricing.Quote
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, errors.Storage("decoding quote "+id, err)
	}
	return &q, nil
}

func (s *FileStore) SaveQuote(ctx context.Context, q *pricing.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writeDocument(s.quotePath(q.ID), q)
}

func (s *FileStore) ListQuotes(ctx context.Context) ([]*pricing.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(filepath.Join(s.basePath, quotesDir))
	if err != nil {
		return nil, errors.Storage("listing quotes", err)
	}

	var quotes []*pricing.Quote
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.basePath, quotesDir, entry.Name()))
		if err != nil {
			continue
		}
		var q pricing.Quote
		if err := json.Unmarshal(data, &q); err != nil {
			continue
		}
		quotes = append(quotes, &q)
	}

	determinism.SortSlice(quotes, func(a, b *pricing.Quote) bool {
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.ID < b.ID
	})
	return quotes, nil
}

func (s *FileStore) AppendQuoteVersion(ctx context.Context, v *pricing.QuoteVersion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Join(s.basePath, quoteVersDir, v.QuoteID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Storage("creating quote version directory", err)
	}

	path := filepath.Join(dir, v.ID+".json")
	if _, err := os.Stat(path); err == nil {
		return ErrVersionExists
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Storage("serializing quote version", err)
	}
	// Read-only: a locked version is never rewritten
	if err := os.WriteFile(path, data, 0444); err != nil {
		return errors.Storage("writing quote version", err)
	}
	return nil
}

func (s *FileStore) QuoteVersions(ctx context.Context, quoteID string) ([]*pricing.QuoteVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dir := filepath.Join(s.basePath, quoteVersDir, quoteID)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Storage("listing quote versions", err)
	}

	var versions []*pricing.QuoteVersion
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, errors.Storage("reading quote version", err)
		}
		var v pricing.QuoteVersion
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, errors.Storage("decoding quote version "+entry.Name(), err)
		}
		versions = append(versions, &v)
	}

	determinism.SortSlice(versions, func(a, b *pricing.QuoteVersion) bool {
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		return a.ID < b.ID
	})
	return versions, nil
}

func (s *FileStore) StorePricingVersion(ctx context.Context, v *version.PricingVersion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.index[v.ID]; exists {
		return ErrVersionExists
	}

	data, err := codec.ExportJSON(v)
	if err != nil {
		return errors.Storage("serializing pricing version", err)
	}
	hash := determinism.ComputeHash(data).Hex()

	filename := v.ID + "_" + hash[:8] + ".json"
	path := filepath.Join(s.basePath, versionsDir, filename)
	if _, err := os.Stat(path); err == nil {
		return ErrVersionExists
	}

	// Read-only: published versions are never rewritten
	if err := os.WriteFile(path, data, 0444); err != nil {
		return errors.Storage("writing pricing version", err)
	}

	s.index[v.ID] = &versionMeta{
		ID:          v.ID,
		Name:        v.Name,
		Timestamp:   v.Timestamp,
		Notes:       v.Notes,
		ContentHash: hash,
		Size:        int64(len(data)),
		File:        filename,
		Products:    len(v.Products),
		Addons:      len(v.Addons),
	}
	return s.saveIndex()
}

func (s *FileStore) PricingVersion(ctx context.Context, id string) (*version.PricingVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	meta, ok := s.index[id]
	if !ok {
		return nil, errors.NotFound("pricing version", id)
	}

	data, err := os.ReadFile(filepath.Join(s.basePath, versionsDir, meta.File))
	if err != nil {
		return nil, errors.Storage("reading pricing version", err)
	}
	if determinism.ComputeHash(data).Hex() != meta.ContentHash {
		return nil, ErrHashMismatch
	}
	return codec.ImportJSON(data)
}

func (s *FileStore) ListPricingVersions(ctx context.Context) ([]VersionSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]VersionSummary, 0, len(s.index))
	for _, meta := range s.index {
		out = append(out, VersionSummary{
			ID:          meta.ID,
			Name:        meta.Name,
			Timestamp:   meta.Timestamp,
			Notes:       meta.Notes,
			ContentHash: meta.ContentHash,
			Products:    meta.Products,
			Addons:      meta.Addons,
		})
	}
	sortSummaries(out)
	return out, nil
}

func (s *FileStore) CurrentVersionID(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, nil
}

func (s *FileStore) SetCurrentVersionID(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[id]; !ok {
		return errors.NotFound("pricing version", id)
	}
	s.current = id
	return s.saveIndex()
}

func (s *FileStore) VerifyIntegrity(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var corrupted []string
	determinism.RangeMapSorted(s.index, func(id string, meta *versionMeta) bool {
		data, err := os.ReadFile(filepath.Join(s.basePath, versionsDir, meta.File))
		if err != nil {
			corrupted = append(corrupted, id+": file missing")
			return true
		}
		if determinism.ComputeHash(data).Hex() != meta.ContentHash {
			corrupted = append(corrupted, id+": hash mismatch")
		}
		return true
	})
	return corrupted, nil
}

func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) quotePath(id string) string {
	return filepath.Join(s.basePath, quotesDir, id+".json")
}

// writeDocument writes a mutable document atomically via temp file rename
func (s *FileStore) writeDocument(path string, doc any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Storage("serializing document", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return errors.Storage("writing document", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return errors.Storage("replacing document", err)
	}
	return nil
}

func (s *FileStore) loadIndex() error {
	data, err := os.ReadFile(filepath.Join(s.basePath, versionsDir, indexFileName))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Storage("reading version index", err)
	}

	var idx indexFile
	if err := json.Unmarshal(data, &idx); err != nil {
		return errors.Storage("decoding version index", err)
	}
	if idx.Versions != nil {
		s.index = idx.Versions
	}
	s.current = idx.Current
	return nil
}

func (s *FileStore) saveIndex() error {
	idx := indexFile{
		Versions:  s.index,
		Current:   s.current,
		UpdatedAt: time.Now().UTC(),
	}
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return errors.Storage("serializing version index", err)
	}

	indexPath := filepath.Join(s.basePath, versionsDir, indexFileName)
	tempPath := indexPath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return errors.Storage("writing version index", err)
	}
	if err := os.Rename(tempPath, indexPath); err != nil {
		return errors.Storage("replacing version index", err)
	}
	return nil
}

var _ Store = (*FileStore)(nil)
