// Package storage persists catalogs, quotes, and pricing versions.
// Supports multiple backends: memory, file, sqlite.
// Pricing versions are write-once, content-hashed, and verified on read.
// No silent updates. Ever.
package storage

import (
	"context"
	stderrors "errors"
	"time"

	"fenquote/core/catalog"
	"fenquote/core/determinism"
	"fenquote/core/pricing"
	"fenquote/core/version"
	"fenquote/internal/errors"
)

// Backend is a storage backend type
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
)

// ErrVersionExists is returned when storing under an id that already holds
// a version. Versions are write-once; restore publishes a NEW version.
var ErrVersionExists = stderrors.New("version already stored: versions are write-once")

// ErrHashMismatch is returned when stored content no longer matches its
// recorded hash
var ErrHashMismatch = stderrors.New("version hash mismatch: data may be corrupted")

// Store is the persistence interface. Every backend keeps the same
// guarantees: reads hand out copies, pricing versions never change after
// StorePricingVersion, quote versions only append.
type Store interface {
	// Catalog returns the working catalog; an empty catalog when none
	// has been saved yet
	Catalog(ctx context.Context) (*catalog.Catalog, error)

	// SaveCatalog replaces the working catalog
	SaveCatalog(ctx context.Context, cat *catalog.Catalog) error

	// Settings returns global settings, defaults when never saved
	Settings(ctx context.Context) (catalog.GlobalSettings, error)

	// SaveSettings replaces global settings
	SaveSettings(ctx context.Context, s catalog.GlobalSettings) error

	// Quote retrieves a quote by id
	Quote(ctx context.Context, id string) (*pricing.Quote, error)

	// SaveQuote creates or updates a quote
	SaveQuote(ctx context.Context, q *pricing.Quote) error

	// ListQuotes returns all quotes, most recently updated first
	ListQuotes(ctx context.Context) ([]*pricing.Quote, error)

	// AppendQuoteVersion stores a locked quote version; append-only
	AppendQuoteVersion(ctx context.Context, v *pricing.QuoteVersion) error

	// QuoteVersions returns a quote's versions in creation order
	QuoteVersions(ctx context.Context, quoteID string) ([]*pricing.QuoteVersion, error)

	// StorePricingVersion stores a published pricing version, hashing it
	// on write. Fails with ErrVersionExists if the id is taken.
	StorePricingVersion(ctx context.Context, v *version.PricingVersion) error

	// PricingVersion retrieves a pricing version, verifying its hash
	PricingVersion(ctx context.Context, id string) (*version.PricingVersion, error)

	// ListPricingVersions returns summaries, newest first
	ListPricingVersions(ctx context.Context) ([]VersionSummary, error)

	// CurrentVersionID returns the active pricing version id, "" if unset
	CurrentVersionID(ctx context.Context) (string, error)

	// SetCurrentVersionID points the active version at a stored id
	SetCurrentVersionID(ctx context.Context, id string) error

	// VerifyIntegrity rechecks every stored pricing version against its
	// hash and reports the corrupted ones
	VerifyIntegrity(ctx context.Context) ([]string, error)

	// Close releases backend resources
	Close() error
}

// VersionSummary is the listing row for a stored pricing version
type VersionSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Notes       string    `json:"notes,omitempty"`
	ContentHash string    `json:"contentHash"`
	Products    int       `json:"products"`
	Addons      int       `json:"addons"`
}

// Options carries backend-specific settings for Open
type Options struct {
	// Directory is the data directory for the file backend
	Directory string

	// SQLitePath is the database file for the sqlite backend
	SQLitePath string
}

// Open creates a store for the configured backend
func Open(backend Backend, opts Options) (Store, error) {
	switch backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile:
		dir := opts.Directory
		if dir == "" {
			dir = ".fenquote"
		}
		return NewFileStore(dir)
	case BackendSQLite:
		path := opts.SQLitePath
		if path == "" {
			path = "fenquote.db"
		}
		return NewSQLiteStore(path)
	default:
		return nil, errors.Newf(errors.TypeConfig, "unsupported storage backend %q", backend)
	}
}

// ActiveCatalog resolves what quotes price against: the current published
// version when the pointer is set, the working catalog otherwise. Editing
// the working catalog never moves live prices; publish does.
func ActiveCatalog(ctx context.Context, st Store) (*catalog.Catalog, error) {
	currentID, err := st.CurrentVersionID(ctx)
	if err != nil {
		return nil, err
	}
	if currentID != "" {
		v, err := st.PricingVersion(ctx, currentID)
		if err != nil {
			return nil, err
		}
		return v.Catalog(), nil
	}
	return st.Catalog(ctx)
}

// summarize builds the listing row for a version at store time
func summarize(v *version.PricingVersion, hash string) VersionSummary {
	return VersionSummary{
		ID:          v.ID,
		Name:        v.Name,
		Timestamp:   v.Timestamp,
		Notes:       v.Notes,
		ContentHash: hash,
		Products:    len(v.Products),
		Addons:      len(v.Addons),
	}
}

// sortSummaries orders newest first, id as tiebreak
func sortSummaries(summaries []VersionSummary) {
	determinism.SortSlice(summaries, func(a, b VersionSummary) bool {
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.After(b.Timestamp)
		}
		return a.ID < b.ID
	})
}
