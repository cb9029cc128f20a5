package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"fenquote/core/catalog"
	"fenquote/core/codec"
	"fenquote/core/determinism"
	"fenquote/core/pricing"
	"fenquote/core/version"
	"fenquote/internal/errors"
)

const (
	docKeyCatalog  = "catalog"
	docKeySettings = "settings"
	docKeyCurrent  = "current_version"
)

// SQLiteStore keeps everything in a single database file. Entities are
// stored as JSON payloads with the columns needed for lookups and
// listings pulled out beside them.
type SQLiteStore struct {
	mu sync.Mutex
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Storage("opening sqlite database", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, errors.Storage("migrating sqlite schema", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			key TEXT PRIMARY KEY,
			payload TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS quotes (
			id TEXT PRIMARY KEY,
			updated_at TEXT NOT NULL,
			payload TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS quote_versions (
			id TEXT PRIMARY KEY,
			quote_id TEXT NOT NULL,
			created_at TEXT NOT NULL,
			payload TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_quote_versions_quote ON quote_versions(quote_id);`,
		`CREATE TABLE IF NOT EXISTS pricing_versions (
			id TEXT PRIMARY KEY,
			name TEXT,
			notes TEXT,
			created_at TEXT NOT NULL,
			content_hash TEXT NOT NULL,
			products INTEGER NOT NULL DEFAULT 0,
			addons INTEGER NOT NULL DEFAULT 0,
			payload TEXT NOT NULL
		);`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(context.Background(), stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) Catalog(ctx context.Context) (*catalog.Catalog, error) {
	payload, found, err := s.document(ctx, docKeyCatalog)
	if err != nil {
		return nil, err
	}
	if !found {
		return catalog.New(), nil
	}

	var cat catalog.Catalog
	if err := json.Unmarshal([]byte(payload), &cat); err != nil {
		return nil, errors.Storage("decoding catalog", err)
	}
	return cat.Normalize(), nil
}

func (s *SQLiteStore) SaveCatalog(ctx context.Context, cat *catalog.Catalog) error {
	data, err := json.Marshal(cat.Normalize())
	if err != nil {
		return errors.Storage("serializing catalog", err)
	}
	return s.putDocument(ctx, docKeyCatalog, string(data))
}

func (s *SQLiteStore) Settings(ctx context.Context) (catalog.GlobalSettings, error) {
	payload, found, err := s.document(ctx, docKeySettings)
	if err != nil {
		return catalog.GlobalSettings{}, err
	}
	if !found {
		return catalog.DefaultSettings(), nil
	}

	var settings catalog.GlobalSettings
	if err := json.Unmarshal([]byte(payload), &settings); err != nil {
		return catalog.GlobalSettings{}, errors.Storage("decoding settings", err)
	}
	return settings, nil
}

func (s *SQLiteStore) SaveSettings(ctx context.Context, settings catalog.GlobalSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return errors.Storage("serializing settings", err)
	}
	return s.putDocument(ctx, docKeySettings, string(data))
}

func (s *SQLiteStore) Quote(ctx context.Context, id string) (*pricing.Quote, error) {
	row := s.db.QueryRowContext(ctx, `SELECT payload FROM quotes WHERE id = ?`, id)

	var payload string
	if err := row.Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("quote", id)
		}
		return nil, errors.Storage("reading quote", err)
	}

	var q pricing.Quote
	if err := json.Unmarshal([]byte(payload), &q); err != nil {
		return nil, errors.Storage("decoding quote "+id, err)
	}
	return &q, nil
}

func (s *SQLiteStore) SaveQuote(ctx context.Context, q *pricing.Quote) error {
	data, err := json.Marshal(q)
	if err != nil {
		return errors.Storage("serializing quote", err)
	}

	query := `INSERT INTO quotes (id, updated_at, payload) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at, payload = excluded.payload`
	if _, err := s.db.ExecContext(ctx, query, q.ID, q.UpdatedAt.UTC().Format(time.RFC3339Nano), string(data)); err != nil {
		return errors.Storage("writing quote", err)
	}
	return nil
}

func (s *SQLiteStore) ListQuotes(ctx context.Context) ([]*pricing.Quote, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM quotes`)
	if err != nil {
		return nil, errors.Storage("listing quotes", err)
	}
	defer func() { _ = rows.Close() }()

	var quotes []*pricing.Quote
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, errors.Storage("scanning quote", err)
		}
		var q pricing.Quote
		if err := json.Unmarshal([]byte(payload), &q); err != nil {
			return nil, errors.Storage("decoding quote", err)
		}
		quotes = append(quotes, &q)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Storage("listing quotes", err)
	}

	determinism.SortSlice(quotes, func(a, b *pricing.Quote) bool {
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.ID < b.ID
	})
	return quotes, nil
}

func (s *SQLiteStore) AppendQuoteVersion(ctx context.Context, v *pricing.QuoteVersion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.rowExists(ctx, `SELECT 1 FROM quote_versions WHERE id = ?`, v.ID)
	if err != nil {
		return err
	}
	if exists {
		return ErrVersionExists
	}

	data, err := json.Marshal(v)
	if err != nil {
		return errors.Storage("serializing quote version", err)
	}

	query := `INSERT INTO quote_versions (id, quote_id, created_at, payload) VALUES (?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, v.ID, v.QuoteID, v.Timestamp.UTC().Format(time.RFC3339Nano), string(data)); err != nil {
		return errors.Storage("writing quote version", err)
	}
	return nil
}

func (s *SQLiteStore) QuoteVersions(ctx context.Context, quoteID string) ([]*pricing.QuoteVersion, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM quote_versions WHERE quote_id = ?`, quoteID)
	if err != nil {
		return nil, errors.Storage("listing quote versions", err)
	}
	defer func() { _ = rows.Close() }()

	var versions []*pricing.QuoteVersion
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, errors.Storage("scanning quote version", err)
		}
		var v pricing.QuoteVersion
		if err := json.Unmarshal([]byte(payload), &v); err != nil {
			return nil, errors.Storage("decoding quote version", err)
		}
		versions = append(versions, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Storage("listing quote versions", err)
	}

	determinism.SortSlice(versions, func(a, b *pricing.QuoteVersion) bool {
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		return a.ID < b.ID
	})
	return versions, nil
}

func (s *SQLiteStore) StorePricingVersion(ctx context.Context, v *version.PricingVersion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.rowExists(ctx, `SELECT 1 FROM pricing_versions WHERE id = ?`, v.ID)
	if err != nil {
		return err
	}
	if exists {
		return ErrVersionExists
	}

	data, err := codec.ExportJSON(v)
	if err != nil {
		return errors.Storage("serializing pricing version", err)
	}
	hash := determinism.ComputeHash(data).Hex()

	query := `INSERT INTO pricing_versions (id, name, notes, created_at, content_hash, products, addons, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, query,
		v.ID, v.Name, v.Notes, v.Timestamp.UTC().Format(time.RFC3339Nano),
		hash, len(v.Products), len(v.Addons), string(data),
	)
	if err != nil {
		return errors.Storage("writing pricing version", err)
	}
	return nil
}

func (s *SQLiteStore) PricingVersion(ctx context.Context, id string) (*version.PricingVersion, error) {
	row := s.db.QueryRowContext(ctx, `SELECT content_hash, payload FROM pricing_versions WHERE id = ?`, id)

	var hash, payload string
	if err := row.Scan(&hash, &payload); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("pricing version", id)
		}
		return nil, errors.Storage("reading pricing version", err)
	}

	if determinism.ComputeHash([]byte(payload)).Hex() != hash {
		return nil, ErrHashMismatch
	}
	return codec.ImportJSON([]byte(payload))
}

func (s *SQLiteStore) ListPricingVersions(ctx context.Context) ([]VersionSummary, error) {
	query := `SELECT id, name, notes, created_at, content_hash, products, addons FROM pricing_versions`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Storage("listing pricing versions", err)
	}
	defer func() { _ = rows.Close() }()

	var out []VersionSummary
	for rows.Next() {
		var (
			id, createdAt, hash string
			name, notes         sql.NullString
			products, addons    int
		)
		if err := rows.Scan(&id, &name, &notes, &createdAt, &hash, &products, &addons); err != nil {
			return nil, errors.Storage("scanning pricing version", err)
		}
		out = append(out, VersionSummary{
			ID:          id,
			Name:        name.String,
			Timestamp:   parseStoredTime(createdAt),
			Notes:       notes.String,
			ContentHash: hash,
			Products:    products,
			Addons:      addons,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Storage("listing pricing versions", err)
	}

	sortSummaries(out)
	return out, nil
}

func (s *SQLiteStore) CurrentVersionID(ctx context.Context) (string, error) {
	id, _, err := s.document(ctx, docKeyCurrent)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *SQLiteStore) SetCurrentVersionID(ctx context.Context, id string) error {
	exists, err := s.rowExists(ctx, `SELECT 1 FROM pricing_versions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if !exists {
		return errors.NotFound("pricing version", id)
	}
	return s.putDocument(ctx, docKeyCurrent, id)
}

func (s *SQLiteStore) VerifyIntegrity(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, content_hash, payload FROM pricing_versions ORDER BY id`)
	if err != nil {
		return nil, errors.Storage("verifying pricing versions", err)
	}
	defer func() { _ = rows.Close() }()

	var corrupted []string
	for rows.Next() {
		var id, hash, payload string
		if err := rows.Scan(&id, &hash, &payload); err != nil {
			return nil, errors.Storage("scanning pricing version", err)
		}
		if determinism.ComputeHash([]byte(payload)).Hex() != hash {
			corrupted = append(corrupted, id+": hash mismatch")
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Storage("verifying pricing versions", err)
	}
	return corrupted, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) document(ctx context.Context, key string) (string, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT payload FROM documents WHERE key = ?`, key)

	var payload string
	if err := row.Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, errors.Storage("reading "+key, err)
	}
	return payload, true, nil
}

func (s *SQLiteStore) putDocument(ctx context.Context, key, payload string) error {
	query := `INSERT INTO documents (key, payload) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload`
	if _, err := s.db.ExecContext(ctx, query, key, payload); err != nil {
		return errors.Storage("writing "+key, err)
	}
	return nil
}

func (s *SQLiteStore) rowExists(ctx context.Context, query, arg string) (bool, error) {
	row := s.db.QueryRowContext(ctx, query, arg)

	var one int
	if err := row.Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, errors.Storage("checking existence", err)
	}
	return true, nil
}

func parseStoredTime(value string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	return time.Time{}
}

var _ Store = (*SQLiteStore)(nil)
