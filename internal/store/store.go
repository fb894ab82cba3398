package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Known settings keys. The settings table is the durable key-value state the
// rest of the application relies on: session token, user profile JSON, AI
// settings JSON, transient OAuth state, and the theme preference.
const (
	KeyAuthToken     = "auth_token"
	KeyUserInfo      = "user_info"
	KeyAISettings    = "ai_settings"
	KeyOAuthState    = "oauth_state"
	KeyOAuthProvider = "oauth_provider"
	KeyTheme         = "theme"
)

// SynthesisCache is a cached per-field generation result, keyed by the source
// content and prompt so a re-run over unchanged reports skips the API call.
type SynthesisCache struct {
	ID         int64
	CacheKey   string
	TemplateID string
	FieldID    string
	PromptHash string
	Result     string
	Model      string
	CreatedAt  time.Time
}

// FetchLog records one upstream fetch operation for debugging.
type FetchLog struct {
	ID           int64
	Provider     string
	Operation    string
	Status       string
	ErrorMessage string
	DurationMS   int64
	CreatedAt    time.Time
}

// Store provides database operations for the application.
type Store struct {
	db *sql.DB
}

// New creates a new Store and runs migrations.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// GetSetting retrieves a settings value. Returns an empty string and no error
// when the key has never been set.
func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// PutSetting inserts or replaces a settings value.
func (s *Store) PutSetting(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value=excluded.value,
			updated_at=CURRENT_TIMESTAMP
	`, key, value)
	return err
}

// DeleteSetting removes settings values. Deleting a missing key is a no-op.
func (s *Store) DeleteSetting(keys ...string) error {
	for _, key := range keys {
		if _, err := s.db.Exec(`DELETE FROM settings WHERE key = ?`, key); err != nil {
			return err
		}
	}
	return nil
}

// GetSynthesisCache retrieves a cached generation result by cache key.
// Returns sql.ErrNoRows when there is no entry.
func (s *Store) GetSynthesisCache(cacheKey string) (*SynthesisCache, error) {
	c := &SynthesisCache{}
	err := s.db.QueryRow(`
		SELECT id, cache_key, template_id, field_id, prompt_hash, result, model, created_at
		FROM synthesis_cache WHERE cache_key = ?`, cacheKey).Scan(
		&c.ID, &c.CacheKey, &c.TemplateID, &c.FieldID,
		&c.PromptHash, &c.Result, &c.Model, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// PutSynthesisCache inserts or replaces a cached generation result.
func (s *Store) PutSynthesisCache(c *SynthesisCache) error {
	_, err := s.db.Exec(`
		INSERT INTO synthesis_cache (cache_key, template_id, field_id, prompt_hash, result, model, created_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(cache_key) DO UPDATE SET
			result=excluded.result,
			model=excluded.model,
			created_at=CURRENT_TIMESTAMP
	`, c.CacheKey, c.TemplateID, c.FieldID, c.PromptHash, c.Result, c.Model)
	return err
}

// LogFetch records a fetch operation.
func (s *Store) LogFetch(l *FetchLog) error {
	_, err := s.db.Exec(`
		INSERT INTO fetch_log (provider, operation, status, error_message, duration_ms)
		VALUES (?, ?, ?, ?, ?)
	`, l.Provider, l.Operation, l.Status, l.ErrorMessage, l.DurationMS)
	return err
}

// RecentFetchLogs returns the most recent fetch log entries, newest first.
func (s *Store) RecentFetchLogs(limit int) ([]*FetchLog, error) {
	rows, err := s.db.Query(`
		SELECT id, provider, operation, status, error_message, duration_ms, created_at
		FROM fetch_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*FetchLog
	for rows.Next() {
		l := &FetchLog{}
		if err := rows.Scan(&l.ID, &l.Provider, &l.Operation, &l.Status,
			&l.ErrorMessage, &l.DurationMS, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
