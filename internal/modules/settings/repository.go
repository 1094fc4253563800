// Package settings stores user-tunable configuration and the user profile in catalog.db.
package settings

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// Repository is the raw key/value store behind Service. It knows nothing about
// defaults or ranges; values are kept as text in the settings table of catalog.db.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a settings repository on the catalog database
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "settings").Logger(),
	}
}

// Lookup returns the stored text of key and whether it is stored at all
func (r *Repository) Lookup(key string) (string, bool, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key. A nil description keeps the stored one.
func (r *Repository) Set(key, value string, description *string) error {
	var desc sql.NullString
	if description != nil {
		desc = sql.NullString{String: *description, Valid: true}
	}

	_, err := r.db.Exec(`
		INSERT INTO settings (key, value, description, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			description = COALESCE(excluded.description, settings.description),
			updated_at = excluded.updated_at
	`, key, value, desc, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to store setting %s: %w", key, err)
	}
	return nil
}

// GetAll returns every stored key with its text value
func (r *Repository) GetAll() (map[string]string, error) {
	rows, err := r.db.Query(`SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer rows.Close()

	stored := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		stored[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	return stored, nil
}

// GetFloat parses key as a number. Missing or unparsable values yield def;
// only a failed read is an error.
func (r *Repository) GetFloat(key string, def float64) (float64, error) {
	raw, ok, err := r.Lookup(key)
	if err != nil || !ok {
		return def, err
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		r.log.Warn().Str("key", key).Str("value", raw).Msg("Stored setting is not numeric")
		return def, nil
	}
	return f, nil
}

// GetString returns key's text, or def when it was never stored
func (r *Repository) GetString(key, def string) (string, error) {
	raw, ok, err := r.Lookup(key)
	if err != nil || !ok {
		return def, err
	}
	return raw, nil
}

// Delete forgets key so reads fall back to the default.
// It reports whether anything was stored.
func (r *Repository) Delete(key string) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM settings WHERE key = ?`, key)
	if err != nil {
		return false, fmt.Errorf("failed to delete setting %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete setting %s: %w", key, err)
	}
	return n > 0, nil
}
