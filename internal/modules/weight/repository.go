package weight

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aristath/nutriplan/internal/domain"
	"github.com/rs/zerolog"
)

// Repository stores the weight log
// Database: journal.db (weight_log table)
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new weight repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "weight").Logger(),
	}
}

// Upsert records the weight for a date, replacing an earlier value
func (r *Repository) Upsert(ctx context.Context, date string, weightKg float64) (Entry, error) {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO weight_log (date, weight_kg, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			weight_kg = excluded.weight_kg,
			updated_at = excluded.updated_at
	`, date, weightKg, now.Unix())
	if err != nil {
		return Entry{}, fmt.Errorf("failed to log weight for %s: %w", date, err)
	}
	return Entry{Date: date, WeightKg: weightKg, UpdatedAt: time.Unix(now.Unix(), 0).UTC()}, nil
}

// Range returns entries between start and end inclusive, oldest first
func (r *Repository) Range(ctx context.Context, start, end string) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT date, weight_kg, updated_at FROM weight_log
		WHERE date >= ? AND date <= ?
		ORDER BY date
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query weight log: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e         Entry
			updatedAt int64
		)
		if err := rows.Scan(&e.Date, &e.WeightKg, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan weight: %w", err)
		}
		e.UpdatedAt = time.Unix(updatedAt, 0).UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Latest returns the most recent entry by date
func (r *Repository) Latest(ctx context.Context) (Entry, error) {
	var (
		e         Entry
		updatedAt int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT date, weight_kg, updated_at FROM weight_log
		ORDER BY date DESC LIMIT 1
	`).Scan(&e.Date, &e.WeightKg, &updatedAt)
	if err == sql.ErrNoRows {
		return Entry{}, fmt.Errorf("weight log is empty: %w", domain.ErrNotFound)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("failed to get latest weight: %w", err)
	}
	e.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return e, nil
}

// Delete removes the entry for a date
func (r *Repository) Delete(ctx context.Context, date string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM weight_log WHERE date = ?`, date)
	if err != nil {
		return fmt.Errorf("failed to delete weight for %s: %w", date, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete weight for %s: %w", date, err)
	}
	if n == 0 {
		return fmt.Errorf("weight for %s: %w", date, domain.ErrNotFound)
	}
	return nil
}
