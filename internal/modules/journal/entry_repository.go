// Package journal records what was eaten and serves the per-day aggregates.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aristath/nutriplan/internal/database"
	"github.com/aristath/nutriplan/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// EntryRepository persists logged entries in journal.db.
// Entries are never updated in place: deletion sets deleted_at and an
// amendment soft-deletes the old row and inserts a superseding one.
type EntryRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewEntryRepository creates a new entry repository
func NewEntryRepository(db *sql.DB, log zerolog.Logger) *EntryRepository {
	return &EntryRepository{
		db:  db,
		log: log.With().Str("repository", "entries").Logger(),
	}
}

const entryColumns = `id, date, food_id, source, quantity, unit, prep_style, COALESCE(supersedes, ''),
	food_name, weight_g, calories, protein_g, carbs_g, fat_g, fiber_g, price, created_at`

// Create stores a new entry, assigning its id and creation time
func (r *EntryRepository) Create(ctx context.Context, entry domain.LoggedEntry) (domain.LoggedEntry, error) {
	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now().UTC()

	if err := insertEntry(ctx, r.db, entry); err != nil {
		return domain.LoggedEntry{}, err
	}
	return entry, nil
}

// CreateBatch stores several entries in one transaction; either all are stored or none
func (r *EntryRepository) CreateBatch(ctx context.Context, entries []domain.LoggedEntry) ([]domain.LoggedEntry, error) {
	now := time.Now().UTC()
	created := make([]domain.LoggedEntry, len(entries))
	for i, e := range entries {
		e.ID = uuid.NewString()
		// distinct timestamps keep the batch in input order
		e.CreatedAt = now.Add(time.Duration(i))
		created[i] = e
	}

	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		for _, e := range created {
			if err := insertEntry(ctx, tx, e); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.log.Debug().Int("entries", len(created)).Msg("Stored entry batch")
	return created, nil
}

// Get returns an active entry. Returns domain.ErrNotFound for unknown or deleted ids.
func (r *EntryRepository) Get(ctx context.Context, id string) (domain.LoggedEntry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE id = ? AND deleted_at IS NULL`, id)
	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return domain.LoggedEntry{}, fmt.Errorf("entry %s: %w", id, domain.ErrNotFound)
	}
	return entry, err
}

// ListByDate returns the active entries of a date in creation order.
// Implements domain.EntryProvider.
func (r *EntryRepository) ListByDate(ctx context.Context, date string) ([]domain.LoggedEntry, error) {
	return r.query(ctx, `SELECT `+entryColumns+` FROM entries
		WHERE date = ? AND deleted_at IS NULL
		ORDER BY created_at, id`, date)
}

// ListRange returns the active entries between two dates inclusive, in date then creation order
func (r *EntryRepository) ListRange(ctx context.Context, start, end string) ([]domain.LoggedEntry, error) {
	return r.query(ctx, `SELECT `+entryColumns+` FROM entries
		WHERE date >= ? AND date <= ? AND deleted_at IS NULL
		ORDER BY date, created_at, id`, start, end)
}

// Recent returns the newest active entries, newest first
func (r *EntryRepository) Recent(ctx context.Context, limit int) ([]domain.LoggedEntry, error) {
	return r.query(ctx, `SELECT `+entryColumns+` FROM entries
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
}

// Delete soft-deletes an active entry and returns it
func (r *EntryRepository) Delete(ctx context.Context, id string) (domain.LoggedEntry, error) {
	var deleted domain.LoggedEntry
	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		entry, err := softDelete(ctx, tx, id)
		if err != nil {
			return err
		}
		deleted = entry
		return nil
	})
	return deleted, err
}

// Amend replaces an active entry with a new one that supersedes it.
// Returns the old and the new entry.
func (r *EntryRepository) Amend(ctx context.Context, id string, replacement domain.LoggedEntry) (domain.LoggedEntry, domain.LoggedEntry, error) {
	var old domain.LoggedEntry
	replacement.ID = uuid.NewString()
	replacement.Supersedes = id
	replacement.CreatedAt = time.Now().UTC()

	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		entry, err := softDelete(ctx, tx, id)
		if err != nil {
			return err
		}
		old = entry
		return insertEntry(ctx, tx, replacement)
	})
	if err != nil {
		return domain.LoggedEntry{}, domain.LoggedEntry{}, err
	}
	return old, replacement, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func insertEntry(ctx context.Context, db execer, e domain.LoggedEntry) error {
	var supersedes interface{}
	if e.Supersedes != "" {
		supersedes = e.Supersedes
	}
	n := make([]interface{}, 7)
	if e.Nutrition != nil {
		n = []interface{}{e.Nutrition.WeightG, e.Nutrition.Calories, e.Nutrition.ProteinG,
			e.Nutrition.CarbsG, e.Nutrition.FatG, e.Nutrition.FiberG, e.Nutrition.Price}
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO entries (id, date, food_id, source, quantity, unit, prep_style, supersedes,
			food_name, weight_g, calories, protein_g, carbs_g, fat_g, fiber_g, price, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Date, e.FoodID, string(e.Source), e.Quantity, string(e.Unit), string(e.PrepStyle),
		supersedes, e.FoodName, n[0], n[1], n[2], n[3], n[4], n[5], n[6], e.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}
	return nil
}

func softDelete(ctx context.Context, tx *sql.Tx, id string) (domain.LoggedEntry, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE id = ? AND deleted_at IS NULL`, id)
	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return domain.LoggedEntry{}, fmt.Errorf("entry %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.LoggedEntry{}, err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE entries SET deleted_at = ? WHERE id = ?`, time.Now().Unix(), id); err != nil {
		return domain.LoggedEntry{}, fmt.Errorf("failed to delete entry %s: %w", id, err)
	}
	return entry, nil
}

func (r *EntryRepository) query(ctx context.Context, q string, args ...interface{}) ([]domain.LoggedEntry, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.LoggedEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}
	return entries, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(s scanner) (domain.LoggedEntry, error) {
	var (
		e                  domain.LoggedEntry
		source, unit, prep string
		createdAt          int64
		n                  [7]sql.NullFloat64
	)
	err := s.Scan(&e.ID, &e.Date, &e.FoodID, &source, &e.Quantity, &unit, &prep, &e.Supersedes,
		&e.FoodName, &n[0], &n[1], &n[2], &n[3], &n[4], &n[5], &n[6], &createdAt)
	if err == sql.ErrNoRows {
		return e, err
	}
	if err != nil {
		return e, fmt.Errorf("failed to scan entry: %w", err)
	}
	e.Source = domain.Source(source)
	e.Unit = domain.QuantityUnit(unit)
	e.PrepStyle = domain.PrepStyle(prep)
	e.CreatedAt = time.Unix(0, createdAt).UTC()
	if n[1].Valid {
		e.Nutrition = &domain.ScaledNutrition{
			WeightG:  n[0].Float64,
			Calories: n[1].Float64,
			ProteinG: n[2].Float64,
			CarbsG:   n[3].Float64,
			FatG:     n[4].Float64,
			FiberG:   n[5].Float64,
			Price:    n[6].Float64,
		}
	}
	return e, nil
}
