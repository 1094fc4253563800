package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aristath/nutriplan/internal/domain"
	"github.com/rs/zerolog"
)

// DayStatusRepository stores the cheat-day flag per date.
// Dates without a row are standard days.
type DayStatusRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewDayStatusRepository creates a new day status repository
func NewDayStatusRepository(db *sql.DB, log zerolog.Logger) *DayStatusRepository {
	return &DayStatusRepository{
		db:  db,
		log: log.With().Str("repository", "day_status").Logger(),
	}
}

// Get returns the status of a date. Implements domain.DayFlagStore.
func (r *DayStatusRepository) Get(ctx context.Context, date string) (domain.DayStatus, error) {
	var status string
	err := r.db.QueryRowContext(ctx, `SELECT status FROM day_status WHERE date = ?`, date).Scan(&status)
	if err == sql.ErrNoRows {
		return domain.DayStandard, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get day status for %s: %w", date, err)
	}
	return domain.DayStatus(status), nil
}

// Set stores the status of a date. Implements domain.DayFlagStore.
func (r *DayStatusRepository) Set(ctx context.Context, date string, status domain.DayStatus) error {
	if status != domain.DayStandard && status != domain.DayCheat {
		return domain.NewValidationError("status", fmt.Sprintf("unknown day status %q", status))
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO day_status (date, status, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET status = excluded.status, updated_at = excluded.updated_at
	`, date, string(status), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to set day status for %s: %w", date, err)
	}
	return nil
}

// Range returns the stored statuses between two dates inclusive.
// Dates missing from the map are standard.
func (r *DayStatusRepository) Range(ctx context.Context, start, end string) (map[string]domain.DayStatus, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT date, status FROM day_status WHERE date >= ? AND date <= ?`, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query day statuses: %w", err)
	}
	defer rows.Close()

	result := make(map[string]domain.DayStatus)
	for rows.Next() {
		var date, status string
		if err := rows.Scan(&date, &status); err != nil {
			r.log.Warn().Err(err).Msg("Failed to scan day status row")
			continue
		}
		result[date] = domain.DayStatus(status)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating day statuses: %w", err)
	}
	return result, nil
}
