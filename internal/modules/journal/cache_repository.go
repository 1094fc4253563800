package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aristath/nutriplan/internal/domain"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// DefaultDayTTL is how long a cached aggregate stays fresh unless configured otherwise
const DefaultDayTTL = 24 * time.Hour

// DayCache stores computed DayRecords in cache.db as msgpack blobs.
// A cached record is only served when it is fresh and was built from the
// current catalog version.
type DayCache struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewDayCache creates a new day aggregate cache
func NewDayCache(db *sql.DB, log zerolog.Logger) *DayCache {
	return &DayCache{
		db:  db,
		log: log.With().Str("repository", "day_cache").Logger(),
	}
}

// Store saves a record with expiration = now + ttl
func (c *DayCache) Store(ctx context.Context, record domain.DayRecord, catalogVersion int64, ttl time.Duration) error {
	data, err := msgpack.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode day record: %w", err)
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO day_aggregates (date, data, catalog_version, expires_at)
		VALUES (?, ?, ?, ?)
	`, record.Date, data, catalogVersion, time.Now().Add(ttl).Unix())
	if err != nil {
		return fmt.Errorf("failed to cache day %s: %w", record.Date, err)
	}
	return nil
}

// GetIfFresh returns the cached record, or nil when it is missing, expired or
// built from another catalog version
func (c *DayCache) GetIfFresh(ctx context.Context, date string, catalogVersion int64) (*domain.DayRecord, error) {
	var data []byte
	err := c.db.QueryRowContext(ctx, `
		SELECT data FROM day_aggregates
		WHERE date = ? AND catalog_version = ? AND expires_at > ?
	`, date, catalogVersion, time.Now().Unix()).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached day %s: %w", date, err)
	}

	var record domain.DayRecord
	if err := msgpack.Unmarshal(data, &record); err != nil {
		// A blob we cannot decode is as good as a miss
		c.log.Warn().Err(err).Str("date", date).Msg("Discarding undecodable cached day")
		return nil, nil
	}
	return &record, nil
}

// Invalidate removes the cached record of a date
func (c *DayCache) Invalidate(ctx context.Context, date string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM day_aggregates WHERE date = ?`, date); err != nil {
		return fmt.Errorf("failed to invalidate cached day %s: %w", date, err)
	}
	return nil
}

// InvalidateAll removes every cached record
func (c *DayCache) InvalidateAll(ctx context.Context) (int64, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM day_aggregates`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear day cache: %w", err)
	}
	return res.RowsAffected()
}

// DeleteExpired removes records past their expiry or built from an older catalog version.
// Returns the number of rows deleted.
func (c *DayCache) DeleteExpired(ctx context.Context, catalogVersion int64) (int64, error) {
	res, err := c.db.ExecContext(ctx, `
		DELETE FROM day_aggregates WHERE expires_at < ? OR catalog_version < ?
	`, time.Now().Unix(), catalogVersion)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired day aggregates: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}
