package journal

import (
	"context"

	"github.com/rs/zerolog"
)

// CacheCleanupJob removes expired or outdated cached day aggregates
type CacheCleanupJob struct {
	service *Service
	log     zerolog.Logger
}

// NewCacheCleanupJob creates a new day cache cleanup job
func NewCacheCleanupJob(service *Service, log zerolog.Logger) *CacheCleanupJob {
	return &CacheCleanupJob{
		service: service,
		log:     log.With().Str("job", "day_cache_cleanup").Logger(),
	}
}

// Run executes the cleanup
func (j *CacheCleanupJob) Run() error {
	deleted, err := j.service.CleanupCache(context.Background())
	if err != nil {
		j.log.Error().Err(err).Msg("Failed to delete expired day aggregates")
		return err
	}

	if deleted > 0 {
		j.log.Info().
			Int64("deleted", deleted).
			Msg("Cleaned up cached day aggregates")
	}
	return nil
}

// Name returns the job name for scheduling and logging
func (j *CacheCleanupJob) Name() string {
	return "day_cache_cleanup"
}
