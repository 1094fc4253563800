package planning

import (
	"context"

	"github.com/rs/zerolog"
)

// PlanCleanupJob expires stale pending plans and deletes old ones
type PlanCleanupJob struct {
	service *Service
	log     zerolog.Logger
}

// NewPlanCleanupJob creates a new plan cleanup job
func NewPlanCleanupJob(service *Service, log zerolog.Logger) *PlanCleanupJob {
	return &PlanCleanupJob{
		service: service,
		log:     log.With().Str("job", "plan_cleanup").Logger(),
	}
}

// Run executes the cleanup
func (j *PlanCleanupJob) Run() error {
	expired, deleted, err := j.service.Cleanup(context.Background())
	if err != nil {
		j.log.Error().Err(err).Msg("Failed to clean up plans")
		return err
	}

	if expired > 0 || deleted > 0 {
		j.log.Info().
			Int64("expired", expired).
			Int64("deleted", deleted).
			Msg("Cleaned up plans")
	}
	return nil
}

// Name returns the job name for scheduling and logging
func (j *PlanCleanupJob) Name() string {
	return "plan_cleanup"
}
