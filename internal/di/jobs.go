// Package di provides dependency injection for scheduler jobs.
package di

import (
	"fmt"

	"github.com/aristath/nutriplan/internal/config"
	"github.com/aristath/nutriplan/internal/modules/journal"
	"github.com/aristath/nutriplan/internal/modules/planning"
	"github.com/aristath/nutriplan/internal/reliability"
	"github.com/aristath/nutriplan/internal/scheduler"
	"github.com/rs/zerolog"
)

// RegisterJobs creates the background jobs and schedules them.
// The scheduler is created but not started.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	if container == nil || container.JournalService == nil {
		return nil, fmt.Errorf("services must be initialized before jobs")
	}

	container.Scheduler = scheduler.New(log)
	instances := &JobInstances{
		CacheCleanup: journal.NewCacheCleanupJob(container.JournalService, log),
		PlanCleanup:  planning.NewPlanCleanupJob(container.PlanningService, log),
		Maintenance:  reliability.NewMaintenanceJob(container.Databases(), cfg.DataDir, log),
	}

	schedule := []struct {
		spec string
		job  scheduler.Job
	}{
		{cfg.Schedule.CacheCleanup, instances.CacheCleanup},
		{cfg.Schedule.PlanCleanup, instances.PlanCleanup},
		{cfg.Schedule.Maintenance, instances.Maintenance},
	}

	if container.BackupService != nil {
		instances.Backup = reliability.NewBackupJob(container.BackupService, container.SettingsService, log)
		schedule = append(schedule, struct {
			spec string
			job  scheduler.Job
		}{cfg.Schedule.Backup, instances.Backup})
	}

	for _, entry := range schedule {
		if err := container.Scheduler.AddJob(entry.spec, entry.job); err != nil {
			return nil, fmt.Errorf("failed to register %s: %w", entry.job.Name(), err)
		}
	}

	log.Info().Strs("jobs", container.Scheduler.JobNames()).Msg("Jobs registered")
	return instances, nil
}
