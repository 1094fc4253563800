// Package di provides dependency injection for services.
package di

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/nutriplan/internal/config"
	"github.com/aristath/nutriplan/internal/events"
	"github.com/aristath/nutriplan/internal/modules/catalog"
	"github.com/aristath/nutriplan/internal/modules/hydration"
	"github.com/aristath/nutriplan/internal/modules/journal"
	"github.com/aristath/nutriplan/internal/modules/planning"
	"github.com/aristath/nutriplan/internal/modules/settings"
	"github.com/aristath/nutriplan/internal/modules/weight"
	"github.com/aristath/nutriplan/internal/reliability"
	"github.com/rs/zerolog"
)

// Version is reported by /health and recorded in backup metadata
const Version = "1.0.0"

// InitializeServices creates the event bus and every service, in dependency order
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil || container.SettingsRepo == nil {
		return fmt.Errorf("repositories must be initialized before services")
	}

	container.EventBus = events.NewBus(log)
	container.EventManager = events.NewManager(container.EventBus, log)

	container.SettingsService = settings.NewService(container.SettingsRepo, container.EventManager, log)

	container.CatalogService = catalog.NewService(
		container.CatalogRepo,
		container.SettingsService,
		container.EventManager,
		log,
	)

	container.JournalService = journal.NewService(
		container.EntryRepo,
		container.DayStatusRepo,
		container.DayCache,
		container.CatalogService,
		container.SettingsService,
		container.EventManager,
		log,
	)
	container.JournalService.SubscribeToEvents(container.EventBus)

	container.PlanningService = planning.NewService(
		container.CatalogService,
		container.SettingsService,
		container.PlanRepo,
		container.JournalService,
		container.EventManager,
		log,
	)

	container.HydrationService = hydration.NewService(
		container.HydrationRepo,
		container.SettingsService,
		container.EventManager,
		log,
	)

	container.WeightService = weight.NewService(
		container.WeightRepo,
		container.SettingsService,
		container.EventManager,
		log,
	)

	if cfg.Backup.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		store, err := reliability.NewS3Store(ctx, reliability.S3Config{
			Bucket:          cfg.Backup.Bucket,
			Endpoint:        cfg.Backup.Endpoint,
			Region:          cfg.Backup.Region,
			AccessKeyID:     cfg.Backup.AccessKeyID,
			SecretAccessKey: cfg.Backup.SecretAccessKey,
		}, log)
		if err != nil {
			return fmt.Errorf("failed to create backup store: %w", err)
		}

		container.BackupService = reliability.NewBackupService(
			container.Databases(),
			store,
			cfg.DataDir,
			Version,
			container.EventManager,
			log,
		)
	}

	log.Info().Bool("backups", container.BackupService != nil).Msg("Services initialized")
	return nil
}
