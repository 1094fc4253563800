// Package di provides dependency injection for repositories.
package di

import (
	"fmt"

	"github.com/aristath/nutriplan/internal/modules/catalog"
	"github.com/aristath/nutriplan/internal/modules/hydration"
	"github.com/aristath/nutriplan/internal/modules/journal"
	"github.com/aristath/nutriplan/internal/modules/planning"
	"github.com/aristath/nutriplan/internal/modules/settings"
	"github.com/aristath/nutriplan/internal/modules/weight"
	"github.com/rs/zerolog"
)

// InitializeRepositories creates the repositories over the open databases
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	if container == nil || container.CatalogDB == nil || container.JournalDB == nil || container.CacheDB == nil {
		return fmt.Errorf("databases must be initialized before repositories")
	}

	// catalog.db
	container.SettingsRepo = settings.NewRepository(container.CatalogDB.Conn(), log)
	container.CatalogRepo = catalog.NewRepository(container.CatalogDB.Conn(), log)

	// journal.db
	container.EntryRepo = journal.NewEntryRepository(container.JournalDB.Conn(), log)
	container.DayStatusRepo = journal.NewDayStatusRepository(container.JournalDB.Conn(), log)
	container.HydrationRepo = hydration.NewRepository(container.JournalDB.Conn(), log)
	container.WeightRepo = weight.NewRepository(container.JournalDB.Conn(), log)

	// cache.db
	container.DayCache = journal.NewDayCache(container.CacheDB.Conn(), log)
	container.PlanRepo = planning.NewPlanRepository(container.CacheDB.Conn(), log)

	return nil
}
