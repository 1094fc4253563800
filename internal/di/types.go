/**
 * Package di provides dependency injection type definitions.
 *
 * The Container holds every database, repository, service and job of the
 * application. It is created by Wire() and passed to the server, which
 * builds its handlers from it.
 */
package di

import (
	"github.com/aristath/nutriplan/internal/database"
	"github.com/aristath/nutriplan/internal/events"
	"github.com/aristath/nutriplan/internal/modules/catalog"
	"github.com/aristath/nutriplan/internal/modules/hydration"
	"github.com/aristath/nutriplan/internal/modules/journal"
	"github.com/aristath/nutriplan/internal/modules/planning"
	"github.com/aristath/nutriplan/internal/modules/settings"
	"github.com/aristath/nutriplan/internal/modules/weight"
	"github.com/aristath/nutriplan/internal/reliability"
	"github.com/aristath/nutriplan/internal/scheduler"
)

// Container holds all dependencies for the application
type Container struct {
	// Databases
	CatalogDB *database.DB // Foods, recipes, price reviews and settings
	JournalDB *database.DB // Logged entries, day status, water and weight logs
	CacheDB   *database.DB // Day aggregates and stored plans

	// Events
	EventBus     *events.Bus
	EventManager *events.Manager

	// Repositories
	SettingsRepo  *settings.Repository
	CatalogRepo   *catalog.Repository
	EntryRepo     *journal.EntryRepository
	DayStatusRepo *journal.DayStatusRepository
	DayCache      *journal.DayCache
	PlanRepo      *planning.PlanRepository
	HydrationRepo *hydration.Repository
	WeightRepo    *weight.Repository

	// Services
	SettingsService  *settings.Service
	CatalogService   *catalog.Service
	JournalService   *journal.Service
	PlanningService  *planning.Service
	HydrationService *hydration.Service
	WeightService    *weight.Service
	BackupService    *reliability.BackupService // nil when backups are not configured

	Scheduler *scheduler.Scheduler
}

// JobInstances holds the registered jobs for manual triggering via the API
type JobInstances struct {
	CacheCleanup *journal.CacheCleanupJob
	PlanCleanup  *planning.PlanCleanupJob
	Maintenance  *reliability.MaintenanceJob
	Backup       *reliability.BackupJob // nil when backups are not configured
}

// Databases returns the open databases keyed by name
func (c *Container) Databases() map[string]*database.DB {
	dbs := make(map[string]*database.DB, 3)
	for name, db := range map[string]*database.DB{
		database.NameCatalog: c.CatalogDB,
		database.NameJournal: c.JournalDB,
		database.NameCache:   c.CacheDB,
	} {
		if db != nil {
			dbs[name] = db
		}
	}
	return dbs
}

// Close closes every open database
func (c *Container) Close() {
	for _, db := range c.Databases() {
		_ = db.Close()
	}
}
