// Package di provides dependency injection for database connections.
package di

import (
	"fmt"
	"path/filepath"

	"github.com/aristath/nutriplan/internal/config"
	"github.com/aristath/nutriplan/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens the three databases and applies their schemas
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	specs := []struct {
		name    string
		profile database.DatabaseProfile
		dst     **database.DB
	}{
		// catalog.db - foods, recipes, price reviews, settings
		{database.NameCatalog, database.ProfileStandard, &container.CatalogDB},
		// journal.db - the food log; full fsync
		{database.NameJournal, database.ProfileLedger, &container.JournalDB},
		// cache.db - rebuildable aggregates and short-lived plans
		{database.NameCache, database.ProfileCache, &container.CacheDB},
	}

	for _, spec := range specs {
		db, err := database.New(database.Config{
			Path:    filepath.Join(cfg.DataDir, spec.name+".db"),
			Profile: spec.profile,
			Name:    spec.name,
		})
		if err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to initialize %s database: %w", spec.name, err)
		}
		*spec.dst = db

		if err := db.Migrate(); err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to migrate %s database: %w", spec.name, err)
		}

		log.Debug().Str("database", spec.name).Str("profile", string(spec.profile)).Msg("Database ready")
	}

	return container, nil
}
