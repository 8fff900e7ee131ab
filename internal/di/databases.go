package di

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/aristath/portfolio-tracker/internal/config"
	"github.com/aristath/portfolio-tracker/internal/database"
)

// InitializeDatabases opens and migrates the databases the configuration calls for
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// portfolio.db - portfolios, people, widgets (sqlite backend only)
	if cfg.StoreBackend == config.StoreSQLite {
		portfolioDB, err := openDatabase(cfg.DataDir, database.NamePortfolio, database.ProfileStandard)
		if err != nil {
			return nil, err
		}
		container.PortfolioDB = portfolioDB
	}

	// client_data.db - cached upstream payloads
	clientDataDB, err := openDatabase(cfg.DataDir, database.NameClientData, database.ProfileCache)
	if err != nil {
		_ = container.Close()
		return nil, err
	}
	container.ClientDataDB = clientDataDB

	log.Info().
		Str("data_dir", cfg.DataDir).
		Str("store_backend", cfg.StoreBackend).
		Int("databases", len(container.Databases())).
		Msg("Databases initialized")

	return container, nil
}

func openDatabase(dataDir, name string, profile database.DatabaseProfile) (*database.DB, error) {
	db, err := database.New(database.Config{
		Path:    filepath.Join(dataDir, name+".db"),
		Profile: profile,
		Name:    name,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s database: %w", name, err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate %s database: %w", name, err)
	}
	return db, nil
}
