package cmd

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/camden-git/gatewatch/config"
	"github.com/camden-git/gatewatch/database"
	"github.com/camden-git/gatewatch/repository"
	"github.com/camden-git/gatewatch/services"
)

// runtime bundles the pieces every command needs against the shared
// registry.
type runtime struct {
	Cfg        config.Config
	DB         *gorm.DB
	Persons    *repository.PersonRepository
	Embeddings *repository.EmbeddingRepository
	Matcher    *services.Matcher
}

func openRuntime() (*runtime, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := database.InitGormDB(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := database.AutoMigrateModels(db); err != nil {
		return nil, err
	}

	return &runtime{
		Cfg:        cfg,
		DB:         db,
		Persons:    repository.NewPersonRepository(db),
		Embeddings: repository.NewEmbeddingRepository(db),
		Matcher:    services.NewMatcher(cfg.MatchThreshold),
	}, nil
}

func (rt *runtime) Close() {
	sqlDB, err := rt.DB.DB()
	if err == nil {
		_ = sqlDB.Close()
	}
}
