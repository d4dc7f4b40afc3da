package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"extractor-backend/internal/extractions"
	"extractor-backend/internal/shared/config"
	"extractor-backend/internal/shared/server"
	"extractor-backend/internal/shared/storage/db"
	"extractor-backend/internal/shared/storage/object"
	"extractor-backend/internal/shared/storage/object/local"
	"extractor-backend/internal/shared/storage/object/s3"
	"extractor-backend/internal/shared/telemetry"
	"extractor-backend/internal/solicitudes"
)

// App holds the wired application.
type App struct {
	Config config.Config
	DB     *sql.DB
	Router *gin.Engine
}

// Build wires storage, the ledger, the extraction pipeline and the HTTP
// router from configuration.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	repo, database, err := buildRepo(ctx, cfg)
	if err != nil {
		return nil, err
	}

	ledger := solicitudes.NewService(repo)
	pipeline := extractions.NewService(ledger, store, cfg.ReuseIdenticalInputs)

	router := server.NewRouter(cfg, server.RouterDeps{
		Handlers: []server.Registrar{
			extractions.NewHandler(pipeline, store, cfg.MaxUploadMB),
			solicitudes.NewHandler(ledger, store),
		},
	})

	return &App{Config: cfg, DB: database, Router: router}, nil
}

// Close releases resources held by the app.
func (a *App) Close() {
	if a.DB != nil {
		_ = a.DB.Close()
	}
}

func buildStore(ctx context.Context, cfg config.Config) (object.Store, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		store, err := s3.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
		if err != nil {
			return nil, fmt.Errorf("build s3 store: %w", err)
		}
		return store, nil
	default:
		return local.New(cfg.LocalStoreDir), nil
	}
}

// buildRepo connects to MySQL and runs migrations. Without a DSN the app
// falls back to the in-memory ledger outside production, which keeps local
// development working without a database.
func buildRepo(ctx context.Context, cfg config.Config) (solicitudes.Repo, *sql.DB, error) {
	if cfg.DatabaseDSN == "" {
		if cfg.Env == "production" {
			return nil, nil, errors.New("database DSN is required in production")
		}
		telemetry.Warn("bootstrap.memory_repo", map[string]any{
			"env": cfg.Env,
		})
		return solicitudes.NewMemoryRepo(), nil, nil
	}

	database, err := db.Connect(ctx, cfg.DatabaseDSN, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	if err := db.RunMigrations(ctx, database); err != nil {
		_ = database.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}
	return solicitudes.NewMySQLRepo(database), database, nil
}
