package main

import (
	"errors"

	"github.com/SAP-F-2025/refdata-service/internal/cache"
	"github.com/SAP-F-2025/refdata-service/internal/config"
	"github.com/SAP-F-2025/refdata-service/internal/events"
	"github.com/SAP-F-2025/refdata-service/internal/repositories"
	"github.com/SAP-F-2025/refdata-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/refdata-service/internal/services"
	"github.com/SAP-F-2025/refdata-service/internal/utils"
	"github.com/SAP-F-2025/refdata-service/internal/validator"
	"github.com/SAP-F-2025/refdata-service/pkg"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// app holds the wired services and the resources to release on exit
type app struct {
	cfg       *config.Config
	logger    utils.Logger
	db        *gorm.DB
	repo      repositories.Repository
	redis     *redis.Client
	publisher events.EventPublisher
	services  services.ServiceManager
}

func newLogger(cfg *config.Config) utils.Logger {
	if cfg.IsProduction() {
		return utils.NewDefaultLogger()
	}
	return utils.NewDevelopmentLogger()
}

// bootstrap connects to the database, Redis and the event broker. Redis and the broker are
// optional: without them imports are not gated across instances and nothing is published.
func bootstrap() (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg)
	slogger := utils.ToSlogLogger(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return nil, err
	}
	repo := postgres.NewRepository(db)

	a := &app{cfg: cfg, logger: logger, db: db, repo: repo}

	var cacheService cache.CacheService = cache.NoopCache{}
	var gate cache.ImportGate = cache.NoopImportGate{}
	if client, err := pkg.NewRedisClient(cfg); errors.Is(err, pkg.ErrRedisDisabled) {
		logger.Info("Redis disabled, running without export cache and import gate")
	} else if err != nil {
		logger.Warn("Redis unavailable, running without export cache and import gate", "error", err)
	} else {
		a.redis = client
		cacheService = cache.NewRedisCache(client, slogger)
		gate = cache.NewImportGate(client, cfg.ImportLockTTL, slogger)
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		logger.Error("Failed to create event publisher", "error", err)
		publisher = events.NewMockEventPublisher(slogger)
	}
	a.publisher = publisher

	a.services = services.NewServiceManager(cfg, services.Dependencies{
		Repo:      repo,
		Cache:     cacheService,
		Gate:      gate,
		Publisher: publisher,
		Validator: validator.New(),
		Logger:    slogger,
	})
	return a, nil
}

func (a *app) Close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Error("Failed to close event publisher", "error", err)
		}
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if err := a.repo.Close(); err != nil {
		a.logger.Error("Failed to close database", "error", err)
	}
}
