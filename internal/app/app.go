// Package app wires configuration into a running learning service: it opens
// the configured progress store, builds the engine and catalog, and owns the
// resources that need closing on shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/stargazer/internal/catalog"
	"github.com/phrazzld/stargazer/internal/config"
	"github.com/phrazzld/stargazer/internal/domain"
	"github.com/phrazzld/stargazer/internal/domain/adaptive"
	"github.com/phrazzld/stargazer/internal/domain/mastery"
	"github.com/phrazzld/stargazer/internal/domain/misconception"
	"github.com/phrazzld/stargazer/internal/domain/recommend"
	"github.com/phrazzld/stargazer/internal/events"
	"github.com/phrazzld/stargazer/internal/platform/badger"
	"github.com/phrazzld/stargazer/internal/platform/memory"
	"github.com/phrazzld/stargazer/internal/platform/postgres"
	"github.com/phrazzld/stargazer/internal/redact"
	"github.com/phrazzld/stargazer/internal/service"
	"github.com/phrazzld/stargazer/internal/store"
)

// Store backends accepted in store.backend
const (
	BackendMemory   = "memory"
	BackendBadger   = "badger"
	BackendPostgres = "postgres"
)

// Application holds the shared dependencies of the server and the CLI.
type Application struct {
	Config  *config.Config
	Logger  *slog.Logger
	Catalog domain.Catalog
	Engine  *adaptive.Engine
	Store   store.ProgressStore
	Service service.LearningService

	closers []func() error
}

// Options adjusts how New builds the application.
type Options struct {
	// Migrate applies pending postgres migrations before the store is used
	Migrate bool
	// Clock overrides the service clock, mostly for tests
	Clock func() time.Time
}

// New builds the application described by cfg. The caller must Close it.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	app := &Application{Config: cfg, Logger: logger}

	engine, err := NewEngine(cfg.Engine)
	if err != nil {
		return nil, fmt.Errorf("failed to build engine: %w", err)
	}
	app.Engine = engine

	app.Catalog, err = catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	logger.Info("catalog loaded",
		slog.Int("lessons", len(app.Catalog.Lessons)),
		slog.Int("quizzes", len(app.Catalog.Quizzes)),
		slog.Bool("builtin", cfg.Catalog.Path == ""))

	if err := app.openStore(ctx, cfg.Store, opts.Migrate); err != nil {
		app.Close()
		return nil, err
	}

	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(events.NewLoggingHandler(logger))

	app.Service, err = service.NewLearningService(app.Store, engine, app.Catalog, emitter, service.Options{
		Key:        cfg.Store.Key,
		MaxRetries: cfg.Store.MaxRetries,
		Clock:      opts.Clock,
	}, logger)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to create learning service: %w", err)
	}

	logger.Info("application initialized", slog.String("store_backend", cfg.Store.Backend))
	return app, nil
}

// NewEngine builds an engine tuned by the engine configuration. Difficulty
// multipliers and the critical mastery level keep their defaults.
func NewEngine(cfg config.EngineConfig) (*adaptive.Engine, error) {
	tracker, err := mastery.NewTrackerWithParams(mastery.NewParams(mastery.ParamsConfig{
		BaseCorrectDelta:          cfg.CorrectDelta,
		BaseWrongDelta:            cfg.WrongDelta,
		MasteryThreshold:          cfg.MasteryThreshold,
		ReviewIntervalWrong:       cfg.ReviewIntervalWrongDays,
		ReviewIntervalLowMastery:  cfg.ReviewIntervalLowDays,
		ReviewIntervalHighMastery: cfg.ReviewIntervalHighDays,
	}))
	if err != nil {
		return nil, err
	}

	generator, err := recommend.NewGeneratorWithParams(recommend.NewParams(recommend.ParamsConfig{
		Limit:      cfg.RecommendationLimit,
		CacheTTL:   time.Duration(cfg.RecommendationCacheHours) * time.Hour,
		LowMastery: cfg.MasteryThreshold,
	}))
	if err != nil {
		return nil, err
	}

	return adaptive.NewEngine(tracker, misconception.NewDefaultDetector(), generator), nil
}

func (a *Application) openStore(ctx context.Context, cfg config.StoreConfig, migrate bool) error {
	switch cfg.Backend {
	case BackendMemory:
		a.Store = memory.NewProgressStore(a.Logger)

	case BackendBadger:
		badgerCfg := badger.DefaultConfig(cfg.BadgerDir)
		badgerCfg.Logger = a.Logger
		db, err := badger.Open(badgerCfg)
		if err != nil {
			return fmt.Errorf("failed to open badger store: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		a.Store = badger.NewProgressStore(db, a.Logger)

	case BackendPostgres:
		db, err := postgres.Open(ctx, cfg.DatabaseURL, a.Logger)
		if err != nil {
			return fmt.Errorf("failed to open postgres store: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		if migrate {
			if err := postgres.Migrate(ctx, db, a.Logger); err != nil {
				return fmt.Errorf("failed to apply migrations: %w", err)
			}
		}
		a.Store = postgres.NewPostgresProgressStore(db, a.Logger)

	default:
		return fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
	return nil
}

// Close releases the store resources in reverse order of acquisition.
func (a *Application) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Logger.Error("failed to close resource", redact.Attr("error", err))
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
