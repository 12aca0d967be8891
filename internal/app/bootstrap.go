package app

import (
	"context"
	"errors"
	"fmt"

	"pantry-chef/internal/config"
	"pantry-chef/internal/database"
	"pantry-chef/internal/logging"
	"pantry-chef/internal/metrics"
	"pantry-chef/internal/recipe"
	"pantry-chef/internal/recognition"
	"pantry-chef/internal/storage"
	"pantry-chef/internal/userstate"
)

// Build wires the catalog, user state backend and classifier selected by cfg.
// The returned cleanup releases every opened resource.
func Build(ctx context.Context, cfg *config.Config) (*App, func() error, error) {
	var closers []func() error
	cleanup := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}

	catalog, err := recipe.LoadCatalog(cfg.Catalog.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	var (
		store userstate.Store
		calls *metrics.Store
	)
	switch cfg.Store.Backend {
	case config.BackendSQLite:
		db, err := database.NewDB(cfg.Store.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		closers = append(closers, db.Close)
		store = userstate.NewSQLiteStore(db.SQL)
		calls = metrics.NewStore(db.SQL)
	case config.BackendBadger:
		bs, err := storage.OpenBadgerStore(cfg.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, bs.Close)
		store = bs
	default:
		js, err := storage.NewJSONStore(cfg.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		store = js
	}

	classifier, closeClassifier, err := NewClassifier(ctx, cfg.Recognition)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	closers = append(closers, closeClassifier)

	users := userstate.NewService(store, catalog)

	logging.Info().
		Int("recipes", catalog.Len()).
		Str("store", cfg.Store.Backend).
		Str("store_path", cfg.Store.Path).
		Str("recognition", cfg.Recognition.Provider).
		Msg("Application initialized")

	return NewApp(catalog, users, classifier, calls, cfg), cleanup, nil
}

// NewClassifier builds the configured recognition backend behind a circuit breaker.
func NewClassifier(ctx context.Context, rc config.RecognitionConfig) (recognition.Classifier, func() error, error) {
	var (
		base   recognition.Classifier
		closer = func() error { return nil }
	)
	switch rc.Provider {
	case config.ProviderGemini:
		g, err := recognition.NewGeminiClassifier(ctx, rc.GeminiAPIKey, rc.GeminiModel, rc.Timeout)
		if err != nil {
			return nil, nil, err
		}
		base, closer = g, g.Close
	default:
		base = recognition.NewHuggingFaceClient(recognition.HuggingFaceConfig{
			Token:   rc.HFToken,
			Model:   rc.HFModel,
			Timeout: rc.Timeout,
		})
	}
	return recognition.WithCircuitBreaker(base, recognition.BreakerSettings{Name: rc.Provider}), closer, nil
}
