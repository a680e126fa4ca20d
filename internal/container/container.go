// Package container wires the application dependencies: configuration,
// logging, the record store and the AI classifier. Commands ask the
// container for ready pipelines instead of constructing them locally,
// so the wiring lives in one place.
package container

import (
	"context"
	"fmt"
	"io"

	"finbook/csv-import/internal/categorize"
	"finbook/csv-import/internal/classifier"
	"finbook/csv-import/internal/config"
	"finbook/csv-import/internal/importer"
	"finbook/csv-import/internal/importerror"
	"finbook/csv-import/internal/logging"
	"finbook/csv-import/internal/store"
)

// Container holds the shared application dependencies. It is immutable
// after creation; commands access dependencies through getters only.
type Container struct {
	logger     logging.Logger
	config     *config.Config
	store      store.RecordStore
	classifier classifier.Classifier
}

// NewContainer connects to the record store, ensures its schema, and
// builds the classifier for the configured provider. A missing API key
// is not an error: the classifier stays nil and categorization runs
// rules-only.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	logger := logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)

	if cfg.Database.URL == "" {
		return nil, &importerror.ValidationError{
			Field: "database.url",
			Msg:   "not set (export DATABASE_URL or set database.url)",
		}
	}

	recordStore, err := store.NewPostgresStore(ctx, cfg.Database.URL, cfg.Database.MaxConns, logger)
	if err != nil {
		return nil, err
	}
	if err := recordStore.Setup(ctx); err != nil {
		recordStore.Close()
		return nil, err
	}

	cls, err := buildClassifier(ctx, cfg, logger)
	if err != nil {
		recordStore.Close()
		return nil, err
	}

	logger.Info("container initialized",
		logging.Field{Key: logging.FieldProvider, Value: providerLabel(cls)})

	return &Container{
		logger:     logger,
		config:     cfg,
		store:      recordStore,
		classifier: cls,
	}, nil
}

func buildClassifier(ctx context.Context, cfg *config.Config, logger logging.Logger) (classifier.Classifier, error) {
	key := cfg.APIKeyForProvider()
	if key == "" {
		logger.Info("AI categorization disabled, no API key configured",
			logging.Field{Key: logging.FieldProvider, Value: cfg.AI.Provider})
		return nil, nil
	}

	switch cfg.AI.Provider {
	case "gemini":
		g, err := classifier.NewGeminiClassifier(ctx, key, cfg.AI.Model, cfg.AI.Temperature, cfg.AI.MaxTokens, logger)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return classifier.NewOpenAIClassifier(key, cfg.AI.Model, cfg.AI.Temperature, cfg.AI.MaxTokens, logger), nil
	}
}

func providerLabel(cls classifier.Classifier) string {
	if cls == nil {
		return "none"
	}
	return cls.Name()
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetStore returns the record store.
func (c *Container) GetStore() store.RecordStore {
	return c.store
}

// GetClassifier returns the configured classifier, or nil when AI
// categorization is disabled.
func (c *Container) GetClassifier() classifier.Classifier {
	return c.classifier
}

// GetImporter returns a ready import pipeline.
func (c *Container) GetImporter() *importer.Importer {
	return importer.New(c.store, c.logger)
}

// GetCategorizeRunner returns a categorization pass wired to the
// configured classifier.
func (c *Container) GetCategorizeRunner() *categorize.Runner {
	return categorize.NewRunner(c.store, c.classifier, c.logger)
}

// Close releases the store pool and any classifier connection.
func (c *Container) Close() error {
	var firstErr error
	if closer, ok := c.classifier.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			firstErr = err
		}
	}
	c.store.Close()
	c.logger.Debug("container closed")
	return firstErr
}
