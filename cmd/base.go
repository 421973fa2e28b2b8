package cmd

import (
	"context"
	"fmt"

	"github.com/Rana718/fixturegen/internal/config"
	"github.com/Rana718/fixturegen/internal/database"
	"github.com/Rana718/fixturegen/internal/logging"
	"go.uber.org/zap"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	log, err := logging.New(cfg.Log.Level, cfg.Log.JSON)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return log, nil
}

// connect opens the configured database. The caller closes the adapter.
func connect(ctx context.Context, cfg *config.Config, log *zap.Logger) (database.Adapter, error) {
	dbURL, err := cfg.GetDatabaseURL()
	if err != nil {
		return nil, err
	}

	adapter, err := database.NewAdapter(cfg.Database.Provider)
	if err != nil {
		return nil, err
	}

	log.Debug("connecting",
		zap.String("provider", cfg.Database.Provider),
		zap.String("url", logging.SanitizeConnectionString(dbURL)))
	if err := adapter.Connect(ctx, dbURL); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %s", logging.SanitizeError(err))
	}
	return adapter, nil
}

// session bundles what every database command needs.
type session struct {
	cfg     *config.Config
	log     *zap.Logger
	adapter database.Adapter
}

func openSession(ctx context.Context) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	adapter, err := connect(ctx, cfg, log)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}
	return &session{cfg: cfg, log: log, adapter: adapter}, nil
}

func (s *session) Close() {
	_ = s.adapter.Close()
	_ = s.log.Sync()
}
