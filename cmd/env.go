package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/drillz/internal/config"
	"github.com/abhisek/drillz/internal/economy"
	"github.com/abhisek/drillz/internal/engine"
	"github.com/abhisek/drillz/internal/leaderboard"
	"github.com/abhisek/drillz/internal/logger"
	"github.com/abhisek/drillz/internal/store"
)

// env is what every command that touches the database needs.
type env struct {
	cfg   *config.Config
	log   *zap.Logger
	store *store.Store
}

// setup loads the configuration, builds the logger and opens the store.
// Console mirroring is off for the terminal UI.
func setup(cmd *cobra.Command, console bool) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New(logger.Options{Level: cfg.LogLevel, Path: cfg.LogPath, Console: console})

	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	log.Debug("store opened", zap.String("path", dbPath))
	return &env{cfg: cfg, log: log, store: st}, nil
}

func (e *env) Close() {
	_ = e.store.Close()
	_ = e.log.Sync()
}

func (e *env) engine(ranker leaderboard.Ranker) *engine.Service {
	return engine.New(engine.Options{
		Store:    e.store,
		Rules:    economy.NewRules(e.cfg.Economy),
		Logger:   e.log,
		Ranker:   ranker,
		Location: e.cfg.Location(),
	})
}
