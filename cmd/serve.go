package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/drillz/internal/httpapi"
	"github.com/abhisek/drillz/internal/leaderboard"
	"github.com/abhisek/drillz/internal/maintenance"
	"github.com/abhisek/drillz/internal/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the maintenance jobs",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides DRILLZ_HTTP_ADDR)")
	serveCmd.Flags().Duration("token-ttl", 24*time.Hour, "Lifetime of tokens minted by the server")
}

func runServe(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd, true)
	if err != nil {
		return err
	}
	defer e.Close()
	cfg, log := e.cfg, e.log

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing := observability.InitTracing(ctx, log, observability.Config{
		Enabled:     cfg.OTelEnabled,
		Endpoint:    cfg.OTelEndpoint,
		ServiceName: "drillz",
		Version:     version,
		Insecure:    cfg.OTelInsecure,
	})
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	var ranker leaderboard.Ranker
	if cfg.RedisAddr != "" {
		rdb, err := leaderboard.Dial(ctx, cfg.RedisAddr)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()
		ranker = leaderboard.NewRedisRanker(rdb, "drillz")
		log.Info("redis leaderboard enabled", zap.String("addr", cfg.RedisAddr))
	}

	sched := maintenance.NewScheduler(e.store.ProgressRepo(), e.store.AttemptRepo(), maintenance.Config{
		StreakSweep: cfg.StreakSweepCron,
		AttemptTTL:  cfg.AttemptTTL,
		Location:    cfg.Location(),
	}, log)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("start maintenance: %w", err)
	}
	defer sched.Stop()

	if cfg.JWTSecret == "" {
		return fmt.Errorf("DRILLZ_JWT_SECRET is required to serve")
	}
	ttl, _ := cmd.Flags().GetDuration("token-ttl")
	tokens, err := httpapi.NewTokens(cfg.JWTSecret, ttl)
	if err != nil {
		return err
	}

	addr := cfg.HTTPAddr
	if a, _ := cmd.Flags().GetString("addr"); a != "" {
		addr = a
	}
	opts := httpapi.Options{
		Addr:        addr,
		Engine:      e.engine(ranker),
		Tokens:      tokens,
		Logger:      log,
		CORSOrigins: cfg.CORSOrigins,
	}
	if cfg.OTelEnabled {
		opts.ServiceName = "drillz"
	}
	return httpapi.New(opts).ListenAndServe(ctx)
}
