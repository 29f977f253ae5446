package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"account_service/internal/auth"
	"account_service/internal/config"
	"account_service/internal/handlers"
	"account_service/internal/logger"
	"account_service/internal/metrics"
	"account_service/internal/server"
	"account_service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return runServe(cmd.Context(), cfg)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	// fatal misconfiguration surfaces before anything is opened
	tokens, err := auth.NewTokenIssuer(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}
	hasher, err := auth.NewHasher(cfg.Auth.Hasher)
	if err != nil {
		return err
	}

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	defer closeWithLog(log, "store", st.close)

	c, err := openCache(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open %s cache: %w", cfg.Cache.Driver, err)
	}
	defer closeWithLog(log, "cache", c.Close)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	services := service.NewService(service.Deps{
		Repos:    st.repos,
		Cache:    c,
		CacheTTL: cfg.Cache.TTL,
		Hasher:   hasher,
		Tokens:   tokens,
		Metrics:  m,
		Log:      log,
	})
	apiHandler := handlers.NewHandler(services, log, handlers.Options{
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		Metrics:        m,
		Gatherer:       reg,
	})

	srv := server.New(server.Timeouts{Read: cfg.HTTP.ReadTimeout, Write: cfg.HTTP.WriteTimeout})
	errCh := make(chan error, 1)
	go func() {
		log.Infow("http_server_started", "port", cfg.Port, "env", cfg.Env, "store", cfg.Store.Driver, "cache", cfg.Cache.Driver)
		errCh <- srv.Run(cfg.Port, apiHandler.InitRoutes())
	}()

	return waitForShutdown(ctx, srv, cfg, log, errCh)
}

// waitForShutdown blocks until a signal, context cancellation or server failure,
// then drains in-flight requests.
func waitForShutdown(ctx context.Context, srv *server.Server, cfg *config.Config, log *logger.Logger, errCh <-chan error) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Infow("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return <-errCh
}

func closeWithLog(log *logger.Logger, what string, closeFn func() error) {
	if err := closeFn(); err != nil {
		log.Errorw("close_failed", "target", what, "err", err)
	}
}
