package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/celerix-dev/imperivm/internal/api"
	"github.com/celerix-dev/imperivm/internal/auth"
	"github.com/celerix-dev/imperivm/internal/config"
	"github.com/celerix-dev/imperivm/internal/notify"
	"github.com/celerix-dev/imperivm/internal/oracle"
	"github.com/celerix-dev/imperivm/internal/syndicate"
	"github.com/celerix-dev/imperivm/pkg/sdk"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "imperivmd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)
	logger.Info("starting imperivm daemon", "driver", cfg.Driver, "path", cfg.StorePath())

	// 1. Storage
	store, err := sdk.Open(cfg.Driver, cfg.StorePath(), logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("close store", "error", err)
		}
		logger.Info("persistence complete")
	}()

	applied, err := syndicate.Migrate(store, cfg.Namespace)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if len(applied) > 0 {
		logger.Info("schema migrated", "steps", applied)
	}

	// 2. Outbound gateways
	orc, err := oracle.New(oracle.Config{
		BaseURL: cfg.OracleBaseURL,
		APIKey:  cfg.OracleAPIKey,
		Model:   cfg.OracleModel,
		Timeout: cfg.OracleTimeout,
	})
	if err != nil {
		return fmt.Errorf("configure oracle: %w", err)
	}
	notifier := notify.New(cfg.WebhookURL, cfg.WebhookTimeout)

	// 3. Controller
	ctl := syndicate.New(syndicate.Options{
		Store:     store,
		Namespace: cfg.Namespace,
		Notifier:  notifier,
		Oracle:    orc,
		Logger:    logger,
	})
	ctl.Load()
	st := ctl.Stats()
	logger.Info("state loaded", "members", st.Members, "pending", st.PendingCandidates)

	// 4. Auth
	provider, err := auth.LoadProvider(cfg.CredentialsFile)
	if err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}
	if cfg.SessionSecret == "" {
		logger.Warn("IMPERIVM_SESSION_SECRET not set; sessions will not survive a restart")
	}
	sessions, err := auth.NewSessions(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		return err
	}

	// 5. HTTP API
	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(&api.Handler{
		Controller: ctl,
		Auth:       provider,
		Sessions:   sessions,
		LoginDelay: cfg.LoginDelay,
		CORSOrigin: cfg.CORSOrigin,
		Logger:     logger,
	})
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http api listening", "addr", cfg.HTTPAddr)
		serveErr <- srv.ListenAndServe()
	}()

	// 6. Graceful shutdown
	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received, finalizing disk writes")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
