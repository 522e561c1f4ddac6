package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/maxviazov/member-crm/internal/cache"
	"github.com/maxviazov/member-crm/internal/events"
	"github.com/maxviazov/member-crm/internal/handler"
	"github.com/maxviazov/member-crm/internal/repository"
	"github.com/maxviazov/member-crm/internal/service"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg, db, closeDB, err := a.openStorage(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	if db != nil && a.cfg.Database.AutoMigrate {
		m, err := repository.NewMigrator(db, a.log)
		if err != nil {
			return err
		}
		if err := m.Up(ctx); err != nil {
			return err
		}
	}

	c, closeCache := cache.New(ctx, a.cfg, a.log)
	defer closeCache()
	pub, closeEvents := events.New(a.cfg, a.log)
	defer closeEvents()

	svcs := service.New(reg, service.Deps{
		Cache:  c,
		Events: pub,
		Paging: a.cfg.Pagination,
		Logger: a.log,
	}, a.cfg.Cache.TTL)

	gin.SetMode(a.cfg.App.GinMode)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.App.Port),
		Handler:           handler.NewRouter(reg.Pinger, svcs, a.log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	a.log.Info().
		Int("port", a.cfg.App.Port).
		Str("database", a.cfg.Database.Driver).
		Str("cache", a.cfg.Cache.Driver).
		Str("events", a.cfg.Events.Driver).
		Msg("🚀 Service started")

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.App.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	a.log.Info().Msg("✅ Service stopped")
	return nil
}
