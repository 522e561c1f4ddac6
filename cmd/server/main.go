package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/maxviazov/member-crm/internal/config"
	"github.com/maxviazov/member-crm/internal/logger"
	"github.com/maxviazov/member-crm/internal/repository"
	"github.com/maxviazov/member-crm/internal/repository/memstore"
	"github.com/maxviazov/member-crm/internal/repository/sqlstore"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

// app holds what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	cfg        *config.Config
	log        zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "member-crm",
		Short:         "Membership CRM API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to config.yaml (env APP_* overrides apply either way)")
	root.AddCommand(newServeCmd(a), newMigrateCmd(a))
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("config loading failed: %w", err)
	}
	log, err := logger.New(&cfg.Logger)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}
	a.cfg, a.log = cfg, log
	return nil
}

// openStorage returns the registry for the configured driver plus a func releasing it.
// db is nil for the memory driver.
func (a *app) openStorage(ctx context.Context) (*repository.Registry, *repository.Database, func(), error) {
	if a.cfg.Database.Driver == config.DriverMemory {
		a.log.Warn().Msg("using in-memory storage, data is lost on exit")
		return memstore.NewRegistry(), nil, func() {}, nil
	}
	db, err := repository.Open(ctx, a.cfg, &a.log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("database connection failed: %w", err)
	}
	closeDB := func() {
		if err := db.Close(); err != nil {
			a.log.Error().Err(err).Msg("database close failed")
		}
	}
	return sqlstore.NewRegistry(db), db, closeDB, nil
}
