package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/maxviazov/member-crm/internal/repository"
)

func newMigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withMigrator(cmd.Context(), func(ctx context.Context, m *repository.Migrator) error {
					return m.Up(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withMigrator(cmd.Context(), func(ctx context.Context, m *repository.Migrator) error {
					return m.Down(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "List migrations and whether they are applied",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withMigrator(cmd.Context(), func(ctx context.Context, m *repository.Migrator) error {
					rows, err := m.Status(ctx)
					if err != nil {
						return err
					}
					w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
					fmt.Fprintln(w, "VERSION\tSOURCE\tSTATE")
					for _, r := range rows {
						state := "pending"
						if r.Applied {
							state = "applied"
						}
						fmt.Fprintf(w, "%d\t%s\t%s\n", r.Version, r.Source, state)
					}
					return w.Flush()
				})
			},
		},
	)
	return cmd
}

func (a *app) withMigrator(ctx context.Context, fn func(context.Context, *repository.Migrator) error) error {
	_, db, closeDB, err := a.openStorage(ctx)
	if err != nil {
		return err
	}
	defer closeDB()
	if db == nil {
		return errors.New("the memory driver has no schema to migrate")
	}
	m, err := repository.NewMigrator(db, a.log)
	if err != nil {
		return err
	}
	return fn(ctx, m)
}
