package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/CompoundForge/internal/bootstrap"
	"github.com/turtacn/CompoundForge/internal/domain/element"
	"github.com/turtacn/CompoundForge/internal/infrastructure/database/postgres"
	"github.com/turtacn/CompoundForge/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/CompoundForge/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/CompoundForge/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/CompoundForge/pkg/errors"
)

func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL element store schema",
	}
	cmd.AddCommand(newMigrateUpCmd(), newMigrateDownCmd(), newMigrateVersionCmd(), newMigrateSeedCmd())
	return cmd
}

func newMigrateUpCmd() *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations and seed the element table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(ctx context.Context, cc *CLIContext, conn *postgres.Connection, m *postgres.Migrator) error {
				if err := m.Up(); err != nil {
					return err
				}
				if seed {
					if err := seedElements(ctx, cmd, cc, conn); err != nil {
						return err
					}
				}
				return printVersion(cmd, m)
			})
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", true, "upsert the embedded element dataset after migrating")
	return cmd
}

func newMigrateDownCmd() *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps <= 0 {
				return errors.Newf(errors.ErrCodeBadRequest, "--steps must be greater than 0, got %d", steps)
			}
			return withMigrator(cmd, func(_ context.Context, _ *CLIContext, _ *postgres.Connection, m *postgres.Migrator) error {
				if err := m.Down(steps); err != nil {
					return err
				}
				return printVersion(cmd, m)
			})
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	return cmd
}

func newMigrateVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(_ context.Context, _ *CLIContext, _ *postgres.Connection, m *postgres.Migrator) error {
				return printVersion(cmd, m)
			})
		},
	}
}

func newMigrateSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Upsert the embedded element dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(ctx context.Context, cc *CLIContext, conn *postgres.Connection, _ *postgres.Migrator) error {
				return seedElements(ctx, cmd, cc, conn)
			})
		},
	}
}

// withMigrator opens the configured database for the duration of fn. Closing
// the migrator also closes the connection.
func withMigrator(cmd *cobra.Command, fn func(context.Context, *CLIContext, *postgres.Connection, *postgres.Migrator) error) error {
	cc, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	conn, err := bootstrap.OpenDatabase(cc.Config, cc.Logger)
	if err != nil {
		return err
	}
	m, err := postgres.NewMigrator(conn.DB(), cc.Logger.Named("migrate"))
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer func() {
		if cerr := m.Close(); cerr != nil {
			cc.Logger.Warn("failed to close migrator", logging.Err(cerr))
		}
	}()

	ctx, cancel := commandContext(cmd, cc)
	defer cancel()
	return fn(ctx, cc, conn, m)
}

func seedElements(ctx context.Context, cmd *cobra.Command, cc *CLIContext, conn *postgres.Connection) error {
	repo := repositories.NewElementRepository(conn.DB(), cc.Logger.Named("elements"), prom.NewNopAppMetrics())
	n, err := repo.Seed(ctx, element.Dataset())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d elements\n", n)
	return nil
}

func printVersion(cmd *cobra.Command, m *postgres.Migrator) error {
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	state := "clean"
	if dirty {
		state = "dirty"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (%s)\n", version, state)
	return nil
}
