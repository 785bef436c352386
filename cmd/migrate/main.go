package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/urfave/cli/v2"

	"github.com/ipelms/ipelms/internal/app/migrations"
	"github.com/ipelms/ipelms/internal/bootstrap"
	"github.com/ipelms/ipelms/internal/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:  "migrate",
		Usage: "Manage the database schema",
		Commands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Show each known migration and whether it has been applied",
				Action: withMigrator(runStatus),
			},
			{
				Name:   "upgrade",
				Usage:  "Apply all pending migrations in order",
				Action: withMigrator(runUpgrade),
			},
			{
				Name:   "history",
				Usage:  "Show the applied-migration ledger",
				Action: withMigrator(runHistory),
			},
			{
				Name:  "baseline",
				Usage: "Mark migrations as applied without running them, for pre-existing schemas",
				Flags: []cli.Flag{
					&cli.Int64Flag{
						Name:     "to",
						Usage:    "highest migration version to mark as applied",
						Required: true,
					},
				},
				Action: withMigrator(runBaseline),
			},
			{
				Name:   "verify",
				Usage:  "Check ledger integrity against the migration files",
				Action: withMigrator(runVerify),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// withMigrator wraps a command action with config loading and a pool scoped
// to the single invocation.
func withMigrator(action func(*cli.Context, *migrations.Migrator) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, _, err := bootstrap.LoadConfigAndSetupLogger()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(c.Context, 10*time.Second)
		defer cancel()

		pool, err := pgxpool.New(ctx, cfg.GetPostgresConnectionString())
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			return fmt.Errorf("failed to ping database: %w", err)
		}

		return action(c, migrations.NewMigrator(pool, cfg.Database.MigrationsDir))
	}
}

func runStatus(c *cli.Context, m *migrations.Migrator) error {
	statuses, err := m.Status(c.Context)
	if err != nil {
		return err
	}

	for _, st := range statuses {
		state := "pending"
		if st.Applied {
			state = "applied " + st.AppliedAt.Format(time.RFC3339)
		}
		fmt.Printf("%4d  %-40s  %s\n", st.Version, st.Name, state)
	}
	return nil
}

func runUpgrade(c *cli.Context, m *migrations.Migrator) error {
	applied, err := m.Upgrade(c.Context)
	if err != nil {
		return err
	}

	if len(applied) == 0 {
		fmt.Println("Schema already up to date.")
		return nil
	}
	for _, version := range applied {
		fmt.Printf("Applied %d\n", version)
	}
	logger.Info().Int("count", len(applied)).Msg("Upgrade complete")
	return nil
}

func runHistory(c *cli.Context, m *migrations.Migrator) error {
	records, err := m.History(c.Context)
	if err != nil {
		return err
	}

	for _, rec := range records {
		fmt.Printf("%4d  %-40s  %s  %s\n", rec.Version, rec.Name, rec.AppliedAt.Format(time.RFC3339), rec.Checksum)
	}
	return nil
}

func runBaseline(c *cli.Context, m *migrations.Migrator) error {
	marked, err := m.Baseline(c.Context, c.Int64("to"))
	if err != nil {
		return err
	}

	if len(marked) == 0 {
		fmt.Println("Nothing to baseline.")
		return nil
	}
	for _, version := range marked {
		fmt.Printf("Marked %d as applied\n", version)
	}
	return nil
}

func runVerify(c *cli.Context, m *migrations.Migrator) error {
	if err := m.Verify(c.Context); err != nil {
		return err
	}
	fmt.Println("Ledger verified.")
	return nil
}
