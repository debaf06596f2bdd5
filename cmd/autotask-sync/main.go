// Command autotask-sync mirrors PSA records from the Autotask REST API
// into a local Postgres schema.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kerkhofftech/autotask-sync/internal/api"
	"github.com/kerkhofftech/autotask-sync/internal/config"
	"github.com/kerkhofftech/autotask-sync/internal/logging"
	"github.com/kerkhofftech/autotask-sync/internal/rest"
	"github.com/kerkhofftech/autotask-sync/internal/storage"
	"github.com/kerkhofftech/autotask-sync/internal/worker"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "autotask-sync",
		Short:         "Mirror PSA records into a local Postgres schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(syncCommand())
	root.AddCommand(serveCommand())
	root.AddCommand(migrateCommand())
	root.AddCommand(zoneCommand())
	return root
}

// setup loads configuration, configures logging and opens the database.
func setup() (*config.Config, *storage.PostgresDB, context.Context, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}

	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	ctx := logging.WithLogger(context.Background(), logger)

	db, err := storage.NewPostgresDB(&cfg.Postgres)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, db, ctx, nil
}

func syncCommand() *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "sync [entity...]",
		Short: "Sync entities from the remote system (all when none named)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, ctx, err := setup()
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			client := rest.NewClient(cfg.Autotask, cfg.Retry, nil)
			orch, err := worker.NewOrchestrator(client, db, cfg.Sync)
			if err != nil {
				return err
			}

			report, runErr := orch.Run(ctx, args, full)
			for _, entry := range report.Entries {
				if entry.Err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: failed: %v\n", entry.Entity, entry.Err)
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), entry.Result)
			}
			return runErr
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "full sync: fetch everything and prune stale rows")
	return cmd
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook callback server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, db, ctx, err := setup()
			if err != nil {
				return err
			}
			defer db.Close()

			client := rest.NewClient(cfg.Autotask, cfg.Retry, nil)
			orch, err := worker.NewOrchestrator(client, db, cfg.Sync)
			if err != nil {
				return err
			}

			server := api.NewServer(cfg.Server, orch, *logging.FromContext(ctx))

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() { errCh <- server.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				return server.Shutdown(context.Background())
			}
		},
	}
}

func migrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate {up|down|version}",
		Short: "Manage the database schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

			url := cfg.Postgres.URL()
			switch args[0] {
			case "up":
				return storage.RunMigrations(url, cfg.Sync.MigrationsPath)
			case "down":
				return storage.RollbackMigrations(url, cfg.Sync.MigrationsPath)
			case "version":
				version, dirty, err := storage.MigrationVersion(url, cfg.Sync.MigrationsPath)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%v\n", version, dirty)
				return nil
			default:
				return fmt.Errorf("unknown migrate action %q", args[0])
			}
		},
	}
	return cmd
}

func zoneCommand() *cobra.Command {
	var invalidate bool

	cmd := &cobra.Command{
		Use:   "zone",
		Short: "Resolve and print the account's API zone",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
			ctx := logging.WithLogger(cmd.Context(), logger)

			if invalidate {
				rest.DefaultZoneCache.Invalidate()
			}

			client := rest.NewClient(cfg.Autotask, cfg.Retry, nil)
			// Any metadata call forces zone resolution.
			if _, err := client.EntityFields(ctx, "Tickets"); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), rest.DefaultZoneCache.Get())
			return nil
		},
	}

	cmd.Flags().BoolVar(&invalidate, "invalidate", false, "drop the cached zone before resolving")
	return cmd
}
