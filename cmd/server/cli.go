package main

import (
	"fmt"
	"log/slog"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/phrazzld/scry-decks/internal/config"
	"github.com/phrazzld/scry-decks/internal/platform/logger"
	"github.com/phrazzld/scry-decks/internal/platform/sqlstore"
)

// cliState is shared between the root command and its subcommands.
type cliState struct {
	configFile string
	envFile    string

	config *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	state := &cliState{}

	root := &cobra.Command{
		Use:   "scry-decks",
		Short: "Flashcard decks served over htmx",
		Long: `scry-decks serves a small web UI for managing flashcard decks and their
cards. Decks live in memory, in SQLite, or in PostgreSQL depending on
the store.backend setting.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return state.init()
		},
	}
	root.PersistentFlags().StringVar(&state.configFile, "config", "", "config file (yaml, json or toml)")
	root.PersistentFlags().StringVar(&state.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	root.AddCommand(newServeCmd(state), newMigrateCmd(state))
	return root
}

// init loads configuration and sets up structured logging.
func (s *cliState) init() error {
	cfg, err := config.LoadWithOptions(config.Options{
		ConfigFile: s.configFile,
		EnvFile:    s.envFile,
	})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	s.config = cfg
	s.logger = log
	return nil
}

func newServeCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := newApplication(ctx, state.config, state.logger)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			defer app.cleanup()

			return app.Run(ctx)
		},
	}
}

func newMigrateCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate <" + strings.Join(sqlstore.MigrationCommands, "|") + ">",
		Short:     "Manage the database schema of a SQL store backend",
		Args:      cobra.ExactArgs(1),
		ValidArgs: sqlstore.MigrationCommands,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(sqlstore.MigrationCommands, args[0]) {
				return fmt.Errorf("unknown migration command %q", args[0])
			}
			return runMigrations(cmd.Context(), state.config, args[0], state.logger)
		},
	}
}
