package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"taskhub/internal/config"
	"taskhub/internal/logger"
	"taskhub/internal/repository"
	"taskhub/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// @title           Taskhub API
// @version         1.0
// @description     Collaborative task manager: tasks, projects, activity log and trash.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func setup() (*config.Config, zerolog.Logger) {
	cfg, note := config.Load()
	log := logger.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if note != "" {
		log.Warn().Msg(note)
	}
	return cfg, log
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "taskhub",
		Short:        "Collaborative task manager API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), true)
		},
	}

	var migrate bool
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), migrate)
		},
	}
	serveCmd.Flags().BoolVar(&migrate, "migrate", true, "apply schema migrations before serving")

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log := setup()
			db, err := server.OpenDB(cfg)
			if err != nil {
				return err
			}
			if err := repository.Migrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			log.Info().Msg("schema up to date")
			return nil
		},
	}

	root.AddCommand(serveCmd, migrateCmd)
	return root
}

func serve(ctx context.Context, migrate bool) error {
	cfg, log := setup()
	gin.SetMode(cfg.GinMode)

	db, err := server.OpenDB(cfg)
	if err != nil {
		return err
	}
	log.Info().Str("host", cfg.DBHost).Str("db", cfg.DBName).Msg("connected to database")

	if migrate {
		if err := repository.Migrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	if cfg.HardDeleteSecret == "" {
		log.Warn().Msg("HARD_DELETE_SECRET is empty, managers cannot permanently delete records")
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.New(cfg, db, log).Run(ctx)
}
