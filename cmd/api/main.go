package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/BruksfildServices01/vet-scheduler/internal/config"
	dbpkg "github.com/BruksfildServices01/vet-scheduler/internal/db"
	"github.com/BruksfildServices01/vet-scheduler/internal/logging"
	"github.com/BruksfildServices01/vet-scheduler/internal/routes"
	"github.com/BruksfildServices01/vet-scheduler/internal/validators"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "vet-scheduler",
		Short: "Veterinary telehealth scheduling API",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		logging.Setup("info", "")
		return nil, err
	}
	logging.Setup(cfg.LogLevel, cfg.Env)
	return cfg, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				log.Error().Err(err).Msg("failed to load config")
				return err
			}
			return runServer(cmd.Context(), cfg)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				log.Error().Err(err).Msg("failed to load config")
				return err
			}
			if cfg.Store != config.StorePostgres {
				return errors.New("migrate requires STORE=postgres")
			}

			db, err := dbpkg.NewDB(cfg)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			if err := dbpkg.Migrate(db); err != nil {
				log.Error().Err(err).Msg("migration failed")
				return err
			}
			log.Info().Msg("migrations applied")
			return nil
		},
	}
}

func runServer(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	validators.Register()

	deps, err := routes.Build(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialise dependencies")
		return err
	}
	defer deps.Close()

	r := gin.New()
	routes.RegisterRoutes(r, deps)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Str("store", cfg.Store).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}
