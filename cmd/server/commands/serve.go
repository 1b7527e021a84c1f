package commands

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/storyhub-api/internal/api"
	"github.com/storyhub-api/internal/cache"
	"github.com/storyhub-api/internal/database"
	"github.com/storyhub-api/internal/metrics"
	"github.com/storyhub-api/internal/notify"
	"github.com/storyhub-api/internal/repository"
	"github.com/storyhub-api/internal/service"
)

const (
	poolStatsInterval = 15 * time.Second
	queuePerWorker    = 64
)

var skipMigrations bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server. Pending migrations are applied first unless
--skip-migrations is set. SIGINT/SIGTERM trigger a graceful shutdown that also
drains queued author notifications.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "Do not apply migrations on startup")
}

func runServe() error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	log.Info().Msg("Starting StoryHub API server...")

	// Initialize database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		return err
	}
	defer db.Close()

	if !skipMigrations {
		if err := db.RunMigrations(cfg.Database.MigrationsPath); err != nil {
			return err
		}
	}

	poolStats := metrics.NewPoolStatsCollector(db)
	poolStats.Start(poolStatsInterval)
	defer poolStats.Stop()

	// Redis is optional: without it every view is counted
	redisClient, err := cache.NewClient(&cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		log.Info().Str("addr", cfg.Redis.Addr).Msg("View de-duplication enabled")
	}
	views := cache.NewViewTracker(redisClient, cfg.Redis.ViewTTL)

	var sender notify.Sender = notify.NewLogSender(cfg.Notify.FrontendURL, log)
	if cfg.Notify.SMTPEnabled() {
		sender = notify.NewSMTPSender(&cfg.Notify)
	}
	dispatcher := notify.NewDispatcher(
		cfg.Notify.Workers,
		cfg.Notify.Workers*queuePerWorker,
		cfg.Notify.SendTimeout,
		metrics.NotificationRecorder{},
		log,
	)

	repos := repository.New(db)
	services := service.NewServices(repos, cfg, service.Deps{
		Notifications: dispatcher,
		Sender:        sender,
		Views:         views,
	}, log)

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(services, api.NewTokenManager(cfg.Auth.JWTSecret), map[string]api.HealthCheck{
		"database": db.HealthCheck,
		"redis":    views.Ping,
	}, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serveErr:
		_ = dispatcher.Shutdown(context.Background())
		return err
	}
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := dispatcher.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("Pending notifications were abandoned")
	}

	log.Info().Msg("Server exited gracefully")
	return nil
}
