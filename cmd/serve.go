package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/killallgit/clipdeck-api/api"
	"github.com/killallgit/clipdeck-api/api/types"
	"github.com/killallgit/clipdeck-api/internal/database"
	"github.com/killallgit/clipdeck-api/internal/services/accounts"
	"github.com/killallgit/clipdeck-api/internal/services/automator"
	"github.com/killallgit/clipdeck-api/internal/services/cleanup"
	"github.com/killallgit/clipdeck-api/internal/services/clips"
	"github.com/killallgit/clipdeck-api/internal/services/jobs"
	"github.com/killallgit/clipdeck-api/internal/services/posts"
	"github.com/killallgit/clipdeck-api/internal/services/resolver"
	"github.com/killallgit/clipdeck-api/internal/services/scheduler"
	"github.com/killallgit/clipdeck-api/internal/services/storage"
	"github.com/killallgit/clipdeck-api/internal/services/videos"
	"github.com/killallgit/clipdeck-api/internal/services/workers"
	"github.com/killallgit/clipdeck-api/pkg/config"
	"github.com/killallgit/clipdeck-api/pkg/download"
	"github.com/killallgit/clipdeck-api/pkg/ffmpeg"
)

var (
	serverHost string
	serverPort int
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Start the ClipDeck API server with the configured settings.

The server exposes the REST API and runs the background worker pool,
the scheduled-post dispatcher, and the periodic cleanup sweep.

Example:
  clipdeck-api serve
  clipdeck-api serve --port 9090
  clipdeck-api serve --host 0.0.0.0 --port 8080`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	// Server flags
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host (overrides config)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (overrides config)")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Use config values if flags not provided
	if serverHost == "" {
		serverHost = cfg.Server.Host
	}
	if serverPort == 0 {
		serverPort = cfg.Server.Port
	}

	db, err := database.InitializeWithMigrations()
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	store, err := storage.NewLocalMediaStore(cfg.Storage.TempDir)
	if err != nil {
		return fmt.Errorf("failed to initialize media store: %w", err)
	}

	res := resolver.New(resolver.Options{
		MetadataTimeout: cfg.Download.MetadataTimeout,
		Download: download.DownloadOptions{
			MaxSize:       cfg.Download.MaxSize,
			Timeout:       cfg.Download.Timeout,
			UserAgent:     cfg.Download.UserAgent,
			ValidateVideo: true,
		},
	})

	transcoder := ffmpeg.New(cfg.Processing.FFmpegPath, cfg.Processing.FFprobePath, cfg.Processing.FFmpegTimeout)

	// Services
	jobService := jobs.NewService(jobs.NewRepository(db.DB))
	videoService := videos.NewService(db.DB, res, store)
	clipService := clips.NewService(db.DB, store, jobService)
	accountService := accounts.NewService(db.DB)
	postService := posts.NewService(db.DB, jobService)

	// Worker pool with one processor per job type
	sessionOptions := automator.Options{
		Headless:          cfg.Automation.Headless,
		ViewportWidth:     cfg.Automation.ViewportWidth,
		ViewportHeight:    cfg.Automation.ViewportHeight,
		UserAgent:         cfg.Automation.UserAgent,
		NavigationTimeout: cfg.Automation.NavigationTimeout,
		LoginTimeout:      cfg.Automation.LoginTimeout,
		UploadTimeout:     cfg.Automation.UploadTimeout,
		PublishTimeout:    cfg.Automation.PublishTimeout,
	}

	pool := workers.NewWorkerPool(jobService, cfg.Processing.Workers, cfg.Processing.PollInterval)
	pool.RegisterProcessor(workers.NewClipProcessor(jobService, db.DB, res, store, transcoder, cfg.Processing.JobTimeout))
	pool.RegisterProcessor(workers.NewPublishProcessor(jobService, db.DB, store, transcoder, automator.NewRegistry(), accountService, sessionOptions, cfg.Processing.JobTimeout))
	pool.RegisterProcessor(workers.NewCleanupProcessor(jobService, store, 7))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := pool.Start(ctx); err != nil {
		return fmt.Errorf("failed to start worker pool: %w", err)
	}
	defer pool.Stop()

	// Scheduled-post dispatcher
	if cfg.Scheduler.Enabled {
		dispatcher := scheduler.New(postService, cfg.Scheduler.DispatchSpec)
		if err := dispatcher.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer dispatcher.Stop()
	}

	// Periodic cleanup of stale transient files and old jobs
	cleanupService := cleanup.NewService(jobService, cfg.Storage.MaxTempAge, cfg.Storage.CleanupInterval)
	cleanupService.Start(ctx)
	defer cleanupService.Stop()

	// HTTP server
	server := api.NewServer(fmt.Sprintf("%s:%d", serverHost, serverPort))
	server.SetDependencies(&types.Dependencies{
		DB:             db,
		VideoService:   videoService,
		ClipService:    clipService,
		AccountService: accountService,
		PostService:    postService,
		JobService:     jobService,
		WorkerPool:     pool,
	})

	if err := server.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	// Channel to listen for interrupt signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Channel to receive server errors
	serverErr := make(chan error, 1)

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			serverErr <- fmt.Errorf("server error: %w", err)
		}
	}()

	fmt.Printf("Server is ready to handle requests at %s:%d\n", serverHost, serverPort)

	// Wait for interrupt signal or server error
	select {
	case <-stop:
		fmt.Println("\nShutting down server...")
	case err := <-serverErr:
		fmt.Fprintf(os.Stderr, "\n%v\n", err)
		fmt.Println("Shutting down server...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Server forced to shutdown: %v\n", err)
		return err
	}

	fmt.Println("Server gracefully stopped")
	return nil
}
