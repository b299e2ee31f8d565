package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/twstrategy/internal/api"
	"github.com/wonny/twstrategy/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `Start the JSON API server together with the snapshot scheduler.

This command:
- builds the security directory and today's institutional flow
- serves single-stock views, search and the leaderboard
- refreshes the snapshot on a cron schedule (REFRESH_SCHEDULE)

Endpoints:
  GET  /health                - Health check
  GET  /api/stocks/search?q=  - Search by code or name
  GET  /api/stocks/{query}    - Strategy view of one stock
  GET  /api/ranking           - Chip-only leaderboard
  POST /api/ranking/rescan    - Refetch flow and rebuild leaderboard
  GET  /api/ranking/stream    - Websocket push of each leaderboard
  GET  /api/scheduler/jobs    - Scheduled job statistics

Example:
  go run ./cmd/quant api
  go run ./cmd/quant api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort     string
	noScheduler bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default PORT)")
	apiCmd.Flags().BoolVar(&noScheduler, "no-scheduler", false, "disable periodic snapshot refresh")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== twstrategy API Server ===")

	// 1. Load config + logger
	cfg, log, err := loadRuntime()
	if err != nil {
		return err
	}
	if apiPort != "" {
		cfg.Port = apiPort
	}

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 2. Wire components
	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}

	// 3. Scheduler
	sched, err := newAppScheduler(a, cfg, log)
	if err != nil {
		return err
	}

	// 4. Handlers + router
	router := api.NewRouter(api.Handlers{
		Stock:   handlers.NewStockHandler(a.orchestrator, log),
		Ranking: handlers.NewRankingHandler(a.orchestrator, log),
		Stream:  handlers.NewStreamHandler(a.orchestrator, log),
		Jobs:    handlers.NewSchedulerHandler(sched),
	}, log)

	// 5. Server
	server := api.New(cfg, log, router)

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	// 6. Warm the snapshot, then schedule refreshes
	if !noScheduler {
		if err := sched.RunJob("snapshot_refresh"); err != nil {
			log.WithError(err).Warn("Initial refresh not started")
		}
		sched.Start()
	}

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	PrintList([]string{
		"GET  /health",
		"GET  /api/stocks/search?q=",
		"GET  /api/stocks/{query}",
		"GET  /api/ranking",
		"POST /api/ranking/rescan",
		"GET  /api/ranking/stream",
		"GET  /api/scheduler/jobs",
	})
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	if !noScheduler {
		sched.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
