package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/codearena/internal/api"
	"github.com/vytor/codearena/internal/challengeapi"
	"github.com/vytor/codearena/internal/config"
	"github.com/vytor/codearena/internal/db"
	"github.com/vytor/codearena/internal/jobs"
	"github.com/vytor/codearena/internal/logger"
	"github.com/vytor/codearena/internal/metrics"
	"github.com/vytor/codearena/internal/repository/sqlite"
	"github.com/vytor/codearena/internal/services"
	"github.com/vytor/codearena/internal/session"
	"github.com/vytor/codearena/internal/view"
	"github.com/vytor/codearena/internal/worker"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("CodeArena Portal Starting")
	log.Info("===========================================")

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("app_env=%s", cfg.AppEnv)
	log.Debug("api_base_url=%s", cfg.APIBaseURL)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("http_timeout=%v", cfg.HTTPTimeout)
	log.Debug("leaderboard_poll_interval=%v", cfg.LeaderboardPollInterval)
	log.Debug("result_display=%v", cfg.ResultDisplay)
	log.Debug("session_ttl=%v", cfg.SessionTTL)
	log.Debug("worker_count=%d", cfg.WorkerCount)
	log.Debug("queue_size=%d", cfg.QueueSize)

	// Open database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	log.Debug("loading templates")
	renderer, err := view.NewRenderer()
	if err != nil {
		log.Error("failed to load templates: %v", err)
		os.Exit(1)
	}

	m := metrics.New()
	sessions := session.NewStore(sqlite.NewSessionRepository(database.DB))
	client := challengeapi.New(cfg.APIBaseURL,
		challengeapi.WithTimeout(cfg.HTTPTimeout),
		challengeapi.WithMetrics(m),
	)

	// Initialize services
	challengeService := services.NewChallengeService(client, m)
	leaderboardService := services.NewLeaderboardService(client, m)

	srv := &api.Server{
		DB:            database,
		Sessions:      sessions,
		Participants:  services.NewParticipantService(sessions),
		Challenges:    challengeService,
		Submissions:   services.NewSubmissionService(client, sessions, m, cfg.ResultDisplay),
		Leaderboard:   leaderboardService,
		External:      services.NewExternalService(client, m),
		Portal:        services.NewPortalService(client, challengeService, leaderboardService),
		Renderer:      renderer,
		Metrics:       m,
		RateLimiter:   api.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		PollInterval:  cfg.LeaderboardPollInterval,
		SessionTTL:    cfg.SessionTTL,
		SecureCookies: !config.IsDevelopment(cfg.AppEnv),
	}

	// Background refreshes and the session sweep
	pool := worker.NewPool(cfg.WorkerCount, cfg.QueueSize, worker.WithMetrics(m))
	queue := jobs.NewWorkerQueue(pool, leaderboardService, sessions, cfg.SessionTTL)
	scheduler := jobs.NewScheduler(queue, sessions, cfg.LeaderboardPollInterval, cfg.SessionSweepInterval)

	ctx, cancel := context.WithCancel(logger.NewContext(context.Background(), log))
	pool.Start(ctx)
	go scheduler.Run(ctx)

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout(cfg.HTTPTimeout),
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s (challenge API %s)", cfg.Addr, cfg.APIBaseURL)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop the scheduler and workers
	log.Debug("stopping scheduler")
	cancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("stopping worker pool")
	pool.Stop()

	log.Info("===========================================")
	log.Info("CodeArena Portal Stopped")
	log.Info("===========================================")
}

// maxUpstreamCalls is the most upstream requests one portal request makes:
// a new session's first /leaderboard runs health, challenges and leaderboard
// in Initialize, then the handler's own leaderboard load.
const maxUpstreamCalls = 4

// writeTimeout bounds a response by the slowest chain of upstream calls plus
// headroom for rendering.
func writeTimeout(upstream time.Duration) time.Duration {
	return upstream*maxUpstreamCalls + 5*time.Second
}
