package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"daily-challenge-service/internal/app"
	"daily-challenge-service/internal/challenge"
	"daily-challenge-service/internal/config"
	"daily-challenge-service/internal/infra/memory"
	pgstore "daily-challenge-service/internal/infra/postgres"
	redisstore "daily-challenge-service/internal/infra/redis"
	"daily-challenge-service/internal/logging"
	"daily-challenge-service/internal/observability"
	transport "daily-challenge-service/internal/transport/http"
)

var nowFunc = time.Now

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the daily challenge server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func setupLogging(cfg config.Config) *slog.Logger {
	return logging.Setup("daily-challenge-service", cfg.Log.Env, cfg.Log.Level)
}

// deps holds the wired service and the connections it owns.
type deps struct {
	service *app.DailyChallengeService
	metrics *observability.Metrics
	pool    *pgxpool.Pool
	redis   *redis.Client
}

func (d *deps) Close() {
	if d.pool != nil {
		d.pool.Close()
	}
	if d.redis != nil {
		_ = d.redis.Close()
	}
}

// buildDeps picks Postgres/Redis implementations when configured and falls
// back to in-memory ones otherwise.
func buildDeps(ctx context.Context, cfg config.Config) (*deps, error) {
	d := &deps{metrics: observability.NewMetrics()}

	zone, err := challenge.LoadZone(cfg.Challenge.Timezone)
	if err != nil {
		slog.Warn("unknown reset time zone, using UTC", slog.String("timezone", cfg.Challenge.Timezone))
	}

	if cfg.Redis.Addr != "" {
		d.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var submissions app.SubmissionRepository
	if cfg.Postgres.URL != "" {
		d.pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		submissions = pgstore.NewSubmissionRepository(d.pool)
	} else {
		slog.Warn("postgres url not configured, submissions are kept in memory")
		submissions = memory.NewSubmissionStore()
	}

	cacheTTL := config.TTLDuration(cfg.Challenge.CacheTTL, 2*time.Hour)
	var (
		problems app.ProblemSource
		boards   app.BoardRepository
	)
	if d.redis != nil {
		problems = redisstore.NewProblemCache(d.redis, app.Generator{}, cacheTTL)
		boards = redisstore.NewBoardStore(d.redis, config.TTLDuration(cfg.Redis.TTL, 30*time.Minute))
	} else {
		problems = memory.NewProblemCache(app.Generator{}, cacheTTL)
		boards = memory.NewBoardStore()
	}

	d.service = app.NewDailyChallengeService(submissions,
		app.WithProblemSource(problems),
		app.WithBoards(boards),
		app.WithRecorder(d.metrics),
		app.WithZone(zone),
		app.WithLiveTop(cfg.Leaderboard.LiveTop),
	)
	return d, nil
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := setupLogging(cfg)

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	d, err := buildDeps(ctx, cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	if cfg.Auth.HMACSecret == "" {
		logger.Warn("auth.hmac_secret is empty; authenticated endpoints will reject every request")
	}
	auth := transport.NewAuthenticator(transport.AuthConfig{
		HMACSecret:  cfg.Auth.HMACSecret,
		Issuer:      cfg.Auth.Issuer,
		AdminEmails: cfg.Auth.AdminEmails,
	}, logger)

	server := &http.Server{
		Addr: ":" + finalPort,
		Handler: transport.NewRouter(transport.RouterConfig{
			Service:       d.service,
			Authenticator: auth,
			Metrics:       d.metrics.Handler(),
			DefaultLimit:  cfg.Leaderboard.DefaultLimit,
			Logger:        logger,
		}),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("starting daily challenge service", slog.String("port", finalPort), slog.String("today", d.service.Today()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to start server", slog.String("error", err.Error()))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
