// Package main is the entry point for the Quill blog server.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quillhq/quill/internal/config"
	"github.com/quillhq/quill/internal/handler"
	"github.com/quillhq/quill/internal/metrics"
	"github.com/quillhq/quill/internal/repository"
	"github.com/quillhq/quill/internal/repository/memory"
	"github.com/quillhq/quill/internal/repository/postgres"
	"github.com/quillhq/quill/internal/repository/redis"
	"github.com/quillhq/quill/internal/repository/sqlite"
	"github.com/quillhq/quill/internal/service"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(*configPath)
	logger := setupLogger(cfg.Logging)

	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Msg("starting Quill server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, health, err := setupRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to set up storage")
	}
	defer func() {
		if err := health.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close database")
		}
	}()

	// Services
	accounts := service.NewAccountService(repos.Users, logger)
	sessions := service.NewSessionService(repos.Users, repos.Sessions, accounts, cfg.Session.Lifetime, logger)
	posts := service.NewPostService(repos.Posts, repos.Comments, logger)
	comments := service.NewCommentService(repos.Comments, repos.Posts, logger)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	blog, err := handler.NewBlogHandler(handler.BlogConfig{
		AccountService:  accounts,
		SessionService:  sessions,
		PostService:     posts,
		CommentService:  comments,
		Metrics:         m,
		CookieName:      cfg.Session.CookieName,
		CookieSecure:    cfg.Session.CookieSecure,
		SessionLifetime: cfg.Session.Lifetime,
		Logger:          logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to set up handlers")
	}

	router := handler.NewRouter(handler.RouterConfig{
		BlogHandler:    blog,
		SessionService: sessions,
		Metrics:        m,
		MetricsPath:    cfg.Metrics.Path,
		Health:         health,
		CookieName:     cfg.Session.CookieName,
		Logger:         logger,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	case <-ctx.Done():
		logger.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown failed")
		}
	}
}

// setupRepositories opens the configured database backend, runs pending
// migrations, and builds the repositories plus the session store.
func setupRepositories(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (repository.Repositories, repository.DatabaseHealth, error) {
	var repos repository.Repositories
	var health repository.DatabaseHealth

	switch cfg.Database.Driver {
	case "sqlite":
		db, err := sqlite.NewDB(ctx, sqliteConfig(cfg.Database), logger)
		if err != nil {
			return repos, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			return repos, nil, err
		}
		repos = repository.Repositories{
			Users:    sqlite.NewUserRepository(db),
			Posts:    sqlite.NewPostRepository(db),
			Comments: sqlite.NewCommentRepository(db),
			Sessions: sqlite.NewSessionStore(db),
		}
		health = db

	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return repos, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			return repos, nil, err
		}
		repos = repository.Repositories{
			Users:    postgres.NewUserRepository(db),
			Posts:    postgres.NewPostRepository(db),
			Comments: postgres.NewCommentRepository(db),
			Sessions: postgres.NewSessionStore(db),
		}
		health = db

	default:
		return repos, nil, errors.New("unsupported database driver: " + cfg.Database.Driver)
	}

	switch cfg.Session.Store {
	case "database":
		// Already wired above.
	case "redis":
		store, err := redis.NewSessionStore(ctx, redis.Config{
			Addr:        cfg.Redis.Addr(),
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			PoolSize:    cfg.Redis.PoolSize,
			DialTimeout: cfg.Redis.DialTimeout,
		}, logger)
		if err != nil {
			return repos, nil, err
		}
		repos.Sessions = store
	case "memory":
		repos.Sessions = memory.NewSessionStore()
	default:
		return repos, nil, errors.New("unsupported session store: " + cfg.Session.Store)
	}

	return repos, health, nil
}

func sqliteConfig(cfg config.DatabaseConfig) sqlite.Config {
	sc := sqlite.DefaultConfig(cfg.Path)
	if cfg.JournalMode != "" {
		sc.JournalMode = cfg.JournalMode
	}
	if cfg.BusyTimeout > 0 {
		sc.BusyTimeout = cfg.BusyTimeout
	}
	if cfg.CacheSize != 0 {
		sc.CacheSize = cfg.CacheSize
	}
	if cfg.SynchronousMode != "" {
		sc.SynchronousMode = cfg.SynchronousMode
	}
	return sc
}

func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}

	logger := log.Logger
	if cfg.Format == "console" {
		logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	return logger.Level(level)
}
