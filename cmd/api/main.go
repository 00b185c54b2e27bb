package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hamed0406/healthchecker/internal/auth"
	"github.com/hamed0406/healthchecker/internal/config"
	"github.com/hamed0406/healthchecker/internal/httpapi"
	"github.com/hamed0406/healthchecker/internal/logging"
	"github.com/hamed0406/healthchecker/internal/metrics"
	"github.com/hamed0406/healthchecker/internal/probe"
	"github.com/hamed0406/healthchecker/internal/repo"
	"github.com/hamed0406/healthchecker/internal/repo/memory"
	pg "github.com/hamed0406/healthchecker/internal/repo/postgres"
	"github.com/hamed0406/healthchecker/internal/scheduler"
)

const shutdownTimeout = 10 * time.Second

type stores struct {
	services repo.ServiceStore
	users    repo.UserStore
	pinger   repo.Pinger
	close    func() error
}

func openStores(ctx context.Context, cfg config.Config, logger *zap.Logger) (stores, error) {
	if cfg.DatabaseURL == "" {
		logger.Info("store_selected", zap.String("kind", "memory"))
		m := memory.New()
		return stores{services: m, users: m, pinger: m, close: func() error { return nil }}, nil
	}
	db, err := pg.New(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return stores{}, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return stores{}, err
	}
	logger.Info("store_selected", zap.String("kind", "postgres"))
	return stores{services: db, users: db, pinger: db, close: func() error { db.Close(); return nil }}, nil
}

func openSessions(ctx context.Context, cfg config.Config, logger *zap.Logger) (auth.SessionStore, func() error, error) {
	if cfg.RedisURL == "" {
		logger.Info("sessions_selected", zap.String("kind", "memory"))
		return auth.NewMemorySessions(), func() error { return nil }, nil
	}
	rs, err := auth.NewRedisSessions(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("sessions_selected", zap.String("kind", "redis"))
	return rs, rs.Close, nil
}

func run() (err error) {
	cfg, err := config.Load(config.DefaultFile)
	if err != nil {
		return err
	}
	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Error("store_open_failed", zap.Error(err))
		return err
	}
	sessions, closeSessions, err := openSessions(ctx, cfg, logger)
	if err != nil {
		logger.Error("sessions_open_failed", zap.Error(err))
		return multierr.Append(err, st.close())
	}
	defer func() { err = multierr.Combine(err, closeSessions(), st.close()) }()

	hash, err := auth.HashPassword(cfg.DefaultPassword, 0)
	if err != nil {
		return err
	}
	seeded, err := repo.Seed(ctx, st.users, st.services, cfg.DefaultUsername, hash)
	if err != nil {
		logger.Error("seed_failed", zap.Error(err))
		return err
	}
	logger.Info("seed_done",
		zap.Bool("admin_created", seeded.AdminCreated),
		zap.Bool("sample_created", seeded.SampleCreated),
	)

	am := auth.NewManager(logger, st.users, sessions, cfg.SessionTTL)
	rec := metrics.NewRecorder(logger)
	checker := probe.NewHTTPChecker(probe.DefaultTimeout)
	defer checker.Close()
	sup := scheduler.NewSupervisor(logger, st.services, checker, rec, cfg.StopTimeout)

	var metricsHandler http.Handler
	if cfg.PrometheusEnabled {
		metricsHandler = rec.Handler()
	}
	api := httpapi.NewServer(logger, st.services, st.pinger, am, sup, metricsHandler, httpapi.Options{
		AdminKeys:      cfg.AdminAPIKeys,
		AllowedOrigins: cfg.AllowedOrigins,
		LoginRPM:       cfg.LoginRPM,
		LoginBurst:     cfg.LoginBurst,
		SecureCookies:  cfg.SecureCookies,
		TrustProxy:     cfg.TrustProxy,
	})
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("api_listen", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		sup.Start(gctx)
		<-gctx.Done()
		logger.Info("shutdown_started")

		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(sctx)
		sup.Stop()
		return err
	})

	err = g.Wait()
	logger.Info("shutdown_complete", zap.Error(err))
	return err
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
