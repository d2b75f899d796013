package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/kiryu-dev/tic-tac-toe-web/internal/adapters/memory"
	"github.com/kiryu-dev/tic-tac-toe-web/internal/adapters/redisstore"
	"github.com/kiryu-dev/tic-tac-toe-web/internal/config"
	"github.com/kiryu-dev/tic-tac-toe-web/internal/domain"
	"github.com/kiryu-dev/tic-tac-toe-web/internal/transport/ws"
	"github.com/kiryu-dev/tic-tac-toe-web/internal/usecase/hub"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfgPath := flag.String("config", "./config.yml", "path to config")
	flag.Parse()
	cfg, err := config.New(*cfgPath)
	if err != nil {
		panic(err)
	}
	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := newRepository(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Fatal(err.Error())
	}
	defer closeRepo()

	var (
		hub = hub.New(repo, hub.Options{
			AIDelay:     cfg.Game.AIDelay,
			SessionTTL:  cfg.Session.TTL,
			SweepPeriod: cfg.Session.SweepPeriod,
		}, logger)
		server = ws.New(cfg.Server.Addr, hub, logger)
	)
	errGroup, ctx := errgroup.WithContext(ctx)
	errGroup.Go(func() error {
		return server.ListenAndServe()
	})
	errGroup.Go(func() error {
		<-ctx.Done()
		logger.Info("gracefully shutting down the server")
		hub.Stop()
		return server.Shutdown(context.Background())
	})
	if err := errGroup.Wait(); err != nil {
		logger.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, errors.WithMessage(err, "parse log level")
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	return cfg.Build()
}

func newRepository(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (domain.ProfileRepository, func(), error) {
	if cfg.Addr == "" {
		logger.Info("storing profiles in memory")
		return memory.New(), func() {}, nil
	}
	repo, err := redisstore.New(ctx, redisstore.Options{
		Addr:      cfg.Addr,
		Password:  cfg.Password,
		DB:        cfg.DB,
		KeyPrefix: cfg.KeyPrefix,
	})
	if err != nil {
		return nil, nil, errors.WithMessage(err, "connect profile store")
	}
	logger.Info("storing profiles in redis", zap.String("addr", cfg.Addr))
	return repo, func() {
		_ = repo.Close()
	}, nil
}
