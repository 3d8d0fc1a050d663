package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/tinoosan/bookkeeper/internal/cache"
	"github.com/tinoosan/bookkeeper/internal/chart"
	"github.com/tinoosan/bookkeeper/internal/config"
	v1 "github.com/tinoosan/bookkeeper/internal/httpapi/v1"
	"github.com/tinoosan/bookkeeper/internal/service/account"
	"github.com/tinoosan/bookkeeper/internal/service/journal"
	"github.com/tinoosan/bookkeeper/internal/service/report"
	"github.com/tinoosan/bookkeeper/internal/storage/file"
	"github.com/tinoosan/bookkeeper/internal/storage/memory"
	"github.com/tinoosan/bookkeeper/internal/storage/postgres"
)

// store is what every backend provides.
type store interface {
	journal.Repo
	journal.Writer
	v1.IdempotencyStore
	v1.ReadyChecker
}

// app holds the wired services for one command invocation.
type app struct {
	cfg      *config.Config
	log      *slog.Logger
	store    store
	accounts account.Service
	journal  journal.Service
	reports  report.Service
	ready    []v1.ReadyChecker
	closers  []func()
}

// openApp loads configuration and wires the selected backend, cache and services.
// Logs go to logOut so command output stays clean.
func openApp(ctx context.Context, opts *options, logOut io.Writer) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger(logOut)

	accounts, err := chart.LoadFile(cfg.ChartFile)
	if err != nil {
		return nil, fmt.Errorf("loading chart: %w", err)
	}

	a := &app{cfg: cfg, log: logger, accounts: account.New(accounts)}
	if err := a.openStore(ctx); err != nil {
		return nil, err
	}
	balances := a.openCache(ctx)

	a.journal = journal.New(a.store, a.store, a.accounts)
	a.reports = report.New(a.store, a.accounts, balances, logger)
	a.ready = append([]v1.ReadyChecker{a.store}, a.ready...)
	return a, nil
}

func (a *app) openStore(ctx context.Context) error {
	switch a.cfg.Backend() {
	case config.BackendPostgres:
		pg, err := postgres.Open(ctx, a.cfg.Storage.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connecting to postgres: %w", err)
		}
		a.store = pg
		a.closers = append(a.closers, pg.Close)
	case config.BackendFile:
		fs, err := file.Open(a.cfg.Storage.LedgerFile)
		if err != nil {
			return err
		}
		a.store = fs
	default:
		a.store = memory.New()
	}
	a.log.Debug("storage backend", "backend", a.cfg.Backend())
	return nil
}

// openCache returns the redis balances cache when configured and reachable,
// otherwise an in-process cache.
func (a *app) openCache(ctx context.Context) cache.Balances {
	url := strings.TrimSpace(a.cfg.Cache.RedisURL)
	if url == "" {
		return cache.NewMemory()
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		// Fallback to simple connection
		opt = &redis.Options{Addr: url}
	}
	client := redis.NewClient(opt)
	if err := cache.Ping(ctx, client); err != nil {
		a.log.Warn("redis unavailable, using in-process cache", "err", err)
		_ = client.Close()
		return cache.NewMemory()
	}
	rc := cache.NewRedis(client, a.cfg.Cache.TTL)
	a.ready = append(a.ready, rc)
	a.closers = append(a.closers, func() { _ = client.Close() })
	return rc
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
