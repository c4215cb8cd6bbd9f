package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/envwatch/envwatch/internal/api"
	"github.com/envwatch/envwatch/internal/config"
	"github.com/envwatch/envwatch/internal/monitor"
	"github.com/envwatch/envwatch/internal/notify"
	"github.com/envwatch/envwatch/internal/obs"
	pg "github.com/envwatch/envwatch/internal/repository/postgres"
	"github.com/envwatch/envwatch/internal/store"
)

func main() {
	cfgPath := flag.String("config", "config/envwatch.yaml", "path to config file")
	flag.Parse()

	root, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	l, err := obs.NewLogger(cfg.Log.AsLoggerConfig())
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = l.Sync() }()

	otelCloser, err := obs.SetupOTel(root, cfg.OTEL.AsOTELConfig())
	if err != nil {
		l.Fatal("otel init", zap.Error(err))
	}
	defer func() { _ = otelCloser.Shutdown(context.Background()) }()

	// Schema bootstrap runs before any runner: nothing can persist
	// safely without it.
	if err := pg.Migrate(cfg.DB.URL); err != nil {
		l.Fatal("schema bootstrap", zap.Error(err))
	}

	// Every runner holds one connection for its lifetime; keep one
	// spare so nothing starves during startup.
	if need := int32(len(cfg.Monitors) + 1); cfg.DB.MaxConns < need {
		cfg.DB.MaxConns = need
	}
	db, err := pg.New(root, cfg.DB)
	if err != nil {
		l.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	index := store.NewMemory(cfg.Index.MaxEntries)
	notifier := notify.NewWebhook(cfg.Notify.Timeout, l)
	prober := monitor.NewHTTPProber(cfg.HTTP)
	metrics := monitor.NewMetrics()

	ms := obs.BootstrapMetricsServer(cfg.Server.MetricsAddr, func(ctx context.Context) error {
		return db.Pool.Ping(ctx)
	}, l)
	ss := api.BootstrapStatusServer(cfg.Server.StatusAddr, index, l)

	var wg sync.WaitGroup
	for _, m := range cfg.Monitors {
		conn, err := db.Pool.Acquire(root)
		if err != nil {
			l.Fatal("acquire db conn", zap.String("monitor", m.Name), zap.Error(err))
		}

		r := monitor.NewRunner(l, *m, prober, index,
			pg.NewCheckLog(conn, db.QueryTimeout), notifier, metrics)

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer conn.Release()
			if err := r.Run(root); err != nil && !errors.Is(err, context.Canceled) {
				l.Error("runner exited", zap.Error(err))
			}
		}()
	}

	<-root.Done()
	wg.Wait()

	shCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()
	_ = ss.Shutdown(shCtx)
	_ = ms.Shutdown(shCtx)
	l.Info("bye")
}
