package main

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"MiniShelf/internal/cart"
	"MiniShelf/internal/catalog"
	"MiniShelf/internal/config"
	"MiniShelf/internal/feed"
	"MiniShelf/internal/pager"
	"MiniShelf/pkg/kit"
)

const loadTimeout = 30 * time.Second

func main() {
	service := "feed"

	cfg, err := config.Load()
	if err != nil {
		kit.NewLogger(service, "info").Fatal("load config failed", zap.Error(err))
	}

	log := kit.NewLogger(service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	src, closeSrc, err := catalog.Open(catalog.OpenOptions{
		DatabaseURL:  cfg.DatabaseURL,
		ProductsPath: cfg.ProductsFile,
		StockPath:    cfg.StockFile,
		Log:          log,
	})
	if err != nil {
		log.Fatal("open catalog source failed", zap.Error(err))
	}
	defer func() { _ = closeSrc() }()

	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	idx, err := catalog.Load(ctx, src, log)
	cancel()
	if err != nil {
		log.Fatal("load catalog failed", zap.String("source", catalog.Kind(src)), zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	sessions := feed.NewSessions(pager.Delayed(idx, cfg.LoadDelay), feed.SessionOptions{
		PageSize:    cfg.PageSize,
		IdleTimeout: cfg.SessionIdle,
		Log:         log,
		Metrics:     feed.NewMetrics(reg),
	})
	defer sessions.CloseAll()

	reapCtx, stopReaper := context.WithCancel(context.Background())
	defer stopReaper()
	go sessions.Run(reapCtx)

	limiter := kit.NewIPRateLimiter(cfg.SessionLimit, time.Minute)
	limiter.TrustForwardedFor = cfg.TrustProxy

	s := &feed.Server{
		Catalog:  idx,
		Source:   src,
		Cart:     cart.NewStore(),
		Sessions: sessions,
		Limiter:  limiter,
		Log:      log,
	}

	h := feed.NewHandler(s, feed.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.MetricsEnabled,
		MetricsToken:   cfg.MetricsToken,
	})

	log.Info("feed ready",
		zap.String("source", catalog.Kind(src)),
		zap.Int("products", idx.Len()),
		zap.Int("page_size", cfg.PageSize),
		zap.Duration("load_delay", cfg.LoadDelay),
		zap.Duration("session_idle_timeout", cfg.SessionIdle),
	)

	if err := kit.RunHTTPServer(":"+cfg.Port, h, log, cfg.ShutdownTimeout); err != nil {
		log.Error("http server stopped", zap.Error(err))
	}
}
