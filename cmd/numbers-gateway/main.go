package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"numbers-gateway/aggregator"
	"numbers-gateway/aggregator/application"
	"numbers-gateway/aggregator/domain"
	"numbers-gateway/aggregator/infra"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := readConfig()
	if err != nil {
		boot := zerolog.New(os.Stderr)
		boot.Fatal().Err(err).Msg("config error")
	}

	logger := newLogger(cfg, os.Stderr)

	shutdownTracing, err := initTracing(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("tracing init error")
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn().Err(err).Msg("tracing shutdown error")
		}
	}()

	var stores infra.MultiStatsStore
	var memStats *infra.MemoryStatsStore
	if cfg.statsEnabled {
		memStats = infra.NewMemoryStatsStore(infra.WithTrackHosts(cfg.statsTrackHosts))
		stores = append(stores, memStats)
	}

	reg := prometheus.NewRegistry()
	if cfg.metricsEnabled {
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		promStats, err := infra.NewPrometheusStatsStore(reg)
		if err != nil {
			logger.Fatal().Err(err).Msg("metrics registration error")
		}
		stores = append(stores, promStats)
	}

	if cfg.statsRedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.statsRedisAddr,
			Password: cfg.statsRedisPassword,
			DB:       cfg.statsRedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			logger.Fatal().Err(err).Str("addr", cfg.statsRedisAddr).Msg("redis stats ping error")
		}

		stores = append(stores, infra.NewRedisStatsStore(
			rdb,
			infra.WithStatsPrefix(cfg.statsRedisPrefix),
			infra.WithStatsTTL(cfg.statsRedisTTL),
			infra.WithStatsBucket(cfg.statsRedisBucket),
			infra.WithStatsTrackHosts(cfg.statsTrackHosts),
		))
	}

	var stats domain.StatsStore
	if len(stores) > 0 {
		stats = stores
	}

	orch := application.Orchestrator{
		NewPool:      infra.NewPoolFactory(),
		PerHostLimit: cfg.perHostLimit,
		Logger:       logger.With().Str("component", "orchestrator").Logger(),
		Fetcher: application.Fetcher{
			Stats:        stats,
			MaxBodyBytes: cfg.maxBodyBytes,
			Logger:       logger.With().Str("component", "fetcher").Logger(),
		},
	}

	numbers := http.Handler(aggregator.NumbersHandler(aggregator.Options{
		Orchestrator:    orch,
		FailureEncoding: cfg.failureEncoding,
		MaxURLs:         cfg.maxURLs,
		Logger:          logger,
	}))
	numbers = aggregator.ConcurrencyMiddleware(aggregator.ConcurrencyOptions{
		Max:            cfg.concurrencyMax,
		RejectStatus:   http.StatusServiceUnavailable,
		AcquireTimeout: cfg.concurrencyTimeout,
	})(numbers)

	mux := http.NewServeMux()
	mux.Handle("/numbers", numbers)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	if memStats != nil {
		mux.Handle("/stats", aggregator.StatsHandler(memStats))
	}
	if cfg.metricsEnabled {
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := &http.Server{
		Addr:              cfg.listenAddr,
		Handler:           aggregator.AccessLogMiddleware(logger)(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.writeTimeout,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", cfg.listenAddr).Str("mode", cfg.mode).Msg("numbers gateway listening")
	logger.Info().
		Int("perHostLimit", cfg.perHostLimit).
		Int("maxURLs", cfg.maxURLs).
		Int64("maxBodyBytes", cfg.maxBodyBytes).
		Str("failureEncoding", string(cfg.failureEncoding)).
		Msg("fetch")
	logger.Info().Bool("enabled", cfg.otelEnabled).Str("endpoint", cfg.otelEndpoint).Float64("sampleRatio", cfg.otelSampleRatio).Msg("tracing")
	logger.Info().Int("max", cfg.concurrencyMax).Dur("acquireTimeout", cfg.concurrencyTimeout).Msg("concurrency")
	logger.Info().
		Bool("memory", cfg.statsEnabled).
		Bool("metrics", cfg.metricsEnabled).
		Str("redisAddr", cfg.statsRedisAddr).
		Str("redisBucket", cfg.statsRedisBucket).
		Dur("redisTTL", cfg.statsRedisTTL).
		Msg("stats")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server error")
	}
}

func newLogger(cfg config, w io.Writer) zerolog.Logger {
	var logger zerolog.Logger
	if cfg.mode == modeProduction {
		logger = zerolog.New(w)
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true})
	}
	return logger.Level(cfg.logLevel).With().Timestamp().Logger()
}
