package main

import (
	"errors"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"numbers-gateway/aggregator"
	"numbers-gateway/aggregator/application"

	"github.com/rs/zerolog"
)

const modeProduction = "production"

type config struct {
	mode         string
	listenAddr   string
	logLevel     zerolog.Level
	writeTimeout time.Duration

	perHostLimit    int
	maxURLs         int
	maxBodyBytes    int64
	failureEncoding aggregator.FailureEncoding

	concurrencyMax     int
	concurrencyTimeout time.Duration

	statsEnabled       bool
	statsTrackHosts    bool
	metricsEnabled     bool
	statsRedisAddr     string
	statsRedisPassword string
	statsRedisDB       int
	statsRedisPrefix   string
	statsRedisTTL      time.Duration
	statsRedisBucket   string

	otelEnabled     bool
	otelEndpoint    string
	otelInsecure    bool
	otelSampleRatio float64
}

func readConfig() (config, error) {
	cfg := config{}
	cfg.mode = strings.ToLower(getenvDefault("MODE", "development"))

	// production escuta em todas as interfaces; qualquer outro modo só em loopback.
	host := "localhost"
	if cfg.mode == modeProduction {
		host = "0.0.0.0"
	}
	cfg.listenAddr = getenvDefault("LISTEN_ADDR", net.JoinHostPort(host, getenvDefault("PORT", "8008")))

	lvl, err := zerolog.ParseLevel(strings.ToLower(getenvDefault("LOG_LEVEL", "info")))
	if err != nil {
		return config{}, errors.New("LOG_LEVEL is invalid: " + err.Error())
	}
	cfg.logLevel = lvl
	cfg.writeTimeout = getenvDurationDefault("WRITE_TIMEOUT", 0)

	cfg.perHostLimit = getenvIntDefault("PER_HOST_LIMIT", 0)
	cfg.maxURLs = getenvIntDefault("MAX_URLS", 0)
	cfg.maxBodyBytes = int64(getenvIntDefault("MAX_BODY_BYTES", int(application.DefaultMaxBodyBytes)))

	enc, ok := aggregator.ParseFailureEncoding(os.Getenv("FAILURE_ENCODING"))
	if !ok {
		return config{}, errors.New("FAILURE_ENCODING must be null or object")
	}
	cfg.failureEncoding = enc

	cfg.concurrencyMax = getenvIntDefault("CONCURRENCY_MAX", 0)
	cfg.concurrencyTimeout = getenvDurationDefault("CONCURRENCY_TIMEOUT", 0)

	cfg.statsEnabled = getenvBoolDefault("STATS_ENABLED", true)
	cfg.statsTrackHosts = getenvBoolDefault("STATS_TRACK_HOSTS", false)
	cfg.metricsEnabled = getenvBoolDefault("METRICS_ENABLED", true)
	cfg.statsRedisAddr = strings.TrimSpace(os.Getenv("STATS_REDIS_ADDR"))
	cfg.statsRedisPassword = os.Getenv("STATS_REDIS_PASSWORD")
	cfg.statsRedisDB = getenvIntDefault("STATS_REDIS_DB", 0)
	cfg.statsRedisPrefix = getenvDefault("STATS_REDIS_PREFIX", "numbers:stats")
	cfg.statsRedisTTL = getenvDurationDefault("STATS_REDIS_TTL", 24*time.Hour)
	cfg.statsRedisBucket = getenvDefault("STATS_REDIS_BUCKET", "minute")

	cfg.otelEnabled = getenvBoolDefault("OTEL_ENABLED", false)
	cfg.otelEndpoint = strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))
	cfg.otelInsecure = getenvBoolDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	cfg.otelSampleRatio = getenvFloatDefault("OTEL_SAMPLER_RATIO", 1)

	if cfg.perHostLimit < 0 {
		return config{}, errors.New("PER_HOST_LIMIT must be >= 0")
	}
	if cfg.maxURLs < 0 {
		return config{}, errors.New("MAX_URLS must be >= 0")
	}
	if cfg.maxBodyBytes <= 0 {
		return config{}, errors.New("MAX_BODY_BYTES must be > 0")
	}
	if cfg.concurrencyMax < 0 {
		return config{}, errors.New("CONCURRENCY_MAX must be >= 0")
	}
	if cfg.otelSampleRatio < 0 || cfg.otelSampleRatio > 1 {
		return config{}, errors.New("OTEL_SAMPLER_RATIO must be between 0 and 1")
	}
	return cfg, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvFloatDefault(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getenvBoolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
