package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"numbers-gateway/aggregator"
	"numbers-gateway/aggregator/application"
	"numbers-gateway/aggregator/infra"

	"github.com/rs/zerolog"
)

func main() {
	// Exemplo: montando o agregador dentro do seu próprio webserver
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	orch := application.Orchestrator{
		NewPool:      infra.NewPoolFactory(),
		PerHostLimit: 8, // limite fixo por host em vez do tamanho do lote
		Fetcher:      application.Fetcher{Logger: logger},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.Handle("/api/numbers", aggregator.ConcurrencyMiddleware(aggregator.ConcurrencyOptions{Max: 50})(
		aggregator.NumbersHandler(aggregator.Options{
			Orchestrator:    orch,
			FailureEncoding: aggregator.FailureObject,
			MaxURLs:         32,
			Logger:          logger,
		}),
	))

	addr := ":8081"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		addr = v
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           aggregator.AccessLogMiddleware(logger)(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", addr).Msg("example server listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("server error")
	}
}
