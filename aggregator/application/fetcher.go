package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"numbers-gateway/aggregator/domain"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const DefaultMaxBodyBytes int64 = 10 << 20

var tracer = otel.Tracer("numbers-gateway/aggregator/application")

var errBodyTooLarge = errors.New("response body exceeds limit")

// Fetcher executa um único GET e converte qualquer falha em dado.
//
// O valor zero é utilizável: sem Stats, sem log e com DefaultMaxBodyBytes.
type Fetcher struct {
	Stats        domain.StatsStore
	Logger       zerolog.Logger
	MaxBodyBytes int64
}

// Fetch nunca devolve erro nem deixa escapar panic: transporte, status != 2xx
// e JSON inválido viram domain.Failure. O tipo da falha só aparece no log e
// nas estatísticas.
func (f Fetcher) Fetch(ctx context.Context, pool domain.ConnectionPool, rawURL string) (out domain.Outcome) {
	ctx, span := tracer.Start(ctx, "fetch", trace.WithAttributes(attribute.String("url.full", rawURL)))
	defer span.End()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err := &domain.FetchError{Kind: domain.KindTransport, URL: rawURL, Cause: fmt.Errorf("panic: %v", r)}
			out = f.fail(ctx, span, rawURL, start, err)
		}
	}()

	value, status, err := f.get(ctx, pool, rawURL)
	if err != nil {
		return f.fail(ctx, span, rawURL, start, err)
	}

	span.SetAttributes(attribute.Int("http.response.status_code", status))
	f.record(ctx, domain.FetchEvent{
		Host:       hostOf(rawURL),
		Success:    true,
		StatusCode: status,
		Duration:   time.Since(start),
		At:         start,
	})
	return domain.Success(value)
}

func (f Fetcher) get(ctx context.Context, pool domain.ConnectionPool, rawURL string) (json.RawMessage, int, error) {
	resp, err := pool.Get(ctx, rawURL)
	if err != nil {
		return nil, 0, &domain.FetchError{Kind: domain.KindTransport, URL: rawURL, Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, &domain.FetchError{Kind: domain.KindStatus, URL: rawURL, StatusCode: resp.StatusCode}
	}

	limit := f.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, resp.StatusCode, &domain.FetchError{Kind: domain.KindTransport, URL: rawURL, StatusCode: resp.StatusCode, Cause: err}
	}
	if int64(len(body)) > limit {
		return nil, resp.StatusCode, &domain.FetchError{Kind: domain.KindParse, URL: rawURL, StatusCode: resp.StatusCode, Cause: errBodyTooLarge}
	}

	var v json.RawMessage
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, resp.StatusCode, &domain.FetchError{Kind: domain.KindParse, URL: rawURL, StatusCode: resp.StatusCode, Cause: err}
	}
	return v, resp.StatusCode, nil
}

func (f Fetcher) fail(ctx context.Context, span trace.Span, rawURL string, start time.Time, err error) domain.Outcome {
	var fe *domain.FetchError
	if !errors.As(err, &fe) {
		fe = &domain.FetchError{Kind: domain.KindTransport, URL: rawURL, Cause: err}
	}

	span.RecordError(fe)
	span.SetStatus(codes.Error, string(fe.Kind))
	if fe.StatusCode != 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", fe.StatusCode))
	}

	f.Logger.Warn().
		Str("url", rawURL).
		Str("kind", string(fe.Kind)).
		Int("status", fe.StatusCode).
		Err(fe.Cause).
		Msg("fetch failed")

	f.record(ctx, domain.FetchEvent{
		Host:       hostOf(rawURL),
		Kind:       fe.Kind,
		StatusCode: fe.StatusCode,
		Duration:   time.Since(start),
		At:         start,
	})
	return domain.Failure(fe.Error())
}

func (f Fetcher) record(ctx context.Context, ev domain.FetchEvent) {
	if f.Stats == nil {
		return
	}
	if err := f.Stats.Record(ctx, ev); err != nil {
		f.Logger.Debug().Err(err).Str("host", ev.Host).Msg("stats record failed")
	}
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "invalid"
	}
	return u.Host
}
