package application

import (
	"context"
	"errors"
	"time"

	"numbers-gateway/aggregator/domain"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

var ErrNoPool = errors.New("orchestrator has no pool factory")

// Orchestrator dispara um Fetch por URL, todos ao mesmo tempo, e espera
// todos terminarem antes de devolver o ResultSet.
type Orchestrator struct {
	NewPool domain.PoolFactory
	Fetcher Fetcher
	// PerHostLimit limita conexões simultâneas por host dentro de um lote.
	// Se <= 0, usa len(urls): nenhum fetch fica na fila atrás de outro.
	PerHostLimit int
	Logger       zerolog.Logger
}

// Orchestrate devolve um Outcome por URL, na mesma posição da URL de origem.
// Falhas individuais viram domain.Failure; o único erro possível para uma
// lista não vazia é ErrNoPool (erro de montagem, não de rede).
func (o Orchestrator) Orchestrate(ctx context.Context, urls []string) (domain.ResultSet, error) {
	if len(urls) == 0 {
		return nil, domain.ErrNoURLsProvided
	}
	if o.NewPool == nil {
		return nil, ErrNoPool
	}

	ctx, span := tracer.Start(ctx, "orchestrate")
	defer span.End()
	span.SetAttributes(attribute.Int("batch.size", len(urls)))

	perHost := o.PerHostLimit
	if perHost <= 0 {
		perHost = len(urls)
	}

	// o pool vive só durante este lote
	pool := o.NewPool(perHost)
	defer func() {
		if err := pool.Close(); err != nil {
			o.Logger.Debug().Err(err).Msg("pool close failed")
		}
	}()

	start := time.Now()
	results := make(domain.ResultSet, len(urls))

	// cada goroutine escreve apenas no próprio índice
	var g errgroup.Group
	for i, u := range urls {
		g.Go(func() error {
			results[i] = o.Fetcher.Fetch(ctx, pool, u)
			return nil
		})
	}
	_ = g.Wait()

	ok, failed := results.Counts()
	span.SetAttributes(attribute.Int("batch.succeeded", ok), attribute.Int("batch.failed", failed))
	o.Logger.Debug().
		Int("urls", len(urls)).
		Int("per_host", perHost).
		Int("succeeded", ok).
		Int("failed", failed).
		Dur("elapsed", time.Since(start)).
		Msg("batch done")

	return results, nil
}
