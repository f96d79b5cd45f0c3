package infra

import (
	"context"
	"sync"

	"numbers-gateway/aggregator/domain"
)

type chanPool struct {
	sem chan struct{}
}

// NewChanPool cria um semáforo baseado em channel com capacidade `max`.
// Valores < 1 viram 1.
func NewChanPool(max int) domain.SlotPool {
	if max < 1 {
		max = 1
	}
	return &chanPool{sem: make(chan struct{}, max)}
}

func (p *chanPool) Acquire(ctx context.Context) (func(), bool) {
	// vaga livre tem prioridade sobre ctx já encerrado
	select {
	case p.sem <- struct{}{}:
		return p.releaseFunc(), true
	default:
	}

	select {
	case p.sem <- struct{}{}:
		return p.releaseFunc(), true
	case <-ctx.Done():
		return nil, false
	}
}

func (p *chanPool) releaseFunc() func() {
	var once sync.Once
	return func() { once.Do(func() { <-p.sem }) }
}
