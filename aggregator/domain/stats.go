package domain

import (
	"context"
	"time"
)

// FetchEvent representa o desfecho de um fetch individual.
//
// Host (e não a URL completa) é a dimensão de agregação, para manter a
// cardinalidade sob controle em Redis/Prometheus.
type FetchEvent struct {
	Host       string
	Success    bool
	Kind       FailureKind
	StatusCode int
	Duration   time.Duration
	At         time.Time
}

// StatsStore é a estratégia de persistência para estatísticas de fetch.
//
// Implementações podem armazenar em Redis, Prometheus, memória, etc.
// Quem registra trata erro como best-effort (não altera o Outcome).
type StatsStore interface {
	Record(ctx context.Context, ev FetchEvent) error
}
