package infra

import (
	"context"
	"sync"

	"numbers-gateway/aggregator/domain"
)

type Counters struct {
	Succeeded int64 `json:"succeeded"`
	Failed    int64 `json:"failed"`
}

// StatsSnapshot é a visão serializável do MemoryStatsStore.
type StatsSnapshot struct {
	Total          Counters            `json:"total"`
	ByHost         map[string]Counters `json:"by_host,omitempty"`
	FailuresByKind map[string]int64    `json:"failures_by_kind"`
}

// MemoryStatsStore é uma implementação simples em memória.
// Útil para testes, desenvolvimento e para o endpoint /stats.
//
// Não faz expiração: com trackHosts ligado, o número de hosts cresce sem limite.
type MemoryStatsStore struct {
	mu     sync.Mutex
	total  Counters
	byHost map[string]Counters
	byKind map[domain.FailureKind]int64

	trackHosts bool
}

type MemoryStatsOption func(*MemoryStatsStore)

func WithTrackHosts(track bool) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.trackHosts = track }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{
		byHost: make(map[string]Counters),
		byKind: make(map[domain.FailureKind]int64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.FetchEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ev.Success {
		s.total.Succeeded++
	} else {
		s.total.Failed++
		s.byKind[ev.Kind]++
	}

	if s.trackHosts {
		c := s.byHost[ev.Host]
		if ev.Success {
			c.Succeeded++
		} else {
			c.Failed++
		}
		s.byHost[ev.Host] = c
	}
	return nil
}

func (s *MemoryStatsStore) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryStatsStore) ByHost() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Counters, len(s.byHost))
	for k, v := range s.byHost {
		out[k] = v
	}
	return out
}

func (s *MemoryStatsStore) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := StatsSnapshot{
		Total:          s.total,
		FailuresByKind: make(map[string]int64, len(s.byKind)),
	}
	if s.trackHosts {
		snap.ByHost = make(map[string]Counters, len(s.byHost))
		for k, v := range s.byHost {
			snap.ByHost[k] = v
		}
	}
	for k, v := range s.byKind {
		snap.FailuresByKind[string(k)] = v
	}
	return snap
}
