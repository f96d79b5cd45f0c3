package application

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"numbers-gateway/aggregator/domain"
)

type fakeRoute struct {
	status int
	body   string
	err    error
	delay  time.Duration
}

type fakePool struct {
	mu          sync.Mutex
	routes      map[string]fakeRoute
	gets        int
	closed      int
	inFlight    int
	maxInFlight int
}

func newFakePool(routes map[string]fakeRoute) *fakePool {
	return &fakePool{routes: routes}
}

func (p *fakePool) Get(ctx context.Context, url string) (*domain.Response, error) {
	p.mu.Lock()
	p.gets++
	p.inFlight++
	if p.inFlight > p.maxInFlight {
		p.maxInFlight = p.inFlight
	}
	r, ok := p.routes[url]
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.inFlight--
		p.mu.Unlock()
	}()

	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	if !ok {
		return nil, errors.New("dial tcp: no such host")
	}
	if r.err != nil {
		return nil, r.err
	}
	return &domain.Response{StatusCode: r.status, Body: io.NopCloser(strings.NewReader(r.body))}, nil
}

func (p *fakePool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed++
	return nil
}

type panicPool struct{}

func (panicPool) Get(context.Context, string) (*domain.Response, error) { panic("boom") }
func (panicPool) Close() error                                         { return nil }

// factory guarda os pools criados e o perHost pedido em cada um.
type factory struct {
	mu      sync.Mutex
	routes  map[string]fakeRoute
	pools   []*fakePool
	perHost []int
}

func (f *factory) New(perHost int) domain.ConnectionPool {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := newFakePool(f.routes)
	f.pools = append(f.pools, p)
	f.perHost = append(f.perHost, perHost)
	return p
}

type recordingStats struct {
	mu     sync.Mutex
	events []domain.FetchEvent
	err    error
}

func (s *recordingStats) Record(_ context.Context, ev domain.FetchEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return s.err
}

func (s *recordingStats) snapshot() []domain.FetchEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.FetchEvent(nil), s.events...)
}
