package infra

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"numbers-gateway/aggregator/domain"
)

var ErrPoolClosed = errors.New("connection pool is closed")

// ConnectionPool é o recurso de conexões de um lote: um http.Transport
// próprio (MaxConnsPerHost = perHost) e um semáforo por host com a mesma
// capacidade. A vaga do host só é devolvida quando o body é fechado.
type ConnectionPool struct {
	client    *http.Client
	transport *http.Transport
	perHost   int

	mu     sync.Mutex
	slots  map[string]domain.SlotPool
	closed bool
}

type poolConfig struct {
	base *http.Transport
}

type PoolOption func(*poolConfig)

// WithTransport troca o transport base (clonado a cada pool).
func WithTransport(t *http.Transport) PoolOption {
	return func(c *poolConfig) { c.base = t }
}

func NewConnectionPool(perHost int, opts ...PoolOption) *ConnectionPool {
	cfg := poolConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.base == nil {
		cfg.base = http.DefaultTransport.(*http.Transport)
	}
	if perHost < 1 {
		perHost = 1
	}

	tr := cfg.base.Clone()
	tr.MaxConnsPerHost = perHost
	tr.MaxIdleConnsPerHost = perHost

	return &ConnectionPool{
		client:    &http.Client{Transport: tr},
		transport: tr,
		perHost:   perHost,
		slots:     make(map[string]domain.SlotPool),
	}
}

// NewPoolFactory devolve um domain.PoolFactory que cria um ConnectionPool
// novo a cada lote.
func NewPoolFactory(opts ...PoolOption) domain.PoolFactory {
	return func(perHost int) domain.ConnectionPool {
		return NewConnectionPool(perHost, opts...)
	}
}

func (p *ConnectionPool) PerHost() int { return p.perHost }

func (p *ConnectionPool) Get(ctx context.Context, rawURL string) (*domain.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	slots, err := p.slot(req.URL.Host)
	if err != nil {
		return nil, err
	}
	release, ok := slots.Acquire(ctx)
	if !ok {
		return nil, fmt.Errorf("acquire connection slot for %s: %w", req.URL.Host, ctx.Err())
	}

	resp, err := p.client.Do(req)
	if err != nil {
		release()
		return nil, err
	}

	return &domain.Response{
		StatusCode: resp.StatusCode,
		Body:       &releasingBody{ReadCloser: resp.Body, release: release},
	}, nil
}

// Close libera as conexões ociosas. Pode ser chamado mais de uma vez.
func (p *ConnectionPool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	p.transport.CloseIdleConnections()
	return nil
}

func (p *ConnectionPool) slot(host string) (domain.SlotPool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrPoolClosed
	}
	s, ok := p.slots[host]
	if !ok {
		s = NewChanPool(p.perHost)
		p.slots[host] = s
	}
	return s, nil
}

type releasingBody struct {
	io.ReadCloser
	once    sync.Once
	release func()
}

func (b *releasingBody) Close() error {
	err := b.ReadCloser.Close()
	b.once.Do(b.release)
	return err
}
