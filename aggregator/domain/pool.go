package domain

import (
	"context"
	"io"
)

// Response é o mínimo de uma resposta HTTP que a camada de aplicação precisa.
// Body deve ser fechado exatamente uma vez.
type Response struct {
	StatusCode int
	Body       io.ReadCloser
}

// ConnectionPool é o recurso de conexões de um único lote.
//
// Get precisa ser seguro para chamadas concorrentes. Close libera todas as
// conexões e é chamado quando o lote termina, com ou sem falhas.
type ConnectionPool interface {
	Get(ctx context.Context, url string) (*Response, error)
	Close() error
}

// PoolFactory cria um ConnectionPool novo com o limite de conexões por host.
type PoolFactory func(perHost int) ConnectionPool

// SlotPool representa um recurso com capacidade finita (ex: conexões concorrentes).
//
// A semântica é: Acquire bloqueia até conseguir uma vaga ou até o ctx encerrar.
// Ao adquirir, retorna uma função de release que deve ser chamada exatamente uma vez.
type SlotPool interface {
	Acquire(ctx context.Context) (release func(), ok bool)
}
