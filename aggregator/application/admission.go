package application

import (
	"context"
	"time"

	"numbers-gateway/aggregator/domain"
)

// Admission controla quantos lotes podem rodar ao mesmo tempo no processo,
// sem saber nada sobre HTTP.
type Admission struct {
	Pool           domain.SlotPool
	AcquireTimeout time.Duration
}

// Enter tenta reservar uma vaga para um lote.
// - Se `AcquireTimeout <= 0`, espera indefinidamente (até ctx cancelar).
// - Se `AcquireTimeout > 0`, espera até o timeout.
// Retorna (leave, ok). Se ok=false, nenhuma vaga foi reservada.
func (a Admission) Enter(ctx context.Context) (func(), bool) {
	if a.Pool == nil {
		return func() {}, true
	}

	if a.AcquireTimeout <= 0 {
		return a.Pool.Acquire(ctx)
	}

	acqCtx, cancel := context.WithTimeout(ctx, a.AcquireTimeout)
	defer cancel()
	return a.Pool.Acquire(acqCtx)
}
