package aggregator

import (
	"net/http"
	"time"

	"numbers-gateway/aggregator/application"
	"numbers-gateway/aggregator/infra"
)

// ConcurrencyOptions limita quantos lotes rodam ao mesmo tempo no processo,
// independente do tamanho de cada lote.
type ConcurrencyOptions struct {
	Max            int
	RejectStatus   int
	AcquireTimeout time.Duration
}

func ConcurrencyMiddleware(opts ConcurrencyOptions) func(next http.Handler) http.Handler {
	if opts.Max <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusServiceUnavailable
	}

	adm := application.Admission{
		Pool:           infra.NewChanPool(opts.Max),
		AcquireTimeout: opts.AcquireTimeout,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			leave, ok := adm.Enter(r.Context())
			if !ok {
				writeError(w, opts.RejectStatus, http.StatusText(opts.RejectStatus))
				return
			}
			defer leave()

			next.ServeHTTP(w, r)
		})
	}
}
