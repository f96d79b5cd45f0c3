package aggregator

import (
	"net/http"

	"numbers-gateway/aggregator/infra"
)

type snapshotter interface {
	Snapshot() infra.StatsSnapshot
}

// StatsHandler expõe os contadores em memória dos fetches como JSON.
func StatsHandler(src snapshotter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			writeError(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
			return
		}
		writeJSON(w, http.StatusOK, src.Snapshot())
	})
}
