package aggregator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"numbers-gateway/aggregator/domain"

	"github.com/rs/zerolog"
)

// Orchestrator é o que o handler precisa do caso de uso de lote.
type Orchestrator interface {
	Orchestrate(ctx context.Context, urls []string) (domain.ResultSet, error)
}

// FailureEncoding decide como um Outcome com falha aparece no array.
type FailureEncoding string

const (
	FailureNull   FailureEncoding = "null"
	FailureObject FailureEncoding = "object"
)

func ParseFailureEncoding(s string) (FailureEncoding, bool) {
	switch FailureEncoding(strings.ToLower(strings.TrimSpace(s))) {
	case "", FailureNull:
		return FailureNull, true
	case FailureObject:
		return FailureObject, true
	}
	return "", false
}

type Options struct {
	Orchestrator    Orchestrator
	FailureEncoding FailureEncoding
	// MaxURLs limita quantas URLs um request pode pedir. 0 = sem limite.
	MaxURLs int
	Logger  zerolog.Logger
}

// URLParam é o parâmetro de query repetido com as URLs de origem.
const URLParam = "url"

func NumbersHandler(opts Options) http.Handler {
	if opts.FailureEncoding == "" {
		opts.FailureEncoding = FailureNull
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			writeError(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
			return
		}

		urls := urlsFromRequest(r)
		if len(urls) == 0 {
			writeError(w, http.StatusBadRequest, domain.ErrNoURLsProvided.Error())
			return
		}
		if opts.MaxURLs > 0 && len(urls) > opts.MaxURLs {
			writeError(w, http.StatusBadRequest, "too many URLs (max "+formatInt(opts.MaxURLs)+")")
			return
		}

		rs, err := opts.Orchestrator.Orchestrate(r.Context(), urls)
		if err != nil {
			if errors.Is(err, domain.ErrNoURLsProvided) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			opts.Logger.Error().Err(err).Int("urls", len(urls)).Msg("orchestration failed")
			writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
			return
		}

		ok, failed := rs.Counts()
		w.Header().Set("X-Numbers-Succeeded", formatInt(ok))
		w.Header().Set("X-Numbers-Failed", formatInt(failed))
		writeJSON(w, http.StatusOK, encodeResults(rs, opts.FailureEncoding))
	})
}

func urlsFromRequest(r *http.Request) []string {
	raw := r.URL.Query()[URLParam]
	urls := make([]string, 0, len(raw))
	for _, u := range raw {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// encodeResults mantém o alinhamento por índice: cada Outcome vira exatamente
// um elemento do array.
func encodeResults(rs domain.ResultSet, enc FailureEncoding) []any {
	out := make([]any, len(rs))
	for i, o := range rs {
		switch {
		case o.OK():
			out[i] = json.RawMessage(o.Value)
		case enc == FailureObject:
			out[i] = errorBody{Error: o.Reason}
		default:
			out[i] = nil
		}
	}
	return out
}
