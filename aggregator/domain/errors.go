package domain

import (
	"errors"
	"strconv"
)

// ErrNoURLsProvided é o único erro de entrada que chega ao chamador.
var ErrNoURLsProvided = errors.New("No URLs provided")

// FailureKind classifica falhas de fetch. Serve apenas para log/estatística:
// o Outcome devolvido ao chamador não distingue os tipos.
type FailureKind string

const (
	KindTransport FailureKind = "transport"
	KindStatus    FailureKind = "status"
	KindParse     FailureKind = "parse"
)

type FetchError struct {
	Kind       FailureKind
	URL        string
	StatusCode int
	Cause      error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case KindStatus:
		return "unexpected status " + strconv.Itoa(e.StatusCode) + " from " + e.URL
	case KindParse:
		return "invalid JSON from " + e.URL + ": " + causeText(e.Cause)
	default:
		return "request to " + e.URL + " failed: " + causeText(e.Cause)
	}
}

func (e *FetchError) Unwrap() error { return e.Cause }

func causeText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
