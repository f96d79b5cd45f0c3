package application

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"numbers-gateway/aggregator/domain"

	"github.com/rs/zerolog"
)

func TestFetcher_Fetch_SuccessReturnsParsedBody(t *testing.T) {
	stats := &recordingStats{}
	pool := newFakePool(map[string]fakeRoute{
		"http://a/numbers": {status: 200, body: `{"numbers":[1,2,3]}`},
	})
	f := Fetcher{Stats: stats}

	out := f.Fetch(context.Background(), pool, "http://a/numbers")
	if !out.OK() {
		t.Fatalf("expected success, got failure %q", out.Reason)
	}
	if got := string(out.Value); got != `{"numbers":[1,2,3]}` {
		t.Fatalf("unexpected value %s", got)
	}

	evs := stats.snapshot()
	if len(evs) != 1 {
		t.Fatalf("expected 1 stats event, got %d", len(evs))
	}
	if !evs[0].Success || evs[0].Host != "a" || evs[0].StatusCode != 200 {
		t.Fatalf("unexpected event %+v", evs[0])
	}
}

func TestFetcher_Fetch_AcceptsAny2xx(t *testing.T) {
	pool := newFakePool(map[string]fakeRoute{
		"http://a/": {status: 203, body: `42`},
	})
	out := Fetcher{}.Fetch(context.Background(), pool, "http://a/")
	if !out.OK() || string(out.Value) != "42" {
		t.Fatalf("expected success with 42, got %+v", out)
	}
}

func TestFetcher_Fetch_FailureKinds(t *testing.T) {
	pool := newFakePool(map[string]fakeRoute{
		"http://s/500":   {status: 500, body: `{"error":"x"}`},
		"http://s/404":   {status: 404, body: `null`},
		"http://p/bad":   {status: 200, body: `not json`},
		"http://p/empty": {status: 200, body: ``},
		"http://t/reset": {err: errors.New("connection reset by peer")},
	})

	cases := []struct {
		url  string
		kind domain.FailureKind
	}{
		{"http://s/500", domain.KindStatus},
		{"http://s/404", domain.KindStatus},
		{"http://p/bad", domain.KindParse},
		{"http://p/empty", domain.KindParse},
		{"http://t/reset", domain.KindTransport},
		{"http://unknown/", domain.KindTransport},
	}

	for _, tc := range cases {
		t.Run(tc.url, func(t *testing.T) {
			stats := &recordingStats{}
			out := Fetcher{Stats: stats}.Fetch(context.Background(), pool, tc.url)
			if out.OK() {
				t.Fatalf("expected failure for %s", tc.url)
			}
			if out.Reason == "" {
				t.Fatalf("expected a failure reason")
			}
			if out.Value != nil {
				t.Fatalf("expected no value on failure, got %s", out.Value)
			}
			evs := stats.snapshot()
			if len(evs) != 1 || evs[0].Success || evs[0].Kind != tc.kind {
				t.Fatalf("expected one %s failure event, got %+v", tc.kind, evs)
			}
		})
	}
}

func TestFetcher_Fetch_StatusReasonMentionsCode(t *testing.T) {
	pool := newFakePool(map[string]fakeRoute{
		"http://a/": {status: 502, body: `{}`},
	})
	out := Fetcher{}.Fetch(context.Background(), pool, "http://a/")
	if !strings.Contains(out.Reason, "502") {
		t.Fatalf("expected reason to mention 502, got %q", out.Reason)
	}
}

func TestFetcher_Fetch_BodyOverLimitFails(t *testing.T) {
	pool := newFakePool(map[string]fakeRoute{
		"http://a/": {status: 200, body: `[1,2,3,4,5]`},
	})
	stats := &recordingStats{}
	out := Fetcher{Stats: stats, MaxBodyBytes: 4}.Fetch(context.Background(), pool, "http://a/")
	if out.OK() {
		t.Fatalf("expected failure for oversized body")
	}
	if evs := stats.snapshot(); len(evs) != 1 || evs[0].Kind != domain.KindParse {
		t.Fatalf("expected parse failure event, got %+v", evs)
	}
}

func TestFetcher_Fetch_LogsFailureWithURL(t *testing.T) {
	var buf bytes.Buffer
	pool := newFakePool(map[string]fakeRoute{
		"http://a/broken": {status: 500},
	})
	f := Fetcher{Logger: zerolog.New(&buf)}

	_ = f.Fetch(context.Background(), pool, "http://a/broken")

	logged := buf.String()
	if !strings.Contains(logged, "fetch failed") || !strings.Contains(logged, "http://a/broken") {
		t.Fatalf("expected failure log with url, got %q", logged)
	}
	if !strings.Contains(logged, `"kind":"status"`) {
		t.Fatalf("expected kind in log, got %q", logged)
	}
}

func TestFetcher_Fetch_StatsErrorDoesNotChangeOutcome(t *testing.T) {
	stats := &recordingStats{err: errors.New("redis down")}
	pool := newFakePool(map[string]fakeRoute{
		"http://a/": {status: 200, body: `[1]`},
	})
	out := Fetcher{Stats: stats}.Fetch(context.Background(), pool, "http://a/")
	if !out.OK() {
		t.Fatalf("expected success despite stats error, got %q", out.Reason)
	}
}

func TestFetcher_Fetch_PanicBecomesFailure(t *testing.T) {
	out := Fetcher{}.Fetch(context.Background(), panicPool{}, "http://a/")
	if out.OK() {
		t.Fatalf("expected failure")
	}
	if !strings.Contains(out.Reason, "boom") {
		t.Fatalf("expected panic value in reason, got %q", out.Reason)
	}
}

func TestHostOf(t *testing.T) {
	if got := hostOf("http://example.com:8080/x"); got != "example.com:8080" {
		t.Fatalf("expected host with port, got %q", got)
	}
	if got := hostOf("not a url"); got != "invalid" {
		t.Fatalf("expected invalid, got %q", got)
	}
}
