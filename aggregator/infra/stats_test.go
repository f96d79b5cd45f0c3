package infra

import (
	"context"
	"errors"
	"testing"
	"time"

	"numbers-gateway/aggregator/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
)

type failingStats struct{}

func (failingStats) Record(context.Context, domain.FetchEvent) error { return errors.New("down") }

func TestMemoryStatsStore_CountsByResultHostAndKind(t *testing.T) {
	s := NewMemoryStatsStore(WithTrackHosts(true))
	ctx := context.Background()

	_ = s.Record(ctx, domain.FetchEvent{Host: "a", Success: true})
	_ = s.Record(ctx, domain.FetchEvent{Host: "a", Kind: domain.KindStatus})
	_ = s.Record(ctx, domain.FetchEvent{Host: "b", Kind: domain.KindParse})

	if got := s.Total(); got.Succeeded != 1 || got.Failed != 2 {
		t.Fatalf("unexpected totals %+v", got)
	}
	byHost := s.ByHost()
	if byHost["a"] != (Counters{Succeeded: 1, Failed: 1}) {
		t.Fatalf("unexpected counters for a: %+v", byHost["a"])
	}

	snap := s.Snapshot()
	if snap.FailuresByKind["status"] != 1 || snap.FailuresByKind["parse"] != 1 {
		t.Fatalf("unexpected failures by kind %+v", snap.FailuresByKind)
	}
	if len(snap.ByHost) != 2 {
		t.Fatalf("expected 2 hosts in snapshot, got %d", len(snap.ByHost))
	}
}

func TestMemoryStatsStore_HostsNotTrackedByDefault(t *testing.T) {
	s := NewMemoryStatsStore()
	_ = s.Record(context.Background(), domain.FetchEvent{Host: "a", Success: true})

	if len(s.ByHost()) != 0 {
		t.Fatalf("expected no host counters")
	}
	if s.Snapshot().ByHost != nil {
		t.Fatalf("expected snapshot without hosts")
	}
}

func TestRedisStatsStore_Commands(t *testing.T) {
	s := NewRedisStatsStore(nil, WithStatsPrefix("app:stats:"), WithStatsTTL(time.Hour), WithStatsTrackHosts(true))
	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	cmds := s.commands(domain.FetchEvent{Host: "h:80", Kind: domain.KindTransport, At: at})

	want := []hincr{
		{key: "app:stats:total", field: "failed"},
		{key: "app:stats:total", field: "failed:transport"},
		{key: "app:stats:minute:202405060708", field: "failed", expire: time.Hour},
		{key: "app:stats:host:h:80", field: "failed", expire: time.Hour},
	}
	if len(cmds) != len(want) {
		t.Fatalf("expected %d commands, got %+v", len(want), cmds)
	}
	for i := range want {
		if cmds[i] != want[i] {
			t.Fatalf("command %d: expected %+v, got %+v", i, want[i], cmds[i])
		}
	}
}

func TestRedisStatsStore_CommandsWithoutBucket(t *testing.T) {
	s := NewRedisStatsStore(nil, WithStatsBucket(" NONE "))
	cmds := s.commands(domain.FetchEvent{Host: "h", Success: true})

	if len(cmds) != 1 || cmds[0] != (hincr{key: "numbers:stats:total", field: "succeeded"}) {
		t.Fatalf("expected only the total counter, got %+v", cmds)
	}
}

func TestRedisStatsStore_RecordNilClientIsNoop(t *testing.T) {
	var s *RedisStatsStore
	if err := s.Record(context.Background(), domain.FetchEvent{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if err := NewRedisStatsStore(nil).Record(context.Background(), domain.FetchEvent{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestRedisStatsStore_RecordReportsConnectionError(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer func() { _ = rdb.Close() }()

	s := NewRedisStatsStore(rdb)
	if err := s.Record(context.Background(), domain.FetchEvent{Success: true}); err == nil {
		t.Fatalf("expected error from unreachable redis")
	}
}

func TestPrometheusStatsStore_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, err := NewPrometheusStatsStore(reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()

	_ = s.Record(ctx, domain.FetchEvent{Success: true, Duration: 10 * time.Millisecond})
	_ = s.Record(ctx, domain.FetchEvent{Kind: domain.KindStatus})
	_ = s.Record(ctx, domain.FetchEvent{Kind: domain.KindStatus})
	_ = s.Record(ctx, domain.FetchEvent{})

	if got := testutil.ToFloat64(s.fetches.WithLabelValues("success", "none")); got != 1 {
		t.Fatalf("expected 1 success, got %v", got)
	}
	if got := testutil.ToFloat64(s.fetches.WithLabelValues("failure", "status")); got != 2 {
		t.Fatalf("expected 2 status failures, got %v", got)
	}
	if got := testutil.ToFloat64(s.fetches.WithLabelValues("failure", "unknown")); got != 1 {
		t.Fatalf("expected 1 unknown failure, got %v", got)
	}
	if got := testutil.CollectAndCount(s.duration); got != 2 {
		t.Fatalf("expected 2 histogram series, got %d", got)
	}
}

func TestPrometheusStatsStore_DoubleRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPrometheusStatsStore(reg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := NewPrometheusStatsStore(reg); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}

func TestMultiStatsStore_RecordsEverywhereAndJoinsErrors(t *testing.T) {
	mem := NewMemoryStatsStore()
	m := MultiStatsStore{failingStats{}, nil, mem}

	err := m.Record(context.Background(), domain.FetchEvent{Success: true})
	if err == nil {
		t.Fatalf("expected joined error")
	}
	if mem.Total().Succeeded != 1 {
		t.Fatalf("expected memory store to record despite sibling error")
	}
}
