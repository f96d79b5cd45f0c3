package infra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"numbers-gateway/aggregator/domain"

	"github.com/redis/go-redis/v9"
)

type RedisStatsStore struct {
	rdb *redis.Client

	prefix string
	// ttl aplica apenas em chaves de série temporal / por host.
	// total é cumulativo e não expira.
	ttl time.Duration

	bucket string // "minute" (padrão) ou "none"

	trackHosts bool
}

type RedisStatsOption func(*RedisStatsStore)

func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStatsStore) {
		s.prefix = strings.Trim(prefix, ":")
	}
}

func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStatsStore) { s.ttl = d }
}

func WithStatsBucket(bucket string) RedisStatsOption {
	return func(s *RedisStatsStore) { s.bucket = strings.ToLower(strings.TrimSpace(bucket)) }
}

func WithStatsTrackHosts(track bool) RedisStatsOption {
	return func(s *RedisStatsStore) { s.trackHosts = track }
}

func NewRedisStatsStore(rdb *redis.Client, opts ...RedisStatsOption) *RedisStatsStore {
	s := &RedisStatsStore{
		rdb:    rdb,
		prefix: "numbers:stats",
		ttl:    24 * time.Hour,
		bucket: "minute",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// hincr é um HINCRBY pendente; expire > 0 adiciona EXPIRE na mesma chave.
type hincr struct {
	key    string
	field  string
	expire time.Duration
}

func (s *RedisStatsStore) commands(ev domain.FetchEvent) []hincr {
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	field := "failed"
	if ev.Success {
		field = "succeeded"
	}

	totalKey := s.prefix + ":total"
	cmds := []hincr{{key: totalKey, field: field}}
	if !ev.Success && ev.Kind != "" {
		cmds = append(cmds, hincr{key: totalKey, field: "failed:" + string(ev.Kind)})
	}

	if s.bucket == "minute" {
		bucketKey := fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504"))
		cmds = append(cmds, hincr{key: bucketKey, field: field, expire: s.ttl})
	}

	if s.trackHosts {
		if h := strings.TrimSpace(ev.Host); h != "" {
			cmds = append(cmds, hincr{key: s.prefix + ":host:" + h, field: field, expire: s.ttl})
		}
	}
	return cmds
}

func (s *RedisStatsStore) Record(ctx context.Context, ev domain.FetchEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	pipe := s.rdb.Pipeline()
	for _, c := range s.commands(ev) {
		pipe.HIncrBy(ctx, c.key, c.field, 1)
		if c.expire > 0 {
			pipe.Expire(ctx, c.key, c.expire)
		}
	}

	_, err := pipe.Exec(ctx)
	return err
}
