package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// Stats counts manager, cache and HTTP events. It implements all three hook
// interfaces and is safe for concurrent use. The zero value is ready.
type Stats struct {
	queries      atomic.Int64
	queryErrors  atomic.Int64
	created      atomic.Int64
	createErrors atomic.Int64
	cacheHits    atomic.Int64
	cacheMisses  atomic.Int64
	requests     atomic.Int64
	httpErrors   atomic.Int64
}

// StatsSnapshot is a point-in-time copy of [Stats].
type StatsSnapshot struct {
	Queries      int64 `json:"queries"`
	QueryErrors  int64 `json:"query_errors"`
	Created      int64 `json:"repositories_created"`
	CreateErrors int64 `json:"create_errors"`
	CacheHits    int64 `json:"cache_hits"`
	CacheMisses  int64 `json:"cache_misses"`
	Requests     int64 `json:"http_requests"`
	HTTPErrors   int64 `json:"http_errors"`
}

// Snapshot returns the current counters.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Queries:      s.queries.Load(),
		QueryErrors:  s.queryErrors.Load(),
		Created:      s.created.Load(),
		CreateErrors: s.createErrors.Load(),
		CacheHits:    s.cacheHits.Load(),
		CacheMisses:  s.cacheMisses.Load(),
		Requests:     s.requests.Load(),
		HTTPErrors:   s.httpErrors.Load(),
	}
}

func (s *Stats) OnQuery(_ context.Context, _, _ string, _ int, _ time.Duration, err error) {
	s.queries.Add(1)
	if err != nil {
		s.queryErrors.Add(1)
	}
}

func (s *Stats) OnCreate(_ context.Context, _ string, err error) {
	if err != nil {
		s.createErrors.Add(1)
		return
	}
	s.created.Add(1)
}

func (s *Stats) OnCacheHit(context.Context, string)      { s.cacheHits.Add(1) }
func (s *Stats) OnCacheMiss(context.Context, string)     { s.cacheMisses.Add(1) }
func (s *Stats) OnCacheSet(context.Context, string, int) {}

func (s *Stats) OnRequest(context.Context, string, string, string) { s.requests.Add(1) }
func (s *Stats) OnResponse(_ context.Context, _, _, _ string, status int, _ time.Duration) {
	if status >= 400 {
		s.httpErrors.Add(1)
	}
}
func (s *Stats) OnError(context.Context, string, string, string, error) { s.httpErrors.Add(1) }

var (
	_ ManagerHooks = (*Stats)(nil)
	_ CacheHooks   = (*Stats)(nil)
	_ HTTPHooks    = (*Stats)(nil)
)
