package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	m := NoopManagerHooks{}
	m.OnQuery(ctx, "find_package", "monolog/monolog", 1, time.Second, nil)
	m.OnCreate(ctx, "composer", errors.New("boom"))

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "http")
	c.OnCacheMiss(ctx, "http")
	c.OnCacheSet(ctx, "http", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "repo.packagist.org", "/p2/monolog/monolog.json")
	h.OnResponse(ctx, "GET", "repo.packagist.org", "/p2/monolog/monolog.json", 200, time.Second)
	h.OnError(ctx, "GET", "repo.packagist.org", "/p2/monolog/monolog.json", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Manager().(NoopManagerHooks); !ok {
		t.Error("Manager() should return NoopManagerHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customManager := &testManagerHooks{}
	SetManagerHooks(customManager)
	if Manager() != customManager {
		t.Error("SetManagerHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Manager().(NoopManagerHooks); !ok {
		t.Error("Reset() should restore NoopManagerHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testManagerHooks{}
	SetManagerHooks(custom)
	SetManagerHooks(nil)

	if Manager() != custom {
		t.Error("SetManagerHooks(nil) should be ignored")
	}

	Reset()
}

type testManagerHooks struct{ NoopManagerHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }

func TestStats(t *testing.T) {
	ctx := context.Background()
	var s Stats

	s.OnQuery(ctx, "find_packages", "psr/log", 3, time.Millisecond, nil)
	s.OnQuery(ctx, "find_package", "psr/log", 0, time.Millisecond, errors.New("down"))
	s.OnCreate(ctx, "composer", nil)
	s.OnCreate(ctx, "vcs", errors.New("unregistered"))
	s.OnCacheHit(ctx, "http")
	s.OnCacheMiss(ctx, "http")
	s.OnCacheMiss(ctx, "http")
	s.OnCacheSet(ctx, "http", 10)
	s.OnRequest(ctx, "GET", "repo.packagist.org", "/p2/psr/log.json")
	s.OnResponse(ctx, "GET", "repo.packagist.org", "/p2/psr/log.json", 200, time.Millisecond)
	s.OnRequest(ctx, "GET", "repo.packagist.org", "/p2/psr/nope.json")
	s.OnResponse(ctx, "GET", "repo.packagist.org", "/p2/psr/nope.json", 404, time.Millisecond)
	s.OnError(ctx, "GET", "repo.packagist.org", "/", errors.New("reset"))

	want := StatsSnapshot{
		Queries:      2,
		QueryErrors:  1,
		Created:      1,
		CreateErrors: 1,
		CacheHits:    1,
		CacheMisses:  2,
		Requests:     2,
		HTTPErrors:   2,
	}
	if got := s.Snapshot(); got != want {
		t.Errorf("Snapshot() = %+v, want %+v", got, want)
	}
}
