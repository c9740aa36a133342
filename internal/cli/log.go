package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/repoman/pkg/events"
	"github.com/matzehuels/repoman/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Found 12 packages (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default() if
// none is attached.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// logHooks reports manager queries and HTTP traffic at debug level and
// counts every event in stats.
type logHooks struct {
	logger *log.Logger
	stats  *observability.Stats
}

func (h logHooks) OnQuery(ctx context.Context, op, name string, results int, d time.Duration, err error) {
	h.stats.OnQuery(ctx, op, name, results, d, err)
	if err != nil {
		h.logger.Debug("Query failed", "op", op, "package", name, "error", err)
		return
	}
	h.logger.Debug("Query", "op", op, "package", name, "results", results, "took", d.Round(time.Millisecond))
}

func (h logHooks) OnCreate(ctx context.Context, typ string, err error) {
	h.stats.OnCreate(ctx, typ, err)
	if err != nil {
		h.logger.Debug("Repository construction failed", "type", typ, "error", err)
	}
}

func (h logHooks) OnCacheHit(ctx context.Context, kind string)  { h.stats.OnCacheHit(ctx, kind) }
func (h logHooks) OnCacheMiss(ctx context.Context, kind string) { h.stats.OnCacheMiss(ctx, kind) }

func (h logHooks) OnCacheSet(ctx context.Context, kind string, size int) {
	h.logger.Debug("Cached response", "kind", kind, "bytes", size)
}

func (h logHooks) OnRequest(ctx context.Context, method, host, path string) {
	h.stats.OnRequest(ctx, method, host, path)
	h.logger.Debug("HTTP request", "method", method, "host", host, "path", path)
}

func (h logHooks) OnResponse(ctx context.Context, method, host, path string, status int, d time.Duration) {
	h.stats.OnResponse(ctx, method, host, path, status, d)
	h.logger.Debug("HTTP response", "host", host, "path", path, "status", status, "took", d.Round(time.Millisecond))
}

func (h logHooks) OnError(ctx context.Context, method, host, path string, err error) {
	h.stats.OnError(ctx, method, host, path, err)
	h.logger.Warn("HTTP error", "host", host, "path", path, "error", err)
}

// installLogHooks routes observability hooks to logger and returns the
// counters they feed.
func installLogHooks(logger *log.Logger) *observability.Stats {
	h := logHooks{logger: logger, stats: &observability.Stats{}}
	observability.SetManagerHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
	return h.stats
}

// logFetchEvents subscribes debug logging to the fetch events.
func logFetchEvents(bus *events.Bus, logger *log.Logger) {
	fn := func(_ context.Context, e events.Event) error {
		logger.Debug("Event", "name", e.Name, "id", e.ID, "payload", e.Payload)
		return nil
	}
	bus.On(events.PreFetch, fn)
	bus.On(events.PostFetch, fn)
	bus.On(events.RepositoryCreated, fn)
}
