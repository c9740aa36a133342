// Package events provides the optional event-dispatch collaborator handed to
// repository implementations.
//
// Repositories announce interesting moments (a remote fetch starting or
// finishing, a repository being created) through a [Dispatcher]. The
// standard implementation is [Bus], which fans events out to listeners
// registered by name.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event names emitted by repoman components.
const (
	PreFetch          = "pre-fetch"
	PostFetch         = "post-fetch"
	RepositoryCreated = "repository-created"
)

// Event is a single dispatched occurrence.
type Event struct {
	ID      uuid.UUID
	Name    string
	Time    time.Time
	Payload map[string]any
}

// Listener handles an event. Returning an error stops dispatch.
type Listener func(ctx context.Context, e Event) error

// Dispatcher publishes events.
type Dispatcher interface {
	Dispatch(ctx context.Context, name string, payload map[string]any) error
}

// Bus is a synchronous in-process [Dispatcher].
//
// Listeners run in registration order on the dispatching goroutine. Bus is
// safe for concurrent use.
type Bus struct {
	mu        sync.RWMutex
	listeners map[string][]Listener
	now       func() time.Time
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{
		listeners: make(map[string][]Listener),
		now:       time.Now,
	}
}

// On registers fn for events named name.
func (b *Bus) On(name string, fn Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[name] = append(b.listeners[name], fn)
}

// Listeners returns the number of listeners registered for name.
func (b *Bus) Listeners(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners[name])
}

// Dispatch stamps a new event and delivers it to every listener for name.
// The first listener error aborts delivery and is returned.
func (b *Bus) Dispatch(ctx context.Context, name string, payload map[string]any) error {
	b.mu.RLock()
	ls := append([]Listener(nil), b.listeners[name]...)
	b.mu.RUnlock()

	if len(ls) == 0 {
		return nil
	}

	e := Event{
		ID:      uuid.New(),
		Name:    name,
		Time:    b.now(),
		Payload: payload,
	}
	for _, fn := range ls {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// Dispatch sends an event through d if d is non-nil.
// Repository implementations use it because the dispatcher is optional.
func Dispatch(ctx context.Context, d Dispatcher, name string, payload map[string]any) error {
	if d == nil {
		return nil
	}
	return d.Dispatch(ctx, name, payload)
}

var _ Dispatcher = (*Bus)(nil)
