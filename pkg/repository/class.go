package repository

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/repoman/pkg/config"
	"github.com/matzehuels/repoman/pkg/events"
	"github.com/matzehuels/repoman/pkg/integrations"
)

// Env carries the collaborators a Manager passes to every Factory. They are
// fixed when the Manager is built.
type Env struct {
	// IO is the logging sink. Never nil inside a Factory.
	IO *log.Logger

	// Config is the loaded configuration document. May be nil.
	Config *config.Config

	// Dispatcher receives repository events. May be nil.
	Dispatcher events.Dispatcher

	// Fetcher is the network-fetch client. A Factory sees it only when its
	// Class was registered with AcceptsFetcher set; otherwise it is nil.
	Fetcher *integrations.Client
}

// Logger returns IO, or a logger that discards everything if IO is nil.
func (e Env) Logger() *log.Logger {
	if e.IO == nil {
		return log.New(io.Discard)
	}
	return e.IO
}

// Factory constructs a repository from its raw configuration.
type Factory func(cfg Config, env Env) (Repository, error)

// Class describes how to build repositories of one type.
type Class struct {
	// New constructs the repository.
	New Factory

	// AcceptsFetcher reports whether New expects Env.Fetcher to be set.
	AcceptsFetcher bool
}

// NewClass returns a Class for repositories that never touch the network.
func NewClass(f Factory) Class {
	return Class{New: f}
}

// NewFetchingClass returns a Class whose factory receives the Manager's
// network-fetch client.
func NewFetchingClass(f Factory) Class {
	return Class{New: f, AcceptsFetcher: true}
}
