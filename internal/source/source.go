// Package source defines the job-board adapter contract and the registry
// the collector walks to find a usable provider.
package source

import (
	"context"

	"github.com/helio/keyword-mapper/internal/types"
)

// RunState is the lifecycle state of an in-flight provider search.
type RunState string

const (
	StateRunning  RunState = "running"
	StateDone     RunState = "done"
	StateFailed   RunState = "failed"
	StateTimedOut RunState = "timed_out"
)

// Handle identifies one in-flight search at a provider. Synchronous
// adapters may buffer results inside the handle and report done
// immediately.
type Handle struct {
	ID       string
	Provider string
}

// PollStatus is a snapshot of an asynchronous search.
type PollStatus struct {
	State        RunState
	ItemsSoFar   int
	ProviderNote string
}

// Adapter abstracts one external job-board provider. Implementations are
// registered at startup and swapped at runtime; the collector only depends
// on this contract.
//
// All errors returned by an adapter must be *ProviderError values so the
// collector can make retry decisions from the kind alone.
type Adapter interface {
	// Name is the provider identifier, stamped into each posting's
	// SourceID.
	Name() string

	// CredentialsOK reports whether the required configuration is
	// present. It must not make network calls.
	CredentialsOK() bool

	// StartSearch submits a search for role postings in location, capped
	// at maxItems. Synchronous providers complete the search here and
	// return a handle whose Poll reports done immediately.
	StartSearch(ctx context.Context, role, location string, maxItems int) (Handle, error)

	// Poll reports the state of an in-flight search.
	Poll(ctx context.Context, h Handle) (PollStatus, error)

	// Fetch retrieves up to count postings starting at offset.
	Fetch(ctx context.Context, h Handle, offset, count int) ([]types.JobPosting, error)

	// Cancel aborts an in-flight search. Best effort.
	Cancel(ctx context.Context, h Handle) error
}

// Registry holds adapters in priority order.
type Registry struct {
	adapters []Adapter
}

// NewRegistry creates a registry with adapters in the given priority
// order.
func NewRegistry(adapters ...Adapter) *Registry {
	return &Registry{adapters: adapters}
}

// Register appends an adapter at the lowest priority.
func (r *Registry) Register(a Adapter) {
	r.adapters = append(r.adapters, a)
}

// Available returns the adapters whose credentials are configured, in
// priority order.
func (r *Registry) Available() []Adapter {
	var out []Adapter
	for _, a := range r.adapters {
		if a.CredentialsOK() {
			out = append(out, a)
		}
	}
	return out
}

// First returns the highest-priority adapter with credentials, or nil.
func (r *Registry) First() Adapter {
	for _, a := range r.adapters {
		if a.CredentialsOK() {
			return a
		}
	}
	return nil
}
