package source

import (
	"sync"

	"github.com/google/uuid"

	"github.com/helio/keyword-mapper/internal/types"
)

// Buffer holds completed search results keyed by handle ID until Fetch
// drains them. Adapters are process-wide collaborators shared across
// concurrent runs, so all access is guarded.
//
// Entries are run-scoped: Page releases an entry as soon as its final page
// has been served, and Drop releases it on cancellation. Drained or unknown
// handles yield empty pages, which ends the caller's fetch loop.
type Buffer struct {
	mu      sync.Mutex
	results map[string][]types.JobPosting
}

// NewBuffer creates an empty result buffer.
func NewBuffer() *Buffer {
	return &Buffer{results: make(map[string][]types.JobPosting)}
}

// Put stores a completed search's postings and returns its new handle ID.
func (b *Buffer) Put(postings []types.JobPosting) string {
	id := uuid.NewString()
	b.mu.Lock()
	b.results[id] = postings
	b.mu.Unlock()
	return id
}

// Len reports the buffered posting count for a handle.
func (b *Buffer) Len(id string) (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	buffered, ok := b.results[id]
	return len(buffered), ok
}

// Page serves one page of results. Serving the final page releases the
// entry; later calls return an empty page.
func (b *Buffer) Page(id string, offset, count int) []types.JobPosting {
	b.mu.Lock()
	defer b.mu.Unlock()

	buffered, ok := b.results[id]
	if !ok || offset >= len(buffered) {
		delete(b.results, id)
		return nil
	}
	end := offset + count
	if end >= len(buffered) {
		end = len(buffered)
		delete(b.results, id)
	}
	// The page stays valid after release: deleting the map entry does not
	// free the backing array.
	return buffered[offset:end]
}

// Drop discards a handle's results.
func (b *Buffer) Drop(id string) {
	b.mu.Lock()
	delete(b.results, id)
	b.mu.Unlock()
}
