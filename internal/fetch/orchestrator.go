package fetch

import (
	"context"
	"fmt"
	"sync"
)

// Orchestrator issues page fetches for one viewer. Starting a fetch cancels
// any fetch still outstanding, and only the newest request may commit its
// page to the visible state. The context passed to Fetch stays owned by the
// caller.
type Orchestrator struct {
	source PageSource

	mu        sync.Mutex
	seq       uint64
	cancel    context.CancelFunc
	committed *Page
	request   PageRequest
}

// NewOrchestrator wraps source.
func NewOrchestrator(source PageSource) *Orchestrator {
	return &Orchestrator{source: source}
}

// Fetch requests a page. A request overtaken by a newer one returns
// ErrSuperseded and leaves the committed page untouched, whatever its own
// outcome was. A failed request also leaves the last good page in place.
func (o *Orchestrator) Fetch(ctx context.Context, req PageRequest) (Page, error) {
	o.mu.Lock()
	if o.cancel != nil {
		o.cancel()
	}
	o.seq++
	ticket := o.seq
	fetchCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.mu.Unlock()

	page, err := o.source.FetchPage(fetchCtx, req)

	o.mu.Lock()
	defer o.mu.Unlock()
	cancel()
	if ticket != o.seq {
		return Page{}, ErrSuperseded
	}
	o.cancel = nil
	if err != nil {
		if ctx.Err() != nil {
			return Page{}, fmt.Errorf("%w: %w", ErrSuperseded, ctx.Err())
		}
		return Page{}, err
	}
	committed := page
	o.committed = &committed
	o.request = req
	return page, nil
}

// Latest returns the last committed page and the request that produced it.
func (o *Orchestrator) Latest() (Page, PageRequest, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.committed == nil {
		return Page{}, PageRequest{}, false
	}
	return *o.committed, o.request, true
}

// Idle reports whether no fetch is outstanding.
func (o *Orchestrator) Idle() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cancel == nil
}

// Registry keeps one orchestrator per viewer key.
type Registry struct {
	source PageSource
	limit  int

	mu    sync.Mutex
	byKey map[string]*Orchestrator
}

// NewRegistry builds a registry holding at most limit orchestrators; idle
// ones are evicted first when the limit is reached.
func NewRegistry(source PageSource, limit int) *Registry {
	if limit <= 0 {
		limit = 1024
	}
	return &Registry{source: source, limit: limit, byKey: make(map[string]*Orchestrator)}
}

// For returns the orchestrator of key, creating it when needed.
func (r *Registry) For(key string) *Orchestrator {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.byKey[key]; ok {
		return o
	}
	if len(r.byKey) >= r.limit {
		for k, o := range r.byKey {
			if o.Idle() {
				delete(r.byKey, k)
			}
		}
	}
	o := NewOrchestrator(r.source)
	r.byKey[key] = o
	return o
}

// Len returns the number of tracked viewers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byKey)
}
