package source

import (
	"sync"
	"time"
)

// Status is the health record for one data source.
type Status struct {
	Active     bool       `json:"active"`
	LastUpdate *time.Time `json:"lastUpdate"`
	Error      *string    `json:"error"`
}

// StatusBoard tracks per-source health. It is constructed once at startup
// and passed by reference into every component that reports or reads
// source health; writes are serialized by the mutex so adapters could run
// in parallel without lost updates.
type StatusBoard struct {
	mu       sync.RWMutex
	statuses map[string]Status
	onChange func(name string, st Status)
}

func NewStatusBoard(names ...string) *StatusBoard {
	b := &StatusBoard{statuses: make(map[string]Status, len(names))}
	for _, name := range names {
		b.statuses[name] = Status{Active: false}
	}
	return b
}

// OnChange registers a single change listener (the broadcast hub). Must be
// called before the pipeline starts.
func (b *StatusBoard) OnChange(fn func(name string, st Status)) {
	b.mu.Lock()
	b.onChange = fn
	b.mu.Unlock()
}

func (b *StatusBoard) MarkSuccess(name string) {
	b.set(name, Status{Active: true})
}

func (b *StatusBoard) MarkFailure(name string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	b.set(name, Status{Active: false, Error: &msg})
}

func (b *StatusBoard) set(name string, st Status) {
	if b == nil || name == "" {
		return
	}
	now := time.Now().UTC()
	st.LastUpdate = &now

	b.mu.Lock()
	b.statuses[name] = st
	fn := b.onChange
	b.mu.Unlock()

	if fn != nil {
		fn(name, st)
	}
}

func (b *StatusBoard) Get(name string) (Status, bool) {
	if b == nil {
		return Status{}, false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	st, ok := b.statuses[name]
	return st, ok
}

// Snapshot returns a copy of the full board.
func (b *StatusBoard) Snapshot() map[string]Status {
	if b == nil {
		return nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]Status, len(b.statuses))
	for name, st := range b.statuses {
		out[name] = st
	}
	return out
}
