package schedule

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// DefaultUndoWindow is how long an archive can be undone.
const DefaultUndoWindow = 5 * time.Second

// UndoExpiredError is returned for a token that expired or was never issued.
type UndoExpiredError struct {
	Token string
}

func (e UndoExpiredError) Error() string {
	return fmt.Sprintf("undo %s is no longer available", e.Token)
}

// UndoEntry is one pending undo. Entries are exported so a caller can persist them
// between processes.
type UndoEntry[T any] struct {
	Token    string    `json:"token"`
	Value    T         `json:"value"`
	Deadline time.Time `json:"deadline"`
}

// UndoWindow keeps values for a fixed time after they are put.
type UndoWindow[T any] struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]UndoEntry[T]
}

// NewUndoWindow returns a window of ttl. now defaults to time.Now.
func NewUndoWindow[T any](ttl time.Duration, now func() time.Time) *UndoWindow[T] {
	if ttl <= 0 {
		ttl = DefaultUndoWindow
	}
	if now == nil {
		now = time.Now
	}
	return &UndoWindow[T]{ttl: ttl, now: now, entries: map[string]UndoEntry[T]{}}
}

func (w *UndoWindow[T]) TTL() time.Duration { return w.ttl }

// Put stores v under token and returns its deadline.
func (w *UndoWindow[T]) Put(token string, v T) time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	deadline := w.now().Add(w.ttl)
	w.entries[token] = UndoEntry[T]{Token: token, Value: v, Deadline: deadline}
	return deadline
}

// Take removes and returns the value for token if it has not expired.
func (w *UndoWindow[T]) Take(token string) (T, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	var zero T
	e, ok := w.entries[token]
	if !ok {
		return zero, UndoExpiredError{Token: token}
	}
	delete(w.entries, token)
	if !w.now().Before(e.Deadline) {
		return zero, UndoExpiredError{Token: token}
	}
	return e.Value, nil
}

// Discard drops token without using it.
func (w *UndoWindow[T]) Discard(token string) {
	w.mu.Lock()
	delete(w.entries, token)
	w.mu.Unlock()
}

// Sweep drops expired entries and returns how many were removed.
func (w *UndoWindow[T]) Sweep() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	now := w.now()
	n := 0
	for token, e := range w.entries {
		if !now.Before(e.Deadline) {
			delete(w.entries, token)
			n++
		}
	}
	return n
}

// Live returns the unexpired entries, soonest deadline first.
func (w *UndoWindow[T]) Live() []UndoEntry[T] {
	w.mu.Lock()
	defer w.mu.Unlock()
	now := w.now()
	out := make([]UndoEntry[T], 0, len(w.entries))
	for _, e := range w.entries {
		if now.Before(e.Deadline) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Deadline.Before(out[j].Deadline) })
	return out
}

// Load adds previously saved entries, skipping expired ones.
func (w *UndoWindow[T]) Load(entries []UndoEntry[T]) {
	w.mu.Lock()
	defer w.mu.Unlock()
	now := w.now()
	for _, e := range entries {
		if now.Before(e.Deadline) {
			w.entries[e.Token] = e
		}
	}
}
