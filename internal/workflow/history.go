package workflow

import (
	"sync"
	"time"
)

// Entry is one undoable batch: the keys moved together and the status they
// all left.
type Entry struct {
	Keys []string
	From string

	// To labels the batch's target for display only.
	To string
	At time.Time
}

// History is a per-session stack of undoable batches. It lives in memory
// only.
type History struct {
	mu      sync.Mutex
	entries []Entry
}

// Push appends e.
func (h *History) Push(e Entry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, e)
}

// Pop removes and returns the most recent entry.
func (h *History) Pop() (Entry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) == 0 {
		return Entry{}, false
	}
	e := h.entries[len(h.entries)-1]
	h.entries = h.entries[:len(h.entries)-1]
	return e, true
}

// Peek returns the most recent entry without removing it.
func (h *History) Peek() (Entry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) == 0 {
		return Entry{}, false
	}
	return h.entries[len(h.entries)-1], true
}

// Len returns the number of undoable batches.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Entries returns a copy of the stack, oldest first.
func (h *History) Entries() []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Entry, len(h.entries))
	copy(out, h.entries)
	return out
}
