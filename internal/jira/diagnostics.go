package jira

import (
	"sync"
	"time"
)

// StatusTransportFailure is the status recorded when no HTTP response was
// received at all.
const StatusTransportFailure = -1

// DebugInfo describes one gateway call for operator inspection.
type DebugInfo struct {
	URL    string    `json:"url"`
	Method string    `json:"method"`
	Params any       `json:"params,omitempty"`
	Status int       `json:"status"`
	Count  int       `json:"count"`
	Error  any       `json:"error,omitempty"`
	At     time.Time `json:"at"`
}

// Failed reports whether the call did not produce a 2xx response.
func (d DebugInfo) Failed() bool {
	return d.Status < 200 || d.Status >= 300
}

// Recorder keeps the most recent DebugInfo of a single client. Each session
// owns its own Recorder; it is never shared between sessions.
type Recorder struct {
	mu   sync.RWMutex
	last DebugInfo
	set  bool
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) record(info DebugInfo) {
	if info.At.IsZero() {
		info.At = time.Now()
	}
	r.mu.Lock()
	r.last = info
	r.set = true
	r.mu.Unlock()
}

// Last returns the most recent call, and false if nothing was recorded yet.
func (r *Recorder) Last() (DebugInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last, r.set
}
