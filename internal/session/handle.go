package session

import (
	"sync"
	"sync/atomic"
	"time"

	"inferd/internal/engine"
)

// State represents the lifecycle state of a handle.
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateUnloaded State = "unloaded"
)

// Handle is the unit of exclusivity: one loaded engine instance, its sanitized
// immutable configuration, and the busy gate. A handle is shared by all
// callers of a given model; all mutation goes through the Manager's gated
// entry points.
type Handle struct {
	id   string
	path string
	cfg  engine.Config

	mu          sync.Mutex
	state       State
	inst        engine.Instance
	cur         *run
	lastUsed    time.Time
	lastOutcome OutcomeKind

	// gate holds at most one token: the single in-flight generation.
	// len(gate) doubles as the lock-free busy read.
	gate chan struct{}
}

// ID returns the model id this handle serves.
func (h *Handle) ID() string { return h.id }

// Config returns the sanitized generation configuration, fixed at
// initialization.
func (h *Handle) Config() engine.Config { return h.cfg }

// busy is a lock-free read of the single-flight gate. It never blocks on
// generation progress.
func (h *Handle) busy() bool { return len(h.gate) > 0 }

// run is the bookkeeping for one in-flight generation.
type run struct {
	id        string
	cancelled atomic.Bool

	mu     sync.Mutex
	stream engine.Stream

	// abort is closed by the interrupt watchdog when the engine ignores an
	// interrupt past the grace period; the worker then abandons the stream.
	abort     chan struct{}
	abortOnce sync.Once
}

func (r *run) setStream(st engine.Stream) {
	r.mu.Lock()
	r.stream = st
	r.mu.Unlock()
}

func (r *run) getStream() engine.Stream {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stream
}

func (r *run) forceAbort() {
	r.abortOnce.Do(func() { close(r.abort) })
}
