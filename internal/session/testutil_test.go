package session

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"inferd/internal/engine"
	"inferd/pkg/types"
)

// createModelFile creates a small model file and returns its path.
func createModelFile(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte("model-bytes"), 0o644); err != nil {
		t.Fatalf("write model file: %v", err)
	}
	return p
}

// newTestManager builds a manager over a single fake-backed model "m.task".
func newTestManager(t *testing.T, inst *fakeInstance, opts ...func(*ManagerConfig)) *Manager {
	t.Helper()
	dir := t.TempDir()
	p := createModelFile(t, dir, "m.task")
	cfg := ManagerConfig{
		Registry:     []types.Model{{ID: "m.task", Name: "m.task", Path: p}},
		DefaultModel: "m.task",
		Engine:       &fakeEngine{inst: inst},
	}
	for _, o := range opts {
		o(&cfg)
	}
	return NewWithConfig(cfg)
}

// fakeEngine hands out a scripted instance.
type fakeEngine struct {
	mu       sync.Mutex
	loadErr  error
	inst     *fakeInstance
	loads    int
	lastPath string
	lastCfg  engine.Config
}

func (e *fakeEngine) Load(path string, cfg engine.Config) (engine.Instance, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loads++
	e.lastPath = path
	e.lastCfg = cfg
	if e.loadErr != nil {
		return nil, e.loadErr
	}
	if e.inst == nil {
		e.inst = &fakeInstance{fragments: []string{"ok"}}
	}
	return e.inst, nil
}

// fakeInstance is a scripted engine instance.
//
//   - fragments are pushed in order, then the stream closes (or fails with
//     failErr when set).
//   - genErr makes Generate itself fail.
//   - waitInterrupt makes the producer park after the fragments until the
//     stream is interrupted, then close cooperatively.
//   - ignoreInterrupt returns a stream that never honors Interrupt and never
//     closes, for watchdog tests.
//   - gateCh, when set, is received from before each fragment so tests can
//     pace the producer.
type fakeInstance struct {
	fragments       []string
	failErr         error
	genErr          error
	waitInterrupt   bool
	ignoreInterrupt bool
	gateCh          chan struct{}

	generates atomic.Int32
	resets    atomic.Int32
	closes    atomic.Int32
}

func (i *fakeInstance) Generate(prompt string) (engine.Stream, error) {
	i.generates.Add(1)
	if i.genErr != nil {
		return nil, i.genErr
	}
	if i.ignoreInterrupt {
		st := &stubbornStream{ch: make(chan engine.Fragment, len(i.fragments))}
		for _, f := range i.fragments {
			st.ch <- engine.Fragment{Text: f}
		}
		// Never closed: the engine keeps the stream open forever.
		return st, nil
	}
	st := engine.NewPushStream(1)
	go func() {
		for _, f := range i.fragments {
			if i.gateCh != nil {
				<-i.gateCh
			}
			if !st.Push(f) {
				st.Close()
				return
			}
		}
		if i.waitInterrupt {
			<-st.Interrupted()
			st.Close()
			return
		}
		if i.failErr != nil {
			st.Fail(i.failErr)
			return
		}
		st.Close()
	}()
	return st, nil
}

func (i *fakeInstance) Reset() error {
	i.resets.Add(1)
	return nil
}

func (i *fakeInstance) Close() error {
	i.closes.Add(1)
	return nil
}

// stubbornStream ignores Interrupt and never closes its channel.
type stubbornStream struct {
	ch         chan engine.Fragment
	interrupts atomic.Int32
}

func (s *stubbornStream) Fragments() <-chan engine.Fragment { return s.ch }
func (s *stubbornStream) Interrupt()                        { s.interrupts.Add(1) }

// recorder collects increments and cleanup signals from listener callbacks.
type recorder struct {
	mu        sync.Mutex
	incs      []Increment
	cleanups  int
	cleanupCh chan struct{}
}

func newRecorder() *recorder {
	return &recorder{cleanupCh: make(chan struct{}, 8)}
}

func (rec *recorder) onIncrement(inc Increment) {
	rec.mu.Lock()
	rec.incs = append(rec.incs, inc)
	rec.mu.Unlock()
}

func (rec *recorder) onCleanup() {
	rec.mu.Lock()
	rec.cleanups++
	rec.mu.Unlock()
	rec.cleanupCh <- struct{}{}
}

func (rec *recorder) increments() []Increment {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	out := make([]Increment, len(rec.incs))
	copy(out, rec.incs)
	return out
}

func (rec *recorder) cleanupCount() int {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.cleanups
}

// waitCleanup blocks until the cleanup listener has fired, or fails the test.
func (rec *recorder) waitCleanup(t *testing.T) {
	t.Helper()
	select {
	case <-rec.cleanupCh:
	case <-time.After(4 * time.Second):
		t.Fatalf("cleanup listener did not fire in time")
	}
}

// waitUntil polls cond until it holds or the deadline passes.
func waitUntil(t *testing.T, d time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v: %s", d, msg)
}

// finalOf returns the single final increment, failing if there is not exactly one.
func finalOf(t *testing.T, incs []Increment) Increment {
	t.Helper()
	var finals []Increment
	for _, inc := range incs {
		if inc.Final {
			finals = append(finals, inc)
		}
	}
	if len(finals) != 1 {
		t.Fatalf("expected exactly one final increment, got %d (all: %+v)", len(finals), incs)
	}
	if !incs[len(incs)-1].Final {
		t.Fatalf("final increment was not the last emission: %+v", incs)
	}
	return finals[0]
}

// concatNonFinal concatenates the text of all non-final increments.
func concatNonFinal(incs []Increment) string {
	var out string
	for _, inc := range incs {
		if !inc.Final {
			out += inc.Text
		}
	}
	return out
}
