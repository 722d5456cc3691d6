package session

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"inferd/internal/engine"
)

// RunInference starts one generation on the handle and returns without
// waiting for it. The listener contract:
//
//   - onIncrement receives ordered text fragments from a worker goroutine,
//     then exactly one final increment carrying the tagged outcome, for every
//     accepted call whether it completed, was cancelled, or failed.
//   - onCleanup fires exactly once when the call's resources are released, no
//     earlier than the final increment; the handle reads as idle by then.
//
// If the handle is already busy the call is rejected: no second generation is
// started, onCleanup is invoked synchronously on the caller's goroutine so
// wait logic does not hang, and a busy error is returned. Callers are expected
// to check IsBusy first but must tolerate losing that race.
//
// On acceptance the handle reads as busy before RunInference returns, and in
// all cases before the first increment is emitted.
func (m *Manager) RunInference(h *Handle, prompt string, onIncrement IncrementListener, onCleanup CleanupListener) error {
	if h == nil {
		return notInitializedError{id: "(nil)"}
	}
	if onIncrement == nil {
		return errors.New("increment listener is required")
	}

	h.mu.Lock()
	if h.state == StateUnloaded || h.inst == nil {
		h.mu.Unlock()
		return notInitializedError{id: h.id}
	}
	// Accept/reject atomically: claim the single in-flight slot or bail.
	select {
	case h.gate <- struct{}{}:
	default:
		h.mu.Unlock()
		m.rejections.Add(1)
		metricRejectionsTotal.Inc()
		m.log.Debug().Str("model", h.id).Msg("run rejected: busy")
		m.publisher.Publish(Event{Name: "run_rejected", ModelID: h.id, Fields: map[string]any{}})
		if onCleanup != nil {
			onCleanup()
		}
		return busyError{modelID: h.id}
	}

	r := &run{
		id:    uuid.NewString(),
		abort: make(chan struct{}),
	}
	h.cur = r
	h.state = StateRunning
	h.lastUsed = time.Now()
	inst := h.inst
	h.mu.Unlock()

	m.generations.Add(1)
	metricActiveGenerations.Inc()
	m.log.Debug().Str("model", h.id).Str("run", r.id).Msg("run start")
	m.publisher.Publish(Event{Name: "run_start", ModelID: h.id, Fields: map[string]any{"run": r.id}})

	go m.runGeneration(h, r, inst, prompt, onIncrement, onCleanup)
	return nil
}

// runGeneration is the worker context: it drains the engine stream, forwards
// ordered increments, classifies the outcome, and releases the busy slot.
// It owns the terminal signal; nothing else may emit final=true or fire
// cleanup for an accepted call.
func (m *Manager) runGeneration(h *Handle, r *run, inst engine.Instance, prompt string, onIncrement IncrementListener, onCleanup CleanupListener) {
	start := time.Now()
	var sb strings.Builder
	outcome := Outcome{Kind: OutcomeCompleted}
	abandoned := false

	st, err := inst.Generate(prompt)
	if err != nil {
		outcome = Outcome{Kind: OutcomeFailed, Err: err}
	} else {
		r.setStream(st)
		// A cancel may have landed before the stream existed; honor it now.
		if r.cancelled.Load() {
			st.Interrupt()
		}
	loop:
		for {
			select {
			case frag, ok := <-st.Fragments():
				if !ok {
					break loop
				}
				if frag.Err != nil {
					outcome = Outcome{Kind: OutcomeFailed, Err: frag.Err}
					break loop
				}
				sb.WriteString(frag.Text)
				metricFragmentsTotal.Inc()
				onIncrement(Increment{Text: frag.Text})
			case <-r.abort:
				// Interrupt watchdog fired: the engine kept producing past the
				// grace period. Abandon the stream, accept the native leak.
				abandoned = true
				metricInterruptTimeouts.Inc()
				m.log.Warn().Str("model", h.id).Str("run", r.id).Msg("interrupt ignored; abandoning stream")
				m.publisher.Publish(Event{Name: "interrupt_timeout", ModelID: h.id, Fields: map[string]any{"run": r.id}})
				break loop
			}
		}
	}

	// A cancelled run is cancelled regardless of how the stream ended; the
	// fragment set is whatever was produced up to the interrupt, no fabricated
	// suffix.
	if r.cancelled.Load() {
		outcome = Outcome{Kind: OutcomeCancelled}
	}
	outcome.Text = sb.String()

	// Terminal signal, exactly once, always last.
	onIncrement(Increment{Final: true, Outcome: &outcome})

	h.mu.Lock()
	h.cur = nil
	h.state = StateIdle
	h.lastOutcome = outcome.Kind
	h.lastUsed = time.Now()
	h.mu.Unlock()
	<-h.gate // release the single-flight slot: busy reads false from here on

	metricActiveGenerations.Dec()
	metricGenerationsTotal.WithLabelValues(string(outcome.Kind)).Inc()
	metricGenerationDuration.Observe(time.Since(start).Seconds())
	ev := m.log.Debug().Str("model", h.id).Str("run", r.id).Str("outcome", string(outcome.Kind)).Dur("dur", time.Since(start))
	if outcome.Err != nil {
		ev = ev.Err(outcome.Err)
	}
	ev.Bool("abandoned", abandoned).Msg("run done")
	m.publisher.Publish(Event{Name: "run_done", ModelID: h.id, Fields: map[string]any{
		"run":     r.id,
		"outcome": string(outcome.Kind),
		"dur_ms":  int(time.Since(start) / time.Millisecond),
	}})

	if onCleanup != nil {
		onCleanup()
	}
}
