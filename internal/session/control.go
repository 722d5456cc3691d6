package session

import "time"

// IsBusy reports whether a generation is in flight on the handle. Lock-free;
// never blocks on generation progress.
func (m *Manager) IsBusy(h *Handle) bool {
	if h == nil {
		return false
	}
	return h.busy()
}

// Cancel requests early termination of the in-flight generation, if any.
// Non-blocking, idempotent, and a no-op on an idle handle. The only
// guarantees are eventual busy=false and eventual delivery of the pending
// final increment, bounded by engine behavior (or by the interrupt watchdog
// when configured), not by this call.
func (m *Manager) Cancel(h *Handle) {
	if h == nil {
		return
	}
	h.mu.Lock()
	r := h.cur
	h.mu.Unlock()
	if r == nil {
		return
	}
	r.cancelled.Store(true)
	if st := r.getStream(); st != nil {
		st.Interrupt()
	}
	m.log.Debug().Str("model", h.id).Str("run", r.id).Msg("cancel requested")
	m.publisher.Publish(Event{Name: "cancel", ModelID: h.id, Fields: map[string]any{"run": r.id}})
	if m.interruptGrace > 0 {
		time.AfterFunc(m.interruptGrace, r.forceAbort)
	}
}

// ResetSession clears the engine's accumulated conversational context so the
// next prompt starts fresh. Rejected with a busy error while a generation is
// in flight; it never interrupts one. Callers must Cancel and wait for the
// final increment first.
func (m *Manager) ResetSession(h *Handle) error {
	if h == nil {
		return notInitializedError{id: "(nil)"}
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state == StateUnloaded || h.inst == nil {
		return notInitializedError{id: h.id}
	}
	if h.busy() {
		m.publisher.Publish(Event{Name: "reset_rejected", ModelID: h.id, Fields: map[string]any{}})
		return busyError{modelID: h.id}
	}
	if err := h.inst.Reset(); err != nil {
		return err
	}
	h.lastUsed = time.Now()
	m.log.Debug().Str("model", h.id).Msg("session reset")
	m.publisher.Publish(Event{Name: "reset", ModelID: h.id, Fields: map[string]any{}})
	return nil
}

// CleanUp unloads the engine and invalidates the handle. Fails fast with a
// busy error while a generation is in flight. Terminal: the handle cannot be
// reused afterwards; a second CleanUp is a no-op.
func (m *Manager) CleanUp(h *Handle) error {
	if h == nil {
		return notInitializedError{id: "(nil)"}
	}
	h.mu.Lock()
	if h.state == StateUnloaded {
		h.mu.Unlock()
		return nil
	}
	if h.busy() {
		h.mu.Unlock()
		return busyError{modelID: h.id}
	}
	inst := h.inst
	h.inst = nil
	h.state = StateUnloaded
	h.mu.Unlock()

	var err error
	if inst != nil {
		err = inst.Close()
	}

	m.mu.Lock()
	if m.handles[h.id] == h {
		delete(m.handles, h.id)
	}
	m.mu.Unlock()

	m.log.Info().Str("model", h.id).Msg("handle cleaned up")
	m.publisher.Publish(Event{Name: "cleanup", ModelID: h.id, Fields: map[string]any{}})
	return err
}
