package session

import (
	"context"
	"encoding/json"
	"io"

	"inferd/pkg/types"
)

// Generate is the model-id surface used by the HTTP layer: it initializes the
// handle on demand, runs one generation, and streams NDJSON increment lines
// to w. It blocks until the final increment has been written (callers stream
// over the request's lifetime), cancelling the generation when ctx is done.
func (m *Manager) Generate(ctx context.Context, req types.GenerateRequest, w io.Writer, flush func()) error {
	h, err := m.Initialize(ctx, req.Model)
	if err != nil {
		return err
	}

	done := make(chan struct{})
	onIncrement := func(inc Increment) {
		line := types.Increment{Text: inc.Text, Final: inc.Final}
		if inc.Outcome != nil {
			line.Outcome = string(inc.Outcome.Kind)
			line.Content = inc.Outcome.Text
			if inc.Outcome.Err != nil {
				line.Error = inc.Outcome.Err.Error()
			}
		}
		b, err := json.Marshal(line)
		if err != nil {
			return
		}
		if _, err := w.Write(append(b, '\n')); err != nil {
			return
		}
		if flush != nil {
			flush()
		}
	}
	onCleanup := func() { close(done) }

	if err := m.RunInference(h, req.Prompt, onIncrement, onCleanup); err != nil {
		return err
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		// Client gone or shutdown: hasten the run, then wait for the terminal
		// signal so the writer is never touched after we return.
		m.Cancel(h)
		<-done
		return ctx.Err()
	}
}

// CancelModel requests cancellation by model id. Unknown ids report model not
// found; an idle handle is a no-op.
func (m *Manager) CancelModel(modelID string) error {
	h, ok := m.Handle(modelID)
	if !ok {
		return ErrModelNotFound(orUnspecified(modelID))
	}
	m.Cancel(h)
	return nil
}

// ResetModel resets the session context by model id.
func (m *Manager) ResetModel(modelID string) error {
	h, ok := m.Handle(modelID)
	if !ok {
		return ErrModelNotFound(orUnspecified(modelID))
	}
	return m.ResetSession(h)
}

// UnloadModel cleans up the handle by model id.
func (m *Manager) UnloadModel(modelID string) error {
	h, ok := m.Handle(modelID)
	if !ok {
		return ErrModelNotFound(orUnspecified(modelID))
	}
	return m.CleanUp(h)
}

// BusyModel reports the busy flag by model id; false for unknown ids.
func (m *Manager) BusyModel(modelID string) bool {
	h, ok := m.Handle(modelID)
	if !ok {
		return false
	}
	return m.IsBusy(h)
}

func orUnspecified(id string) string {
	if id == "" {
		return "(unspecified)"
	}
	return id
}
