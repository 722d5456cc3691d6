package session

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"inferd/internal/common/fsutil"
	"inferd/internal/engine"
	"inferd/pkg/types"
)

// Manager owns zero-or-one in-flight generation per handle, exposes busy/idle
// state, and routes streamed increments to caller-supplied listeners.
type Manager struct {
	mu      sync.RWMutex
	handles map[string]*Handle

	registry       []types.Model
	storageDir     string
	defaultModel   string
	eng            engine.Engine
	genCfg         engine.Config
	interruptGrace time.Duration
	publisher      EventPublisher
	log            zerolog.Logger
	startTime      time.Time

	generations atomic.Uint64
	rejections  atomic.Uint64
}

// Initialize loads the model identified by modelID (or the configured default
// when empty) and returns its handle. Initializing an already-loaded model
// returns the existing handle; configuration is fixed at first load.
func (m *Manager) Initialize(ctx context.Context, modelID string) (*Handle, error) {
	return m.InitializeWithConfig(ctx, modelID, m.genCfg)
}

// InitializeWithConfig is Initialize with an explicit per-handle generation
// configuration. The configuration is sanitized before reaching the engine.
func (m *Manager) InitializeWithConfig(ctx context.Context, modelID string, cfg engine.Config) (*Handle, error) {
	if modelID == "" {
		modelID = m.defaultModel
		if modelID == "" {
			return nil, ErrModelNotFound("(unspecified)")
		}
	}

	m.mu.RLock()
	h, ok := m.handles[modelID]
	m.mu.RUnlock()
	if ok {
		return h, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := m.resolvePath(modelID)
	if err != nil {
		m.publisher.Publish(Event{Name: "load_not_found", ModelID: modelID, Fields: map[string]any{}})
		return nil, err
	}

	start := time.Now()
	m.log.Debug().Str("model", modelID).Str("path", path).Msg("load start")
	m.publisher.Publish(Event{Name: "load_start", ModelID: modelID, Fields: map[string]any{"path": path}})

	sane := cfg.Sanitized()
	inst, err := m.eng.Load(path, sane)
	if err != nil {
		m.log.Error().Str("model", modelID).Err(err).Msg("load failed")
		m.publisher.Publish(Event{Name: "load_error", ModelID: modelID, Fields: map[string]any{"error": err.Error()}})
		return nil, err
	}

	h = &Handle{
		id:       modelID,
		path:     path,
		cfg:      sane,
		state:    StateIdle,
		inst:     inst,
		lastUsed: time.Now(),
		gate:     make(chan struct{}, 1),
	}

	m.mu.Lock()
	// Another caller may have raced the load; keep the first one and discard ours.
	if existing, ok := m.handles[modelID]; ok {
		m.mu.Unlock()
		_ = inst.Close()
		return existing, nil
	}
	m.handles[modelID] = h
	m.mu.Unlock()

	metricLoadsTotal.Inc()
	m.log.Info().Str("model", modelID).Dur("dur", time.Since(start)).Msg("load ready")
	m.publisher.Publish(Event{Name: "load_ready", ModelID: modelID, Fields: map[string]any{"dur_ms": int(time.Since(start) / time.Millisecond)}})
	return h, nil
}

// Handle returns the initialized handle for modelID, if any. An empty id
// resolves to the configured default model.
func (m *Manager) Handle(modelID string) (*Handle, bool) {
	if modelID == "" {
		modelID = m.defaultModel
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.handles[modelID]
	return h, ok
}

// ListModels returns a copy of the model registry.
func (m *Manager) ListModels() []types.Model {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.Model, len(m.registry))
	copy(out, m.registry)
	return out
}

// Ready reports whether at least one handle is loaded and not unloaded.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, h := range m.handles {
		h.mu.Lock()
		loaded := h.state != StateUnloaded && h.inst != nil
		h.mu.Unlock()
		if loaded {
			return true
		}
	}
	return false
}

// Status builds a detailed status response for /status.
func (m *Manager) Status() types.StatusResponse {
	m.mu.RLock()
	defer m.mu.RUnlock()
	resp := types.StatusResponse{
		DefaultModel:     m.defaultModel,
		UptimeSeconds:    int64(time.Since(m.startTime).Seconds()),
		ServerTimeUnix:   time.Now().Unix(),
		GenerationsTotal: m.generations.Load(),
		RejectionsTotal:  m.rejections.Load(),
	}
	resp.Handles = make([]types.HandleStatus, 0, len(m.handles))
	for _, h := range m.handles {
		h.mu.Lock()
		hs := types.HandleStatus{
			ModelID:     h.id,
			State:       string(h.state),
			Busy:        h.busy(),
			LastUsed:    h.lastUsed.Unix(),
			LastOutcome: string(h.lastOutcome),
		}
		h.mu.Unlock()
		resp.Handles = append(resp.Handles, hs)
	}
	return resp
}

// resolvePath maps a model id to an absolute file path: a registry entry's
// path first, then direct resolution against the private storage dir.
func (m *Manager) resolvePath(modelID string) (string, error) {
	candidate := modelID
	for _, mdl := range m.registry {
		if mdl.ID == modelID {
			candidate = mdl.Path
			break
		}
	}
	path, err := fsutil.ResolveModel(candidate, m.storageDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrModelNotFound(modelID)
		}
		return "", err
	}
	return path, nil
}
