package session

import (
	"time"

	"github.com/rs/zerolog"

	"inferd/internal/engine"
	"inferd/pkg/types"
)

// Defaults applied when corresponding ManagerConfig fields are unset.
const (
	// defaultFragmentBuffer is the listener-side headroom between the engine
	// producer and the streaming worker.
	defaultFragmentBuffer = 64
)

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	// Registry of discoverable models (id -> file path).
	Registry []types.Model
	// StorageDir is the application's private model storage, searched when a
	// model id is not an existing absolute path.
	StorageDir string
	// DefaultModel is used when a caller omits the model id.
	DefaultModel string
	// Engine loads model files; required for real inference. Defaults to the
	// llama engine built into this binary (stub without the llama tag).
	Engine engine.Engine
	// GenConfig is the default per-handle generation configuration. It is
	// sanitized before reaching the engine.
	GenConfig engine.Config
	// InterruptGrace bounds how long a cancelled generation may keep its busy
	// slot after the interrupt. Zero disables the watchdog: if the engine
	// never honors the interrupt the handle stays busy, and callers observe
	// that rather than a masked release.
	InterruptGrace time.Duration
	// Publisher receives lifecycle events; defaults to a no-op.
	Publisher EventPublisher
	// Logger is used for structured logging; defaults to a disabled logger.
	Logger *zerolog.Logger
}

// NewWithConfig constructs a Manager from ManagerConfig.
func NewWithConfig(cfg ManagerConfig) *Manager {
	m := &Manager{
		registry:       cfg.Registry,
		storageDir:     cfg.StorageDir,
		defaultModel:   cfg.DefaultModel,
		eng:            cfg.Engine,
		genCfg:         cfg.GenConfig.Sanitized(),
		interruptGrace: cfg.InterruptGrace,
		publisher:      cfg.Publisher,
		handles:        make(map[string]*Handle),
		startTime:      time.Now(),
	}
	if m.eng == nil {
		m.eng = engine.NewLlamaEngine(2048, 0, 0)
	}
	if m.publisher == nil {
		m.publisher = noopPublisher{}
	}
	if cfg.Logger != nil {
		m.log = *cfg.Logger
	} else {
		m.log = zerolog.Nop()
	}
	return m
}

// New constructs a Manager with defaults for everything but the registry and
// default model.
func New(reg []types.Model, storageDir, defaultModel string) *Manager {
	return NewWithConfig(ManagerConfig{
		Registry:     reg,
		StorageDir:   storageDir,
		DefaultModel: defaultModel,
	})
}
