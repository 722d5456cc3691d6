//go:build llama

package engine

import (
	"errors"
	"strings"
	"sync"

	llama "github.com/go-skynet/go-llama.cpp"
)

// llamaBuilt indicates this binary was compiled with real llama support.
var llamaBuilt = true

// llamaEngine holds process-wide runtime config shared by loaded instances.
type llamaEngine struct {
	ctxSize   int
	threads   int
	gpuLayers int
}

// NewLlamaEngine returns an Engine backed by in-process go-llama.cpp.
func NewLlamaEngine(ctxSize, threads, gpuLayers int) Engine {
	return &llamaEngine{ctxSize: ctxSize, threads: threads, gpuLayers: gpuLayers}
}

func (e *llamaEngine) Load(path string, cfg Config) (Instance, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("model path is empty")
	}
	cfg = cfg.Sanitized()
	mo := []llama.ModelOption{
		llama.SetContext(e.ctxSize),
	}
	switch cfg.Accelerator {
	case AcceleratorCPU:
	case AcceleratorGPU:
		if e.gpuLayers <= 0 {
			return nil, ErrUnsupportedAccelerator(cfg.Accelerator)
		}
		mo = append(mo, llama.SetGPULayers(e.gpuLayers))
	default:
		return nil, ErrUnsupportedAccelerator(cfg.Accelerator)
	}
	m, err := llama.New(path, mo...)
	if err != nil {
		return nil, err
	}
	return &llamaInstance{model: m, cfg: cfg, threads: e.threads}, nil
}

// llamaInstance owns one loaded model. The session manager serializes access,
// so a plain mutex around Close is enough.
type llamaInstance struct {
	mu      sync.Mutex
	model   *llama.LLama
	cfg     Config
	threads int
}

func (i *llamaInstance) Generate(prompt string) (Stream, error) {
	i.mu.Lock()
	m := i.model
	i.mu.Unlock()
	if m == nil {
		return nil, errors.New("llama model not initialized")
	}
	st := NewPushStream(64)
	go func() {
		// Bridge token streaming into the fragment channel; returning false
		// from the callback asks llama.cpp to stop early.
		m.SetTokenCallback(func(tok string) bool {
			return st.Push(tok)
		})
		po := []llama.PredictOption{
			llama.SetTokens(i.cfg.MaxTokens),
			llama.SetThreads(maxInt(1, i.threads)),
			llama.SetTopP(i.cfg.TopP),
			llama.SetTopK(i.cfg.TopK),
			llama.SetTemperature(i.cfg.Temperature),
		}
		if _, err := m.Predict(prompt, po...); err != nil {
			select {
			case <-st.Interrupted():
				// Interrupted predicts surface an error; treat as early stop.
				st.Close()
			default:
				st.Fail(err)
			}
			return
		}
		st.Close()
	}()
	return st, nil
}

// Reset is a no-op: each Predict call starts from the bare prompt, so there is
// no accumulated conversational context to clear in this runtime.
func (i *llamaInstance) Reset() error { return nil }

func (i *llamaInstance) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.model != nil {
		i.model.Free()
		i.model = nil
	}
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
