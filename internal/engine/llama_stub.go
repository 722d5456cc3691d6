//go:build !llama

package engine

// This file provides a no-CGO stub for the llama engine. It is compiled when
// the 'llama' build tag is NOT set, keeping default builds and CI CGO-free.
// The real engine lives in llama.go (tagged 'llama').

// llamaBuilt indicates this binary was compiled with real llama support.
var llamaBuilt = false

type llamaEngine struct {
	ctxSize   int
	threads   int
	gpuLayers int
}

// NewLlamaEngine returns a stub that satisfies Engine but refuses to load
// models without the 'llama' build tag. This avoids any mocked behavior in
// production binaries built without CGO support.
func NewLlamaEngine(ctxSize, threads, gpuLayers int) Engine {
	return &llamaEngine{ctxSize: ctxSize, threads: threads, gpuLayers: gpuLayers}
}

func (e *llamaEngine) Load(path string, cfg Config) (Instance, error) {
	return nil, ErrUnavailable("llama support not built (missing 'llama' build tag)")
}
