// Package engine defines the contract toward the opaque native model runtime
// and the parameter sanitization applied before anything reaches it. The
// session manager consumes this package; it never talks to a runtime directly.
//
// Runtimes:
//
//   - In-process llama (standard): go-llama.cpp adapter, enabled with
//     `-tags=llama` (llama.go). A no-CGO stub compiles otherwise (llama_stub.go)
//     so default builds and CI stay CGO-free.
//   - Test fakes implement Engine/Instance directly in _test.go files.
package engine

// Engine loads model files into memory and hands back live instances.
type Engine interface {
	// Load reads a model file and configuration into memory. It fails when the
	// file is unreadable, the accelerator is unsupported on this device, or the
	// native load fails. Calling Load twice for the same path is a caller error;
	// instances are the unit of exclusivity, not engines.
	Load(path string, cfg Config) (Instance, error)
}

// Instance is one loaded model. All methods are serialized by the session
// manager; implementations may assume no concurrent Generate/Reset/Close.
type Instance interface {
	// Generate starts a cooperative generation and returns a stream the caller
	// drains via fragments. The call itself must not block on engine progress.
	Generate(prompt string) (Stream, error)
	// Reset clears any accumulated conversational context so the next prompt
	// starts fresh.
	Reset() error
	// Close releases native resources. Must not be called while a stream is
	// still being produced.
	Close() error
}

// Fragment is one increment of generated text, or a terminal error.
type Fragment struct {
	Text string
	Err  error
}

// Stream is a single in-flight generation. The producer pushes ordered
// fragments into the channel and closes it at the terminal point; a fragment
// with a non-nil Err is the terminal emission of a failed generation.
type Stream interface {
	// Fragments returns the ordered fragment channel. It is closed exactly once
	// when the generation finishes, is interrupted, or fails.
	Fragments() <-chan Fragment
	// Interrupt requests early termination. Best-effort: the producer may emit
	// a final fragment after Interrupt returns. Idempotent and non-blocking.
	Interrupt()
}
