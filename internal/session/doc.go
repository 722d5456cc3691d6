// Package session provides the inference session manager: it owns loaded
// engine handles, serializes access to each one, streams generated text back
// through caller-supplied listeners, and implements cancel/reset semantics
// with a consistent busy/idle state visible to concurrent callers.
//
// It is structured into small files by concern:
//
//   - manager.go: core Manager type, constructor, handle registry, Initialize.
//   - config.go: ManagerConfig and package defaults; NewWithConfig applies defaults.
//   - handle.go: Handle (the unit of exclusivity) and its lifecycle states.
//   - run.go: RunInference admission and the streaming worker.
//   - control.go: IsBusy, Cancel, ResetSession, CleanUp.
//   - serve.go: model-id convenience surface used by the HTTP layer (NDJSON).
//   - outcome.go: tagged generation outcomes (completed/cancelled/failed).
//   - errors.go: error types and helpers (IsBusyRejection, IsModelNotFound, ...).
//   - events.go / eventpub_memory.go: lifecycle event publishing.
//   - metrics.go: Prometheus collectors.
//
// Exclusivity model: each Handle carries a single-slot gate channel. At most
// one generation is ever in flight per handle; RunInference either claims the
// slot atomically or rejects immediately (never queues). All busy transitions
// go through the manager's control points, never through callers.
//
// External packages should treat this package as the orchestration layer and
// use public methods only. Internal types are subject to change.
package session
