package session

// OutcomeKind classifies how a generation finished.
type OutcomeKind string

const (
	OutcomeCompleted OutcomeKind = "completed"
	OutcomeCancelled OutcomeKind = "cancelled"
	OutcomeFailed    OutcomeKind = "failed"
)

// Outcome is the tagged terminal classification of one generation, delivered
// alongside the final increment. Text is the full accumulated text: for
// completed runs it equals the concatenation of all non-final fragments; for
// cancelled runs it is whatever was produced up to the interrupt point.
type Outcome struct {
	Kind OutcomeKind
	Text string
	Err  error
}

// Increment is one emission toward the caller's listener. Final is true
// exactly once per generation, on the last emission; Outcome is non-nil only
// then.
type Increment struct {
	Text    string
	Final   bool
	Outcome *Outcome
}

// IncrementListener receives ordered text fragments followed by exactly one
// final increment. It is invoked from the generation worker goroutine, not
// the caller's; listeners must be safe for that or marshal to their own
// execution context.
type IncrementListener func(Increment)

// CleanupListener is invoked exactly once per RunInference call when the
// call's resources are released, whatever the outcome. By the time it runs,
// the handle reads as idle again.
type CleanupListener func()
