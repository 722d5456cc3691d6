package session

// busyError signals a single-flight rejection: a generation was already in
// flight on the handle. Maps to 429 at the HTTP layer.
type busyError struct{ modelID string }

func (e busyError) Error() string { return "handle busy: " + e.modelID }

// ErrBusy constructs a busyError for the given model id.
func ErrBusy(modelID string) error { return busyError{modelID: modelID} }

// IsBusyRejection reports whether err indicates a single-flight rejection or a
// precondition failure against a busy handle.
func IsBusyRejection(err error) bool {
	_, ok := err.(busyError)
	return ok
}

// modelNotFoundError signals an unknown model id or an unresolvable model file.
type modelNotFoundError struct{ id string }

func (e modelNotFoundError) Error() string { return "model not found: " + e.id }

// ErrModelNotFound constructs a modelNotFoundError.
func ErrModelNotFound(id string) error { return modelNotFoundError{id: id} }

// IsModelNotFound reports whether the error indicates a missing model.
func IsModelNotFound(err error) bool {
	_, ok := err.(modelNotFoundError)
	return ok
}

// notInitializedError signals an operation against a handle whose engine
// instance is absent: never loaded, or already cleaned up.
type notInitializedError struct{ id string }

func (e notInitializedError) Error() string { return "handle not initialized: " + e.id }

// IsNotInitialized reports whether err indicates a missing or unloaded handle.
func IsNotInitialized(err error) bool {
	_, ok := err.(notInitializedError)
	return ok
}
