package engine

// unavailableError signals a missing runtime dependency (e.g. a binary built
// without the llama tag) so callers can fail fast instead of mocking.
type unavailableError struct{ msg string }

func (e unavailableError) Error() string { return e.msg }

// ErrUnavailable constructs an unavailableError.
func ErrUnavailable(msg string) error { return unavailableError{msg: msg} }

// IsUnavailable reports whether err indicates a missing/failed runtime dependency.
func IsUnavailable(err error) bool {
	_, ok := err.(unavailableError)
	return ok
}

// unsupportedAcceleratorError signals a Config.Accelerator this device or
// build cannot serve.
type unsupportedAcceleratorError struct{ name string }

func (e unsupportedAcceleratorError) Error() string { return "unsupported accelerator: " + e.name }

// ErrUnsupportedAccelerator constructs an unsupportedAcceleratorError.
func ErrUnsupportedAccelerator(name string) error { return unsupportedAcceleratorError{name: name} }

// IsUnsupportedAccelerator reports whether err indicates an accelerator this
// build cannot serve.
func IsUnsupportedAccelerator(err error) bool {
	_, ok := err.(unsupportedAcceleratorError)
	return ok
}
