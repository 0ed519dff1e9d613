package errs

import "errors"

var (
	ErrValidateBadRequest error = errors.New("struct validation error")

	ErrTelemetryOutOfBounds error = errors.New("value outside operational bounds")
	ErrDeviceIdentityClaim  error = errors.New("malformed device identity claim")

	// ErrTelemetryPublish is what callers see when the downstream publish
	// fails. The transport error stays attached for internal logging but must
	// never be echoed across the trust boundary.
	ErrTelemetryPublish error = errors.New("could not publish telemetry message")
)

type wrappedError struct {
	error
	sentinel error
}

func (e wrappedError) Is(target error) bool {
	return errors.Is(e.sentinel, target)
}

func (e wrappedError) Unwrap() error {
	return e.error
}

// Wrap ties a cause to one of the sentinel errors above: errors.Is matches
// both the sentinel and the cause, while Error() keeps the cause text for
// internal diagnostics only.
func Wrap(err error, sentinel error) error {
	return wrappedError{error: err, sentinel: sentinel}
}
