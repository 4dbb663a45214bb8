package command

import (
	"errors"
	"fmt"
)

// Sentinel errors describing why input was rejected.
// Use errors.Is() against the error returned by Parse or the Validate functions.
var (
	// ErrEmpty is returned for blank input.
	ErrEmpty = errors.New("command: empty command")

	// ErrUnknownFormat is returned when the input matches no command family.
	ErrUnknownFormat = errors.New("command: unknown command format")

	// ErrInvalidSteps is returned when motor steps are not an integer in range.
	ErrInvalidSteps = errors.New("command: invalid motor steps")

	// ErrInvalidDirection is returned when the motor direction is not 0 or 1.
	ErrInvalidDirection = errors.New("command: invalid motor direction")

	// ErrInvalidLEDState is returned when the LED state is not on or off.
	ErrInvalidLEDState = errors.New("command: invalid LED state")
)

// Rejection is the error returned for any input that cannot become a Command.
// Reason is suitable for showing to the operator as-is.
type Rejection struct {
	Input  string
	Reason string
	err    error
}

func reject(sentinel error, input, format string, args ...any) *Rejection {
	return &Rejection{
		Input:  input,
		Reason: fmt.Sprintf(format, args...),
		err:    sentinel,
	}
}

// Error implements error.
func (r *Rejection) Error() string {
	return "command: " + r.Reason
}

// Unwrap returns the sentinel error so callers can use errors.Is.
func (r *Rejection) Unwrap() error {
	return r.err
}
