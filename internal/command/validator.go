package command

import (
	"fmt"
	"strconv"
	"strings"
)

// Motor command limits.
const (
	MinSteps = 0
	MaxSteps = 10000

	DirectionBackward = 0
	DirectionForward  = 1
)

// LED states.
const (
	LEDOn  = "on"
	LEDOff = "off"
)

// Input layout: parts split on ':'.
const (
	separator  = ":"
	motorParts = 3
	ledParts   = 2
)

// ValidateMotor checks raw motor arguments and builds motor:<steps>:<direction>.
// Surrounding whitespace on either argument is ignored.
func ValidateMotor(steps, direction string) (Command, error) {
	n, err := strconv.Atoi(strings.TrimSpace(steps))
	if err != nil {
		return Command{}, reject(ErrInvalidSteps, steps,
			"invalid motor command format: steps %q is not an integer", steps)
	}
	dir, err := strconv.Atoi(strings.TrimSpace(direction))
	if err != nil {
		return Command{}, reject(ErrInvalidDirection, direction,
			"invalid motor command format: direction %q is not an integer", direction)
	}

	if n < MinSteps || n > MaxSteps {
		return Command{}, reject(ErrInvalidSteps, steps,
			"invalid steps: %d. Must be %d-%d", n, MinSteps, MaxSteps)
	}
	if dir != DirectionBackward && dir != DirectionForward {
		return Command{}, reject(ErrInvalidDirection, direction,
			"invalid direction: %d. Must be %d or %d", dir, DirectionBackward, DirectionForward)
	}

	return Command{
		kind: KindMotor,
		text: fmt.Sprintf("%s:%d:%d", KindMotor, n, dir),
	}, nil
}

// ValidateLED normalises state and builds led:<on|off>.
func ValidateLED(state string) (Command, error) {
	s := strings.ToLower(strings.TrimSpace(state))
	if s != LEDOn && s != LEDOff {
		return Command{}, reject(ErrInvalidLEDState, state,
			"invalid LED state: %q. Must be '%s' or '%s'", s, LEDOn, LEDOff)
	}

	return Command{
		kind: KindLED,
		text: string(KindLED) + separator + s,
	}, nil
}

// Parse turns one line of operator input into a Command.
//
// The input is trimmed and split on ':'. Three parts led by "motor" and two
// parts led by "led" (both case-insensitive) are dispatched to the matching
// validator; anything else is rejected with ErrUnknownFormat.
func Parse(input string) (Command, error) {
	line := strings.TrimSpace(input)
	if line == "" {
		return Command{}, reject(ErrEmpty, input, "empty command")
	}

	parts := strings.Split(line, separator)
	head := strings.ToLower(parts[0])

	switch {
	case len(parts) == motorParts && head == string(KindMotor):
		return ValidateMotor(parts[1], parts[2])
	case len(parts) == ledParts && head == string(KindLED):
		return ValidateLED(parts[1])
	default:
		return Command{}, reject(ErrUnknownFormat, input, "unknown command format: %s", line)
	}
}
