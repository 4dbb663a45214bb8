package command

import (
	"errors"
	"fmt"
	"testing"
)

// =============================================================================
// ValidateMotor Tests
// =============================================================================

func TestValidateMotor_AcceptsFullRange(t *testing.T) {
	for steps := MinSteps; steps <= MaxSteps; steps++ {
		for _, dir := range []int{DirectionBackward, DirectionForward} {
			cmd, err := ValidateMotor(fmt.Sprint(steps), fmt.Sprint(dir))
			if err != nil {
				t.Fatalf("ValidateMotor(%d, %d) error = %v", steps, dir, err)
			}
			want := fmt.Sprintf("motor:%d:%d", steps, dir)
			if cmd.String() != want {
				t.Fatalf("ValidateMotor(%d, %d) = %q, want %q", steps, dir, cmd, want)
			}
		}
	}
}

func TestValidateMotor_Rejects(t *testing.T) {
	tests := []struct {
		name      string
		steps     string
		direction string
		wantErr   error
	}{
		{name: "negative steps", steps: "-1", direction: "1", wantErr: ErrInvalidSteps},
		{name: "steps above max", steps: "10001", direction: "0", wantErr: ErrInvalidSteps},
		{name: "non-integer steps", steps: "ten", direction: "0", wantErr: ErrInvalidSteps},
		{name: "decimal steps", steps: "1.5", direction: "0", wantErr: ErrInvalidSteps},
		{name: "empty steps", steps: "", direction: "0", wantErr: ErrInvalidSteps},
		{name: "direction two", steps: "10", direction: "2", wantErr: ErrInvalidDirection},
		{name: "negative direction", steps: "10", direction: "-1", wantErr: ErrInvalidDirection},
		{name: "non-integer direction", steps: "10", direction: "fwd", wantErr: ErrInvalidDirection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := ValidateMotor(tt.steps, tt.direction)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ValidateMotor(%q, %q) error = %v, want %v", tt.steps, tt.direction, err, tt.wantErr)
			}
			if !cmd.IsZero() {
				t.Errorf("ValidateMotor(%q, %q) returned command %q alongside error", tt.steps, tt.direction, cmd)
			}

			var rej *Rejection
			if !errors.As(err, &rej) {
				t.Fatalf("error %T is not a *Rejection", err)
			}
			if rej.Reason == "" {
				t.Error("Rejection.Reason is empty")
			}
		})
	}
}

func TestValidateMotor_TrimsWhitespace(t *testing.T) {
	cmd, err := ValidateMotor(" 100 ", " 1")
	if err != nil {
		t.Fatalf("ValidateMotor() error = %v", err)
	}
	if cmd.String() != "motor:100:1" {
		t.Errorf("ValidateMotor() = %q, want %q", cmd, "motor:100:1")
	}
	if cmd.Kind() != KindMotor {
		t.Errorf("Kind() = %q, want %q", cmd.Kind(), KindMotor)
	}
}

// =============================================================================
// ValidateLED Tests
// =============================================================================

func TestValidateLED(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr error
	}{
		{input: "on", want: "led:on"},
		{input: "ON", want: "led:on"},
		{input: "  On  ", want: "led:on"},
		{input: "off", want: "led:off"},
		{input: "OfF", want: "led:off"},
		{input: "\toff\n", want: "led:off"},
		{input: "", wantErr: ErrInvalidLEDState},
		{input: "blink", wantErr: ErrInvalidLEDState},
		{input: "o n", wantErr: ErrInvalidLEDState},
		{input: "1", wantErr: ErrInvalidLEDState},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.input), func(t *testing.T) {
			cmd, err := ValidateLED(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ValidateLED(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateLED(%q) error = %v", tt.input, err)
			}
			if cmd.String() != tt.want {
				t.Errorf("ValidateLED(%q) = %q, want %q", tt.input, cmd, tt.want)
			}
			if cmd.Kind() != KindLED {
				t.Errorf("Kind() = %q, want %q", cmd.Kind(), KindLED)
			}
		})
	}
}

// =============================================================================
// Parse Tests
// =============================================================================

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "empty", input: "", wantErr: ErrEmpty},
		{name: "whitespace only", input: "   ", wantErr: ErrEmpty},
		{name: "motor forward", input: "motor:100:1", want: "motor:100:1"},
		{name: "motor upper case", input: "MOTOR:50:0", want: "motor:50:0"},
		{name: "motor surrounded by spaces", input: "  motor:0:0  ", want: "motor:0:0"},
		{name: "motor max steps", input: "motor:10000:1", want: "motor:10000:1"},
		{name: "motor out of range", input: "motor:10001:1", wantErr: ErrInvalidSteps},
		{name: "motor bad direction", input: "motor:5:9", wantErr: ErrInvalidDirection},
		{name: "led upper case state", input: "led:ON", want: "led:on"},
		{name: "led mixed case prefix", input: "Led:off", want: "led:off"},
		{name: "led bad state", input: "led:dim", wantErr: ErrInvalidLEDState},
		{name: "unknown prefix", input: "foo:1", wantErr: ErrUnknownFormat},
		{name: "motor missing part", input: "motor:100", wantErr: ErrUnknownFormat},
		{name: "motor extra part", input: "motor:1:1:1", wantErr: ErrUnknownFormat},
		{name: "led extra part", input: "led:on:now", wantErr: ErrUnknownFormat},
		{name: "no separator", input: "motor", wantErr: ErrUnknownFormat},
		{name: "exit is not a command", input: "exit", wantErr: ErrUnknownFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := Parse(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Parse(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				if !cmd.IsZero() {
					t.Errorf("Parse(%q) = %q, want zero Command", tt.input, cmd)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.input, err)
			}
			if cmd.String() != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.input, cmd, tt.want)
			}
		})
	}
}

func TestRejection_Error(t *testing.T) {
	_, err := Parse("foo:1")

	var rej *Rejection
	if !errors.As(err, &rej) {
		t.Fatalf("Parse() error %T is not a *Rejection", err)
	}
	if rej.Input != "foo:1" {
		t.Errorf("Rejection.Input = %q, want %q", rej.Input, "foo:1")
	}
	if err.Error() != "command: unknown command format: foo:1" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestCommand_Payload(t *testing.T) {
	cmd, err := Parse("led:off")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if string(cmd.Payload()) != "led:off" {
		t.Errorf("Payload() = %q, want %q", cmd.Payload(), "led:off")
	}

	var zero Command
	if !zero.IsZero() {
		t.Error("zero Command IsZero() = false, want true")
	}
}
