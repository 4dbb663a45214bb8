package command

// Kind identifies the command family.
type Kind string

const (
	KindMotor Kind = "motor"
	KindLED   Kind = "led"
)

// Command is a validated wire command. Its fields are unexported so the only
// way to obtain a non-zero Command is through this package's validators.
type Command struct {
	kind Kind
	text string
}

// String returns the exact payload published to the broker.
func (c Command) String() string {
	return c.text
}

// Kind returns the command family.
func (c Command) Kind() Kind {
	return c.kind
}

// Payload returns the wire payload as bytes.
func (c Command) Payload() []byte {
	return []byte(c.text)
}

// IsZero reports whether c was not produced by a validator.
func (c Command) IsZero() bool {
	return c.text == ""
}
