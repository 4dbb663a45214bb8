package console

import (
	"fmt"
	"io"
	"strings"
)

var rule = strings.Repeat("=", 60)

// PrintBanner writes the welcome text with the accepted command forms.
func PrintBanner(w io.Writer) {
	fmt.Fprintf(w, "\n%s\nEpicure MQTT Publisher\n%s\n", rule, rule) //nolint:errcheck // Operator output
	fmt.Fprint(w, `
Command Examples:
  motor:100:1  - Move motor 100 steps forward
  motor:50:0   - Move motor 50 steps backward
  led:on       - Turn LED on
  led:off      - Turn LED off

Type 'exit' or 'quit' to stop
`) //nolint:errcheck // Operator output
	fmt.Fprintf(w, "%s\n\n", rule) //nolint:errcheck // Operator output
}
