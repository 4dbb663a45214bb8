package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nerrad567/epicure-publisher/internal/audit"
	"github.com/nerrad567/epicure-publisher/internal/command"
	"github.com/nerrad567/epicure-publisher/internal/infrastructure/logging"
	"github.com/nerrad567/epicure-publisher/internal/publisher"
)

// Operator-facing messages.
const (
	msgInvalidFormat = "[ERROR] Invalid command format: %s\n"
	msgNotConnected  = "[ERROR] Not connected to MQTT broker yet. Please wait...\n"
	msgSendFailed    = "[ERROR] Failed to send command\n"
	msgMotorSent     = "[OK] Motor command sent\n"
	msgLEDSent       = "[OK] LED command sent\n"
)

// Publisher is the subset of *publisher.Publisher a Session needs.
type Publisher interface {
	Publish(ctx context.Context, cmd command.Command) error
	IsConnected() bool
}

// Recorder stores the outcome of one operator line.
// *audit.SQLiteRepository and *influxdb.Client both satisfy it.
type Recorder interface {
	Record(ctx context.Context, e audit.Entry) error
}

// Session handles operator lines one at a time.
//
// Thread Safety:
//   - Handle is meant to be called from a single input loop.
type Session struct {
	publisher Publisher
	out       io.Writer
	logger    *logging.Logger
	recorders []Recorder
}

// NewSession creates a Session printing to out. A nil logger falls back to
// logging.Default().
func NewSession(pub Publisher, out io.Writer, logger *logging.Logger, recorders ...Recorder) *Session {
	if logger == nil {
		logger = logging.Default()
	}
	return &Session{
		publisher: pub,
		out:       out,
		logger:    logger.With("component", "console"),
		recorders: recorders,
	}
}

// Handle processes one line and reports whether the loop should keep going.
// Blank lines are ignored; "exit" and "quit" in any case end the loop.
func (s *Session) Handle(ctx context.Context, line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return true
	}
	if isExit(input) {
		return false
	}

	cmd, err := command.Parse(input)
	if err != nil {
		reason := err.Error()
		var rej *command.Rejection
		if errors.As(err, &rej) {
			reason = rej.Reason
		}
		s.printf(msgInvalidFormat, reason)
		s.record(ctx, audit.Entry{Input: input, Outcome: audit.OutcomeRejected, Reason: reason})
		return true
	}

	entry := audit.Entry{
		Input:   input,
		Command: cmd.String(),
		Kind:    string(cmd.Kind()),
	}

	if !s.publisher.IsConnected() {
		s.printf(msgNotConnected)
		entry.Outcome = audit.OutcomeNotConnected
		s.record(ctx, entry)
		return true
	}

	err = s.publisher.Publish(ctx, cmd)
	switch {
	case err == nil:
		if cmd.Kind() == command.KindMotor {
			s.printf(msgMotorSent)
		} else {
			s.printf(msgLEDSent)
		}
		entry.Outcome = audit.OutcomeSent
	case errors.Is(err, publisher.ErrNotConnected):
		// Connection dropped between the check and the send.
		s.printf(msgNotConnected)
		entry.Outcome = audit.OutcomeNotConnected
	default:
		s.logger.Error("publish failed", "command", cmd.String(), "error", err)
		s.printf(msgSendFailed)
		entry.Outcome = audit.OutcomeFailed
		entry.Reason = err.Error()
	}

	s.record(ctx, entry)
	return true
}

func isExit(input string) bool {
	return strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit")
}

func (s *Session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...) //nolint:errcheck // Operator output is best-effort
}

// record hands e to every recorder. Failures are logged and otherwise ignored.
func (s *Session) record(ctx context.Context, e audit.Entry) {
	for _, r := range s.recorders {
		if r == nil {
			continue
		}
		if err := r.Record(ctx, e); err != nil {
			s.logger.Warn("failed to record command outcome",
				"outcome", string(e.Outcome),
				"error", err,
			)
		}
	}
}
