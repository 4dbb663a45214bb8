package console

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/epicure-publisher/internal/audit"
	"github.com/nerrad567/epicure-publisher/internal/command"
	"github.com/nerrad567/epicure-publisher/internal/infrastructure/config"
	"github.com/nerrad567/epicure-publisher/internal/infrastructure/logging"
	"github.com/nerrad567/epicure-publisher/internal/publisher"
)

type fakePublisher struct {
	connected  bool
	publishErr error
	sent       []string
}

func (f *fakePublisher) Publish(_ context.Context, cmd command.Command) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.sent = append(f.sent, cmd.String())
	return nil
}

func (f *fakePublisher) IsConnected() bool { return f.connected }

type memRecorder struct {
	mu      sync.Mutex
	entries []audit.Entry
	err     error
}

func (m *memRecorder) Record(_ context.Context, e audit.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return m.err
}

func newTestSession(pub Publisher, recorders ...Recorder) (*Session, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	logs := &bytes.Buffer{}
	logger := logging.NewWithWriter(config.LoggingConfig{Level: "debug", Format: "text"}, "test", logs)
	return NewSession(pub, out, logger, recorders...), out, logs
}

// =============================================================================
// Loop Control Tests
// =============================================================================

func TestHandle_ExitWords(t *testing.T) {
	for _, line := range []string{"exit", "quit", "EXIT", "Quit", "  exit  "} {
		t.Run(line, func(t *testing.T) {
			pub := &fakePublisher{connected: true}
			s, out, _ := newTestSession(pub)

			assert.False(t, s.Handle(context.Background(), line))
			assert.Empty(t, out.String())
			assert.Empty(t, pub.sent)
		})
	}
}

func TestHandle_BlankLineIgnored(t *testing.T) {
	rec := &memRecorder{}
	s, out, _ := newTestSession(&fakePublisher{connected: true}, rec)

	assert.True(t, s.Handle(context.Background(), ""))
	assert.True(t, s.Handle(context.Background(), "   \t"))
	assert.Empty(t, out.String())
	assert.Empty(t, rec.entries)
}

// =============================================================================
// Outcome Tests
// =============================================================================

func TestHandle_Outcomes(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		connected  bool
		publishErr error
		wantOut    string
		wantSent   []string
		wantEntry  audit.Entry
	}{
		{
			name:      "motor sent",
			line:      "motor:100:1",
			connected: true,
			wantOut:   "[OK] Motor command sent\n",
			wantSent:  []string{"motor:100:1"},
			wantEntry: audit.Entry{Input: "motor:100:1", Command: "motor:100:1", Kind: "motor", Outcome: audit.OutcomeSent},
		},
		{
			name:      "led normalised and sent",
			line:      "  LED:ON ",
			connected: true,
			wantOut:   "[OK] LED command sent\n",
			wantSent:  []string{"led:on"},
			wantEntry: audit.Entry{Input: "LED:ON", Command: "led:on", Kind: "led", Outcome: audit.OutcomeSent},
		},
		{
			name:      "not connected",
			line:      "led:off",
			connected: false,
			wantOut:   "[ERROR] Not connected to MQTT broker yet. Please wait...\n",
			wantEntry: audit.Entry{Input: "led:off", Command: "led:off", Kind: "led", Outcome: audit.OutcomeNotConnected},
		},
		{
			name:       "connection lost during send",
			line:       "motor:5:0",
			connected:  true,
			publishErr: publisher.ErrNotConnected,
			wantOut:    "[ERROR] Not connected to MQTT broker yet. Please wait...\n",
			wantEntry:  audit.Entry{Input: "motor:5:0", Command: "motor:5:0", Kind: "motor", Outcome: audit.OutcomeNotConnected},
		},
		{
			name:       "transport failure",
			line:       "motor:5:0",
			connected:  true,
			publishErr: errors.New("boom"),
			wantOut:    "[ERROR] Failed to send command\n",
			wantEntry:  audit.Entry{Input: "motor:5:0", Command: "motor:5:0", Kind: "motor", Outcome: audit.OutcomeFailed, Reason: "boom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &fakePublisher{connected: tt.connected, publishErr: tt.publishErr}
			rec := &memRecorder{}
			s, out, _ := newTestSession(pub, rec)

			assert.True(t, s.Handle(context.Background(), tt.line))
			assert.Equal(t, tt.wantOut, out.String())
			assert.Equal(t, tt.wantSent, pub.sent)
			require.Len(t, rec.entries, 1)
			assert.Equal(t, tt.wantEntry, rec.entries[0])
		})
	}
}

func TestHandle_Rejected(t *testing.T) {
	tests := []struct {
		line   string
		reason string
	}{
		{"hello", "unknown command format: hello"},
		{"motor:abc:1", ""},
		{"motor:100:2", ""},
		{"led:dim", ""},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			pub := &fakePublisher{connected: true}
			rec := &memRecorder{}
			s, out, _ := newTestSession(pub, rec)

			assert.True(t, s.Handle(context.Background(), tt.line))
			assert.Contains(t, out.String(), "[ERROR] Invalid command format: ")
			assert.Empty(t, pub.sent, "rejected input must not be published")

			require.Len(t, rec.entries, 1)
			e := rec.entries[0]
			assert.Equal(t, audit.OutcomeRejected, e.Outcome)
			assert.Equal(t, tt.line, e.Input)
			assert.Empty(t, e.Command)
			assert.NotEmpty(t, e.Reason)
			assert.Contains(t, out.String(), e.Reason)
			if tt.reason != "" {
				assert.Equal(t, tt.reason, e.Reason)
			}
		})
	}
}

func TestHandle_RejectedWhileDisconnected(t *testing.T) {
	s, out, _ := newTestSession(&fakePublisher{connected: false})

	s.Handle(context.Background(), "nonsense")

	assert.Contains(t, out.String(), "Invalid command format")
	assert.NotContains(t, out.String(), "Not connected")
}

// =============================================================================
// Recorder Tests
// =============================================================================

func TestHandle_RecorderFailureIsLogged(t *testing.T) {
	failing := &memRecorder{err: errors.New("disk full")}
	ok := &memRecorder{}
	s, out, logs := newTestSession(&fakePublisher{connected: true}, failing, nil, ok)

	assert.True(t, s.Handle(context.Background(), "led:on"))
	assert.Equal(t, "[OK] LED command sent\n", out.String())
	assert.Len(t, ok.entries, 1, "later recorders still run")
	assert.Contains(t, logs.String(), "failed to record command outcome")
	assert.Contains(t, logs.String(), "disk full")
}

func TestNewSession_NilLogger(t *testing.T) {
	s := NewSession(&fakePublisher{}, &bytes.Buffer{}, nil)
	assert.NotNil(t, s.logger)
}
