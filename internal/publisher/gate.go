package publisher

import (
	"context"
	"sync"
)

// ConnectionState is the gate's view of the broker session.
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnected
)

// String returns the state name for logging.
func (s ConnectionState) String() string {
	if s == StateConnected {
		return "connected"
	}
	return "disconnected"
}

// ReconnectionStatus reports whether a reconnection episode is running.
type ReconnectionStatus int

const (
	ReconnectIdle ReconnectionStatus = iota
	ReconnectInProgress
)

// String returns the status name for logging.
func (s ReconnectionStatus) String() string {
	if s == ReconnectInProgress {
		return "in_progress"
	}
	return "idle"
}

// closedChan is returned when there is no episode to wait for.
var closedChan = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// episode tracks one running reconnection loop.
type episode struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Gate guards the connection state, reconnection status and backoff state
// with a single mutex so readers never observe a half-applied transition.
type Gate struct {
	mu      sync.Mutex
	state   ConnectionState
	status  ReconnectionStatus
	enabled bool
	policy  BackoffPolicy
	backoff Backoff
	current *episode

	// dropped is set when an established session ends while an episode is
	// still running, so finishReconnect knows the event was not acted on.
	dropped bool

	// launch runs the reconnection loop. It is always started on its own
	// goroutine so transport callbacks return immediately.
	launch func(ctx context.Context)
}

// NewGate returns a disconnected gate with reconnection enabled.
// launch is invoked on a new goroutine for every reconnection episode.
func NewGate(policy BackoffPolicy, launch func(ctx context.Context)) *Gate {
	policy = policy.normalised()
	return &Gate{
		state:   StateDisconnected,
		status:  ReconnectIdle,
		enabled: true,
		policy:  policy,
		backoff: policy.Initial(),
		launch:  launch,
	}
}

// MarkConnected records a successful connect and resets the backoff state.
func (g *Gate) MarkConnected() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = StateConnected
	g.backoff = g.policy.Initial()
}

// MarkDisconnected records the end of the session. For an unexpected
// disconnect with reconnection enabled and no episode running, it starts a
// new episode and returns true. Every other call only updates the state.
func (g *Gate) MarkDisconnected(expected bool) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	wasConnected := g.state == StateConnected
	g.state = StateDisconnected
	if expected || !g.enabled || g.launch == nil {
		return false
	}
	if g.status == ReconnectInProgress {
		if wasConnected {
			g.dropped = true
		}
		return false
	}
	g.startEpisodeLocked()
	return true
}

// startEpisodeLocked marks reconnection in progress and launches the loop.
// g.mu must be held.
func (g *Gate) startEpisodeLocked() {
	ctx, cancel := context.WithCancel(context.Background())
	g.status = ReconnectInProgress
	g.dropped = false
	g.current = &episode{cancel: cancel, done: make(chan struct{})}
	go g.launch(ctx)
}

// IsConnected reports whether the broker session is up.
func (g *Gate) IsConnected() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state == StateConnected
}

// CanPublish reports whether a send may be attempted right now.
func (g *Gate) CanPublish() bool {
	return g.IsConnected()
}

// State returns the current connection state.
func (g *Gate) State() ConnectionState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Status returns the current reconnection status.
func (g *Gate) Status() ReconnectionStatus {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

// Backoff returns a copy of the current backoff state.
func (g *Gate) Backoff() Backoff {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.backoff
}

// ReconnectEnabled reports whether unexpected disconnects start an episode.
func (g *Gate) ReconnectEnabled() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.enabled
}

// ResetBackoff restores the initial backoff state.
func (g *Gate) ResetBackoff() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.backoff = g.policy.Initial()
}

// DisableReconnect turns reconnection off permanently and cancels any
// running episode. The returned channel closes once that episode has exited.
func (g *Gate) DisableReconnect() <-chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.enabled = false
	if g.current == nil {
		return closedChan
	}
	g.current.cancel()
	return g.current.done
}

// beginAttempt counts a new attempt and returns the delay to wait first.
// ok is false when the loop should stop: reconnection disabled or already connected.
func (g *Gate) beginAttempt() (b Backoff, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.enabled || g.state == StateConnected {
		return g.backoff, false
	}
	g.backoff.Attempts++
	return g.backoff, true
}

// recordFailure escalates the delay after a failed attempt and reports
// whether the attempt budget is spent.
func (g *Gate) recordFailure() (b Backoff, exhausted bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.backoff = g.policy.Escalate(g.backoff)
	return g.backoff, g.policy.Exhausted(g.backoff)
}

// finishReconnect returns the gate to idle and releases DisableReconnect
// waiters. If the session came back and was lost again while the episode
// was winding down, a fresh episode starts immediately.
func (g *Gate) finishReconnect() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.status = ReconnectIdle
	if g.current != nil {
		g.current.cancel()
		close(g.current.done)
		g.current = nil
	}
	if g.dropped && g.enabled && g.state == StateDisconnected {
		g.startEpisodeLocked()
	}
	g.dropped = false
}
