package publisher

import "time"

// Default reconnection policy.
const (
	DefaultBaseDelay   = 2 * time.Second
	DefaultMaxDelay    = 60 * time.Second
	DefaultMaxAttempts = 10
)

// BackoffPolicy bounds the reconnection loop.
type BackoffPolicy struct {
	// BaseDelay is the wait before the first attempt of an episode.
	BaseDelay time.Duration

	// MaxDelay caps the doubling.
	MaxDelay time.Duration

	// MaxAttempts ends the episode after this many failed attempts. 0 means unlimited.
	MaxAttempts int
}

// DefaultBackoffPolicy returns the policy used when none is configured.
func DefaultBackoffPolicy() BackoffPolicy {
	return BackoffPolicy{
		BaseDelay:   DefaultBaseDelay,
		MaxDelay:    DefaultMaxDelay,
		MaxAttempts: DefaultMaxAttempts,
	}
}

// normalised fills zero values and keeps MaxDelay >= BaseDelay.
func (p BackoffPolicy) normalised() BackoffPolicy {
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultBaseDelay
	}
	if p.MaxDelay < p.BaseDelay {
		p.MaxDelay = p.BaseDelay
	}
	if p.MaxAttempts < 0 {
		p.MaxAttempts = 0
	}
	return p
}

// Backoff is the per-episode retry state.
type Backoff struct {
	Attempts int
	Delay    time.Duration
}

// Initial returns the state used after a successful connect.
func (p BackoffPolicy) Initial() Backoff {
	return Backoff{Delay: p.BaseDelay}
}

// Escalate doubles the delay, capped at MaxDelay.
func (p BackoffPolicy) Escalate(b Backoff) Backoff {
	next := b.Delay * 2
	if next > p.MaxDelay || next <= 0 {
		next = p.MaxDelay
	}
	b.Delay = next
	return b
}

// Exhausted reports whether no further attempt is allowed.
func (p BackoffPolicy) Exhausted(b Backoff) bool {
	return p.MaxAttempts > 0 && b.Attempts >= p.MaxAttempts
}
