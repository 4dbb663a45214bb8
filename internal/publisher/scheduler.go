package publisher

import (
	"context"
	"time"
)

// Scheduler runs the reconnection loop for one disconnect episode at a time.
// The Gate decides when an episode starts; the Scheduler only drives it.
type Scheduler struct {
	gate      *Gate
	reconnect func(ctx context.Context) error
	logger    Logger
	policy    BackoffPolicy

	onAttempt   func(attempt int, delay time.Duration)
	onExhausted func(attempts int)

	// after is the wait primitive, replaceable in tests.
	after func(d time.Duration) <-chan time.Time
}

// Run drives one episode until the session is back, the attempt budget is
// spent, or ctx is cancelled by an explicit shutdown. The gate is always
// returned to idle before Run exits.
func (s *Scheduler) Run(ctx context.Context) {
	defer s.gate.finishReconnect()

	for {
		b, ok := s.gate.beginAttempt()
		if !ok {
			return
		}

		s.logger.Info("reconnection attempt",
			"attempt", b.Attempts,
			"max_attempts", s.policy.MaxAttempts,
			"delay", b.Delay,
		)
		if s.onAttempt != nil {
			s.onAttempt(b.Attempts, b.Delay)
		}

		if !s.wait(ctx, b.Delay) {
			s.logger.Info("reconnection cancelled", "attempt", b.Attempts)
			return
		}

		// The session may have come back through another path while we slept.
		if s.gate.IsConnected() {
			s.logger.Info("connection restored during backoff", "attempt", b.Attempts)
			return
		}

		err := s.reconnect(ctx)
		if err == nil {
			s.logger.Info("reconnect succeeded",
				"attempt", b.Attempts,
				"connected", s.gate.IsConnected(),
			)
			return
		}
		if ctx.Err() != nil {
			s.logger.Info("reconnection cancelled", "attempt", b.Attempts)
			return
		}

		s.logger.Warn("reconnection attempt failed",
			"attempt", b.Attempts,
			"error", err,
		)

		next, exhausted := s.gate.recordFailure()
		if exhausted {
			s.logger.Error("max reconnection attempts exceeded",
				"max_attempts", s.policy.MaxAttempts,
			)
			if s.onExhausted != nil {
				s.onExhausted(next.Attempts)
			}
			return
		}
	}
}

// wait blocks for d unless ctx is cancelled. It checks ctx both before
// sleeping and after waking so a shutdown is never followed by an attempt.
func (s *Scheduler) wait(ctx context.Context, d time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case <-ctx.Done():
		return false
	case <-s.after(d):
	}
	return ctx.Err() == nil
}
