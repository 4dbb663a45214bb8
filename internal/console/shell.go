package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/abiosoft/readline"
	"golang.org/x/term"
)

// Prompt shown before every operator line.
const Prompt = "> "

// Shell runs a Session on a line-editing prompt. Lines are handed to the
// Session exactly as typed: no shell quoting, heredoc or continuation rules
// apply, so input such as led:"on reaches validation and the journal.
type Shell struct {
	session *Session
	in      io.ReadCloser
	out     io.Writer
	rl      *readline.Instance
}

// NewShell builds a prompt reading lines from in and echoing to out. When in
// is not a terminal the prompt reads plain lines without raw mode.
func NewShell(session *Session, in io.ReadCloser, out io.Writer) (*Shell, error) {
	cfg := &readline.Config{
		Prompt:          Prompt,
		Stdin:           in,
		Stdout:          out,
		Stderr:          out,
		InterruptPrompt: "^C",
		EOFPrompt:       "\n",
	}
	if !isTerminal(in) {
		cfg.FuncIsTerminal = func() bool { return false }
		cfg.FuncMakeRaw = func() error { return nil }
		cfg.FuncExitRaw = func() error { return nil }
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating prompt: %w", err)
	}
	return &Shell{session: session, in: in, out: out, rl: rl}, nil
}

// Run blocks until the operator types exit or quit, sends EOF or Ctrl-C,
// or ctx is cancelled.
func (s *Shell) Run(ctx context.Context) {
	defer s.rl.Close() //nolint:errcheck // Best-effort terminal restore

	// Closing the input unblocks a pending read so the instance can shut down.
	var closeOnce sync.Once
	closeInput := func() {
		closeOnce.Do(func() { s.in.Close() }) //nolint:errcheck // Nothing left to read
	}
	defer closeInput()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			closeInput()
		case <-done:
		}
	}()

	for {
		line, err := s.rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			fmt.Fprintln(s.out, "\nInterrupted by user") //nolint:errcheck // Operator output
			return
		}
		if err != nil || ctx.Err() != nil {
			return
		}
		if !s.session.Handle(ctx, line) {
			return
		}
	}
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd())) // #nosec G115 -- file descriptors fit in int
}
