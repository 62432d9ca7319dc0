package terminal

import (
	"fmt"

	"golang.org/x/term"
)

// Seams for tests that run without a controlling terminal.
var (
	makeRaw      = term.MakeRaw
	restoreState = term.Restore
)

// Mode holds the controlling terminal's saved discipline so it can be
// restored after a raw-mode session. Failing to restore leaves the user's
// shell unusable, so callers must arrange restoration on every exit path,
// normally with a defer taken immediately after AcquireRaw succeeds.
type Mode struct {
	fd       int
	state    *term.State
	restored bool
}

// AcquireRaw snapshots the discipline of the terminal on fd and switches it
// to raw mode: no line buffering, no echo, no signal generation from control
// characters.
func AcquireRaw(fd int) (*Mode, error) {
	state, err := makeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("failed to set raw mode: %w", err)
	}
	return &Mode{fd: fd, state: state}, nil
}

// Restore reapplies the discipline captured by AcquireRaw. Idempotent, so it
// is safe to call from both an error path and a deferred cleanup.
func (m *Mode) Restore() error {
	if m == nil || m.restored {
		return nil
	}
	m.restored = true
	if err := restoreState(m.fd, m.state); err != nil {
		return fmt.Errorf("failed to restore terminal mode: %w", err)
	}
	return nil
}

// IsTerminal reports whether fd refers to a terminal device.
func IsTerminal(fd int) bool {
	return term.IsTerminal(fd)
}
