// Package supervisor orchestrates one PTY session: acquire raw mode, launch
// the shell, install resize propagation, run the relay, reap the child, and
// restore the terminal. Restoration is unconditional cleanup, not part of
// the success path.
package supervisor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ptyrec/ptyrec/internal/capture"
	"github.com/ptyrec/ptyrec/internal/command"
	"github.com/ptyrec/ptyrec/internal/config"
	"github.com/ptyrec/ptyrec/internal/ptysh"
	"github.com/ptyrec/ptyrec/internal/relay"
	"github.com/ptyrec/ptyrec/internal/session"
	"github.com/ptyrec/ptyrec/internal/terminal"
)

// State of the session lifecycle. Transitions are strictly sequential; at
// most one session is active per process.
type State int

const (
	Idle State = iota
	ModeAcquired
	Launched
	Relaying
	ChildReaped
	ModeRestored
)

// Options configures a Supervisor. Stdin and Stdout are the real terminal's
// endpoints, passed explicitly so tests can substitute pipes for the
// terminal device.
type Options struct {
	Stdin    *os.File
	Stdout   *os.File
	Config   *config.Config
	Store    *session.Store     // optional; sessions are recorded when set
	Notifier *terminal.Notifier // optional; a fresh SIGWINCH-subscribed one when nil
	Clock    clock.Clock
}

// Result is the outcome of a completed session.
type Result struct {
	Session  *session.Session
	ExitCode int
}

type restoreFunc func() error

// Supervisor owns the session for its entire lifetime. Only the supervisor
// mutates the session record, and only it reaps the child.
type Supervisor struct {
	opts  Options
	clock clock.Clock
	state State

	// Seams for tests without a controlling terminal.
	isTerminal func(fd int) bool
	acquireRaw func(fd int) (restoreFunc, error)
}

// New creates a supervisor in the Idle state.
func New(opts Options) *Supervisor {
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}
	return &Supervisor{
		opts:       opts,
		clock:      clk,
		isTerminal: terminal.IsTerminal,
		acquireRaw: func(fd int) (restoreFunc, error) {
			mode, err := terminal.AcquireRaw(fd)
			if err != nil {
				return nil, err
			}
			return mode.Restore, nil
		},
	}
}

// State returns the current lifecycle state.
func (s *Supervisor) State() State {
	return s.state
}

// Run executes one full session and blocks until the child has been reaped
// and the terminal restored. The returned exit code is the child's, with
// 128 plus the signal number for a signal death. A non-nil error together
// with a Result means the session ran but ended on a relay error; cleanup
// has already happened.
func (s *Supervisor) Run() (*Result, error) {
	cfg := s.opts.Config

	shell := cfg.Shell
	if shell == "" {
		shell = ptysh.DefaultShell()
	}
	id := uuid.New().String()[:8]

	sink, err := capture.Open(capture.Options{
		Dir:       cfg.LogDir,
		SessionID: id,
		LogData:   cfg.Capture.ShouldLogData(),
		Clock:     s.clock,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open capture sink: %w", err)
	}
	defer sink.Close()
	logger := sink.Logger()

	sess := &session.Session{
		ID:          id,
		Shell:       shell,
		Prompt:      promptFor(cfg, shell),
		Status:      "running",
		StartedAt:   s.clock.Now(),
		LogPath:     sink.LogPath(),
		ArchivePath: sink.ArchivePath(),
	}

	// Raw mode. Restoration is deferred so every exit path below, normal
	// or not, runs it before control returns to the invoker.
	stdinFd := int(s.opts.Stdin.Fd())
	if s.isTerminal(stdinFd) {
		restore, err := s.acquireRaw(stdinFd)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire raw mode: %w", err)
		}
		s.state = ModeAcquired
		defer func() {
			if restoreErr := restore(); restoreErr != nil {
				logger.Error("terminal restore failed", zap.Error(restoreErr))
			}
			s.state = ModeRestored
		}()
	} else {
		s.state = ModeAcquired
		defer func() { s.state = ModeRestored }()
	}

	// Launch with the real terminal's current geometry so the child sees
	// the right size from its first frame.
	spec := ptysh.Spec{
		Shell: shell,
		Env:   ptysh.SessionEnv(shell, promptFor(cfg, shell)),
	}
	if ws, sizeErr := terminal.Size(s.opts.Stdout); sizeErr == nil {
		spec.Size = ws
		_ = sink.WriteTermSize(int(ws.Cols), int(ws.Rows))
	}
	proc, err := ptysh.Launch(spec)
	if err != nil {
		return nil, err
	}
	s.state = Launched
	sess.Pid = proc.Pid()
	defer proc.Close()
	logger.Info("session started",
		zap.String("shell", shell),
		zap.Int("pid", sess.Pid),
	)

	// Resize propagation, installed before the relay starts.
	notifier := s.opts.Notifier
	if notifier == nil {
		notifier = terminal.NewNotifier()
		notifier.Subscribe()
	}
	notifier.Start(func() {
		if propErr := terminal.Propagate(s.opts.Stdout, proc.Master); propErr != nil {
			logger.Warn("resize propagation failed", zap.Error(propErr))
			return
		}
		if ws, sizeErr := terminal.Size(s.opts.Stdout); sizeErr == nil {
			_ = sink.WriteTermSize(int(ws.Cols), int(ws.Rows))
		}
	})
	defer notifier.Stop()

	var intercept relay.Interceptor
	if cfg.Commands.ShouldIntercept() {
		reg := command.NewRegistry()
		command.RegisterBuiltins(reg, command.BuiltinOptions{
			Out:         s.opts.Stdout,
			SessionID:   id,
			Shell:       shell,
			Pid:         sess.Pid,
			LogPath:     sink.LogPath(),
			ArchivePath: sink.ArchivePath(),
			Size: func() (int, int) {
				ws, sizeErr := terminal.Size(s.opts.Stdout)
				if sizeErr != nil {
					return 0, 0
				}
				return int(ws.Cols), int(ws.Rows)
			},
		})
		intercept = reg.Dispatch
	}

	s.state = Relaying
	endReason, relayErr := relay.Relay(s.opts.Stdin, s.opts.Stdout, proc.Master, sink, relay.Options{
		ChunkSize: cfg.Capture.ChunkSize,
		Intercept: intercept,
		Clock:     s.clock,
	})
	if relayErr != nil {
		logger.Error("relay failed", zap.Error(relayErr))
	}

	// The relay only stops on end-of-stream or an error, so the child has
	// exited or is exiting; reap it synchronously.
	code, signaled, waitErr := proc.Wait()
	if waitErr != nil {
		logger.Error("child wait failed", zap.Error(waitErr))
	}
	s.state = ChildReaped

	now := s.clock.Now()
	sess.StoppedAt = &now
	sess.Status = "stopped"
	sess.ExitCode = code
	sess.EndReason = endReasonFor(endReason, relayErr, signaled, code)
	sess.BytesIn = sink.BytesIn()
	sess.BytesOut = sink.BytesOut()
	logger.Info("session ended",
		zap.String("end_reason", sess.EndReason),
		zap.Int("exit_code", code),
		zap.Int64("bytes_in", sess.BytesIn),
		zap.Int64("bytes_out", sess.BytesOut),
	)

	if s.opts.Store != nil {
		if saveErr := s.opts.Store.Save(sess); saveErr != nil {
			logger.Warn("failed to save session record", zap.Error(saveErr))
		}
	}

	return &Result{Session: sess, ExitCode: code}, relayErr
}

func endReasonFor(end relay.EndReason, relayErr error, signaled bool, code int) string {
	switch {
	case relayErr != nil || end == relay.EndIOError:
		return session.EndIOError
	case signaled:
		return session.EndSignaled
	case code != 0:
		return session.EndExited
	default:
		return session.EndNormal
	}
}

func promptFor(cfg *config.Config, shell string) string {
	if strings.Contains(filepath.Base(shell), "zsh") {
		return cfg.Prompt.Zsh
	}
	return cfg.Prompt.Bash
}
