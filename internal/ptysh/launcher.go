package ptysh

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/creack/pty"
)

// Spec describes the child to run inside a new PTY pair.
type Spec struct {
	Shell string       // shell executable; empty means DefaultShell()
	Args  []string     // arguments to the shell; sessions usually leave this empty
	Env   []string     // extra KEY=VALUE entries appended to the inherited environment
	Size  *pty.Winsize // initial window size, applied before the child starts
}

// Proc is a running child attached to the subordinate side of a PTY pair.
// The master descriptor is valid from a successful Launch until Close.
type Proc struct {
	Cmd    *exec.Cmd
	Master *os.File
}

// Launch allocates a PTY pair and starts the shell on its subordinate side.
// The subordinate becomes the child's stdin/stdout/stderr and its controlling
// terminal; the initial window size is applied before the child runs so
// full-screen programs render correctly from their first frame. On exec
// failure the child terminates without ever returning into parent logic
// (fork/exec semantics of exec.Cmd). A PTY allocation failure is returned to
// the caller and no child is left behind.
func Launch(spec Spec) (*Proc, error) {
	shell := spec.Shell
	if shell == "" {
		shell = DefaultShell()
	}
	cmd := exec.Command(shell, spec.Args...)
	cmd.Env = append(os.Environ(), spec.Env...)

	var master *os.File
	var err error
	if spec.Size != nil {
		master, err = pty.StartWithSize(cmd, spec.Size)
	} else {
		master, err = pty.Start(cmd)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to start %s in a pty: %w", shell, err)
	}
	return &Proc{Cmd: cmd, Master: master}, nil
}

// DefaultShell returns $SHELL, falling back to /bin/bash.
func DefaultShell() string {
	if s := os.Getenv("SHELL"); s != "" {
		return s
	}
	return "/bin/bash"
}

// Pid returns the child's process ID.
func (p *Proc) Pid() int {
	return p.Cmd.Process.Pid
}

// Wait reaps the child and maps its exit status. For a child killed by a
// signal the code is 128 plus the signal number, the shell convention for
// signal deaths, and signaled is true.
func (p *Proc) Wait() (code int, signaled bool, err error) {
	waitErr := p.Cmd.Wait()
	state := p.Cmd.ProcessState
	if state == nil {
		return 1, false, fmt.Errorf("failed to wait for child: %w", waitErr)
	}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal()), true, nil
	}
	return state.ExitCode(), false, nil
}

// Close releases the master side of the PTY pair.
func (p *Proc) Close() error {
	return p.Master.Close()
}
