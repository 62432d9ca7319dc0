//go:build !windows

package ptysh

import (
	"os"
	"runtime"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireUnixShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("pty launch requires a unix system")
	}
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("/bin/sh not available")
	}
}

// readAll drains the master until the child closes its side. EIO on a Linux
// master after child exit is the normal end-of-stream.
func readAll(t *testing.T, master *os.File) []byte {
	t.Helper()
	var out []byte
	buf := make([]byte, 1024)
	for {
		n, err := master.Read(buf)
		out = append(out, buf[:n]...)
		if err != nil {
			return out
		}
	}
}

func TestLaunch(t *testing.T) {
	requireUnixShell(t)

	t.Run("child output arrives on the master and exit is reaped", func(t *testing.T) {
		proc, err := Launch(Spec{Shell: "/bin/sh", Args: []string{"-c", "echo hello"}})
		require.NoError(t, err)
		defer proc.Close()

		out := readAll(t, proc.Master)
		// The pty line discipline turns \n into \r\n.
		assert.Contains(t, string(out), "hello\r\n")

		code, signaled, err := proc.Wait()
		require.NoError(t, err)
		assert.False(t, signaled)
		assert.Equal(t, 0, code)
	})

	t.Run("nonzero exit status is reported", func(t *testing.T) {
		proc, err := Launch(Spec{Shell: "/bin/sh", Args: []string{"-c", "exit 7"}})
		require.NoError(t, err)
		defer proc.Close()

		readAll(t, proc.Master)
		code, signaled, err := proc.Wait()
		require.NoError(t, err)
		assert.False(t, signaled)
		assert.Equal(t, 7, code)
	})

	t.Run("signal death maps to 128 plus the signal", func(t *testing.T) {
		proc, err := Launch(Spec{Shell: "/bin/sh", Args: []string{"-c", "sleep 30"}})
		require.NoError(t, err)
		defer proc.Close()

		require.NoError(t, proc.Cmd.Process.Kill())
		readAll(t, proc.Master)
		code, signaled, err := proc.Wait()
		require.NoError(t, err)
		assert.True(t, signaled)
		assert.Equal(t, 137, code) // 128 + SIGKILL
	})

	t.Run("initial size is applied before the child runs", func(t *testing.T) {
		size := &pty.Winsize{Rows: 42, Cols: 111}
		proc, err := Launch(Spec{Shell: "/bin/sh", Args: []string{"-c", "stty size"}, Size: size})
		require.NoError(t, err)
		defer proc.Close()

		got, err := pty.GetsizeFull(proc.Master)
		require.NoError(t, err)
		assert.Equal(t, uint16(42), got.Rows)
		assert.Equal(t, uint16(111), got.Cols)

		readAll(t, proc.Master)
		_, _, _ = proc.Wait()
	})

	t.Run("session env reaches the child", func(t *testing.T) {
		proc, err := Launch(Spec{
			Shell: "/bin/sh",
			Args:  []string{"-c", "echo marker=$PTYREC_SESSION"},
			Env:   SessionEnv("/bin/sh", ""),
		})
		require.NoError(t, err)
		defer proc.Close()

		deadline := time.After(5 * time.Second)
		done := make(chan []byte, 1)
		go func() { done <- readAll(t, proc.Master) }()
		select {
		case out := <-done:
			assert.Contains(t, string(out), "marker=1")
		case <-deadline:
			t.Fatal("timed out waiting for child output")
		}
		_, _, _ = proc.Wait()
	})

	t.Run("missing shell surfaces a launch error", func(t *testing.T) {
		_, err := Launch(Spec{Shell: "/nonexistent/shell"})
		require.Error(t, err)
	})
}
