package command

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	t.Run("dispatch matches whole trimmed tokens only", func(t *testing.T) {
		r := NewRegistry()
		invoked := 0
		r.Register("pty_info", func() { invoked++ })

		assert.True(t, r.Dispatch([]byte("pty_info\r")))
		assert.True(t, r.Dispatch([]byte("  pty_info \n")))
		assert.Equal(t, 2, invoked)

		assert.False(t, r.Dispatch([]byte("pty_infox\r")), "longer token must not match")
		assert.False(t, r.Dispatch([]byte("pty_info extra\r")), "token with arguments must not match")
		assert.False(t, r.Dispatch([]byte("ls\r")))
		assert.False(t, r.Dispatch([]byte("\r")), "empty line is never reserved")
		assert.Equal(t, 2, invoked)
	})

	t.Run("registration replaces and lookup finds", func(t *testing.T) {
		r := NewRegistry()
		r.Register("x", func() {})
		h, ok := r.Lookup("x")
		require.True(t, ok)
		require.NotNil(t, h)

		_, ok = r.Lookup("y")
		assert.False(t, ok)
	})

	t.Run("names are sorted", func(t *testing.T) {
		r := NewRegistry()
		r.Register("b", func() {})
		r.Register("a", func() {})
		r.Register("c", func() {})
		assert.Equal(t, []string{"a", "b", "c"}, r.Names())
	})
}

func TestBuiltins(t *testing.T) {
	newOpts := func(t *testing.T, out *bytes.Buffer) BuiltinOptions {
		t.Helper()
		dir := t.TempDir()
		logPath := filepath.Join(dir, "ptyrec.log")
		archivePath := filepath.Join(dir, "output.bin")
		require.NoError(t, os.WriteFile(logPath, []byte("{\"msg\":\"one\"}\n{\"msg\":\"two\"}\n"), 0644))
		require.NoError(t, os.WriteFile(archivePath, []byte("hello\x1b[0m"), 0644))
		return BuiltinOptions{
			Out:         out,
			SessionID:   "abc12345",
			Shell:       "/bin/bash",
			Pid:         4242,
			LogPath:     logPath,
			ArchivePath: archivePath,
			Size:        func() (int, int) { return 80, 24 },
		}
	}

	t.Run("help lists every registered command", func(t *testing.T) {
		var out bytes.Buffer
		r := NewRegistry()
		RegisterBuiltins(r, newOpts(t, &out))

		require.True(t, r.Dispatch([]byte("pty_help\r")))
		for _, name := range []string{"pty_info", "pty_help", "pty_log", "pty_rawlog", "pty_clear", "pty_colors"} {
			assert.Contains(t, out.String(), name)
		}
	})

	t.Run("info reports the session context", func(t *testing.T) {
		var out bytes.Buffer
		r := NewRegistry()
		RegisterBuiltins(r, newOpts(t, &out))

		require.True(t, r.Dispatch([]byte("pty_info\r")))
		assert.Contains(t, out.String(), "/bin/bash")
		assert.Contains(t, out.String(), "abc12345")
		assert.Contains(t, out.String(), "80x24")
		assert.Contains(t, out.String(), "4242")
	})

	t.Run("log tails the structured log", func(t *testing.T) {
		var out bytes.Buffer
		r := NewRegistry()
		RegisterBuiltins(r, newOpts(t, &out))

		require.True(t, r.Dispatch([]byte("pty_log\r")))
		assert.Contains(t, out.String(), `{"msg":"one"}`)
		assert.Contains(t, out.String(), `{"msg":"two"}`)
	})

	t.Run("rawlog hexdumps the archive tail", func(t *testing.T) {
		var out bytes.Buffer
		r := NewRegistry()
		RegisterBuiltins(r, newOpts(t, &out))

		require.True(t, r.Dispatch([]byte("pty_rawlog\r")))
		assert.Contains(t, out.String(), "68 65 6c 6c 6f", "hex bytes of 'hello'")
		assert.Contains(t, out.String(), "|hello", "ascii gutter")
	})

	t.Run("raw mode line endings", func(t *testing.T) {
		var out bytes.Buffer
		r := NewRegistry()
		RegisterBuiltins(r, newOpts(t, &out))

		require.True(t, r.Dispatch([]byte("pty_help\r")))
		assert.Contains(t, out.String(), "\r\n", "handlers print CRLF while the terminal is raw")
	})
}
