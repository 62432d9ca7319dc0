package terminal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/term"
)

func TestAcquireRestore(t *testing.T) {
	origMakeRaw, origRestore := makeRaw, restoreState
	t.Cleanup(func() { makeRaw, restoreState = origMakeRaw, origRestore })

	t.Run("restore reapplies the captured snapshot exactly once", func(t *testing.T) {
		snapshot := &term.State{}
		restores := 0
		makeRaw = func(fd int) (*term.State, error) {
			assert.Equal(t, 7, fd)
			return snapshot, nil
		}
		restoreState = func(fd int, state *term.State) error {
			assert.Equal(t, 7, fd)
			assert.Same(t, snapshot, state)
			restores++
			return nil
		}

		mode, err := AcquireRaw(7)
		require.NoError(t, err)

		require.NoError(t, mode.Restore())
		assert.Equal(t, 1, restores)

		// A second restore, e.g. error path plus deferred cleanup, is a no-op.
		require.NoError(t, mode.Restore())
		assert.Equal(t, 1, restores)
	})

	t.Run("acquire failure alters nothing", func(t *testing.T) {
		makeRaw = func(fd int) (*term.State, error) {
			return nil, errors.New("not a tty")
		}
		mode, err := AcquireRaw(3)
		require.Error(t, err)
		assert.Nil(t, mode)
	})

	t.Run("restore on a nil mode is safe", func(t *testing.T) {
		var mode *Mode
		assert.NoError(t, mode.Restore())
	})

	t.Run("restore failure is surfaced", func(t *testing.T) {
		makeRaw = func(fd int) (*term.State, error) { return &term.State{}, nil }
		restoreState = func(fd int, state *term.State) error { return errors.New("tcsetattr failed") }

		mode, err := AcquireRaw(0)
		require.NoError(t, err)
		assert.Error(t, mode.Restore())
	})
}
