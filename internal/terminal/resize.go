package terminal

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/creack/pty"
)

// Notifier delivers terminal geometry-change notifications. Real sessions
// subscribe to SIGWINCH; tests inject synthetic notifications with Notify.
// The channel is buffered with depth one: a burst of resizes coalesces into
// a single re-read of the current size, which is all propagation needs.
type Notifier struct {
	signals chan os.Signal
	stop    chan struct{}
	done    chan struct{}
}

// NewNotifier creates a notifier without subscribing to any OS signal.
func NewNotifier() *Notifier {
	return &Notifier{
		signals: make(chan os.Signal, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Subscribe registers the notifier for SIGWINCH delivery.
func (n *Notifier) Subscribe() {
	signal.Notify(n.signals, syscall.SIGWINCH)
}

// Notify injects a synthetic geometry-change notification. It never blocks;
// a notification already pending covers this one.
func (n *Notifier) Notify() {
	select {
	case n.signals <- syscall.SIGWINCH:
	default:
	}
}

// Start runs apply once per notification until Stop is called. apply must be
// safe to run concurrently with the relay loop; size propagation is a
// fixed-size ioctl on the PTY, not stream I/O, so no locking is needed.
func (n *Notifier) Start(apply func()) {
	go func() {
		defer close(n.done)
		for {
			select {
			case <-n.signals:
				apply()
			case <-n.stop:
				return
			}
		}
	}()
}

// Stop unsubscribes from SIGWINCH and waits for the propagation goroutine to
// exit.
func (n *Notifier) Stop() {
	signal.Stop(n.signals)
	close(n.stop)
	<-n.done
}

// Propagate copies the current window size of the real terminal tty onto the
// PTY master, so the child sees the same geometry as the user's terminal.
func Propagate(tty, master *os.File) error {
	return pty.InheritSize(tty, master)
}

// Size reads the window size of a terminal device.
func Size(f *os.File) (*pty.Winsize, error) {
	return pty.GetsizeFull(f)
}
