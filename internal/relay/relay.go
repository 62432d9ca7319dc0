// Package relay implements the duplex byte relay between the real terminal
// and the PTY master. One reader goroutine per descriptor feeds a single
// select loop, the Go rendition of a readiness-multiplexing wait over exactly
// two descriptors: per-direction FIFO order comes from the single reader, and
// an acknowledgement handshake guarantees each read's full payload is written
// before the next read on that descriptor is issued.
package relay

import (
	"errors"
	"fmt"
	"io"
	"syscall"

	"github.com/benbjohnson/clock"

	"github.com/ptyrec/ptyrec/internal/capture"
)

// EndReason says why the relay loop stopped.
type EndReason string

const (
	// EndChildClosed means the PTY master reached end-of-stream: the child
	// closed its side, typically because the shell exited.
	EndChildClosed EndReason = "child-closed"
	// EndInputClosed means the real terminal's input reached end-of-stream.
	EndInputClosed EndReason = "input-closed"
	// EndIOError means an unexpected read or write error on either
	// descriptor, anything other than end-of-stream.
	EndIOError EndReason = "io-error"
)

// DefaultChunkSize is the per-read granularity of the relay.
const DefaultChunkSize = 1024

// Interceptor inspects an input chunk before it is forwarded to the PTY.
// Returning true consumes the chunk: it is still recorded, but not written
// to the PTY.
type Interceptor func(chunk []byte) bool

// Options tunes a relay run. The zero value is usable.
type Options struct {
	ChunkSize int
	Intercept Interceptor
	// Wake is an optional wakeup source registered alongside the two data
	// descriptors. A wake is not data: the loop re-issues its wait. This is
	// the hook for resize notifications today and user cancellation later.
	Wake  <-chan struct{}
	Clock clock.Clock
}

// chunk is one read's result. data and err can both be set: a reader that
// got bytes and end-of-stream in the same read delivers the bytes first.
type chunk struct {
	data []byte
	err  error
}

// Relay copies bytes between the real terminal (in, out) and the PTY master
// until either source reaches end-of-stream, recording every chunk on sink.
// Chunks within one direction stay in strict FIFO order; the two directions
// are independent channels.
func Relay(in io.Reader, out io.Writer, master io.ReadWriter, sink capture.Sink, opts Options) (EndReason, error) {
	size := opts.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}

	inCh := make(chan chunk)
	outCh := make(chan chunk)
	inAck := make(chan struct{})
	outAck := make(chan struct{})
	stop := make(chan struct{})
	defer close(stop)

	go read(in, size, inCh, inAck, stop)
	go read(master, size, outCh, outAck, stop)

	for {
		select {
		case c := <-inCh:
			if len(c.data) > 0 {
				forward := opts.Intercept == nil || !opts.Intercept(c.data)
				if forward {
					if _, err := master.Write(c.data); err != nil {
						return EndIOError, fmt.Errorf("failed to write to pty: %w", err)
					}
				}
				if err := sink.Record(capture.Event{Direction: capture.Input, Data: c.data, Time: clk.Now()}); err != nil {
					return EndIOError, fmt.Errorf("failed to record input: %w", err)
				}
			}
			if c.err != nil {
				if errors.Is(c.err, io.EOF) {
					drainOutput(outCh, out, sink, clk)
					return EndInputClosed, nil
				}
				return EndIOError, fmt.Errorf("failed to read input: %w", c.err)
			}
			inAck <- struct{}{}

		case c := <-outCh:
			if len(c.data) > 0 {
				if _, err := out.Write(c.data); err != nil {
					return EndIOError, fmt.Errorf("failed to write to terminal: %w", err)
				}
				if err := sink.Record(capture.Event{Direction: capture.Output, Data: c.data, Time: clk.Now()}); err != nil {
					return EndIOError, fmt.Errorf("failed to record output: %w", err)
				}
			}
			if c.err != nil {
				if isEndOfStream(c.err) {
					return EndChildClosed, nil
				}
				return EndIOError, fmt.Errorf("failed to read from pty: %w", c.err)
			}
			outAck <- struct{}{}
		case <-opts.Wake:
			// Spurious wake (resize and the like): re-issue the wait.
		}
	}
}

// read delivers one chunk per underlying read and waits for delivery
// acknowledgement before issuing the next read.
func read(r io.Reader, size int, ch chan<- chunk, ack <-chan struct{}, stop <-chan struct{}) {
	for {
		buf := make([]byte, size)
		n, err := r.Read(buf)
		var data []byte
		if n > 0 {
			data = buf[:n]
		}
		select {
		case ch <- chunk{data: data, err: err}:
		case <-stop:
			return
		}
		if err != nil {
			return
		}
		select {
		case <-ack:
		case <-stop:
			return
		}
	}
}

// drainOutput delivers an output chunk the PTY reader has already handed off
// before the loop acts on input end-of-stream, so the final chunk of child
// output is not truncated.
func drainOutput(outCh <-chan chunk, out io.Writer, sink capture.Sink, clk clock.Clock) {
	select {
	case c := <-outCh:
		if len(c.data) > 0 {
			if _, err := out.Write(c.data); err != nil {
				return
			}
			_ = sink.Record(capture.Event{Direction: capture.Output, Data: c.data, Time: clk.Now()})
		}
	default:
	}
}

// isEndOfStream matches the two ways a PTY master signals the child closed
// its side: plain EOF, or EIO on Linux.
func isEndOfStream(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, syscall.EIO)
}
