package capture

import "time"

// Direction tells which side of the session produced a relayed chunk.
type Direction string

const (
	// Input is keyboard bytes flowing toward the shell.
	Input Direction = "input"
	// Output is shell bytes flowing toward the real terminal.
	Output Direction = "output"
)

// Event is one relayed chunk together with its capture metadata. Events are
// produced per read by the relay loop and consumed immediately by a Sink;
// the payload is never retained after Record returns.
type Event struct {
	Direction Direction
	Data      []byte
	Time      time.Time
}

// Sink receives every relayed chunk for durable recording.
type Sink interface {
	Record(ev Event) error
	Close() error
}

// NopSink discards all events. Useful when capture is disabled.
type NopSink struct{}

func (NopSink) Record(Event) error { return nil }
func (NopSink) Close() error       { return nil }
