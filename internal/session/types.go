package session

import "time"

// End reasons recorded when a session stops.
const (
	EndNormal   = "normal"   // child exited with status 0
	EndExited   = "exited"   // child exited with a nonzero status
	EndSignaled = "signaled" // child was terminated by a signal
	EndIOError  = "io-error" // the relay hit an unexpected read/write error
)

// Session is the record of one PTY session: which shell ran, when, how it
// ended, and where its capture files live.
type Session struct {
	ID          string     `json:"id"`
	Shell       string     `json:"shell"`
	Prompt      string     `json:"prompt,omitempty"`
	Pid         int        `json:"pid,omitempty"`
	Status      string     `json:"status"` // "running", "stopped"
	StartedAt   time.Time  `json:"started_at"`
	StoppedAt   *time.Time `json:"stopped_at,omitempty"`
	EndReason   string     `json:"end_reason,omitempty"`
	ExitCode    int        `json:"exit_code"`
	BytesIn     int64      `json:"bytes_in"`
	BytesOut    int64      `json:"bytes_out"`
	LogPath     string     `json:"log_path,omitempty"`
	ArchivePath string     `json:"archive_path,omitempty"`
}
