package capture

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

const (
	// LogFileName is the structured event log inside the capture directory.
	LogFileName = "ptyrec.log"
	// OutputArchiveName holds the shell's raw output stream, ANSI escapes
	// included. The offline recorder replays this file, so already-written
	// bytes are never mutated.
	OutputArchiveName = "output.bin"
	// InputArchiveName holds the raw keyboard stream.
	InputArchiveName = "input.bin"
	// TermSizeFileName is read by the offline recorder to size its screen.
	TermSizeFileName = "term_size.json"
)

// Options configures a FileSink.
type Options struct {
	Dir       string      // capture directory, created if missing
	SessionID string      // recorded in the session header and log entries
	LogData   bool        // include payload bytes in the structured log
	Clock     clock.Clock // defaults to the wall clock
}

// FileSink is the durable capture sink: a zap JSON event log plus append-only
// binary archives for each direction.
type FileSink struct {
	logger   *zap.Logger
	output   *os.File
	input    *os.File
	dir      string
	id       string
	logData  bool
	clock    clock.Clock
	bytesIn  int64
	bytesOut int64
}

// termSize is the on-disk shape of the terminal size file.
type termSize struct {
	Cols    int    `json:"cols"`
	Rows    int    `json:"rows"`
	Updated string `json:"updated"`
}

// Open creates the capture directory and opens the log and archive files.
func Open(opts Options) (*FileSink, error) {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create capture directory: %w", err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	cfg.Encoding = "json"
	cfg.OutputPaths = []string{filepath.Join(opts.Dir, LogFileName)}
	cfg.ErrorOutputPaths = cfg.OutputPaths
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to open event log: %w", err)
	}
	logger = logger.With(zap.String("session", opts.SessionID))

	output, err := openArchive(filepath.Join(opts.Dir, OutputArchiveName))
	if err != nil {
		return nil, err
	}
	input, err := openArchive(filepath.Join(opts.Dir, InputArchiveName))
	if err != nil {
		_ = output.Close()
		return nil, err
	}

	s := &FileSink{
		logger:  logger,
		output:  output,
		input:   input,
		dir:     opts.Dir,
		id:      opts.SessionID,
		logData: opts.LogData,
		clock:   opts.Clock,
	}

	header := sessionHeader(opts.SessionID, opts.Clock.Now())
	if _, err := output.Write(header); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to write session header: %w", err)
	}
	logger.Info("capture opened",
		zap.String("output_archive", s.ArchivePath()),
		zap.String("input_archive", filepath.Join(opts.Dir, InputArchiveName)),
	)
	return s, nil
}

func openArchive(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", path, err)
	}
	return f, nil
}

func sessionHeader(id string, now time.Time) []byte {
	sep := "==================================================\n"
	return []byte("\n" + sep + "Session: " + id + " " + now.Format(time.RFC3339) + "\n" + sep)
}

// Record appends the chunk to the matching archive and writes one structured
// log entry. Payload bytes already written to an archive are never rewritten.
func (s *FileSink) Record(ev Event) error {
	archive := s.output
	if ev.Direction == Input {
		archive = s.input
	}
	if _, err := archive.Write(ev.Data); err != nil {
		return fmt.Errorf("failed to append to %s archive: %w", ev.Direction, err)
	}
	switch ev.Direction {
	case Input:
		s.bytesIn += int64(len(ev.Data))
	case Output:
		s.bytesOut += int64(len(ev.Data))
	}

	fields := []zap.Field{
		zap.String("direction", string(ev.Direction)),
		zap.Int("bytes", len(ev.Data)),
	}
	if !ev.Time.IsZero() {
		fields = append(fields, zap.Time("event_time", ev.Time))
	}
	if s.logData {
		fields = append(fields, zap.String("data", fmt.Sprintf("%q", ev.Data)))
	}
	s.logger.Debug("relay", fields...)
	return nil
}

// WriteTermSize publishes the current terminal geometry for the offline
// recorder. Called at session start and on every resize notification.
func (s *FileSink) WriteTermSize(cols, rows int) error {
	data, err := json.Marshal(termSize{
		Cols:    cols,
		Rows:    rows,
		Updated: s.clock.Now().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	path := filepath.Join(s.dir, TermSizeFileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write terminal size file: %w", err)
	}
	s.logger.Debug("terminal size", zap.Int("cols", cols), zap.Int("rows", rows))
	return nil
}

// Logger exposes the structured event log for session lifecycle entries.
func (s *FileSink) Logger() *zap.Logger { return s.logger }

// BytesIn returns the total keyboard bytes recorded so far.
func (s *FileSink) BytesIn() int64 { return s.bytesIn }

// BytesOut returns the total shell output bytes recorded so far.
func (s *FileSink) BytesOut() int64 { return s.bytesOut }

// LogPath returns the structured log file path.
func (s *FileSink) LogPath() string { return filepath.Join(s.dir, LogFileName) }

// ArchivePath returns the output archive path.
func (s *FileSink) ArchivePath() string { return filepath.Join(s.dir, OutputArchiveName) }

// Close writes the session footer and releases the capture files.
func (s *FileSink) Close() error {
	var firstErr error
	if _, err := s.output.Write([]byte("\n--- Session End ---\n")); err != nil && firstErr == nil {
		firstErr = err
	}
	s.logger.Info("capture closed",
		zap.Int64("bytes_in", s.bytesIn),
		zap.Int64("bytes_out", s.bytesOut),
	)
	_ = s.logger.Sync()
	if err := s.output.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := s.input.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
