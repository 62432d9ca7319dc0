package command

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// BuiltinOptions carries the session context the builtin handlers report on.
type BuiltinOptions struct {
	Out         io.Writer               // the real terminal's output
	SessionID   string
	Shell       string
	Pid         int
	LogPath     string                  // structured event log
	ArchivePath string                  // raw output archive
	Size        func() (cols, rows int) // current terminal geometry; may be nil
}

// RegisterBuiltins installs the pty_* command set. The terminal is in raw
// mode while handlers run, so every line ends in \r\n.
func RegisterBuiltins(r *Registry, opts BuiltinOptions) {
	r.Register("pty_info", func() { cmdInfo(opts) })
	r.Register("pty_help", func() { cmdHelp(r, opts) })
	r.Register("pty_log", func() { cmdLog(opts) })
	r.Register("pty_rawlog", func() { cmdRawlog(opts) })
	r.Register("pty_clear", func() { cmdClear(opts) })
	r.Register("pty_colors", func() { cmdColors(opts) })
}

var (
	cyan   = color.New(color.FgCyan, color.Bold)
	yellow = color.New(color.FgYellow, color.Bold)
	green  = color.New(color.FgGreen, color.Bold)
	red    = color.New(color.FgRed, color.Bold)
)

func line(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, format+"\r\n", args...)
}

func cmdInfo(opts BuiltinOptions) {
	cols, rows := 0, 0
	if opts.Size != nil {
		cols, rows = opts.Size()
	}
	line(opts.Out, "%s", cyan.Sprint("+--------------------------------------+"))
	line(opts.Out, "%s", cyan.Sprint("|          PTY session info            |"))
	line(opts.Out, "%s", cyan.Sprint("+--------------------------------------+"))
	line(opts.Out, "  session:  %s", opts.SessionID)
	line(opts.Out, "  shell:    %s", opts.Shell)
	line(opts.Out, "  term:     %s", os.Getenv("TERM"))
	line(opts.Out, "  size:     %dx%d", cols, rows)
	line(opts.Out, "  pid:      %d", opts.Pid)
	line(opts.Out, "%s", cyan.Sprint("+--------------------------------------+"))
}

func cmdHelp(r *Registry, opts BuiltinOptions) {
	line(opts.Out, "%s", yellow.Sprint("Session host commands:"))
	line(opts.Out, "")
	descriptions := map[string]string{
		"pty_info":   "show session info",
		"pty_help":   "show this help",
		"pty_log":    "tail the structured event log",
		"pty_rawlog": "hexdump the tail of the raw output archive",
		"pty_clear":  "clear the screen",
		"pty_colors": "test terminal color support",
	}
	for _, name := range r.Names() {
		desc := descriptions[name]
		line(opts.Out, "  %s  %s", green.Sprintf("%-12s", name), desc)
	}
	line(opts.Out, "")
	line(opts.Out, "These commands are handled by the session host, not the shell.")
}

func cmdLog(opts BuiltinOptions) {
	const tail = 20
	data, err := os.ReadFile(opts.LogPath)
	if err != nil {
		line(opts.Out, "%s", red.Sprintf("cannot read log: %v", err))
		return
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) > tail {
		lines = lines[len(lines)-tail:]
	}
	line(opts.Out, "%s", yellow.Sprintf("Last %d log entries:", len(lines)))
	for _, l := range lines {
		line(opts.Out, "%s", l)
	}
}

func cmdRawlog(opts BuiltinOptions) {
	const tail = 256
	data, err := os.ReadFile(opts.ArchivePath)
	if err != nil {
		line(opts.Out, "%s", red.Sprintf("cannot read archive: %v", err))
		return
	}
	start := 0
	if len(data) > tail {
		start = len(data) - tail
	}
	line(opts.Out, "%s", yellow.Sprintf("Raw output archive, last %d bytes:", len(data)-start))
	hexdump(opts.Out, data[start:])
}

// hexdump prints 16 bytes per row with an ASCII gutter, offsets relative to
// the start of the dumped slice.
func hexdump(w io.Writer, data []byte) {
	for i := 0; i < len(data); i += 16 {
		row := data[i:min(i+16, len(data))]
		var hexPart, asciiPart strings.Builder
		for _, b := range row {
			fmt.Fprintf(&hexPart, "%02x ", b)
			if b >= 32 && b < 127 {
				asciiPart.WriteByte(b)
			} else {
				asciiPart.WriteByte('.')
			}
		}
		line(w, "%08x  %-48s |%s|", i, hexPart.String(), asciiPart.String())
	}
}

func cmdClear(opts BuiltinOptions) {
	fmt.Fprint(opts.Out, "\x1b[2J\x1b[H")
	line(opts.Out, "%s", cyan.Sprint("+--------------------------------------+"))
	line(opts.Out, "%s", cyan.Sprint("|  PTY session host                    |"))
	line(opts.Out, "%s", cyan.Sprint("|  type pty_help for session commands  |"))
	line(opts.Out, "%s", cyan.Sprint("+--------------------------------------+"))
	line(opts.Out, "")
}

func cmdColors(opts BuiltinOptions) {
	line(opts.Out, "%s", yellow.Sprint("Terminal color test:"))
	line(opts.Out, "")
	var bright, dim strings.Builder
	for c := 30; c <= 37; c++ {
		fmt.Fprintf(&bright, "\x1b[1;%dm##\x1b[0m ", c)
		fmt.Fprintf(&dim, "\x1b[0;%dm##\x1b[0m ", c)
	}
	line(opts.Out, "%s bright", bright.String())
	line(opts.Out, "%s dim", dim.String())
	line(opts.Out, "")
	line(opts.Out, "\x1b[1mbold\x1b[0m  \x1b[4munderline\x1b[0m  \x1b[7mreverse\x1b[0m")
}
