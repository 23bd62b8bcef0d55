package capture

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/runmon/runmon/internal/tui"
	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Rotation limits for the per-attempt stderr log.
const (
	stderrMaxSizeMB  = 10
	stderrMaxBackups = 3
)

// MonitorStderr consumes the child's stderr line by line until the stream
// closes, appending each line to dir/stderr.txt and emitting a display event.
// The crash folder and the log file are only created on the first line, so a
// quiet command leaves no artifacts. The log rolls over by size so a noisy
// long-running child cannot fill the disk. When the log cannot be created or
// written the monitor keeps draining the pipe without it; returning early
// would leave the child blocked on a full stderr pipe, unable to exit.
func MonitorStderr(dir string, r io.Reader, sink *tui.Pipeline, id int) {
	var w io.WriteCloser
	broken := false
	defer func() {
		if w != nil {
			_ = w.Close()
		}
	}()

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		line := sc.Text()
		if !broken {
			if w == nil {
				if err := os.MkdirAll(dir, 0o750); err != nil {
					slog.Error("stderr log disabled: cannot create crash folder", "id", id, "dir", dir, "error", err)
					broken = true
				} else {
					w = &lj.Logger{
						Filename:   filepath.Join(dir, "stderr.txt"),
						MaxSize:    stderrMaxSizeMB,
						MaxBackups: stderrMaxBackups,
					}
				}
			}
			if w != nil {
				if _, err := fmt.Fprintf(w, "%s | %s\n", time.Now().Format(timeLayout), line); err != nil {
					slog.Error("stderr log disabled: cannot append to log", "id", id, "error", err)
					broken = true
				}
			}
		}
		sink.Send(tui.NewStderrMessage{ID: id, Line: line})
	}
	if err := sc.Err(); err != nil {
		slog.Warn("stderr monitoring stopped", "id", id, "error", err)
	}
}
