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
)

// timeLayout is the per-line timestamp format used in crash folder files.
const timeLayout = "15:04:05"

// maxLineSize bounds a single captured line; longer output is split by the scanner buffer.
const maxLineSize = 1 << 20

// MonitorStdout consumes the child's stdout line by line until the stream
// closes, recording each line in the buffer and emitting a display event.
// Read errors end the monitoring without failing the attempt.
func MonitorStdout(buf *Buffer, r io.Reader, sink *tui.Pipeline, id int) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		line := sc.Text()
		buf.Push(time.Now(), line)
		sink.Send(tui.NewStdoutMessage{ID: id, Line: line})
	}
	if err := sc.Err(); err != nil {
		slog.Warn("stdout monitoring stopped", "id", id, "error", err)
	}
}

// DumpBuffer writes the buffered stdout history to dir/stdout.txt, one
// "HH:MM:SS | text" line per entry, oldest first. The file is overwritten.
// An empty buffer writes nothing and creates no directory.
func DumpBuffer(buf *Buffer, dir string) error {
	if buf.Len() == 0 {
		return nil
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create crash folder %s: %w", dir, err)
	}
	path := filepath.Join(dir, "stdout.txt")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600) // #nosec G304 -- path is derived from validated config
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	for _, e := range buf.Entries() {
		if _, err := fmt.Fprintf(w, "%s | %s\n", e.At.Format(timeLayout), e.Line); err != nil {
			_ = f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}
