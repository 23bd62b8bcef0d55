package capture

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/runmon/runmon/internal/tui"
)

func drain(p *tui.Pipeline) []tui.Event {
	p.Close()
	var out []tui.Event
	for ev := range p.Events() {
		out = append(out, ev)
	}
	return out
}

func TestMonitorStdoutBuffersAndEmits(t *testing.T) {
	p := tui.NewPipeline()
	buf := NewBuffer(10)
	MonitorStdout(buf, strings.NewReader("one\ntwo\nthree\n"), p, 4)

	entries := buf.Entries()
	if len(entries) != 3 {
		t.Fatalf("buffered %d lines, want 3", len(entries))
	}
	events := drain(p)
	if len(events) != 3 {
		t.Fatalf("emitted %d events, want 3", len(events))
	}
	for i, want := range []string{"one", "two", "three"} {
		msg, ok := events[i].(tui.NewStdoutMessage)
		if !ok {
			t.Fatalf("event %d is %T, want NewStdoutMessage", i, events[i])
		}
		if msg.ID != 4 || msg.Line != want {
			t.Fatalf("event %d = %+v, want id 4 line %q", i, msg, want)
		}
	}
}

func TestMonitorStdoutDiscardsPartialLastLine(t *testing.T) {
	p := tui.NewPipeline()
	buf := NewBuffer(10)
	MonitorStdout(buf, strings.NewReader("complete\npartial"), p, 0)
	// bufio.Scanner yields the trailing fragment as a line; both arrive.
	if buf.Len() != 2 {
		t.Fatalf("buffered %d lines, want 2", buf.Len())
	}
}

func TestDumpBufferWritesTimestampedLines(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "crash", "proc-2026-01-02_03:04:05")
	b := NewBuffer(10)
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local)
	b.Push(at, "first")
	b.Push(at.Add(time.Second), "second")
	if err := DumpBuffer(b, dir); err != nil {
		t.Fatalf("DumpBuffer: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "stdout.txt"))
	if err != nil {
		t.Fatalf("read dump: %v", err)
	}
	want := "03:04:05 | first\n03:04:06 | second\n"
	if string(data) != want {
		t.Fatalf("dump = %q, want %q", string(data), want)
	}
}

func TestDumpBufferOverwritesPreviousDump(t *testing.T) {
	dir := t.TempDir()
	b := NewBuffer(4)
	b.Push(time.Now(), "stale")
	if err := DumpBuffer(b, dir); err != nil {
		t.Fatalf("first dump: %v", err)
	}
	b2 := NewBuffer(4)
	b2.Push(time.Now(), "fresh")
	if err := DumpBuffer(b2, dir); err != nil {
		t.Fatalf("second dump: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "stdout.txt"))
	if err != nil {
		t.Fatalf("read dump: %v", err)
	}
	if strings.Contains(string(data), "stale") {
		t.Fatalf("dump not overwritten: %q", string(data))
	}
}

func TestDumpBufferSkipsEmptyBuffer(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "untouched")
	if err := DumpBuffer(NewBuffer(10), dir); err != nil {
		t.Fatalf("DumpBuffer: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("empty dump should not create the crash folder, stat err = %v", err)
	}
}

func TestMonitorStderrAppendsToLogAndEmits(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "proc-2026-01-02_03:04:05")
	p := tui.NewPipeline()
	MonitorStderr(dir, strings.NewReader("boom\nworse\n"), p, 7)

	data, err := os.ReadFile(filepath.Join(dir, "stderr.txt"))
	if err != nil {
		t.Fatalf("read stderr log: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("logged %d lines, want 2: %q", len(lines), string(data))
	}
	for i, want := range []string{"boom", "worse"} {
		if !strings.HasSuffix(lines[i], " | "+want) {
			t.Fatalf("line %d = %q, want suffix %q", i, lines[i], " | "+want)
		}
		if len(strings.SplitN(lines[i], " | ", 2)[0]) != len("15:04:05") {
			t.Fatalf("line %d timestamp malformed: %q", i, lines[i])
		}
	}

	events := drain(p)
	if len(events) != 2 {
		t.Fatalf("emitted %d events, want 2", len(events))
	}
	msg, ok := events[0].(tui.NewStderrMessage)
	if !ok || msg.ID != 7 || msg.Line != "boom" {
		t.Fatalf("first event = %#v, want stderr id 7 %q", events[0], "boom")
	}
}

func TestMonitorStderrQuietStreamLeavesNoArtifacts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "quiet")
	p := tui.NewPipeline()
	MonitorStderr(dir, strings.NewReader(""), p, 0)
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("quiet stderr should not create the crash folder, stat err = %v", err)
	}
	if events := drain(p); len(events) != 0 {
		t.Fatalf("quiet stderr emitted %d events", len(events))
	}
}

func TestMonitorStderrDrainsStreamWhenLogUnwritable(t *testing.T) {
	// A plain file where the crash folder should go makes MkdirAll fail.
	blocker := filepath.Join(t.TempDir(), "occupied")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	dir := filepath.Join(blocker, "proc-2026-01-02_03:04:05")

	var b strings.Builder
	for i := 0; i < 5000; i++ {
		fmt.Fprintf(&b, "line %d\n", i)
	}
	p := tui.NewPipeline()
	done := make(chan struct{})
	go func() {
		defer close(done)
		MonitorStderr(dir, strings.NewReader(b.String()), p, 3)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("MonitorStderr did not drain the stream after the log failure")
	}

	events := drain(p)
	if len(events) != 5000 {
		t.Fatalf("emitted %d events, want 5000", len(events))
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("no log artifacts expected, stat err = %v", err)
	}
}

func TestMonitorStdoutLargeVolume(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 1500; i++ {
		fmt.Fprintf(&sb, "line %d\n", i)
	}
	p := tui.NewPipeline()
	buf := NewBuffer(1000)
	MonitorStdout(buf, strings.NewReader(sb.String()), p, 0)
	entries := buf.Entries()
	if len(entries) != 1000 {
		t.Fatalf("buffered %d, want 1000", len(entries))
	}
	if entries[0].Line != "line 500" || entries[999].Line != "line 1499" {
		t.Fatalf("window wrong: first %q last %q", entries[0].Line, entries[999].Line)
	}
}
