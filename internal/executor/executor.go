package executor

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/runmon/runmon/internal/capture"
	"github.com/runmon/runmon/internal/command"
	"github.com/runmon/runmon/internal/tui"
)

// folderTimeLayout names the per-attempt crash folder after the launch time.
const folderTimeLayout = "2006-01-02_15:04:05"

// ExitError reports a child that terminated with a non-zero status.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command exited with status %d", e.Code)
}

// Execute runs one attempt of the described command: it spawns the child in
// its own process group with stdout and stderr piped, captures both streams,
// and blocks until the child exits. Stderr capture streams to
// {crashRoot}/{name}-{launchTime}/stderr.txt as lines arrive; on a non-zero
// exit the buffered stdout history is dumped to stdout.txt in the same
// folder and an *ExitError is returned. Spawn and pipe failures are returned
// as plain errors; retrying is the caller's concern.
func Execute(desc command.Descriptor, crashRoot string, sink *tui.Pipeline, id int) error {
	sink.Send(tui.CommandStarted{ID: id})

	// #nosec G204 -- the command comes from validated operator config
	cmd := exec.Command(desc.Command, desc.Args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%s: stdout pipe: %w", desc.Name, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("%s: stderr pipe: %w", desc.Name, err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%s: start: %w", desc.Name, err)
	}
	started := time.Now()
	crashDir := filepath.Join(crashRoot, fmt.Sprintf("%s-%s", desc.Name, started.Format(folderTimeLayout)))

	stderrDone := make(chan struct{})
	go func() {
		defer close(stderrDone)
		capture.MonitorStderr(crashDir, stderr, sink, id)
	}()

	buf := capture.NewBuffer(desc.StdoutHistory)
	capture.MonitorStdout(buf, stdout, sink, id)

	// Both pipes hit EOF when the child exits; drain stderr fully before
	// Wait closes the read ends.
	<-stderrDone

	waitErr := cmd.Wait()
	sink.Send(tui.CommandEnded{ID: id})
	if waitErr == nil {
		return nil
	}

	if err := capture.DumpBuffer(buf, crashDir); err != nil {
		slog.Error("cannot dump stdout history", "name", desc.Name, "error", err)
	}
	var ee *exec.ExitError
	if errors.As(waitErr, &ee) {
		return &ExitError{Code: ee.ExitCode()}
	}
	return fmt.Errorf("%s: wait: %w", desc.Name, waitErr)
}
