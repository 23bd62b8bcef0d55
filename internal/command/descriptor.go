package command

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultStdoutHistory is the number of stdout lines retained in memory per attempt.
const DefaultStdoutHistory = 1000

// DefaultMode is applied when a command does not specify a restart mode.
const DefaultMode = RunUntilSuccess

// Mode decides what happens to a command's supervision loop across attempts.
type Mode int

const (
	// RunOnce executes exactly once; the outcome does not matter.
	RunOnce Mode = iota
	// RunOnceAndWait is RunOnce, but later commands are not launched until it finishes.
	RunOnceAndWait
	// RunUntilSuccess repeats attempts until one exits with status 0.
	RunUntilSuccess
	// RunUntilSuccessAndWait is RunUntilSuccess with launch-order serialization.
	RunUntilSuccessAndWait
	// KeepAlive restarts forever regardless of exit status.
	KeepAlive
)

func (m Mode) String() string {
	switch m {
	case RunOnce:
		return "run once"
	case RunOnceAndWait:
		return "run once and wait"
	case RunUntilSuccess:
		return "run until success"
	case RunUntilSuccessAndWait:
		return "run until success and wait"
	case KeepAlive:
		return "keep alive"
	default:
		return "unknown"
	}
}

// ParseMode maps the config-file mode string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "run once":
		return RunOnce, nil
	case "run once and wait":
		return RunOnceAndWait, nil
	case "run until success":
		return RunUntilSuccess, nil
	case "run until success and wait":
		return RunUntilSuccessAndWait, nil
	case "keep alive":
		return KeepAlive, nil
	default:
		return 0, fmt.Errorf("invalid mode %q", s)
	}
}

// Waits reports whether the mode blocks launching the commands listed after it.
func (m Mode) Waits() bool {
	return m == RunOnceAndWait || m == RunUntilSuccessAndWait
}

// Descriptor is the immutable configuration for one supervised command.
// Instances are built once at startup by the config loader and never mutated.
type Descriptor struct {
	// Name identifies the command in the dashboard and in crash folder paths.
	Name string
	// Command is the executable path.
	Command string
	// Args are passed to the executable verbatim.
	Args []string
	// StdoutHistory caps the in-memory ring of recent stdout lines. Zero
	// keeps no history at all.
	StdoutHistory int
	// Mode selects the restart policy.
	Mode Mode
	// Backup, when set, escalates repeated crashes to a fallback remedy.
	Backup *BackupStrategy
}

// DeriveName extracts the file stem of an executable path for use as a
// command name: "path/test.exe" becomes "test". Dotfiles keep their full
// name. Paths without a usable stem are an error, not a silent default.
func DeriveName(commandPath string) (string, error) {
	base := filepath.Base(commandPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		// ".profile" has extension ".profile"; the whole name is the stem.
		stem = base
	}
	if stem == "." || stem == ".." || stem == "/" || stem == string(filepath.Separator) {
		return "", fmt.Errorf("%q is not a valid command: no file stem to derive a name from", commandPath)
	}
	return stem, nil
}
