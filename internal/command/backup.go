package command

import (
	"fmt"
	"strconv"
	"time"
)

// BackupStrategy describes what to do when a command keeps crashing: once more
// than Times crashes land inside a sliding Period, the remedy runs before the
// restart loop resumes.
type BackupStrategy struct {
	// Times is the crash count threshold. Escalation fires when the count of
	// crashes inside the window exceeds (not reaches) this value.
	Times uint
	// Period is the sliding window length.
	Period time.Duration
	// Script, when non-empty, is executed once as a one-shot command.
	Script string
	// SafeModeArgs, when non-nil, relaunches the original command once with
	// these arguments instead of the configured ones.
	SafeModeArgs []string
}

// HasRemedy reports whether the strategy can do anything besides give up.
func (b *BackupStrategy) HasRemedy() bool {
	return b.Script != "" || b.SafeModeArgs != nil
}

// ParsePeriod parses the compact unit-suffixed window syntax used in config
// files: "30s", "5m", "12h", "2d", "125w". The suffix is mandatory.
func ParsePeriod(s string) (time.Duration, error) {
	if len(s) < 2 {
		return 0, fmt.Errorf("invalid period %q: want <number><unit>", s)
	}
	n, err := strconv.ParseUint(s[:len(s)-1], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid period %q: %w", s, err)
	}
	var unit time.Duration
	switch s[len(s)-1] {
	case 's':
		unit = time.Second
	case 'm':
		unit = time.Minute
	case 'h':
		unit = time.Hour
	case 'd':
		unit = 24 * time.Hour
	case 'w':
		unit = 7 * 24 * time.Hour
	default:
		return 0, fmt.Errorf("invalid period %q: unknown unit %q", s, s[len(s)-1])
	}
	return time.Duration(n) * unit, nil
}
