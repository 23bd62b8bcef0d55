package tui

// Severity classifies a dashboard message for display.
type Severity int

const (
	// SeverityInfo marks ordinary stdout output.
	SeverityInfo Severity = iota
	// SeverityError marks stderr output.
	SeverityError
	// SeveritySystem marks supervisor-generated notices (starts, ends, escalations).
	SeveritySystem
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityError:
		return "error"
	case SeveritySystem:
		return "system"
	default:
		return "unknown"
	}
}

// Event is one item on the pipeline between the supervision tasks and the
// dashboard state. Every producer shares a single channel; the one consumer
// folds events into State.
type Event interface{ isEvent() }

// TabListChanged replaces the whole tab list. Sent once, before any command launches.
type TabListChanged struct{ Titles []string }

// CommandStarted reports that the command addressed by ID spawned an attempt.
type CommandStarted struct{ ID int }

// CommandEnded reports that the current attempt of the command exited.
type CommandEnded struct{ ID int }

// NewStdoutMessage carries one captured stdout line.
type NewStdoutMessage struct {
	ID   int
	Line string
}

// NewStderrMessage carries one captured stderr line.
type NewStderrMessage struct {
	ID   int
	Line string
}

// System carries a supervisor-generated notice for one tab.
type System struct {
	ID   int
	Text string
}

// Input carries a key press from the renderer. It only affects tab navigation.
type Input struct{ Key string }

func (TabListChanged) isEvent()   {}
func (CommandStarted) isEvent()   {}
func (CommandEnded) isEvent()     {}
func (NewStdoutMessage) isEvent() {}
func (NewStderrMessage) isEvent() {}
func (System) isEvent()           {}
func (Input) isEvent()            {}
