package escalate

import (
	"log/slog"
	"time"

	"github.com/runmon/runmon/internal/command"
	"github.com/runmon/runmon/internal/executor"
	"github.com/runmon/runmon/internal/metrics"
	"github.com/runmon/runmon/internal/tui"
)

// giveUpMessage is shown when the crash threshold is crossed with no remedy configured.
const giveUpMessage = "Crash limit reached with no handling strategy, giving up!"

// remedyFunc runs a one-shot remedy command. Swapped out in tests.
type remedyFunc func(desc command.Descriptor, crashRoot string, sink *tui.Pipeline, id int) error

// Escalator applies a command's backup strategy. One instance lives inside
// each supervision task that has a strategy configured; it owns that task's
// crash ledger.
type Escalator struct {
	desc      command.Descriptor
	crashRoot string
	sink      *tui.Pipeline
	id        int
	ledger    Ledger

	now    func() time.Time
	remedy remedyFunc
}

func New(desc command.Descriptor, crashRoot string, sink *tui.Pipeline, id int) *Escalator {
	return &Escalator{
		desc:      desc,
		crashRoot: crashRoot,
		sink:      sink,
		id:        id,
		now:       time.Now,
		remedy:    executor.Execute,
	}
}

// OnCrash records a failed attempt and, when more than Times crashes fall
// inside the sliding window, runs the configured remedy synchronously before
// returning. The remedy fires at most once per call even when several ledger
// entries already exceed the threshold. It returns false when the command
// must be abandoned: threshold crossed with nothing left to try.
func (e *Escalator) OnCrash() bool {
	b := e.desc.Backup
	if b == nil {
		return true
	}
	now := e.now()
	e.ledger.Record(now)
	if e.ledger.CountAfter(now.Add(-b.Period)) <= int(b.Times) {
		return true
	}
	if !b.HasRemedy() {
		metrics.IncAbandoned(e.desc.Name)
		e.sink.Send(tui.System{ID: e.id, Text: giveUpMessage})
		slog.Warn("crash limit reached with no remedy, abandoning command", "name", e.desc.Name)
		return false
	}
	metrics.IncEscalation(e.desc.Name)
	if b.Script != "" {
		e.runRemedy(e.scriptDescriptor(), "running backup script")
	}
	if b.SafeModeArgs != nil {
		e.runRemedy(e.safeModeDescriptor(), "relaunching once with safe mode arguments")
	}
	return true
}

func (e *Escalator) runRemedy(desc command.Descriptor, notice string) {
	e.sink.Send(tui.System{ID: e.id, Text: "Crash limit reached, " + notice})
	if err := e.remedy(desc, e.crashRoot, e.sink, e.id); err != nil {
		slog.Error("backup remedy failed", "name", e.desc.Name, "command", desc.Command, "error", err)
	}
}

// scriptDescriptor wraps the backup script as a one-shot command: no
// arguments, no nested strategy, reusing the failing command's history size.
func (e *Escalator) scriptDescriptor() command.Descriptor {
	return command.Descriptor{
		Name:          e.desc.Name,
		Command:       e.desc.Backup.Script,
		StdoutHistory: e.desc.StdoutHistory,
		Mode:          command.RunOnceAndWait,
	}
}

// safeModeDescriptor relaunches the original command once with the alternate
// argument list.
func (e *Escalator) safeModeDescriptor() command.Descriptor {
	return command.Descriptor{
		Name:          e.desc.Name,
		Command:       e.desc.Command,
		Args:          append([]string(nil), e.desc.Backup.SafeModeArgs...),
		StdoutHistory: e.desc.StdoutHistory,
		Mode:          command.RunOnceAndWait,
	}
}
