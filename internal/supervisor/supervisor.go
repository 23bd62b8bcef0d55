package supervisor

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/runmon/runmon/internal/command"
	"github.com/runmon/runmon/internal/escalate"
	"github.com/runmon/runmon/internal/executor"
	"github.com/runmon/runmon/internal/metrics"
	"github.com/runmon/runmon/internal/tui"
)

// execFunc runs one attempt of a command. Swapped out in tests.
type execFunc func(desc command.Descriptor, crashRoot string, sink *tui.Pipeline, id int) error

// escalatorFor builds the crash escalation for one supervision task.
type escalatorFactory func(desc command.Descriptor, crashRoot string, sink *tui.Pipeline, id int) *escalate.Escalator

// Supervisor drives the restart policy for every configured command. Each
// command gets its own supervision task; attempts within a task are strictly
// sequential, concurrency exists only across commands.
type Supervisor struct {
	commands  []command.Descriptor
	crashRoot string
	pipeline  *tui.Pipeline

	exec        execFunc
	newEscalate escalatorFactory
}

func New(commands []command.Descriptor, crashRoot string, pipeline *tui.Pipeline) *Supervisor {
	return &Supervisor{
		commands:    commands,
		crashRoot:   crashRoot,
		pipeline:    pipeline,
		exec:        executor.Execute,
		newEscalate: escalate.New,
	}
}

// Run creates the crash folder root, publishes the tab list, launches one
// supervision task per command and blocks until every task has finished.
// "...and wait" modes run inline so commands listed after them are not
// launched until they complete; all other modes run concurrently. With a
// keep-alive command configured Run never returns on its own.
func (s *Supervisor) Run() error {
	if err := os.MkdirAll(s.crashRoot, 0o750); err != nil {
		return fmt.Errorf("create crash folder root %s: %w", s.crashRoot, err)
	}

	titles := make([]string, len(s.commands))
	for i, c := range s.commands {
		titles[i] = c.Name
	}
	s.pipeline.Send(tui.TabListChanged{Titles: titles})

	var wg sync.WaitGroup
	for id, desc := range s.commands {
		task := s.taskFor(desc)
		if desc.Mode.Waits() {
			task(desc, id)
			continue
		}
		wg.Add(1)
		go func(desc command.Descriptor, id int) {
			defer wg.Done()
			task(desc, id)
		}(desc, id)
	}
	wg.Wait()
	return nil
}

func (s *Supervisor) taskFor(desc command.Descriptor) func(command.Descriptor, int) {
	switch desc.Mode {
	case command.RunOnce, command.RunOnceAndWait:
		return s.runOnce
	case command.KeepAlive:
		return s.keepAlive
	default:
		return s.runUntilSuccess
	}
}

// runOnce executes a single attempt; the outcome only matters for artifacts.
func (s *Supervisor) runOnce(desc command.Descriptor, id int) {
	s.attempt(desc, id)
}

// runUntilSuccess repeats attempts until one succeeds, escalating after every
// failure. It also stops when escalation gives the command up.
func (s *Supervisor) runUntilSuccess(desc command.Descriptor, id int) {
	esc := s.newEscalate(desc, s.crashRoot, s.pipeline, id)
	for {
		if err := s.attempt(desc, id); err == nil {
			return
		}
		if !esc.OnCrash() {
			return
		}
	}
}

// keepAlive restarts forever regardless of exit status. Only an escalation
// give-up ends the loop.
func (s *Supervisor) keepAlive(desc command.Descriptor, id int) {
	esc := s.newEscalate(desc, s.crashRoot, s.pipeline, id)
	for {
		if err := s.attempt(desc, id); err != nil {
			if !esc.OnCrash() {
				return
			}
		}
	}
}

func (s *Supervisor) attempt(desc command.Descriptor, id int) error {
	metrics.IncAttempt(desc.Name)
	metrics.SetRunning(desc.Name, true)
	err := s.exec(desc, s.crashRoot, s.pipeline, id)
	metrics.SetRunning(desc.Name, false)
	if err != nil {
		metrics.IncCrash(desc.Name)
		slog.Debug("attempt failed", "name", desc.Name, "error", err)
	}
	return err
}
