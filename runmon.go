// Package runmon supervises a list of configured commands: it launches each
// one as a child process, captures its output, restarts it according to a
// per-command policy, escalates recurring crashes to a backup remedy, and
// feeds a live multi-tab dashboard.
package runmon

import (
	"github.com/runmon/runmon/internal/command"
	"github.com/runmon/runmon/internal/config"
	"github.com/runmon/runmon/internal/supervisor"
	"github.com/runmon/runmon/internal/tui"
)

// Version gates config files: the file's "version" field must match.
const Version = "0.3.0"

// Re-export core types for external consumers. These are aliases so
// conversions are zero-cost.

type Descriptor = command.Descriptor

type Mode = command.Mode

type BackupStrategy = command.BackupStrategy

type Config = config.Config

const (
	RunOnce                = command.RunOnce
	RunOnceAndWait         = command.RunOnceAndWait
	RunUntilSuccess        = command.RunUntilSuccess
	RunUntilSuccessAndWait = command.RunUntilSuccessAndWait
	KeepAlive              = command.KeepAlive
)

// LoadConfig reads and validates a JSON config file for this version.
func LoadConfig(path string) (Config, error) {
	return config.Load(path, Version)
}

// ParsePeriod parses the compact "125w" style window syntax.
var ParsePeriod = command.ParsePeriod

// Supervisor is a thin facade over the internal engine for embedding: it
// owns the event pipeline and the dashboard state.
type Supervisor struct {
	inner    *supervisor.Supervisor
	pipeline *tui.Pipeline
	state    *tui.State
	done     chan struct{}
}

// NewSupervisor wires a supervisor with its event pipeline and dashboard
// state consumer. The consumer starts immediately.
func NewSupervisor(cfg Config) *Supervisor {
	pipeline := tui.NewPipeline()
	state := tui.NewState()
	s := &Supervisor{
		inner:    supervisor.New(cfg.Commands, cfg.CrashPath, pipeline),
		pipeline: pipeline,
		state:    state,
		done:     make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		state.Run(pipeline.Events())
	}()
	return s
}

// Run blocks until every supervision task has finished, then closes the
// pipeline and waits for the dashboard consumer to drain. With a keep-alive
// command configured it never returns.
func (s *Supervisor) Run() error {
	err := s.inner.Run()
	s.pipeline.Close()
	<-s.done
	return err
}

// RunWithDashboard runs supervision together with the interactive renderer.
// Quitting the renderer does not stop supervision: the call still blocks
// until every non-keep-alive task has finished.
func (s *Supervisor) RunWithDashboard() error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.inner.Run() }()
	rendererErr := tui.RunRenderer(s.state, s.pipeline)
	err := <-errCh
	s.pipeline.Close()
	<-s.done
	if err != nil {
		return err
	}
	return rendererErr
}

// State exposes the dashboard state for read-only consumers such as the
// status HTTP server.
func (s *Supervisor) State() *tui.State { return s.state }

// Snapshot returns the current dashboard state.
func (s *Supervisor) Snapshot() tui.Snapshot { return s.state.Snapshot() }
