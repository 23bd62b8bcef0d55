package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/runmon/runmon"
	"github.com/runmon/runmon/internal/logger"
	"github.com/runmon/runmon/internal/metrics"
	"github.com/runmon/runmon/internal/server"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootFlags struct {
	ConfigPath string
	NoTUI      bool
	Listen     string
	Debug      bool
}

func newRootCmd() *cobra.Command {
	var flags rootFlags
	cmd := &cobra.Command{
		Use:          "runmon",
		Short:        "Run and monitor a set of supervised commands",
		Long:         "runmon launches the commands listed in a config file, restarts them according to their restart policy, escalates recurring crashes to a backup strategy, and shows live output in a multi-tab dashboard.",
		Version:      runmon.Version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(flags)
		},
	}
	cmd.Flags().StringVarP(&flags.ConfigPath, "config", "c", "", "path to the config file")
	cmd.Flags().BoolVar(&flags.NoTUI, "no-tui", false, "disable the dashboard and log to stderr instead")
	cmd.Flags().StringVar(&flags.Listen, "listen", "", "serve the read-only status API and metrics on this address (e.g. :9180)")
	cmd.Flags().BoolVar(&flags.Debug, "debug", false, "enable debug logging")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func run(flags rootFlags) error {
	level := slog.LevelInfo
	if flags.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(logger.Console(os.Stderr, level))

	// Configuration errors are fatal and reported before anything launches.
	cfg, err := runmon.LoadConfig(flags.ConfigPath)
	if err != nil {
		return err
	}

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	sup := runmon.NewSupervisor(cfg)
	if flags.Listen != "" {
		server.NewServer(flags.Listen, sup.State())
	}

	if flags.NoTUI {
		return sup.Run()
	}
	// The dashboard owns the terminal from here on; route diagnostics to a
	// rolling file next to the crash folders.
	slog.SetDefault(logger.File(cfg.CrashPath, level))
	return sup.RunWithDashboard()
}
