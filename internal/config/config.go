package config

import (
	"fmt"

	"github.com/runmon/runmon/internal/command"
	"github.com/spf13/viper"
)

// ApplicationName gates config files: a file written for another tool is
// rejected before anything launches.
const ApplicationName = "runmon"

// FileConfig mirrors the top-level JSON structure of a runmon config file.
type FileConfig struct {
	Application string         `mapstructure:"application"`
	Version     string         `mapstructure:"version"`
	CrashPath   string         `mapstructure:"crash path"`
	Commands    []CommandEntry `mapstructure:"commands"`
}

// CommandEntry is one element of the "commands" array.
type CommandEntry struct {
	Command       string       `mapstructure:"command"`
	Args          []string     `mapstructure:"args"`
	Name          string       `mapstructure:"name"`
	StdoutHistory *int         `mapstructure:"stdout history"`
	Mode          string       `mapstructure:"mode"`
	Backup        *BackupEntry `mapstructure:"backup strategy"`
}

// BackupEntry is the on-disk form of a backup strategy.
type BackupEntry struct {
	Times        uint     `mapstructure:"times"`
	Period       string   `mapstructure:"period"`
	Script       string   `mapstructure:"script"`
	SafeModeArgs []string `mapstructure:"safe mode args"`
}

// Config is the validated, in-memory result handed to the supervisor.
type Config struct {
	Commands  []command.Descriptor
	CrashPath string
}

// Load reads and validates a JSON config file. version must match the file's
// "version" field; any validation failure is fatal to the whole run and
// reported before any process is launched.
func Load(path, version string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	var fc FileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return build(fc, version)
}

func build(fc FileConfig, version string) (Config, error) {
	if fc.Application == "" {
		return Config{}, fmt.Errorf("config is missing the application name")
	}
	if fc.Application != ApplicationName {
		return Config{}, fmt.Errorf("config is for application %q, want %q", fc.Application, ApplicationName)
	}
	if fc.Version == "" {
		return Config{}, fmt.Errorf("config is missing the version")
	}
	if fc.Version != version {
		return Config{}, fmt.Errorf("config version %q does not match runmon version %q", fc.Version, version)
	}
	if fc.CrashPath == "" {
		return Config{}, fmt.Errorf("config is missing the crash path")
	}
	if len(fc.Commands) == 0 {
		return Config{}, fmt.Errorf("config has no commands")
	}

	descriptors := make([]command.Descriptor, 0, len(fc.Commands))
	for i, entry := range fc.Commands {
		desc, err := buildDescriptor(entry)
		if err != nil {
			return Config{}, fmt.Errorf("command %d: %w", i, err)
		}
		descriptors = append(descriptors, desc)
	}
	return Config{Commands: descriptors, CrashPath: fc.CrashPath}, nil
}

func buildDescriptor(entry CommandEntry) (command.Descriptor, error) {
	if entry.Command == "" {
		return command.Descriptor{}, fmt.Errorf("missing command")
	}
	name := entry.Name
	if name == "" {
		derived, err := command.DeriveName(entry.Command)
		if err != nil {
			return command.Descriptor{}, err
		}
		name = derived
	}
	// An absent key gets the default; an explicit 0 disables the history.
	history := command.DefaultStdoutHistory
	if entry.StdoutHistory != nil {
		if *entry.StdoutHistory < 0 {
			return command.Descriptor{}, fmt.Errorf("stdout history cannot be negative, got %d", *entry.StdoutHistory)
		}
		history = *entry.StdoutHistory
	}
	mode := command.DefaultMode
	if entry.Mode != "" {
		parsed, err := command.ParseMode(entry.Mode)
		if err != nil {
			return command.Descriptor{}, err
		}
		mode = parsed
	}
	var backup *command.BackupStrategy
	if entry.Backup != nil {
		period, err := command.ParsePeriod(entry.Backup.Period)
		if err != nil {
			return command.Descriptor{}, fmt.Errorf("backup strategy: %w", err)
		}
		backup = &command.BackupStrategy{
			Times:        entry.Backup.Times,
			Period:       period,
			Script:       entry.Backup.Script,
			SafeModeArgs: entry.Backup.SafeModeArgs,
		}
	}
	return command.Descriptor{
		Name:          name,
		Command:       entry.Command,
		Args:          entry.Args,
		StdoutHistory: history,
		Mode:          mode,
		Backup:        backup,
	}, nil
}
