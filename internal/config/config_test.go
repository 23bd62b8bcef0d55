package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/runmon/runmon/internal/command"
)

const testVersion = "0.3.0"

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "runmon.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `{
		"application": "runmon",
		"version": "0.3.0",
		"crash path": "/var/crash/runmon",
		"commands": [
			{
				"command": "./updater/updater",
				"args": ["-all"],
				"mode": "run until success",
				"stdout history": 100,
				"backup strategy": {
					"times": 3,
					"period": "5m",
					"script": "/opt/cleanup.sh",
					"safe mode args": ["--safe"]
				}
			},
			{
				"command": "/usr/bin/daemon",
				"name": "worker",
				"mode": "keep alive"
			}
		]
	}`)
	cfg, err := Load(path, testVersion)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CrashPath != "/var/crash/runmon" {
		t.Fatalf("crash path = %q", cfg.CrashPath)
	}
	if len(cfg.Commands) != 2 {
		t.Fatalf("commands = %d, want 2", len(cfg.Commands))
	}

	first := cfg.Commands[0]
	if first.Name != "updater" {
		t.Fatalf("derived name = %q, want updater", first.Name)
	}
	if first.StdoutHistory != 100 || first.Mode != command.RunUntilSuccess {
		t.Fatalf("first descriptor = %+v", first)
	}
	if first.Backup == nil {
		t.Fatal("backup strategy not parsed")
	}
	if first.Backup.Times != 3 || first.Backup.Period != 5*time.Minute {
		t.Fatalf("backup = %+v", first.Backup)
	}
	if first.Backup.Script != "/opt/cleanup.sh" || len(first.Backup.SafeModeArgs) != 1 {
		t.Fatalf("backup remedies = %+v", first.Backup)
	}

	second := cfg.Commands[1]
	if second.Name != "worker" {
		t.Fatalf("explicit name = %q, want worker", second.Name)
	}
	if second.Mode != command.KeepAlive {
		t.Fatalf("mode = %v, want keep alive", second.Mode)
	}
	if second.Backup != nil {
		t.Fatal("no backup strategy expected")
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"application": "runmon",
		"version": "0.3.0",
		"crash path": "/tmp/crash",
		"commands": [{"command": "path/test.exe"}]
	}`)
	cfg, err := Load(path, testVersion)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	d := cfg.Commands[0]
	if d.Name != "test" {
		t.Fatalf("name = %q, want test", d.Name)
	}
	if d.StdoutHistory != command.DefaultStdoutHistory {
		t.Fatalf("history = %d, want default %d", d.StdoutHistory, command.DefaultStdoutHistory)
	}
	if d.Mode != command.RunUntilSuccess {
		t.Fatalf("mode = %v, want default run until success", d.Mode)
	}
}

func TestLoadHonorsExplicitZeroHistory(t *testing.T) {
	path := writeConfig(t, `{
		"application": "runmon",
		"version": "0.3.0",
		"crash path": "/tmp/crash",
		"commands": [{"command": "ls", "stdout history": 0}]
	}`)
	cfg, err := Load(path, testVersion)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if h := cfg.Commands[0].StdoutHistory; h != 0 {
		t.Fatalf("history = %d, want explicit 0 (not the default)", h)
	}
}

func TestLoadRejectsBadConfigs(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"wrong application", `{"application": "other", "version": "0.3.0", "crash path": "/c", "commands": [{"command": "ls"}]}`},
		{"missing application", `{"version": "0.3.0", "crash path": "/c", "commands": [{"command": "ls"}]}`},
		{"wrong version", `{"application": "runmon", "version": "9.9.9", "crash path": "/c", "commands": [{"command": "ls"}]}`},
		{"missing version", `{"application": "runmon", "crash path": "/c", "commands": [{"command": "ls"}]}`},
		{"missing crash path", `{"application": "runmon", "version": "0.3.0", "commands": [{"command": "ls"}]}`},
		{"no commands", `{"application": "runmon", "version": "0.3.0", "crash path": "/c", "commands": []}`},
		{"missing command", `{"application": "runmon", "version": "0.3.0", "crash path": "/c", "commands": [{"args": ["-a"]}]}`},
		{"bad mode", `{"application": "runmon", "version": "0.3.0", "crash path": "/c", "commands": [{"command": "ls", "mode": "sometimes"}]}`},
		{"underivable name", `{"application": "runmon", "version": "0.3.0", "crash path": "/c", "commands": [{"command": ".."}]}`},
		{"negative stdout history", `{"application": "runmon", "version": "0.3.0", "crash path": "/c", "commands": [{"command": "ls", "stdout history": -5}]}`},
		{"bad period", `{"application": "runmon", "version": "0.3.0", "crash path": "/c", "commands": [{"command": "ls", "backup strategy": {"times": 1, "period": "5x"}}]}`},
		{"not json", `application = "runmon"`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			path := writeConfig(t, c.body)
			if _, err := Load(path, testVersion); err == nil {
				t.Fatalf("Load should fail for %s", c.name)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json"), testVersion); err == nil {
		t.Fatal("Load should fail for a missing file")
	}
}
