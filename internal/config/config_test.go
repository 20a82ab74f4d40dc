package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default("/tmp/listdock.db")
	if cfg.Database.Path != "/tmp/listdock.db" {
		t.Fatalf("unexpected db path %q", cfg.Database.Path)
	}
	if cfg.Storage.Key != DefaultStorageKey {
		t.Fatalf("unexpected storage key %q", cfg.Storage.Key)
	}
	if cfg.Undo.Depth != 10 {
		t.Fatalf("unexpected undo depth %d", cfg.Undo.Depth)
	}
	if !cfg.Defaults.ShowCompleted || cfg.Defaults.PersistLastFolder {
		t.Fatalf("unexpected default preferences %#v", cfg.Defaults)
	}
	if cfg.LogLevel() != log.InfoLevel {
		t.Fatalf("unexpected log level %v", cfg.LogLevel())
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	defaults := Default("/tmp/listdock.db")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"), defaults)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != defaults.Database.Path {
		t.Fatalf("expected default db path, got %q", cfg.Database.Path)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[database]
path = "/custom/listdock.db"

[storage]
key = "work-lists"

[undo]
depth = 25

[defaults]
show_completed = false
persist_last_folder = true

[logging]
level = "debug"

[logging.dev_file]
enabled = false

[serve]
bind = "0.0.0.0:9000"
mcp_endpoint = "/agents"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path, Default("/tmp/default.db"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != "/custom/listdock.db" {
		t.Fatalf("unexpected db path %q", cfg.Database.Path)
	}
	if cfg.Storage.Key != "work-lists" || cfg.Undo.Depth != 25 {
		t.Fatalf("unexpected storage/undo %#v %#v", cfg.Storage, cfg.Undo)
	}
	if cfg.Defaults.ShowCompleted || !cfg.Defaults.PersistLastFolder {
		t.Fatalf("unexpected defaults %#v", cfg.Defaults)
	}
	if cfg.LogLevel() != log.DebugLevel || cfg.Logging.DevFile.Enabled {
		t.Fatalf("unexpected logging %#v", cfg.Logging)
	}
	if cfg.Serve.Bind != "0.0.0.0:9000" || cfg.Serve.MCPEndpoint != "/agents" || cfg.Serve.APIEndpoint != "/api/v1" {
		t.Fatalf("unexpected serve %#v", cfg.Serve)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"undo depth":     "[undo]\ndepth = 0\n",
		"log level":      "[logging]\nlevel = \"loud\"\n",
		"blank key":      "[storage]\nkey = \" \"\n",
		"endpoint slash": "[serve]\nmcp_endpoint = \"mcp\"\n",
		"same endpoints": "[serve]\napi_endpoint = \"/x\"\nmcp_endpoint = \"/x\"\n",
		"dev dir":        "[logging.dev_file]\nenabled = true\ndir = \"\"\n",
		"bad toml":       "[undo\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}
			if _, err := Load(path, Default("/tmp/default.db")); err == nil {
				t.Fatalf("expected error for %s", name)
			}
		})
	}
}

func TestEnsureConfigDir(t *testing.T) {
	target := filepath.Join(t.TempDir(), "a", "b", "config.toml")
	if err := EnsureConfigDir(target); err != nil {
		t.Fatalf("EnsureConfigDir() error = %v", err)
	}
	if _, err := os.Stat(filepath.Dir(target)); err != nil {
		t.Fatalf("expected dir to exist, stat error %v", err)
	}
}
