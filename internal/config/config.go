package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	toml "github.com/pelletier/go-toml/v2"
)

// DefaultStorageKey matches the key the list service saves its state under.
const DefaultStorageKey = "list-dock-storage"

// DefaultUndoDepth is the number of undo steps kept when none is configured.
const DefaultUndoDepth = 10

type Config struct {
	Database DatabaseConfig `toml:"database"`
	Storage  StorageConfig  `toml:"storage"`
	Undo     UndoConfig     `toml:"undo"`
	Defaults DefaultsConfig `toml:"defaults"`
	Logging  LoggingConfig  `toml:"logging"`
	Serve    ServeConfig    `toml:"serve"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type StorageConfig struct {
	Key string `toml:"key"`
}

type UndoConfig struct {
	Depth int `toml:"depth"`
}

// DefaultsConfig seeds preferences for a store that has never saved any.
type DefaultsConfig struct {
	ShowCompleted         bool `toml:"show_completed"`
	HideCompletedSubtasks bool `toml:"hide_completed_subtasks"`
	PersistLastFolder     bool `toml:"persist_last_folder"`
	CopyWithSubtasks      bool `toml:"copy_with_subtasks"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type ServeConfig struct {
	Bind        string `toml:"bind"`
	APIEndpoint string `toml:"api_endpoint"`
	MCPEndpoint string `toml:"mcp_endpoint"`
}

func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Storage: StorageConfig{
			Key: DefaultStorageKey,
		},
		Undo: UndoConfig{
			Depth: DefaultUndoDepth,
		},
		Defaults: DefaultsConfig{
			ShowCompleted: true,
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
				Dir:     ".listdock/log",
			},
		},
		Serve: ServeConfig{
			Bind:        "127.0.0.1:5437",
			APIEndpoint: "/api/v1",
			MCPEndpoint: "/mcp",
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database path is required")
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		return errors.New("storage.key is required")
	}
	if c.Undo.Depth < 1 || c.Undo.Depth > 100 {
		return fmt.Errorf("undo.depth must be between 1 and 100, got %d", c.Undo.Depth)
	}
	if _, err := log.ParseLevel(strings.TrimSpace(strings.ToLower(c.Logging.Level))); err != nil {
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}
	if c.Logging.DevFile.Enabled && strings.TrimSpace(c.Logging.DevFile.Dir) == "" {
		return errors.New("logging.dev_file.dir is required when dev file logging is enabled")
	}
	if strings.TrimSpace(c.Serve.Bind) == "" {
		return errors.New("serve.bind is required")
	}
	for name, endpoint := range map[string]string{
		"serve.api_endpoint": c.Serve.APIEndpoint,
		"serve.mcp_endpoint": c.Serve.MCPEndpoint,
	} {
		if !strings.HasPrefix(strings.TrimSpace(endpoint), "/") {
			return fmt.Errorf("%s must start with /: %q", name, endpoint)
		}
	}
	if strings.TrimSpace(c.Serve.APIEndpoint) == strings.TrimSpace(c.Serve.MCPEndpoint) {
		return errors.New("serve.api_endpoint and serve.mcp_endpoint must differ")
	}
	return nil
}

// LogLevel returns the configured charm log level.
func (c Config) LogLevel() log.Level {
	level, err := log.ParseLevel(strings.TrimSpace(strings.ToLower(c.Logging.Level)))
	if err != nil {
		return log.InfoLevel
	}
	return level
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
