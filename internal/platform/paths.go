package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DefaultAppName names the config and data directories when none is given.
const DefaultAppName = "listdock"

// Paths locates the config file, the sqlite database, and the log directory.
type Paths struct {
	ConfigPath string
	DataDir    string
	DBPath     string
	LogDir     string
}

// Options selects the app directory name. DevMode appends "-dev" so a
// development build keeps its own lists.
type Options struct {
	AppName string
	DevMode bool
}

// Resolve returns the host paths for opts.
func Resolve(opts Options) (Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Paths{}, fmt.Errorf("user home dir: %w", err)
	}
	return resolve(runtime.GOOS, home, os.Getenv, opts)
}

// baseDirs maps a platform to its config and data roots. An env value wins
// over the home-relative fallback.
var baseDirs = map[string]struct {
	configEnv, dataEnv   string
	configHome, dataHome []string
}{
	"linux":   {"XDG_CONFIG_HOME", "XDG_DATA_HOME", []string{".config"}, []string{".local", "share"}},
	"darwin":  {"", "", []string{"Library", "Application Support"}, []string{"Library", "Application Support"}},
	"windows": {"APPDATA", "LOCALAPPDATA", []string{"AppData", "Roaming"}, []string{"AppData", "Local"}},
}

func resolve(goos, home string, getenv func(string) string, opts Options) (Paths, error) {
	if strings.TrimSpace(home) == "" {
		return Paths{}, errors.New("empty home dir")
	}
	name := strings.TrimSpace(opts.AppName)
	if name == "" {
		name = DefaultAppName
	}
	if opts.DevMode {
		name += "-dev"
	}

	dirs, ok := baseDirs[goos]
	if !ok {
		// Other unix systems follow the XDG layout.
		dirs = baseDirs["linux"]
	}
	pick := func(env string, fallback []string) string {
		if env != "" {
			if v := strings.TrimSpace(getenv(env)); v != "" {
				return v
			}
		}
		return filepath.Join(append([]string{home}, fallback...)...)
	}

	configDir := filepath.Join(pick(dirs.configEnv, dirs.configHome), name)
	dataDir := filepath.Join(pick(dirs.dataEnv, dirs.dataHome), name)
	return Paths{
		ConfigPath: filepath.Join(configDir, "config.toml"),
		DataDir:    dataDir,
		DBPath:     filepath.Join(dataDir, name+".db"),
		LogDir:     filepath.Join(dataDir, "logs"),
	}, nil
}
