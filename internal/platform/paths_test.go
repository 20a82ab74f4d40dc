package platform

import (
	"path/filepath"
	"testing"
)

func envFrom(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestResolvePlatforms(t *testing.T) {
	cases := []struct {
		name       string
		goos       string
		env        map[string]string
		wantConfig string
		wantData   string
	}{
		{
			name:       "linux xdg",
			goos:       "linux",
			env:        map[string]string{"XDG_CONFIG_HOME": "/xdg/config", "XDG_DATA_HOME": "/xdg/data"},
			wantConfig: filepath.Join("/xdg/config", "listdock", "config.toml"),
			wantData:   filepath.Join("/xdg/data", "listdock"),
		},
		{
			name:       "linux fallback",
			goos:       "linux",
			wantConfig: filepath.Join("/home/me", ".config", "listdock", "config.toml"),
			wantData:   filepath.Join("/home/me", ".local", "share", "listdock"),
		},
		{
			name:       "darwin ignores xdg",
			goos:       "darwin",
			env:        map[string]string{"XDG_CONFIG_HOME": "/ignored"},
			wantConfig: filepath.Join("/home/me", "Library", "Application Support", "listdock", "config.toml"),
			wantData:   filepath.Join("/home/me", "Library", "Application Support", "listdock"),
		},
		{
			name:       "windows appdata",
			goos:       "windows",
			env:        map[string]string{"APPDATA": `C:\Roaming`, "LOCALAPPDATA": `C:\Local`},
			wantConfig: filepath.Join(`C:\Roaming`, "listdock", "config.toml"),
			wantData:   filepath.Join(`C:\Local`, "listdock"),
		},
		{
			name:       "unknown unix uses xdg layout",
			goos:       "freebsd",
			wantConfig: filepath.Join("/home/me", ".config", "listdock", "config.toml"),
			wantData:   filepath.Join("/home/me", ".local", "share", "listdock"),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := resolve(tc.goos, "/home/me", envFrom(tc.env), Options{})
			if err != nil {
				t.Fatalf("resolve() error = %v", err)
			}
			if p.ConfigPath != tc.wantConfig {
				t.Fatalf("config path = %q, want %q", p.ConfigPath, tc.wantConfig)
			}
			if p.DataDir != tc.wantData {
				t.Fatalf("data dir = %q, want %q", p.DataDir, tc.wantData)
			}
			if p.DBPath != filepath.Join(tc.wantData, "listdock.db") || p.LogDir != filepath.Join(tc.wantData, "logs") {
				t.Fatalf("unexpected db/log paths %#v", p)
			}
		})
	}
}

func TestResolveDevModeAndName(t *testing.T) {
	p, err := resolve("linux", "/home/me", envFrom(nil), Options{AppName: " lists ", DevMode: true})
	if err != nil {
		t.Fatalf("resolve() error = %v", err)
	}
	if filepath.Base(filepath.Dir(p.ConfigPath)) != "lists-dev" {
		t.Fatalf("expected dev config dir, got %q", p.ConfigPath)
	}
	if filepath.Base(p.DBPath) != "lists-dev.db" {
		t.Fatalf("expected dev db name, got %q", p.DBPath)
	}
}

func TestResolveRejectsEmptyHome(t *testing.T) {
	if _, err := resolve("linux", "  ", envFrom(nil), Options{}); err == nil {
		t.Fatal("expected error for empty home dir")
	}
}

func TestResolveSmoke(t *testing.T) {
	p, err := Resolve(Options{AppName: DefaultAppName})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if p.ConfigPath == "" || p.DBPath == "" || p.DataDir == "" || p.LogDir == "" {
		t.Fatalf("expected non-empty paths, got %#v", p)
	}
}
