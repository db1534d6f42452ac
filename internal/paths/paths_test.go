package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func TestUserConfigDir_XDGOverride(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")

	got, err := UserConfigDir()
	if err != nil {
		t.Fatalf("UserConfigDir() error = %v", err)
	}
	if got != "/tmp/xdg-test" {
		t.Errorf("UserConfigDir() = %q, want %q", got, "/tmp/xdg-test")
	}
}

func TestUserConfigDir_Default(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	os.Unsetenv("XDG_CONFIG_HOME")

	got, err := UserConfigDir()
	if err != nil {
		t.Fatalf("UserConfigDir() error = %v", err)
	}

	home, _ := os.UserHomeDir()
	want := filepath.Join(home, ".config")
	if got != want {
		t.Errorf("UserConfigDir() = %q, want %q", got, want)
	}
}

func TestDerivedPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")

	tests := []struct {
		name string
		fn   func() (string, error)
		want string
	}{
		{"config", ConfigPath, "/tmp/xdg-test/cinepost/config.toml"},
		{"cache", CachePath, "/tmp/xdg-test/cinepost/posters.db"},
		{"log", LogPath, "/tmp/xdg-test/cinepost/logs/cinepost.log"},
		{"rules", RulesPath, "/tmp/xdg-test/cinepost/parser_rules.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn()
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
