package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Telegram.Token = "123:abc"
	cfg.Telegram.ChannelID = -1001234567890
	cfg.TMDB.APIKey = "tmdb-key"
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.TMDB.BaseURL != "https://api.themoviedb.org/3" {
		t.Errorf("unexpected base url: %s", cfg.TMDB.BaseURL)
	}
	if cfg.TMDB.Language != "en-US" {
		t.Errorf("unexpected language: %s", cfg.TMDB.Language)
	}
	if cfg.Session.TimeoutMinutes != 10 {
		t.Errorf("unexpected session timeout: %d", cfg.Session.TimeoutMinutes)
	}
	if cfg.Session.MaxResults != 5 {
		t.Errorf("unexpected max results: %d", cfg.Session.MaxResults)
	}
	if !cfg.TMDB.TrustOrder {
		t.Error("expected provider order trusted by default")
	}
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	missingToken := validConfig()
	missingToken.Telegram.Token = ""
	if err := missingToken.Validate(); err == nil {
		t.Error("missing token accepted")
	}

	missingChannel := validConfig()
	missingChannel.Telegram.ChannelID = 0
	if err := missingChannel.Validate(); err == nil {
		t.Error("missing channel id accepted")
	}

	missingKey := validConfig()
	missingKey.TMDB.APIKey = ""
	if err := missingKey.Validate(); err == nil {
		t.Error("missing api key accepted")
	}

	badLanguage := validConfig()
	badLanguage.TMDB.Language = "not a tag!"
	if err := badLanguage.Validate(); err == nil {
		t.Error("bad language tag accepted")
	}

	otherLanguage := validConfig()
	otherLanguage.TMDB.Language = "it-IT"
	if err := otherLanguage.Validate(); err != nil {
		t.Errorf("it-IT rejected: %v", err)
	}
}

func TestIsUserAllowed(t *testing.T) {
	cfg := validConfig()

	if !cfg.IsUserAllowed(42) {
		t.Error("empty allow-list should allow everyone")
	}

	cfg.Telegram.AllowedUserIDs = []int64{7, 8}
	if !cfg.IsUserAllowed(7) {
		t.Error("listed user rejected")
	}
	if cfg.IsUserAllowed(42) {
		t.Error("unlisted user allowed")
	}
}

func TestDurations(t *testing.T) {
	cfg := validConfig()
	cfg.Session.TimeoutMinutes = 15
	cfg.Cache.TTLHours = 48

	if cfg.SessionTimeout() != 15*time.Minute {
		t.Errorf("SessionTimeout = %v", cfg.SessionTimeout())
	}
	if cfg.CacheTTL() != 48*time.Hour {
		t.Errorf("CacheTTL = %v", cfg.CacheTTL())
	}
}

func TestToTOMLRoundTripsSections(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.AllowedUserIDs = []int64{1, 2}
	out := cfg.ToTOML()

	for _, want := range []string{
		"[telegram]", "[tmdb]", "[session]", "[cache]", "[health]", "[parser]", "[logging]",
		`token = "123:abc"`,
		"channel_id = -1001234567890",
		"allowed_user_ids = [1, 2]",
		`api_key = "tmdb-key"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("ToTOML output missing %q", want)
		}
	}
}

func TestLoadReadsFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	configDir := filepath.Join(dir, "cinepost")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}
	toml := `
[telegram]
token = "file-token"
channel_id = -100

[tmdb]
api_key = "file-key"
language = "de-DE"
`
	if err := os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(toml), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Telegram.Token != "file-token" {
		t.Errorf("token = %q", cfg.Telegram.Token)
	}
	if cfg.TMDB.Language != "de-DE" {
		t.Errorf("language = %q", cfg.TMDB.Language)
	}
	// Unset sections keep defaults.
	if cfg.Session.TimeoutMinutes != 10 {
		t.Errorf("session timeout = %d, want default 10", cfg.Session.TimeoutMinutes)
	}

	t.Setenv("CINEPOST_TELEGRAM_TOKEN", "env-token")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load with env: %v", err)
	}
	if cfg.Telegram.Token != "env-token" {
		t.Errorf("env override ignored, token = %q", cfg.Telegram.Token)
	}
}

func TestRulesWatcherFiresOnWrite(t *testing.T) {
	dir := t.TempDir()
	rulesPath := filepath.Join(dir, "parser_rules.txt")
	if err := os.WriteFile(rulesPath, []byte("remastered\n"), 0644); err != nil {
		t.Fatal(err)
	}

	changed := make(chan struct{}, 4)
	w, err := WatchRules(rulesPath, nil, func() { changed <- struct{}{} })
	if err != nil {
		t.Fatalf("WatchRules: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(rulesPath, []byte("remastered\nuncut\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("onChange not invoked after rules file write")
	}
}
