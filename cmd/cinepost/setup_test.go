package main

import (
	"testing"

	"github.com/Nomadcxx/cinepost/internal/config"
)

func TestParseUserIDs(t *testing.T) {
	ids, err := parseUserIDs("123, 456,789")
	if err != nil {
		t.Fatalf("parseUserIDs: %v", err)
	}
	if len(ids) != 3 || ids[0] != 123 || ids[1] != 456 || ids[2] != 789 {
		t.Errorf("ids = %v", ids)
	}

	ids, err = parseUserIDs("  ")
	if err != nil {
		t.Fatalf("parseUserIDs blank: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("blank input gave %v", ids)
	}

	if _, err := parseUserIDs("123, abc"); err == nil {
		t.Error("non-numeric id accepted")
	}
}

func TestFormatUserIDsRoundTrip(t *testing.T) {
	in := []int64{1, 22, 333}
	out, err := parseUserIDs(formatUserIDs(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 3 || out[0] != 1 || out[1] != 22 || out[2] != 333 {
		t.Errorf("round trip gave %v", out)
	}
}

func TestRedactedMasksSecrets(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Telegram.Token = "secret-token"
	cfg.TMDB.APIKey = "secret-key"

	masked := redacted(cfg)
	if masked.Telegram.Token != "********" || masked.TMDB.APIKey != "********" {
		t.Errorf("secrets not masked: %+v", masked.Telegram.Token)
	}
	// The original must be untouched.
	if cfg.Telegram.Token != "secret-token" {
		t.Error("redacted mutated the original config")
	}
}
