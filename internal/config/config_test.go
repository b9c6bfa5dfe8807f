package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BOT_NICK", "VoltBot")
	t.Setenv("BOT_ROOMS", "vgc")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BotPrefix != "." {
		t.Errorf("BotPrefix = %q, want %q", cfg.BotPrefix, ".")
	}
	if cfg.ZeroTolerance != 2 {
		t.Errorf("ZeroTolerance = %d, want 2", cfg.ZeroTolerance)
	}
	if cfg.LoginRetryMax != 3 {
		t.Errorf("LoginRetryMax = %d, want 3", cfg.LoginRetryMax)
	}
	if got := cfg.Punishments[4]; got != "roomban" {
		t.Errorf("Punishments[4] = %q, want %q", got, "roomban")
	}
	if cfg.MainRoom() != "vgc" {
		t.Errorf("MainRoom = %q, want %q", cfg.MainRoom(), "vgc")
	}
}

func TestLoadRequiresNickAndRooms(t *testing.T) {
	t.Setenv("BOT_NICK", "")
	t.Setenv("BOT_ROOMS", "")
	if _, err := Load(); err == nil {
		t.Error("expected an error without BOT_NICK")
	}

	t.Setenv("BOT_NICK", "VoltBot")
	if _, err := Load(); err == nil {
		t.Error("expected an error without BOT_ROOMS")
	}
}
