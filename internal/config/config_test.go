package config

import "testing"

func TestNormalizeClampsEditorTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Builder.EditorTimeoutSeconds = 5
	normalize(&cfg)
	if cfg.Builder.EditorTimeoutSeconds != 60 {
		t.Fatalf("expected clamp to 60, got %d", cfg.Builder.EditorTimeoutSeconds)
	}

	cfg.Builder.EditorTimeoutSeconds = 600
	normalize(&cfg)
	if cfg.Builder.EditorTimeoutSeconds != 120 {
		t.Fatalf("expected clamp to 120, got %d", cfg.Builder.EditorTimeoutSeconds)
	}
}

func TestNormalizeSessionMinutes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Builder.SessionMinutes = -1
	normalize(&cfg)
	if cfg.Builder.SessionMinutes != 15 {
		t.Fatalf("expected default 15, got %d", cfg.Builder.SessionMinutes)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "tok")
	t.Setenv("BUILDER_SESSION_MINUTES", "20")
	t.Setenv("BUILDER_ALLOWED_ROLE_IDS", "1, 2,3")
	t.Setenv("CONFIG_PATH", "/nonexistent/config.yaml")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DiscordToken != "tok" {
		t.Fatalf("token override missing")
	}
	if cfg.Builder.SessionMinutes != 20 {
		t.Fatalf("expected 20 minutes, got %d", cfg.Builder.SessionMinutes)
	}
	if len(cfg.Builder.AllowedRoleIDs) != 3 || cfg.Builder.AllowedRoleIDs[1] != "2" {
		t.Fatalf("role list not parsed: %+v", cfg.Builder.AllowedRoleIDs)
	}
}

func TestBuildLogger(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "bogus"} {
		logger, err := BuildLogger(level)
		if err != nil {
			t.Fatalf("build logger %q: %v", level, err)
		}
		_ = logger.Sync()
	}
}
