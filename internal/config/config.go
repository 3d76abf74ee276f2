package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DiscordToken             string        `yaml:"discord_token"`
	DatabasePath             string        `yaml:"database_path"`
	LogLevel                 string        `yaml:"log_level"`
	RetentionDays            int           `yaml:"retention_days"`
	DefaultBuilderLogChannel string        `yaml:"default_builder_log_channel"`
	Health                   HealthConfig  `yaml:"health"`
	Builder                  BuilderConfig `yaml:"builder"`
	Notifications            NotifyConfig  `yaml:"notifications"`
}

type HealthConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type BuilderConfig struct {
	// AllowedRoleIDs gate the builder commands; administrators always pass.
	AllowedRoleIDs       []string `yaml:"allowed_role_ids"`
	SessionMinutes       int      `yaml:"session_minutes"`
	EditorTimeoutSeconds int      `yaml:"editor_timeout_seconds"`
}

type NotifyConfig struct {
	AuditToChannel bool        `yaml:"audit_to_channel"`
	EmbedColors    EmbedColors `yaml:"embed_colors"`
}

type EmbedColors struct {
	Primary int `yaml:"primary"`
	Success int `yaml:"success"`
	Error   int `yaml:"error"`
}

func DefaultConfig() Config {
	return Config{
		DatabasePath:  "/data/drako.db",
		LogLevel:      "info",
		RetentionDays: 30,
		Health:        HealthConfig{Enabled: false, Addr: ":8080"},
		Builder: BuilderConfig{
			SessionMinutes:       15,
			EditorTimeoutSeconds: 120,
		},
		Notifications: NotifyConfig{
			AuditToChannel: true,
			EmbedColors: EmbedColors{
				Primary: 0x5865F2,
				Success: 0x2ECC71,
				Error:   0xEF4444,
			},
		},
	}
}

func Load() (Config, error) {
	cfg := DefaultConfig()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)
	if cfg.DiscordToken == "" {
		return Config{}, errors.New("DISCORD_TOKEN is required")
	}

	normalize(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.DiscordToken = envString("DISCORD_TOKEN", cfg.DiscordToken)
	cfg.DatabasePath = envString("DATABASE_PATH", cfg.DatabasePath)
	cfg.LogLevel = envString("LOG_LEVEL", cfg.LogLevel)
	cfg.RetentionDays = envInt("RETENTION_DAYS", cfg.RetentionDays)
	cfg.DefaultBuilderLogChannel = envString("DEFAULT_BUILDER_LOG_CHANNEL", cfg.DefaultBuilderLogChannel)
	cfg.Health.Enabled = envBool("HEALTH_ENABLED", cfg.Health.Enabled)
	cfg.Health.Addr = envString("HEALTH_ADDR", cfg.Health.Addr)
	cfg.Builder.SessionMinutes = envInt("BUILDER_SESSION_MINUTES", cfg.Builder.SessionMinutes)
	cfg.Builder.EditorTimeoutSeconds = envInt("BUILDER_EDITOR_TIMEOUT_SECONDS", cfg.Builder.EditorTimeoutSeconds)
	if roles := os.Getenv("BUILDER_ALLOWED_ROLE_IDS"); roles != "" {
		cfg.Builder.AllowedRoleIDs = splitList(roles)
	}
	cfg.Notifications.AuditToChannel = envBool("AUDIT_TO_CHANNEL", cfg.Notifications.AuditToChannel)
	cfg.Notifications.EmbedColors.Primary = envInt("EMBED_COLOR_PRIMARY", cfg.Notifications.EmbedColors.Primary)
	cfg.Notifications.EmbedColors.Success = envInt("EMBED_COLOR_SUCCESS", cfg.Notifications.EmbedColors.Success)
	cfg.Notifications.EmbedColors.Error = envInt("EMBED_COLOR_ERROR", cfg.Notifications.EmbedColors.Error)
}

func normalize(cfg *Config) {
	if cfg.Builder.SessionMinutes <= 0 {
		cfg.Builder.SessionMinutes = 15
	}
	// Editor windows are 60-120s; clamp rather than reject.
	if cfg.Builder.EditorTimeoutSeconds < 60 {
		cfg.Builder.EditorTimeoutSeconds = 60
	}
	if cfg.Builder.EditorTimeoutSeconds > 120 {
		cfg.Builder.EditorTimeoutSeconds = 120
	}
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = 30
	}
}

func BuildLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	lvl := strings.ToLower(level)
	switch lvl {
	case "debug", "info", "warn", "error":
		cfg.Level = zap.NewAtomicLevelAt(parseLevel(lvl))
	default:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	return cfg.Build()
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		lower := strings.ToLower(value)
		return lower == "1" || lower == "true" || lower == "yes"
	}
	return fallback
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	var list []string
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			list = append(list, trimmed)
		}
	}
	return list
}
