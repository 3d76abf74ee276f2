package audit

import (
	"context"
	"time"

	"github.com/exileenig/drako-bot-sub003/internal/storage"

	"go.uber.org/zap"
)

const (
	LevelInfo = "INFO"
	LevelWarn = "WARN"
)

// Builder lifecycle events recorded in the audit trail.
const (
	EventSessionStart   = "session_start"
	EventSessionExpire  = "session_expire"
	EventSessionCancel  = "session_cancel"
	EventEmbedPost      = "embed_post"
	EventEmbedEdit      = "embed_edit"
	EventTemplateSave   = "template_save"
	EventTemplateLoad   = "template_load"
	EventTemplateDelete = "template_delete"
	EventTemplateClaim  = "template_claim"
)

type Logger struct {
	store  *storage.Store
	logger *zap.Logger
	notify func(context.Context, storage.AuditLog)
}

func NewLogger(store *storage.Store, logger *zap.Logger) *Logger {
	return &Logger{store: store, logger: logger}
}

// SetNotifier installs a hook run for every entry, used to mirror the trail
// into a guild's builder log channel.
func (l *Logger) SetNotifier(notify func(context.Context, storage.AuditLog)) {
	l.notify = notify
}

func (l *Logger) Log(ctx context.Context, level, guildID, userID, event, details string) {
	entry := storage.AuditLog{
		GuildID:   guildID,
		UserID:    userID,
		Level:     level,
		Event:     event,
		Details:   details,
		CreatedAt: time.Now(),
	}
	if l.store != nil {
		_ = l.store.AddAuditLog(ctx, entry)
	}
	if l.notify != nil {
		l.notify(ctx, entry)
	}
	l.logger.Info("audit", zap.String("level", level), zap.String("guild_id", guildID), zap.String("user_id", userID), zap.String("event", event), zap.String("details", details))
}
