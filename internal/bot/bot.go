package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/exileenig/drako-bot-sub003/internal/analytics"
	"github.com/exileenig/drako-bot-sub003/internal/builder"
	"github.com/exileenig/drako-bot-sub003/internal/config"
	"github.com/exileenig/drako-bot-sub003/internal/modules/audit"
	"github.com/exileenig/drako-bot-sub003/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type Bot struct {
	cfg       config.Config
	logger    *zap.Logger
	store     *storage.Store
	registry  *builder.Registry
	audit     *audit.Logger
	analytics *analytics.Service
	session   *discordgo.Session

	actions       map[builder.Action]actionFunc
	editorTimeout time.Duration

	// notifyTimeout reports an unanswered sub-editor back to its opener.
	notifyTimeout func(*discordgo.InteractionCreate, builder.Action)
}

func New(cfg config.Config, logger *zap.Logger, store *storage.Store, registry *builder.Registry, auditLogger *audit.Logger, analyticsSvc *analytics.Service) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, err
	}

	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	b := &Bot{
		cfg:           cfg,
		logger:        logger,
		store:         store,
		registry:      registry,
		audit:         auditLogger,
		analytics:     analyticsSvc,
		session:       session,
		editorTimeout: time.Duration(cfg.Builder.EditorTimeoutSeconds) * time.Second,
	}

	b.initActions()
	b.notifyTimeout = b.sendTimeoutNotice
	registry.SetExpireFunc(b.onSessionExpire)
	if b.audit != nil {
		b.audit.SetNotifier(func(ctx context.Context, entry storage.AuditLog) {
			if !b.cfg.Notifications.AuditToChannel {
				return
			}
			b.notifyAudit(ctx, entry)
		})
	}

	return b, nil
}

func (b *Bot) Start() error {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onInteractionCreate)

	if err := b.session.Open(); err != nil {
		return err
	}

	if err := b.registerCommands(); err != nil {
		return err
	}

	b.startAuditCleanup()

	return nil
}

func (b *Bot) Close(ctx context.Context) {
	_ = ctx
	if b.session != nil {
		_ = b.session.Close()
	}
}

func (b *Bot) onReady(session *discordgo.Session, event *discordgo.Ready) {
	b.logger.Info("discord ready", zap.String("user", session.State.User.Username))
}

func (b *Bot) botUserID() string {
	if b.session.State != nil && b.session.State.User != nil {
		return b.session.State.User.ID
	}
	return ""
}

// onSessionExpire disables the preview controls of a timed-out session so
// stale buttons stop inviting clicks.
func (b *Bot) onSessionExpire(session *builder.Session) {
	ctx := context.Background()
	b.audit.Log(ctx, audit.LevelInfo, session.GuildID, session.UserID, audit.EventSessionExpire, "builder window elapsed")

	channelID, messageID := session.PreviewMessage()
	if messageID == "" {
		return
	}
	content := "**Embed Builder** - session expired after inactivity."
	render := builder.RenderPreview(session, true)
	embeds := []*discordgo.MessageEmbed{render.Embed}
	_, err := b.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    channelID,
		ID:         messageID,
		Content:    &content,
		Embeds:     &embeds,
		Components: &render.Components,
	})
	if err != nil {
		b.logger.Warn("expired preview edit failed", zap.Error(err))
	}
}

func (b *Bot) guildSettings(ctx context.Context, guildID string) storage.GuildSettings {
	defaults := storage.GuildSettings{
		GuildID:           guildID,
		BuilderLogChannel: b.cfg.DefaultBuilderLogChannel,
		AuditToChannel:    b.cfg.Notifications.AuditToChannel,
	}

	settings, err := b.store.GetGuildSettings(ctx, guildID, defaults)
	if err != nil {
		b.logger.Warn("guild settings fallback", zap.Error(err))
		return defaults
	}
	return settings
}

func (b *Bot) notifyAudit(ctx context.Context, entry storage.AuditLog) {
	settings := b.guildSettings(ctx, entry.GuildID)
	channelID := settings.BuilderLogChannel
	if channelID == "" {
		channelID = b.cfg.DefaultBuilderLogChannel
	}
	if channelID == "" || !settings.AuditToChannel {
		return
	}

	userValue := "<@" + entry.UserID + ">"
	if entry.UserID == "" {
		userValue = "system"
	}
	embed := &discordgo.MessageEmbed{
		Title:     "Embed Builder",
		Color:     b.auditColor(entry.Event),
		Timestamp: entry.CreatedAt.Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Event", Value: entry.Event, Inline: true},
			{Name: "User", Value: userValue, Inline: true},
		},
	}
	if entry.Details != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Details", Value: entry.Details, Inline: false})
	}
	_, _ = b.session.ChannelMessageSendEmbed(channelID, embed)
}

// auditColor picks the notification color: green for a committed embed,
// the primary color for everything else.
func (b *Bot) auditColor(event string) int {
	switch event {
	case audit.EventEmbedPost, audit.EventEmbedEdit:
		return b.cfg.Notifications.EmbedColors.Success
	default:
		return b.cfg.Notifications.EmbedColors.Primary
	}
}

func (b *Bot) startAuditCleanup() {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if err := b.store.CleanupAuditLogs(context.Background(), b.cfg.RetentionDays); err != nil {
				b.logger.Warn("audit cleanup failed", zap.Error(err))
			}
		}
	}()
}

func (b *Bot) respond(interaction *discordgo.InteractionCreate, content string, ephemeral bool) {
	flags := discordgo.MessageFlags(0)
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	err := b.session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   flags,
		},
	})
	if err != nil {
		b.logger.Warn("interaction respond failed", zap.Error(err))
	}
}

func (b *Bot) respondEmbed(interaction *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, ephemeral bool) {
	if embed == nil {
		b.respond(interaction, "No response available.", ephemeral)
		return
	}
	flags := discordgo.MessageFlags(0)
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	err := b.session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  flags,
		},
	})
	if err != nil {
		b.logger.Warn("interaction respond failed", zap.Error(err))
	}
}

func (b *Bot) respondError(interaction *discordgo.InteractionCreate, message string) {
	b.respondEmbed(interaction, &discordgo.MessageEmbed{
		Title:       "Embed Builder",
		Description: message,
		Color:       b.cfg.Notifications.EmbedColors.Error,
	}, true)
}

func (b *Bot) commandEmbed(title, description string, color int, fields []*discordgo.MessageEmbedField) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Timestamp:   time.Now().Format(time.RFC3339),
		Fields:      fields,
	}
}

// updatePreview re-renders the draft preview after a successful mutation.
func (b *Bot) updatePreview(session *builder.Session) error {
	channelID, messageID := session.PreviewMessage()
	if messageID == "" {
		return nil
	}
	render := builder.RenderPreview(session, false)
	embeds := []*discordgo.MessageEmbed{render.Embed}
	_, err := b.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    channelID,
		ID:         messageID,
		Content:    &render.Content,
		Embeds:     &embeds,
		Components: &render.Components,
	})
	if err != nil {
		return fmt.Errorf("preview update: %w", err)
	}
	return nil
}
