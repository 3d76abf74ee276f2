package bot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/exileenig/drako-bot-sub003/internal/builder"
	"github.com/exileenig/drako-bot-sub003/internal/modules/audit"
	"github.com/exileenig/drako-bot-sub003/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func (b *Bot) onInteractionCreate(_ *discordgo.Session, interaction *discordgo.InteractionCreate) {
	switch interaction.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleCommand(interaction)
	case discordgo.InteractionMessageComponent:
		b.handleComponent(interaction)
	case discordgo.InteractionModalSubmit:
		b.handleModalSubmit(interaction)
	}
}

func invokerID(interaction *discordgo.InteractionCreate) string {
	if interaction.Member != nil && interaction.Member.User != nil {
		return interaction.Member.User.ID
	}
	if interaction.User != nil {
		return interaction.User.ID
	}
	return ""
}

func optionString(options []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, opt := range options {
		if opt.Name == name {
			return opt.StringValue()
		}
	}
	return ""
}

func (b *Bot) handleCommand(interaction *discordgo.InteractionCreate) {
	if interaction.GuildID == "" {
		b.respondError(interaction, "This command only works inside a server.")
		return
	}
	if !b.canUseBuilder(interaction) {
		b.respondError(interaction, "You do not have permission to use the embed builder.")
		return
	}

	ctx := context.Background()
	data := interaction.ApplicationCommandData()

	switch data.Name {
	case "embed":
		if len(data.Options) == 0 {
			return
		}
		sub := data.Options[0]
		switch sub.Name {
		case "create":
			b.handleEmbedCreate(ctx, interaction)
		case "edit":
			b.handleEmbedEdit(ctx, interaction, optionString(sub.Options, "message_id"))
		case "stats":
			b.handleEmbedStats(ctx, interaction, optionString(sub.Options, "period"))
		}
	case "template":
		if len(data.Options) == 0 {
			return
		}
		sub := data.Options[0]
		switch sub.Name {
		case "list":
			b.handleTemplateList(ctx, interaction)
		case "claim":
			b.handleTemplateClaim(ctx, interaction, optionString(sub.Options, "name"))
		case "release":
			b.handleTemplateRelease(ctx, interaction, optionString(sub.Options, "name"))
		}
	case "embed-settings":
		b.handleSettings(ctx, interaction, data.Options)
	}
}

func (b *Bot) handleEmbedCreate(ctx context.Context, interaction *discordgo.InteractionCreate) {
	userID := invokerID(interaction)
	session := b.registry.Start(userID, interaction.GuildID, interaction.ChannelID)
	b.audit.Log(ctx, audit.LevelInfo, interaction.GuildID, userID, audit.EventSessionStart, "new draft")
	b.respondPreview(interaction, session)
}

func (b *Bot) handleEmbedEdit(ctx context.Context, interaction *discordgo.InteractionCreate, messageID string) {
	userID := invokerID(interaction)

	target, err := b.session.ChannelMessage(interaction.ChannelID, messageID)
	if err != nil {
		b.respondError(interaction, "That message was not found in this channel.")
		return
	}

	session, err := b.registry.StartEdit(userID, interaction.GuildID, interaction.ChannelID, target, b.botUserID())
	switch {
	case errors.Is(err, builder.ErrNotFound):
		b.respondError(interaction, "That message has no embed to edit.")
		return
	case errors.Is(err, builder.ErrForbidden):
		b.respondError(interaction, "I can only edit embeds I posted myself.")
		return
	case err != nil:
		b.respondError(interaction, "Could not start the editor: "+err.Error())
		return
	}

	b.audit.Log(ctx, audit.LevelInfo, interaction.GuildID, userID, audit.EventSessionStart, "editing message "+messageID)
	b.respondPreview(interaction, session)
}

func (b *Bot) handleEmbedStats(ctx context.Context, interaction *discordgo.InteractionCreate, period string) {
	window := 24 * time.Hour
	if period == "week" {
		window = 7 * 24 * time.Hour
	}

	report, err := b.analytics.Report(ctx, interaction.GuildID, time.Now().Add(-window))
	if err != nil {
		b.logger.Warn("stats report failed", zap.Error(err))
		b.respondError(interaction, "Could not build the usage report.")
		return
	}

	events := make([]string, 0, len(report.ByEvent))
	for event := range report.ByEvent {
		events = append(events, event)
	}
	sort.Strings(events)

	fields := []*discordgo.MessageEmbedField{
		{Name: "Total events", Value: fmt.Sprintf("%d", report.Total), Inline: true},
		{Name: "Period", Value: period, Inline: true},
	}
	for _, event := range events {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   event,
			Value:  fmt.Sprintf("%d", report.ByEvent[event]),
			Inline: true,
		})
	}

	embed := b.commandEmbed("Builder Usage", "", b.cfg.Notifications.EmbedColors.Primary, fields)
	b.respondEmbed(interaction, embed, true)
}

func (b *Bot) handleTemplateList(ctx context.Context, interaction *discordgo.InteractionCreate) {
	templates, err := b.store.ListTemplates(ctx)
	if err != nil {
		b.logger.Warn("template list failed", zap.Error(err))
		b.respondError(interaction, "Could not load the template list.")
		return
	}
	if len(templates) == 0 {
		b.respondError(interaction, "No templates saved yet. Use the builder's Save Template button to create one.")
		return
	}

	lines := make([]string, 0, len(templates))
	for _, tpl := range templates {
		line := "- **" + tpl.Name + "**"
		if tpl.Claimed {
			line += " (claimed by <@" + tpl.ClaimedBy + ">)"
		}
		lines = append(lines, line)
	}

	embed := b.commandEmbed("Saved Templates", strings.Join(lines, "\n"), b.cfg.Notifications.EmbedColors.Primary, nil)
	b.respondEmbed(interaction, embed, true)
}

func (b *Bot) handleTemplateClaim(ctx context.Context, interaction *discordgo.InteractionCreate, name string) {
	userID := invokerID(interaction)
	if err := b.store.ClaimTemplate(ctx, name, userID); err != nil {
		if errors.Is(err, storage.ErrTemplateNotFound) {
			b.respondError(interaction, fmt.Sprintf("No template named %q.", name))
			return
		}
		b.respondError(interaction, "Could not claim the template: "+err.Error())
		return
	}
	b.audit.Log(ctx, audit.LevelInfo, interaction.GuildID, userID, audit.EventTemplateClaim, name)
	b.respond(interaction, fmt.Sprintf("Template %q is now claimed by you.", name), true)
}

func (b *Bot) handleTemplateRelease(ctx context.Context, interaction *discordgo.InteractionCreate, name string) {
	userID := invokerID(interaction)
	if err := b.store.ReleaseTemplate(ctx, name); err != nil {
		if errors.Is(err, storage.ErrTemplateNotFound) {
			b.respondError(interaction, fmt.Sprintf("No template named %q.", name))
			return
		}
		b.respondError(interaction, "Could not release the template: "+err.Error())
		return
	}
	b.audit.Log(ctx, audit.LevelInfo, interaction.GuildID, userID, audit.EventTemplateClaim, name+" released")
	b.respond(interaction, fmt.Sprintf("Template %q released.", name), true)
}

func (b *Bot) handleSettings(ctx context.Context, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	settings := b.guildSettings(ctx, interaction.GuildID)
	changed := false

	for _, opt := range options {
		switch opt.Name {
		case "log_channel":
			channel := opt.ChannelValue(b.session)
			if channel != nil {
				settings.BuilderLogChannel = channel.ID
				changed = true
			}
		case "audit":
			settings.AuditToChannel = opt.BoolValue()
			changed = true
		}
	}

	if changed {
		if err := b.store.UpsertGuildSettings(ctx, settings); err != nil {
			b.respondError(interaction, "Could not save the settings: "+err.Error())
			return
		}
	}

	logChannel := "not set"
	if settings.BuilderLogChannel != "" {
		logChannel = "<#" + settings.BuilderLogChannel + ">"
	}
	fields := []*discordgo.MessageEmbedField{
		{Name: "Log channel", Value: logChannel, Inline: true},
		{Name: "Audit to channel", Value: fmt.Sprintf("%t", settings.AuditToChannel), Inline: true},
	}
	b.respondEmbed(interaction, b.commandEmbed("Builder Settings", "", b.cfg.Notifications.EmbedColors.Primary, fields), true)
}

// respondPreview posts the live preview message and records its location on
// the session so later mutations can re-render it.
func (b *Bot) respondPreview(interaction *discordgo.InteractionCreate, session *builder.Session) {
	render := builder.RenderPreview(session, false)
	err := b.session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    render.Content,
			Embeds:     []*discordgo.MessageEmbed{render.Embed},
			Components: render.Components,
		},
	})
	if err != nil {
		b.logger.Warn("preview respond failed", zap.Error(err))
		b.registry.End(session.UserID)
		return
	}

	msg, err := b.session.InteractionResponse(interaction.Interaction)
	if err != nil {
		b.logger.Warn("preview lookup failed", zap.Error(err))
		return
	}
	session.SetPreviewMessage(msg.ChannelID, msg.ID)
}

func (b *Bot) handleComponent(interaction *discordgo.InteractionCreate) {
	customID := interaction.MessageComponentData().CustomID
	action, ownerID, seq, ok := builder.ParseID(customID)
	if !ok {
		return
	}

	userID := invokerID(interaction)
	if userID != ownerID {
		b.respondError(interaction, "This builder session belongs to someone else. Run /embed create to start your own.")
		return
	}

	session, ok := b.registry.Get(userID)
	if !ok {
		b.respondError(interaction, "This builder session has ended. Run /embed create to start a new one.")
		return
	}

	ctx := context.Background()
	if seq != "" {
		b.handleWaitComponent(ctx, session, interaction, customID)
		return
	}
	b.dispatchAction(ctx, session, interaction, action)
}

func (b *Bot) handleModalSubmit(interaction *discordgo.InteractionCreate) {
	data := interaction.ModalSubmitData()
	_, ownerID, _, ok := builder.ParseID(data.CustomID)
	if !ok {
		return
	}

	userID := invokerID(interaction)
	if userID != ownerID {
		return
	}

	session, ok := b.registry.Get(userID)
	if !ok {
		b.respondError(interaction, "This builder session has ended. Run /embed create to start a new one.")
		return
	}

	action, _, err := session.ClaimWait(data.CustomID)
	if err != nil {
		b.respondError(interaction, "This form expired. Reopen the editor from the builder.")
		return
	}

	ctx := context.Background()
	note, err := b.applyModal(ctx, session, action, modalValues(data))
	if err != nil {
		b.respondError(interaction, editorErrorMessage(action, err))
		return
	}

	ackErr := b.session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
	if ackErr != nil {
		b.logger.Warn("modal ack failed", zap.Error(ackErr))
	}
	if err := b.updatePreview(session); err != nil {
		b.logger.Warn("preview refresh failed", zap.Error(err))
	}
	if note != "" {
		b.followup(interaction, note)
	}
}

// modalValues flattens a submitted modal's text inputs into a map keyed by
// each input's custom ID.
func modalValues(data discordgo.ModalSubmitInteractionData) map[string]string {
	values := make(map[string]string)
	for _, component := range data.Components {
		row, ok := component.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			if input, ok := inner.(*discordgo.TextInput); ok {
				values[input.CustomID] = input.Value
			}
		}
	}
	return values
}

func editorErrorMessage(action builder.Action, err error) string {
	var verr *builder.ValidationError
	switch {
	case errors.As(err, &verr):
		return "Rejected: " + verr.Error() + ". The draft was not changed."
	case errors.Is(err, builder.ErrCapacity):
		return fmt.Sprintf("Limit reached: at most %d link buttons fit under an embed.", builder.MaxLinkButtons)
	case errors.Is(err, storage.ErrTemplateExists):
		return "A template with that name already exists. Pick a different name or delete the old one first."
	case errors.Is(err, builder.ErrNotFound):
		return "Nothing at that position anymore. The list may have changed."
	default:
		return "The " + action.String() + " editor failed: " + err.Error()
	}
}

func (b *Bot) followup(interaction *discordgo.InteractionCreate, content string) {
	_, err := b.session.FollowupMessageCreate(interaction.Interaction, true, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		b.logger.Warn("followup failed", zap.Error(err))
	}
}
