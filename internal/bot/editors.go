package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/exileenig/drako-bot-sub003/internal/builder"
	"github.com/exileenig/drako-bot-sub003/internal/modules/audit"
	"github.com/exileenig/drako-bot-sub003/internal/storage"
	"github.com/exileenig/drako-bot-sub003/internal/utils"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type actionFunc func(ctx context.Context, session *builder.Session, interaction *discordgo.InteractionCreate)

// initActions builds the control-button dispatch table. Every modal action
// funnels through openModal; the rest have dedicated flows.
func (b *Bot) initActions() {
	b.actions = map[builder.Action]actionFunc{
		builder.ActionTimestamp: func(_ context.Context, session *builder.Session, interaction *discordgo.InteractionCreate) {
			_ = session.Mutate(func(draft *builder.Draft, _ *builder.LinkButtonSet) error {
				draft.ToggleTimestamp()
				return nil
			})
			b.respondPreviewUpdate(interaction, session)
		},
		builder.ActionTogglePings: func(_ context.Context, session *builder.Session, interaction *discordgo.InteractionCreate) {
			_ = session.Mutate(func(_ *builder.Draft, _ *builder.LinkButtonSet) error {
				session.SuppressPings = !session.SuppressPings
				return nil
			})
			b.respondPreviewUpdate(interaction, session)
		},
		builder.ActionRemoveField:    b.openRemoveFieldMenu,
		builder.ActionRemoveLink:     b.openRemoveLinkMenu,
		builder.ActionLoadTemplate:   b.openLoadTemplateMenu,
		builder.ActionDeleteTemplate: b.openDeleteTemplateMenu,
		builder.ActionPost:           b.handlePost,
		builder.ActionCancel:         b.handleCancel,
	}
}

func (b *Bot) dispatchAction(ctx context.Context, session *builder.Session, interaction *discordgo.InteractionCreate, action builder.Action) {
	if editUnsupported(session, action) {
		b.respondError(interaction, "Above-message content is only sent with new messages. Editing an existing message leaves its surroundings alone.")
		return
	}
	if action.ModalAction() {
		b.openModal(session, interaction, action)
		return
	}
	if handler, ok := b.actions[action]; ok {
		handler(ctx, session, interaction)
	}
}

// editUnsupported reports actions that only make sense when creating a new
// message. An edit rewrites the target message in place and never posts a
// companion above-message, so those editors are rejected up front instead
// of silently dropping their input at commit time.
func editUnsupported(session *builder.Session, action builder.Action) bool {
	if !session.EditMode() {
		return false
	}
	return action == builder.ActionAboveText || action == builder.ActionAboveImage
}

// openMenuWait registers the pending wait for a select menu with a timeout
// notice, so an unanswered menu reports itself like an unanswered form.
func (b *Bot) openMenuWait(session *builder.Session, action builder.Action, payload string, interaction *discordgo.InteractionCreate) string {
	return session.NextWaitID(action, payload, b.editorTimeout, func(a builder.Action) {
		b.notifyTimeout(interaction, a)
	})
}

// sendTimeoutNotice is the default timeout notifier: an ephemeral followup
// on the interaction that opened the editor.
func (b *Bot) sendTimeoutNotice(interaction *discordgo.InteractionCreate, action builder.Action) {
	b.followup(interaction, fmt.Sprintf("The %s editor timed out. The draft was not changed.", action))
}

// openModal registers a pending wait and shows the sub-editor form. The wait
// outlives the modal on screen: an expired form that is submitted anyway
// resolves to a timeout instead of mutating the draft.
func (b *Bot) openModal(session *builder.Session, interaction *discordgo.InteractionCreate, action builder.Action) {
	id := session.NextWaitID(action, "", b.editorTimeout, func(a builder.Action) {
		b.notifyTimeout(interaction, a)
	})

	var title string
	var inputs []discordgo.TextInput
	_ = session.Mutate(func(_ *builder.Draft, _ *builder.LinkButtonSet) error {
		title, inputs = modalInputs(session, action)
		return nil
	})
	rows := make([]discordgo.MessageComponent, 0, len(inputs))
	for _, input := range inputs {
		rows = append(rows, discordgo.ActionsRow{Components: []discordgo.MessageComponent{input}})
	}

	err := b.session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID:   id,
			Title:      title,
			Components: rows,
		},
	})
	if err != nil {
		session.CancelWait(id)
		b.logger.Warn("modal open failed", zap.String("action", action.String()), zap.Error(err))
	}
}

// Discord caps a single text input at 4000 characters, below the embed
// description limit; the draft setter still enforces the real bound.
const modalInputCap = 4000

// modalInputs prefills the sub-editor form from the current draft. The
// caller serializes access to the session while it runs.
func modalInputs(session *builder.Session, action builder.Action) (string, []discordgo.TextInput) {
	draft := session.Draft
	switch action {
	case builder.ActionTitle:
		return "Embed Title", []discordgo.TextInput{{
			CustomID:    "value",
			Label:       "Title",
			Style:       discordgo.TextInputShort,
			Value:       draft.Title,
			MaxLength:   builder.MaxTitleLen,
			Placeholder: "leave empty to clear",
		}}
	case builder.ActionDescription:
		return "Embed Description", []discordgo.TextInput{{
			CustomID:    "value",
			Label:       "Description",
			Style:       discordgo.TextInputParagraph,
			Value:       draft.Description,
			MaxLength:   modalInputCap,
			Placeholder: "leave empty to clear",
		}}
	case builder.ActionAuthor:
		var name, icon, link string
		if draft.Author != nil {
			name, icon, link = draft.Author.Name, draft.Author.IconURL, draft.Author.URL
		}
		return "Embed Author", []discordgo.TextInput{
			{CustomID: "name", Label: "Name", Style: discordgo.TextInputShort, Value: name, MaxLength: builder.MaxAuthorNameLen, Placeholder: "leave empty to clear"},
			{CustomID: "icon_url", Label: "Icon URL", Style: discordgo.TextInputShort, Value: icon},
			{CustomID: "link", Label: "Link URL", Style: discordgo.TextInputShort, Value: link},
		}
	case builder.ActionFooter:
		var text, icon string
		if draft.Footer != nil {
			text, icon = draft.Footer.Text, draft.Footer.IconURL
		}
		return "Embed Footer", []discordgo.TextInput{
			{CustomID: "text", Label: "Text", Style: discordgo.TextInputShort, Value: text, MaxLength: builder.MaxFooterTextLen, Placeholder: "leave empty to clear"},
			{CustomID: "icon_url", Label: "Icon URL", Style: discordgo.TextInputShort, Value: icon},
		}
	case builder.ActionColor:
		value := ""
		if draft.Color != 0 {
			value = fmt.Sprintf("#%06X", draft.Color)
		}
		return "Embed Color", []discordgo.TextInput{{
			CustomID:    "value",
			Label:       "Color",
			Style:       discordgo.TextInputShort,
			Value:       value,
			Placeholder: "#5865F2",
		}}
	case builder.ActionThumbnail:
		return "Embed Thumbnail", []discordgo.TextInput{{
			CustomID:    "url",
			Label:       "Image URL",
			Style:       discordgo.TextInputShort,
			Value:       draft.ThumbnailURL,
			Placeholder: "https://... (.png .jpg .gif .webp)",
		}}
	case builder.ActionImage:
		return "Embed Image", []discordgo.TextInput{{
			CustomID:    "url",
			Label:       "Image URL",
			Style:       discordgo.TextInputShort,
			Value:       draft.ImageURL,
			Placeholder: "https://... (.png .jpg .gif .webp)",
		}}
	case builder.ActionAddField:
		return "Add Field", []discordgo.TextInput{
			{CustomID: "name", Label: "Name", Style: discordgo.TextInputShort, MaxLength: builder.MaxFieldNameLen, Required: true},
			{CustomID: "value", Label: "Value", Style: discordgo.TextInputParagraph, MaxLength: builder.MaxFieldValueLen, Required: true},
			{CustomID: "inline", Label: "Inline (yes/no)", Style: discordgo.TextInputShort, Value: "no"},
		}
	case builder.ActionAddLink:
		return "Add Link Button", []discordgo.TextInput{
			{CustomID: "url", Label: "URL", Style: discordgo.TextInputShort, Required: true, Placeholder: "https://..."},
			{CustomID: "label", Label: "Label", Style: discordgo.TextInputShort, MaxLength: builder.MaxLabelLen, Required: true},
			{CustomID: "emoji", Label: "Emoji (optional)", Style: discordgo.TextInputShort, Placeholder: ":book: or a unicode emoji"},
		}
	case builder.ActionAboveText:
		return "Text Above Embed", []discordgo.TextInput{{
			CustomID:    "value",
			Label:       "Message text",
			Style:       discordgo.TextInputParagraph,
			Value:       session.AboveText,
			MaxLength:   2000,
			Placeholder: "sent as a separate message right before the embed",
		}}
	case builder.ActionAboveImage:
		return "Image Above Embed", []discordgo.TextInput{{
			CustomID:    "url",
			Label:       "Image URL",
			Style:       discordgo.TextInputShort,
			Value:       session.AboveImageURL,
			Placeholder: "https://... (.png .jpg .gif .webp)",
		}}
	case builder.ActionSaveTemplate:
		return "Save Template", []discordgo.TextInput{{
			CustomID:  "name",
			Label:     "Template name",
			Style:     discordgo.TextInputShort,
			MaxLength: 64,
			Required:  true,
		}}
	}
	return "", nil
}

func (b *Bot) applyModal(ctx context.Context, session *builder.Session, action builder.Action, values map[string]string) (string, error) {
	// Template saves hit the store and take their own snapshot, so they
	// cannot run under the session lock.
	if action == builder.ActionSaveTemplate {
		return b.saveTemplate(ctx, session, values["name"])
	}

	return "", session.Mutate(func(draft *builder.Draft, buttons *builder.LinkButtonSet) error {
		switch action {
		case builder.ActionTitle:
			return draft.SetTitle(values["value"])
		case builder.ActionDescription:
			return draft.SetDescription(values["value"])
		case builder.ActionAuthor:
			return draft.SetAuthor(values["name"], values["icon_url"], values["link"])
		case builder.ActionFooter:
			return draft.SetFooter(values["text"], values["icon_url"])
		case builder.ActionColor:
			raw := strings.TrimSpace(values["value"])
			if raw == "" {
				return draft.SetColor(0)
			}
			color, err := builder.ParseColor(raw)
			if err != nil {
				return err
			}
			return draft.SetColor(color)
		case builder.ActionThumbnail:
			return draft.SetThumbnail(values["url"])
		case builder.ActionImage:
			return draft.SetImage(values["url"])
		case builder.ActionAddField:
			return draft.AddField(values["name"], values["value"], parseBoolInput(values["inline"]))
		case builder.ActionAddLink:
			return buttons.Add(values["url"], values["label"], values["emoji"])
		case builder.ActionAboveText:
			session.AboveText = strings.TrimSpace(values["value"])
			return nil
		case builder.ActionAboveImage:
			raw := strings.TrimSpace(values["url"])
			if raw == "" {
				session.AboveImageURL = ""
				return nil
			}
			if err := utils.ValidateHTTPURL(raw); err != nil {
				return &builder.ValidationError{Field: "above image", Reason: err.Error()}
			}
			if !utils.IsImageURL(raw) {
				return &builder.ValidationError{Field: "above image", Reason: "URL must end in .png, .jpg, .jpeg, .gif, or .webp"}
			}
			session.AboveImageURL = raw
			return nil
		}
		return nil
	})
}

func parseBoolInput(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "y", "true", "1":
		return true
	}
	return false
}

func (b *Bot) saveTemplate(ctx context.Context, session *builder.Session, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &builder.ValidationError{Field: "template name", Reason: "must not be empty"}
	}
	snapshot := builder.TakeSnapshot(session)
	if snapshot.Embed.Empty() && snapshot.Buttons.Len() == 0 {
		return "", &builder.ValidationError{Field: "template", Reason: "the draft is empty, nothing to save"}
	}

	embedData, buttonData, err := snapshot.Encode()
	if err != nil {
		return "", err
	}
	err = b.store.CreateTemplate(ctx, storage.EmbedTemplate{
		Name:        name,
		EmbedData:   embedData,
		LinkButtons: buttonData,
		CreatedBy:   session.UserID,
	})
	if err != nil {
		return "", err
	}

	b.audit.Log(ctx, audit.LevelInfo, session.GuildID, session.UserID, audit.EventTemplateSave, name)
	return fmt.Sprintf("Template %q saved.", name), nil
}

func (b *Bot) openRemoveFieldMenu(_ context.Context, session *builder.Session, interaction *discordgo.InteractionCreate) {
	var fields []builder.Field
	_ = session.Mutate(func(draft *builder.Draft, _ *builder.LinkButtonSet) error {
		fields = append(fields, draft.Fields...)
		return nil
	})
	if len(fields) == 0 {
		b.respondError(interaction, "The draft has no fields to remove.")
		return
	}

	options := make([]discordgo.SelectMenuOption, 0, len(fields))
	for i, field := range fields {
		options = append(options, discordgo.SelectMenuOption{
			Label:       menuLabel(field.Name),
			Value:       strconv.Itoa(i),
			Description: menuLabel(field.Value),
		})
	}

	id := b.openMenuWait(session, builder.ActionRemoveField, "", interaction)
	b.respondSelect(interaction, id, "Pick the field to remove.", "field", options)
}

func (b *Bot) openRemoveLinkMenu(_ context.Context, session *builder.Session, interaction *discordgo.InteractionCreate) {
	var items []builder.LinkButton
	_ = session.Mutate(func(_ *builder.Draft, buttons *builder.LinkButtonSet) error {
		items = append(items, buttons.Items...)
		return nil
	})
	if len(items) == 0 {
		b.respondError(interaction, "The draft has no link buttons to remove.")
		return
	}

	options := make([]discordgo.SelectMenuOption, 0, len(items))
	for i, item := range items {
		options = append(options, discordgo.SelectMenuOption{
			Label:       menuLabel(item.Label),
			Value:       strconv.Itoa(i),
			Description: menuLabel(item.URL),
		})
	}

	id := b.openMenuWait(session, builder.ActionRemoveLink, "", interaction)
	b.respondSelect(interaction, id, "Pick the link button to remove.", "link button", options)
}

func (b *Bot) openLoadTemplateMenu(ctx context.Context, session *builder.Session, interaction *discordgo.InteractionCreate) {
	b.openTemplateMenu(ctx, session, interaction, builder.ActionLoadTemplate, "Pick the template to load. It replaces the current draft.")
}

func (b *Bot) openDeleteTemplateMenu(ctx context.Context, session *builder.Session, interaction *discordgo.InteractionCreate) {
	b.openTemplateMenu(ctx, session, interaction, builder.ActionDeleteTemplate, "Pick the template to delete.")
}

// Discord caps one select menu at 25 options.
const maxMenuOptions = 25

func (b *Bot) openTemplateMenu(ctx context.Context, session *builder.Session, interaction *discordgo.InteractionCreate, action builder.Action, prompt string) {
	templates, err := b.store.ListTemplates(ctx)
	if err != nil {
		b.logger.Warn("template list failed", zap.Error(err))
		b.respondError(interaction, "Could not load the template list.")
		return
	}
	if len(templates) == 0 {
		b.respondError(interaction, "No templates saved yet.")
		return
	}
	if len(templates) > maxMenuOptions {
		templates = templates[:maxMenuOptions]
	}

	options := make([]discordgo.SelectMenuOption, 0, len(templates))
	for _, tpl := range templates {
		description := "by " + tpl.CreatedBy
		if tpl.Claimed {
			description = "claimed"
		}
		options = append(options, discordgo.SelectMenuOption{
			Label:       menuLabel(tpl.Name),
			Value:       tpl.Name,
			Description: description,
		})
	}

	id := b.openMenuWait(session, action, "", interaction)
	b.respondSelect(interaction, id, prompt, "template", options)
}

func (b *Bot) respondSelect(interaction *discordgo.InteractionCreate, customID, prompt, placeholder string, options []discordgo.SelectMenuOption) {
	menu := discordgo.SelectMenu{
		CustomID:    customID,
		Placeholder: placeholder,
		Options:     options,
	}
	err := b.session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: prompt,
			Flags:   discordgo.MessageFlagsEphemeral,
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{menu}},
			},
		},
	})
	if err != nil {
		b.logger.Warn("select respond failed", zap.Error(err))
	}
}

func menuLabel(raw string) string {
	const limit = 100
	if len(raw) <= limit {
		return raw
	}
	return raw[:limit-3] + "..."
}

// handleWaitComponent resolves a select-menu or confirmation interaction
// that was minted with a sequence number. The wait claim gates staleness:
// a menu from an expired window resolves to nothing.
func (b *Bot) handleWaitComponent(ctx context.Context, session *builder.Session, interaction *discordgo.InteractionCreate, customID string) {
	action, payload, err := session.ClaimWait(customID)
	if err != nil {
		b.updateComponentMessage(interaction, "This menu expired. Reopen it from the builder.")
		return
	}

	selection := ""
	if values := interaction.MessageComponentData().Values; len(values) > 0 {
		selection = values[0]
	}

	switch action {
	case builder.ActionRemoveField:
		index, convErr := strconv.Atoi(selection)
		if convErr != nil {
			return
		}
		err := session.Mutate(func(draft *builder.Draft, _ *builder.LinkButtonSet) error {
			return draft.RemoveField(index)
		})
		if err != nil {
			b.updateComponentMessage(interaction, editorErrorMessage(action, err))
			return
		}
		b.updateComponentMessage(interaction, "Field removed.")
		b.refreshPreview(session)

	case builder.ActionRemoveLink:
		index, convErr := strconv.Atoi(selection)
		if convErr != nil {
			return
		}
		err := session.Mutate(func(_ *builder.Draft, buttons *builder.LinkButtonSet) error {
			return buttons.Remove(index)
		})
		if err != nil {
			b.updateComponentMessage(interaction, editorErrorMessage(action, err))
			return
		}
		b.updateComponentMessage(interaction, "Link button removed.")
		b.refreshPreview(session)

	case builder.ActionLoadTemplate:
		b.loadTemplate(ctx, session, interaction, selection)

	case builder.ActionDeleteTemplate:
		if payload == "" {
			b.confirmDeleteTemplate(session, interaction, selection)
			return
		}
		if selection != "delete" {
			b.updateComponentMessage(interaction, fmt.Sprintf("Kept template %q.", payload))
			return
		}
		if err := b.store.DeleteTemplate(ctx, payload); err != nil {
			b.updateComponentMessage(interaction, editorErrorMessage(action, err))
			return
		}
		b.audit.Log(ctx, audit.LevelWarn, session.GuildID, session.UserID, audit.EventTemplateDelete, payload)
		b.updateComponentMessage(interaction, fmt.Sprintf("Template %q deleted.", payload))
	}
}

func (b *Bot) loadTemplate(ctx context.Context, session *builder.Session, interaction *discordgo.InteractionCreate, name string) {
	tpl, err := b.store.GetTemplate(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrTemplateNotFound) {
			b.updateComponentMessage(interaction, fmt.Sprintf("Template %q no longer exists.", name))
			return
		}
		b.updateComponentMessage(interaction, "Could not load the template: "+err.Error())
		return
	}

	snapshot, err := builder.DecodeSnapshot(tpl.EmbedData, tpl.LinkButtons)
	if err != nil {
		b.logger.Warn("template decode failed", zap.String("name", name), zap.Error(err))
		b.updateComponentMessage(interaction, fmt.Sprintf("Template %q is corrupted and cannot be loaded.", name))
		return
	}

	snapshot.Apply(session)
	b.audit.Log(ctx, audit.LevelInfo, session.GuildID, session.UserID, audit.EventTemplateLoad, name)
	b.updateComponentMessage(interaction, fmt.Sprintf("Template %q loaded into the draft.", name))
	b.refreshPreview(session)
}

func (b *Bot) confirmDeleteTemplate(session *builder.Session, interaction *discordgo.InteractionCreate, name string) {
	id := b.openMenuWait(session, builder.ActionDeleteTemplate, name, interaction)
	menu := discordgo.SelectMenu{
		CustomID:    id,
		Placeholder: "confirm",
		Options: []discordgo.SelectMenuOption{
			{Label: "Delete it", Value: "delete", Description: "cannot be undone"},
			{Label: "Keep it", Value: "keep"},
		},
	}
	err := b.session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("Really delete template %q?", name),
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{menu}},
			},
		},
	})
	if err != nil {
		session.CancelWait(id)
		b.logger.Warn("delete confirm failed", zap.Error(err))
	}
}

// updateComponentMessage replaces an ephemeral menu message in place,
// dropping its components so the menu cannot be used twice.
func (b *Bot) updateComponentMessage(interaction *discordgo.InteractionCreate, content string) {
	err := b.session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Components: []discordgo.MessageComponent{},
		},
	})
	if err != nil {
		b.logger.Warn("component update failed", zap.Error(err))
	}
}

// respondPreviewUpdate re-renders the preview message through the component
// interaction itself, which is attached to that message.
func (b *Bot) respondPreviewUpdate(interaction *discordgo.InteractionCreate, session *builder.Session) {
	render := builder.RenderPreview(session, false)
	err := b.session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    render.Content,
			Embeds:     []*discordgo.MessageEmbed{render.Embed},
			Components: render.Components,
		},
	})
	if err != nil {
		b.logger.Warn("preview update failed", zap.Error(err))
	}
}

func (b *Bot) refreshPreview(session *builder.Session) {
	if err := b.updatePreview(session); err != nil {
		b.logger.Warn("preview refresh failed", zap.Error(err))
	}
}

func (b *Bot) handlePost(ctx context.Context, session *builder.Session, interaction *discordgo.InteractionCreate) {
	plan := builder.RenderPost(session)
	if plan.Empty {
		b.respondError(interaction, "The draft is empty. Add a title, description, or field first.")
		return
	}

	var err error
	closing := "**Embed Builder** - embed posted."
	if plan.EditMessageID != "" {
		err = b.commitEdit(ctx, session, plan)
		closing = "**Embed Builder** - message updated."
	} else {
		err = b.commitCreate(ctx, session, plan)
	}
	if err != nil {
		b.respondError(interaction, postErrorMessage(err))
		return
	}

	b.respondClosedPreview(interaction, session, closing)
	b.registry.End(session.UserID)
}

func (b *Bot) commitCreate(ctx context.Context, session *builder.Session, plan builder.PostRender) error {
	var allowed *discordgo.MessageAllowedMentions
	if plan.SuppressPings {
		allowed = &discordgo.MessageAllowedMentions{}
	}

	if plan.AboveText != "" || plan.AboveImageURL != "" {
		content := plan.AboveText
		if plan.AboveImageURL != "" {
			if content != "" {
				content += "\n"
			}
			content += plan.AboveImageURL
		}
		_, err := b.session.ChannelMessageSendComplex(plan.ChannelID, &discordgo.MessageSend{
			Content:         content,
			AllowedMentions: allowed,
		})
		if err != nil {
			return fmt.Errorf("above message: %w", err)
		}
	}

	_, err := b.session.ChannelMessageSendComplex(plan.ChannelID, &discordgo.MessageSend{
		Embeds:          []*discordgo.MessageEmbed{plan.Embed},
		Components:      plan.Components,
		AllowedMentions: allowed,
	})
	if err != nil {
		return err
	}

	b.audit.Log(ctx, audit.LevelInfo, session.GuildID, session.UserID, audit.EventEmbedPost, "posted in <#"+plan.ChannelID+">")
	return nil
}

func (b *Bot) commitEdit(ctx context.Context, session *builder.Session, plan builder.PostRender) error {
	embeds := []*discordgo.MessageEmbed{plan.Embed}
	_, err := b.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    plan.ChannelID,
		ID:         plan.EditMessageID,
		Embeds:     &embeds,
		Components: &plan.Components,
	})
	if err != nil {
		return err
	}

	b.audit.Log(ctx, audit.LevelInfo, session.GuildID, session.UserID, audit.EventEmbedEdit, "edited message "+plan.EditMessageID)
	return nil
}

func postErrorMessage(err error) string {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Message != nil {
		switch restErr.Message.Code {
		case discordgo.ErrCodeUnknownMessage:
			return "The target message no longer exists. Cancel and start over with /embed create."
		case discordgo.ErrCodeMissingPermissions, discordgo.ErrCodeMissingAccess:
			return "I do not have permission to post in this channel."
		}
	}
	return "Posting failed: " + err.Error()
}

func (b *Bot) handleCancel(ctx context.Context, session *builder.Session, interaction *discordgo.InteractionCreate) {
	b.audit.Log(ctx, audit.LevelInfo, session.GuildID, session.UserID, audit.EventSessionCancel, "draft discarded")
	b.respondClosedPreview(interaction, session, "**Embed Builder** - canceled. Nothing was posted.")
	b.registry.End(session.UserID)
}

func (b *Bot) respondClosedPreview(interaction *discordgo.InteractionCreate, session *builder.Session, content string) {
	render := builder.RenderPreview(session, true)
	err := b.session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Embeds:     []*discordgo.MessageEmbed{render.Embed},
			Components: render.Components,
		},
	})
	if err != nil {
		b.logger.Warn("preview close failed", zap.Error(err))
	}
}
