package builder

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Builder control layout: four rows of five buttons, which leaves exactly
// one row of the component budget for a live link-button preview. The final
// posted message has no controls, so all 20 links fit there.
var controlLayout = [][]struct {
	Action Action
	Label  string
	Style  discordgo.ButtonStyle
}{
	{
		{ActionTitle, "Title", discordgo.SecondaryButton},
		{ActionDescription, "Description", discordgo.SecondaryButton},
		{ActionAuthor, "Author", discordgo.SecondaryButton},
		{ActionFooter, "Footer", discordgo.SecondaryButton},
		{ActionColor, "Color", discordgo.SecondaryButton},
	},
	{
		{ActionThumbnail, "Thumbnail", discordgo.SecondaryButton},
		{ActionImage, "Image", discordgo.SecondaryButton},
		{ActionTimestamp, "Timestamp", discordgo.SecondaryButton},
		{ActionAddField, "Add Field", discordgo.SecondaryButton},
		{ActionRemoveField, "Remove Field", discordgo.SecondaryButton},
	},
	{
		{ActionAddLink, "Add Link", discordgo.SecondaryButton},
		{ActionRemoveLink, "Remove Link", discordgo.SecondaryButton},
		{ActionTogglePings, "Pings", discordgo.SecondaryButton},
		{ActionAboveText, "Above Text", discordgo.SecondaryButton},
		{ActionAboveImage, "Above Image", discordgo.SecondaryButton},
	},
	{
		{ActionSaveTemplate, "Save Template", discordgo.PrimaryButton},
		{ActionLoadTemplate, "Load Template", discordgo.PrimaryButton},
		{ActionDeleteTemplate, "Delete Template", discordgo.DangerButton},
		{ActionPost, "Post Embed", discordgo.SuccessButton},
		{ActionCancel, "Cancel", discordgo.DangerButton},
	},
}

// ControlRows builds the builder control components for the session owner.
func ControlRows(userID string, disabled bool) []discordgo.MessageComponent {
	rows := make([]discordgo.MessageComponent, 0, len(controlLayout))
	for _, layout := range controlLayout {
		components := make([]discordgo.MessageComponent, 0, len(layout))
		for _, spec := range layout {
			components = append(components, discordgo.Button{
				Label:    spec.Label,
				Style:    spec.Style,
				CustomID: ButtonID(spec.Action, userID),
				Disabled: disabled,
			})
		}
		rows = append(rows, discordgo.ActionsRow{Components: components})
	}
	return rows
}

// PreviewRender is everything the preview message shows. It is captured in
// one piece so the status line, embed, and components agree with each other
// even while another goroutine is mutating the draft.
type PreviewRender struct {
	Content    string
	Embed      *discordgo.MessageEmbed
	Components []discordgo.MessageComponent
}

// RenderPreview captures the preview message under the session lock.
func RenderPreview(session *Session, disabled bool) PreviewRender {
	session.mu.Lock()
	defer session.mu.Unlock()
	return PreviewRender{
		Content:    previewContent(session),
		Embed:      previewEmbed(session.Draft),
		Components: previewComponents(session, disabled),
	}
}

// PostRender is a consistent view of everything a commit needs: the final
// embed and link rows plus the scratch state that only applies on create.
type PostRender struct {
	ChannelID     string
	EditMessageID string
	Embed         *discordgo.MessageEmbed
	Components    []discordgo.MessageComponent
	AboveText     string
	AboveImageURL string
	SuppressPings bool
	Empty         bool
}

// RenderPost captures the commit view under the session lock.
func RenderPost(session *Session) PostRender {
	session.mu.Lock()
	defer session.mu.Unlock()
	return PostRender{
		ChannelID:     session.ChannelID,
		EditMessageID: session.EditMessageID,
		Embed:         session.Draft.ToEmbed(),
		Components:    session.Buttons.Rows(MaxComponentRows),
		AboveText:     session.AboveText,
		AboveImageURL: session.AboveImageURL,
		SuppressPings: session.SuppressPings,
		Empty:         session.Draft.Empty(),
	}
}

// previewComponents recombines the control rows with as many link-button
// rows as still fit within the five-row budget. Caller holds session.mu.
func previewComponents(session *Session, disabled bool) []discordgo.MessageComponent {
	rows := ControlRows(session.UserID, disabled)
	remaining := MaxComponentRows - len(rows)
	return append(rows, session.Buttons.Rows(remaining)...)
}

// previewEmbed renders the draft, substituting a placeholder when the draft
// would otherwise be blank and rejected by the API.
func previewEmbed(draft *Draft) *discordgo.MessageEmbed {
	if draft.Empty() {
		return &discordgo.MessageEmbed{
			Description: "*Empty embed. Use the buttons below to build it.*",
		}
	}
	return draft.ToEmbed()
}

// previewContent is the status line shown above the preview embed. Caller
// holds session.mu.
func previewContent(session *Session) string {
	mode := "creating"
	if session.EditMessageID != "" {
		mode = fmt.Sprintf("editing message %s", session.EditMessageID)
	}
	content := fmt.Sprintf("**Embed Builder** (%s) - fields %d/%d, links %d/%d",
		mode, len(session.Draft.Fields), MaxFields, session.Buttons.Len(), MaxLinkButtons)
	if session.SuppressPings {
		content += " - pings suppressed"
	}
	if session.Buttons.Len() > ButtonsPerRow {
		content += fmt.Sprintf("\n-# only the first %d link buttons are previewed; all post on commit", ButtonsPerRow)
	}
	return content
}
