package builder

import (
	"fmt"
	"strings"

	"github.com/exileenig/drako-bot-sub003/internal/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/enescakir/emoji"
)

// Component budget: Discord allows 5 action rows of 5 buttons. The final
// posted message carries no builder controls, so the link set itself is
// capped at 20 so the preview always keeps at least one control row free.
const (
	MaxLinkButtons   = 20
	ButtonsPerRow    = 5
	MaxLabelLen      = 80
	MaxComponentRows = 5
)

type LinkButton struct {
	URL   string `json:"url"`
	Label string `json:"label"`
	Emoji string `json:"emoji,omitempty"`
}

// LinkButtonSet is the ordered list of link-style buttons attached alongside
// a draft. Removal is by index into the current order.
type LinkButtonSet struct {
	Items []LinkButton `json:"items"`
}

func NewLinkButtonSet() *LinkButtonSet {
	return &LinkButtonSet{}
}

func (s *LinkButtonSet) Len() int {
	return len(s.Items)
}

// Add validates and appends one link button. The emoji may be a unicode
// emoji or a :shorthand: alias.
func (s *LinkButtonSet) Add(rawURL, label, emojiInput string) error {
	if len(s.Items) >= MaxLinkButtons {
		return fmt.Errorf("link buttons are limited to %d by the component budget: %w", MaxLinkButtons, ErrCapacity)
	}
	label = strings.TrimSpace(label)
	if label == "" {
		return invalid("link label", "label is required")
	}
	if len(label) > MaxLabelLen {
		return invalidf("link label", "must be at most %d characters", MaxLabelLen)
	}
	if err := utils.ValidateHTTPURL(rawURL); err != nil {
		return invalid("link url", err.Error())
	}
	normalized, _, err := utils.NormalizeURL(rawURL)
	if err != nil {
		return invalid("link url", err.Error())
	}

	resolved := ""
	if trimmed := strings.TrimSpace(emojiInput); trimmed != "" {
		resolved = emoji.Parse(trimmed)
		if resolved == trimmed && strings.HasPrefix(trimmed, ":") && strings.HasSuffix(trimmed, ":") {
			return invalid("link emoji", "unknown emoji alias")
		}
	}

	s.Items = append(s.Items, LinkButton{URL: normalized, Label: label, Emoji: resolved})
	return nil
}

func (s *LinkButtonSet) Remove(index int) error {
	if index < 0 || index >= len(s.Items) {
		return fmt.Errorf("link button %d: %w", index, ErrNotFound)
	}
	s.Items = append(s.Items[:index], s.Items[index+1:]...)
	return nil
}

func (s *LinkButtonSet) Clone() *LinkButtonSet {
	return &LinkButtonSet{Items: append([]LinkButton(nil), s.Items...)}
}

// Rows lays the buttons out into action rows, at most maxRows of them.
// Buttons beyond the budget are dropped from the rendering only, never
// from the set.
func (s *LinkButtonSet) Rows(maxRows int) []discordgo.MessageComponent {
	if maxRows <= 0 || len(s.Items) == 0 {
		return nil
	}
	var rows []discordgo.MessageComponent
	var current []discordgo.MessageComponent
	for _, item := range s.Items {
		button := discordgo.Button{
			Style: discordgo.LinkButton,
			Label: item.Label,
			URL:   item.URL,
		}
		if item.Emoji != "" {
			button.Emoji = &discordgo.ComponentEmoji{Name: item.Emoji}
		}
		current = append(current, button)
		if len(current) == ButtonsPerRow {
			rows = append(rows, discordgo.ActionsRow{Components: current})
			current = nil
			if len(rows) == maxRows {
				return rows
			}
		}
	}
	if len(current) > 0 {
		rows = append(rows, discordgo.ActionsRow{Components: current})
	}
	return rows
}

// LinkButtonsFromComponents extracts existing link buttons from a message
// being edited. Non-link components are ignored.
func LinkButtonsFromComponents(components []discordgo.MessageComponent) *LinkButtonSet {
	set := NewLinkButtonSet()
	for _, component := range components {
		row, ok := component.(*discordgo.ActionsRow)
		if !ok {
			if value, ok := component.(discordgo.ActionsRow); ok {
				row = &value
			} else {
				continue
			}
		}
		for _, inner := range row.Components {
			button, ok := inner.(*discordgo.Button)
			if !ok {
				if value, ok := inner.(discordgo.Button); ok {
					button = &value
				} else {
					continue
				}
			}
			if button.Style != discordgo.LinkButton || len(set.Items) >= MaxLinkButtons {
				continue
			}
			emojiName := ""
			if button.Emoji != nil {
				emojiName = button.Emoji.Name
			}
			set.Items = append(set.Items, LinkButton{URL: button.URL, Label: button.Label, Emoji: emojiName})
		}
	}
	return set
}
