package builder

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/exileenig/drako-bot-sub003/internal/utils"

	"github.com/bwmarrin/discordgo"
)

// Discord embed limits. The draft enforces them on every mutation so an
// invalid value can never reach the preview or a stored template.
const (
	MaxTitleLen       = 256
	MaxDescriptionLen = 4096
	MaxFields         = 25
	MaxFieldNameLen   = 256
	MaxFieldValueLen  = 1024
	MaxAuthorNameLen  = 256
	MaxFooterTextLen  = 2048
	MaxColor          = 0xFFFFFF
)

type Author struct {
	Name    string `json:"name"`
	IconURL string `json:"icon_url,omitempty"`
	URL     string `json:"url,omitempty"`
}

type Footer struct {
	Text    string `json:"text"`
	IconURL string `json:"icon_url,omitempty"`
}

type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// Draft is the embed being built. All mutation goes through the setters;
// a returned error means the draft is unchanged.
type Draft struct {
	Title        string  `json:"title,omitempty"`
	Description  string  `json:"description,omitempty"`
	Author       *Author `json:"author,omitempty"`
	Footer       *Footer `json:"footer,omitempty"`
	Color        int     `json:"color,omitempty"`
	ThumbnailURL string  `json:"thumbnail_url,omitempty"`
	ImageURL     string  `json:"image_url,omitempty"`
	Timestamp    bool    `json:"timestamp,omitempty"`
	Fields       []Field `json:"fields,omitempty"`
}

func NewDraft() *Draft {
	return &Draft{}
}

func (d *Draft) SetTitle(title string) error {
	title = strings.TrimSpace(title)
	if len(title) > MaxTitleLen {
		return invalidf("title", "must be at most %d characters, got %d", MaxTitleLen, len(title))
	}
	d.Title = title
	return nil
}

func (d *Draft) SetDescription(description string) error {
	description = strings.TrimSpace(description)
	if len(description) > MaxDescriptionLen {
		return invalidf("description", "must be at most %d characters, got %d", MaxDescriptionLen, len(description))
	}
	d.Description = description
	return nil
}

func (d *Draft) SetAuthor(name, iconURL, link string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		d.Author = nil
		return nil
	}
	if len(name) > MaxAuthorNameLen {
		return invalidf("author name", "must be at most %d characters", MaxAuthorNameLen)
	}
	if iconURL != "" {
		if err := utils.ValidateHTTPURL(iconURL); err != nil {
			return invalid("author icon url", err.Error())
		}
		if !utils.IsImageURL(iconURL) {
			return invalid("author icon url", "must point to an image file")
		}
	}
	if link != "" {
		if err := utils.ValidateHTTPURL(link); err != nil {
			return invalid("author url", err.Error())
		}
	}
	d.Author = &Author{Name: name, IconURL: iconURL, URL: link}
	return nil
}

func (d *Draft) SetFooter(text, iconURL string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		d.Footer = nil
		return nil
	}
	if len(text) > MaxFooterTextLen {
		return invalidf("footer text", "must be at most %d characters", MaxFooterTextLen)
	}
	if iconURL != "" {
		if err := utils.ValidateHTTPURL(iconURL); err != nil {
			return invalid("footer icon url", err.Error())
		}
		if !utils.IsImageURL(iconURL) {
			return invalid("footer icon url", "must point to an image file")
		}
	}
	d.Footer = &Footer{Text: text, IconURL: iconURL}
	return nil
}

func (d *Draft) SetColor(color int) error {
	if color < 0 || color > MaxColor {
		return invalidf("color", "must be between 0 and %d", MaxColor)
	}
	d.Color = color
	return nil
}

// ParseColor accepts "#5865F2", "5865F2", "0x5865F2", or a decimal value.
func ParseColor(input string) (int, error) {
	raw := strings.TrimSpace(input)
	raw = strings.TrimPrefix(raw, "#")
	raw = strings.TrimPrefix(raw, "0x")
	if raw == "" {
		return 0, invalid("color", "value is empty")
	}
	if value, err := strconv.ParseInt(raw, 16, 64); err == nil && len(raw) <= 6 {
		return int(value), nil
	}
	if value, err := strconv.ParseInt(raw, 10, 64); err == nil && value >= 0 && value <= MaxColor {
		return int(value), nil
	}
	return 0, invalid("color", "expected a hex color like #5865F2")
}

func (d *Draft) SetThumbnail(rawURL string) error {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		d.ThumbnailURL = ""
		return nil
	}
	if err := utils.ValidateHTTPURL(rawURL); err != nil {
		return invalid("thumbnail url", err.Error())
	}
	if !utils.IsImageURL(rawURL) {
		return invalid("thumbnail url", "must point to an image file")
	}
	d.ThumbnailURL = rawURL
	return nil
}

func (d *Draft) SetImage(rawURL string) error {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		d.ImageURL = ""
		return nil
	}
	if err := utils.ValidateHTTPURL(rawURL); err != nil {
		return invalid("image url", err.Error())
	}
	if !utils.IsImageURL(rawURL) {
		return invalid("image url", "must point to an image file")
	}
	d.ImageURL = rawURL
	return nil
}

func (d *Draft) ToggleTimestamp() bool {
	d.Timestamp = !d.Timestamp
	return d.Timestamp
}

func (d *Draft) AddField(name, value string, inline bool) error {
	name = strings.TrimSpace(name)
	value = strings.TrimSpace(value)
	if len(d.Fields) >= MaxFields {
		return invalidf("field", "embeds can hold at most %d fields", MaxFields)
	}
	if name == "" || value == "" {
		return invalid("field", "name and value are both required")
	}
	if len(name) > MaxFieldNameLen {
		return invalidf("field name", "must be at most %d characters", MaxFieldNameLen)
	}
	if len(value) > MaxFieldValueLen {
		return invalidf("field value", "must be at most %d characters", MaxFieldValueLen)
	}
	d.Fields = append(d.Fields, Field{Name: name, Value: value, Inline: inline})
	return nil
}

func (d *Draft) RemoveField(index int) error {
	if index < 0 || index >= len(d.Fields) {
		return fmt.Errorf("field %d: %w", index, ErrNotFound)
	}
	d.Fields = append(d.Fields[:index], d.Fields[index+1:]...)
	return nil
}

// Empty reports whether the draft would render as a blank embed, which
// Discord rejects on send.
func (d *Draft) Empty() bool {
	return d.Title == "" && d.Description == "" && d.Author == nil &&
		d.Footer == nil && d.ThumbnailURL == "" && d.ImageURL == "" && len(d.Fields) == 0
}

func (d *Draft) Clone() *Draft {
	clone := *d
	if d.Author != nil {
		author := *d.Author
		clone.Author = &author
	}
	if d.Footer != nil {
		footer := *d.Footer
		clone.Footer = &footer
	}
	clone.Fields = append([]Field(nil), d.Fields...)
	return &clone
}

func (d *Draft) ToEmbed() *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       d.Title,
		Description: d.Description,
		Color:       d.Color,
	}
	if d.Author != nil {
		embed.Author = &discordgo.MessageEmbedAuthor{Name: d.Author.Name, IconURL: d.Author.IconURL, URL: d.Author.URL}
	}
	if d.Footer != nil {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: d.Footer.Text, IconURL: d.Footer.IconURL}
	}
	if d.ThumbnailURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: d.ThumbnailURL}
	}
	if d.ImageURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: d.ImageURL}
	}
	if d.Timestamp {
		embed.Timestamp = time.Now().Format(time.RFC3339)
	}
	for _, field := range d.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: field.Name, Value: field.Value, Inline: field.Inline})
	}
	return embed
}

// DraftFromEmbed clones an existing message embed into a fresh draft,
// truncating anything beyond the documented limits.
func DraftFromEmbed(embed *discordgo.MessageEmbed) *Draft {
	draft := NewDraft()
	if embed == nil {
		return draft
	}
	draft.Title = truncate(embed.Title, MaxTitleLen)
	draft.Description = truncate(embed.Description, MaxDescriptionLen)
	if embed.Color > 0 && embed.Color <= MaxColor {
		draft.Color = embed.Color
	}
	if embed.Author != nil && embed.Author.Name != "" {
		draft.Author = &Author{
			Name:    truncate(embed.Author.Name, MaxAuthorNameLen),
			IconURL: embed.Author.IconURL,
			URL:     embed.Author.URL,
		}
	}
	if embed.Footer != nil && embed.Footer.Text != "" {
		draft.Footer = &Footer{Text: truncate(embed.Footer.Text, MaxFooterTextLen), IconURL: embed.Footer.IconURL}
	}
	if embed.Thumbnail != nil {
		draft.ThumbnailURL = embed.Thumbnail.URL
	}
	if embed.Image != nil {
		draft.ImageURL = embed.Image.URL
	}
	draft.Timestamp = embed.Timestamp != ""
	for _, field := range embed.Fields {
		if field == nil || len(draft.Fields) >= MaxFields {
			continue
		}
		draft.Fields = append(draft.Fields, Field{
			Name:   truncate(field.Name, MaxFieldNameLen),
			Value:  truncate(field.Value, MaxFieldValueLen),
			Inline: field.Inline,
		})
	}
	return draft
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	for limit > 0 && !utf8.RuneStart(value[limit]) {
		limit--
	}
	return value[:limit]
}
