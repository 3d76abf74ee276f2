package bot

import (
	"strings"
	"testing"

	"github.com/exileenig/drako-bot-sub003/internal/builder"
	"github.com/exileenig/drako-bot-sub003/internal/storage"

	"github.com/bwmarrin/discordgo"
)

func TestModalValues(t *testing.T) {
	data := discordgo.ModalSubmitInteractionData{
		Components: []discordgo.MessageComponent{
			&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				&discordgo.TextInput{CustomID: "name", Value: "Rules"},
			}},
			&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				&discordgo.TextInput{CustomID: "value", Value: "Be kind."},
			}},
		},
	}

	values := modalValues(data)
	if values["name"] != "Rules" || values["value"] != "Be kind." {
		t.Fatalf("unexpected values: %#v", values)
	}
}

func TestParseBoolInput(t *testing.T) {
	for _, raw := range []string{"yes", "Y", "true", "1", " YES "} {
		if !parseBoolInput(raw) {
			t.Fatalf("%q should parse as true", raw)
		}
	}
	for _, raw := range []string{"", "no", "false", "maybe"} {
		if parseBoolInput(raw) {
			t.Fatalf("%q should parse as false", raw)
		}
	}
}

func TestMenuLabelTruncates(t *testing.T) {
	long := strings.Repeat("x", 150)
	label := menuLabel(long)
	if len(label) != 100 {
		t.Fatalf("expected 100 chars, got %d", len(label))
	}
	if !strings.HasSuffix(label, "...") {
		t.Fatalf("expected ellipsis suffix, got %q", label[len(label)-5:])
	}
	if menuLabel("short") != "short" {
		t.Fatalf("short labels must pass through unchanged")
	}
}

func TestEditorErrorMessages(t *testing.T) {
	verr := &builder.ValidationError{Field: "title", Reason: "too long"}
	if msg := editorErrorMessage(builder.ActionTitle, verr); !strings.Contains(msg, "title") {
		t.Fatalf("validation message should name the field: %q", msg)
	}
	if msg := editorErrorMessage(builder.ActionAddLink, builder.ErrCapacity); !strings.Contains(msg, "20") {
		t.Fatalf("capacity message should name the limit: %q", msg)
	}
	if msg := editorErrorMessage(builder.ActionSaveTemplate, storage.ErrTemplateExists); !strings.Contains(msg, "already exists") {
		t.Fatalf("conflict message should mention the existing template: %q", msg)
	}
}

func TestPostErrorMessages(t *testing.T) {
	deleted := &discordgo.RESTError{Message: &discordgo.APIErrorMessage{Code: discordgo.ErrCodeUnknownMessage}}
	if msg := postErrorMessage(deleted); !strings.Contains(msg, "no longer exists") {
		t.Fatalf("unexpected message for deleted target: %q", msg)
	}
	denied := &discordgo.RESTError{Message: &discordgo.APIErrorMessage{Code: discordgo.ErrCodeMissingPermissions}}
	if msg := postErrorMessage(denied); !strings.Contains(msg, "permission") {
		t.Fatalf("unexpected message for missing permissions: %q", msg)
	}
}

func TestModalInputsCoverEveryModalAction(t *testing.T) {
	session := &builder.Session{Draft: builder.NewDraft(), Buttons: builder.NewLinkButtonSet()}
	for _, action := range []builder.Action{
		builder.ActionTitle, builder.ActionDescription, builder.ActionAuthor,
		builder.ActionFooter, builder.ActionColor, builder.ActionThumbnail,
		builder.ActionImage, builder.ActionAddField, builder.ActionAddLink,
		builder.ActionAboveText, builder.ActionAboveImage, builder.ActionSaveTemplate,
	} {
		title, inputs := modalInputs(session, action)
		if title == "" || len(inputs) == 0 {
			t.Fatalf("action %v has no modal form", action)
		}
		for _, input := range inputs {
			if input.CustomID == "" || input.Label == "" {
				t.Fatalf("action %v has an unnamed input", action)
			}
		}
	}
}
