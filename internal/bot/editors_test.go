package bot

import (
	"testing"
	"time"

	"github.com/exileenig/drako-bot-sub003/internal/builder"
	"github.com/exileenig/drako-bot-sub003/internal/config"
	"github.com/exileenig/drako-bot-sub003/internal/modules/audit"

	"github.com/bwmarrin/discordgo"
)

func TestMenuWaitTimeoutNotice(t *testing.T) {
	fired := make(chan builder.Action, 1)
	b := &Bot{
		editorTimeout: 15 * time.Millisecond,
		notifyTimeout: func(_ *discordgo.InteractionCreate, action builder.Action) {
			fired <- action
		},
	}

	registry := builder.NewRegistry(time.Minute)
	session := registry.Start("u1", "g1", "c1")
	b.openMenuWait(session, builder.ActionRemoveField, "", &discordgo.InteractionCreate{})

	select {
	case action := <-fired:
		if action != builder.ActionRemoveField {
			t.Fatalf("timeout notice for the wrong editor: %v", action)
		}
	case <-time.After(time.Second):
		t.Fatalf("unanswered menu never reported its timeout")
	}
}

func TestMenuWaitClaimSkipsNotice(t *testing.T) {
	fired := make(chan builder.Action, 1)
	b := &Bot{
		editorTimeout: 15 * time.Millisecond,
		notifyTimeout: func(_ *discordgo.InteractionCreate, action builder.Action) {
			fired <- action
		},
	}

	registry := builder.NewRegistry(time.Minute)
	session := registry.Start("u1", "g1", "c1")
	id := b.openMenuWait(session, builder.ActionDeleteTemplate, "rules", &discordgo.InteractionCreate{})

	action, payload, err := session.ClaimWait(id)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if action != builder.ActionDeleteTemplate || payload != "rules" {
		t.Fatalf("claim returned %v/%q", action, payload)
	}

	select {
	case <-fired:
		t.Fatalf("claimed menu still reported a timeout")
	case <-time.After(60 * time.Millisecond):
	}
}

func TestEditModeRejectsAboveEditors(t *testing.T) {
	registry := builder.NewRegistry(time.Minute)

	target := &discordgo.Message{
		ID:     "m1",
		Author: &discordgo.User{ID: "bot"},
		Embeds: []*discordgo.MessageEmbed{{Title: "existing"}},
	}
	editSession, err := registry.StartEdit("u1", "g1", "c1", target, "bot")
	if err != nil {
		t.Fatalf("start edit: %v", err)
	}

	if !editUnsupported(editSession, builder.ActionAboveText) {
		t.Fatalf("above text editor should be rejected while editing")
	}
	if !editUnsupported(editSession, builder.ActionAboveImage) {
		t.Fatalf("above image editor should be rejected while editing")
	}
	if editUnsupported(editSession, builder.ActionTitle) {
		t.Fatalf("title editor should stay available while editing")
	}

	createSession := registry.Start("u2", "g1", "c1")
	if editUnsupported(createSession, builder.ActionAboveText) {
		t.Fatalf("above text editor should be available while creating")
	}
}

func TestAuditColor(t *testing.T) {
	b := &Bot{cfg: config.Config{}}
	b.cfg.Notifications.EmbedColors = config.EmbedColors{Primary: 0x111111, Success: 0x222222}

	if got := b.auditColor(audit.EventEmbedPost); got != 0x222222 {
		t.Fatalf("posted embed should use the success color, got %#x", got)
	}
	if got := b.auditColor(audit.EventEmbedEdit); got != 0x222222 {
		t.Fatalf("edited embed should use the success color, got %#x", got)
	}
	if got := b.auditColor(audit.EventSessionStart); got != 0x111111 {
		t.Fatalf("session start should use the primary color, got %#x", got)
	}
}
