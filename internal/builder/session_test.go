package builder

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
)

func TestRegistrySingleSessionPerUser(t *testing.T) {
	registry := NewRegistry(time.Minute)

	first := registry.Start("u1", "g1", "c1")
	_ = first.Draft.SetTitle("unsaved work")
	id := first.NextWaitID(ActionTitle, "", time.Minute, nil)

	second := registry.Start("u1", "g1", "c2")
	if second == first {
		t.Fatalf("expected a fresh session")
	}
	if !first.Ended() {
		t.Fatalf("previous session should be canceled")
	}
	if _, _, err := first.ClaimWait(id); !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected canceled wait to be unclaimable, got %v", err)
	}
	if first.PendingWaits() != 0 {
		t.Fatalf("canceled session still holds %d waits", first.PendingWaits())
	}
	if second.Draft.Title != "" {
		t.Fatalf("new session inherited the old draft")
	}
	if registry.Len() != 1 {
		t.Fatalf("expected one live session, got %d", registry.Len())
	}
}

// The expiry hook renders the preview on the timer goroutine while
// interaction handlers mutate the draft on their own goroutines. Run both
// at once so the race detector can catch any unguarded access.
func TestConcurrentRenderAndMutate(t *testing.T) {
	registry := NewRegistry(time.Minute)
	session := registry.Start("u1", "g1", "c1")

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			_ = session.Mutate(func(draft *Draft, buttons *LinkButtonSet) error {
				if err := draft.SetTitle(fmt.Sprintf("pass %d", i)); err != nil {
					return err
				}
				// Capacity errors past 20 links are expected here.
				_ = buttons.Add(fmt.Sprintf("https://example.com/%d", i), "link", "")
				session.AboveText = fmt.Sprintf("note %d", i)
				return nil
			})
			snapshot := TakeSnapshot(session)
			snapshot.Apply(session)
		}
	}()

	for i := 0; i < 200; i++ {
		render := RenderPreview(session, i%2 == 0)
		if render.Embed == nil || len(render.Components) == 0 || render.Content == "" {
			t.Fatalf("incomplete render on pass %d", i)
		}
		if plan := RenderPost(session); plan.ChannelID != "c1" {
			t.Fatalf("post render lost the channel on pass %d", i)
		}
	}
	<-done
}

func TestRegistryIsolationBetweenUsers(t *testing.T) {
	registry := NewRegistry(time.Minute)
	a := registry.Start("userA", "g1", "c1")
	b := registry.Start("userB", "g1", "c1")

	_ = a.Draft.SetTitle("A's draft")
	if b.Draft.Title != "" {
		t.Fatalf("user B sees user A's draft")
	}
	if a.Owns("userB") {
		t.Fatalf("user B should not own user A's session")
	}

	session, ok := registry.Get("userA")
	if !ok || session != a {
		t.Fatalf("lookup returned the wrong session")
	}
}

func TestRegistryExpiry(t *testing.T) {
	registry := NewRegistry(20 * time.Millisecond)
	expired := make(chan *Session, 1)
	registry.SetExpireFunc(func(s *Session) { expired <- s })

	session := registry.Start("u1", "g1", "c1")

	select {
	case got := <-expired:
		if got != session {
			t.Fatalf("expire hook got the wrong session")
		}
	case <-time.After(time.Second):
		t.Fatalf("session did not expire")
	}
	if _, ok := registry.Get("u1"); ok {
		t.Fatalf("expired session still registered")
	}
}

func TestRegistryEndIsIdempotent(t *testing.T) {
	registry := NewRegistry(time.Minute)
	registry.Start("u1", "g1", "c1")
	registry.End("u1")
	registry.End("u1")
	if registry.Len() != 0 {
		t.Fatalf("expected empty registry")
	}
}

func TestStartEdit(t *testing.T) {
	registry := NewRegistry(time.Minute)

	target := &discordgo.Message{
		ID:     "m1",
		Author: &discordgo.User{ID: "bot"},
		Embeds: []*discordgo.MessageEmbed{{Title: "existing"}},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{Style: discordgo.LinkButton, Label: "site", URL: "https://example.com"},
			}},
		},
	}

	session, err := registry.StartEdit("u1", "g1", "c1", target, "bot")
	if err != nil {
		t.Fatalf("start edit: %v", err)
	}
	if !session.EditMode() || session.EditMessageID != "m1" {
		t.Fatalf("expected edit mode targeting m1")
	}
	if session.Draft.Title != "existing" {
		t.Fatalf("draft not seeded from the message embed")
	}
	if session.Buttons.Len() != 1 {
		t.Fatalf("link buttons not seeded from the message components")
	}
}

func TestStartEditRejections(t *testing.T) {
	registry := NewRegistry(time.Minute)

	noEmbed := &discordgo.Message{ID: "m1", Author: &discordgo.User{ID: "bot"}}
	if _, err := registry.StartEdit("u1", "g1", "c1", noEmbed, "bot"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for embed-less message, got %v", err)
	}

	foreign := &discordgo.Message{
		ID:     "m2",
		Author: &discordgo.User{ID: "someone-else"},
		Embeds: []*discordgo.MessageEmbed{{Title: "x"}},
	}
	if _, err := registry.StartEdit("u1", "g1", "c1", foreign, "bot"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for foreign message, got %v", err)
	}
}
