package storage

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestTemplateRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tpl := EmbedTemplate{
		Name:        "welcome",
		EmbedData:   []byte(`{"title":"Welcome"}`),
		LinkButtons: []byte(`{"items":[{"url":"https://example.com","label":"site"}]}`),
		CreatedBy:   "u1",
		CreatedAt:   time.Now(),
	}
	if err := store.CreateTemplate(ctx, tpl); err != nil {
		t.Fatalf("create template: %v", err)
	}

	got, err := store.GetTemplate(ctx, "welcome")
	if err != nil {
		t.Fatalf("get template: %v", err)
	}
	if string(got.EmbedData) != string(tpl.EmbedData) {
		t.Fatalf("embed snapshot mismatch: %s", got.EmbedData)
	}
	if string(got.LinkButtons) != string(tpl.LinkButtons) {
		t.Fatalf("buttons snapshot mismatch: %s", got.LinkButtons)
	}
}

func TestTemplateNameConflict(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := EmbedTemplate{Name: "rules", EmbedData: []byte(`{"title":"first"}`), CreatedAt: time.Now()}
	if err := store.CreateTemplate(ctx, first); err != nil {
		t.Fatalf("create template: %v", err)
	}

	second := EmbedTemplate{Name: "rules", EmbedData: []byte(`{"title":"second"}`), CreatedAt: time.Now()}
	if err := store.CreateTemplate(ctx, second); !errors.Is(err, ErrTemplateExists) {
		t.Fatalf("expected ErrTemplateExists, got %v", err)
	}

	got, err := store.GetTemplate(ctx, "rules")
	if err != nil {
		t.Fatalf("get template: %v", err)
	}
	if string(got.EmbedData) != `{"title":"first"}` {
		t.Fatalf("conflicting save altered the stored template: %s", got.EmbedData)
	}
}

func TestTemplateDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tpl := EmbedTemplate{Name: "gone", EmbedData: []byte(`{}`), CreatedAt: time.Now()}
	if err := store.CreateTemplate(ctx, tpl); err != nil {
		t.Fatalf("create template: %v", err)
	}
	if err := store.DeleteTemplate(ctx, "gone"); err != nil {
		t.Fatalf("delete template: %v", err)
	}
	if err := store.DeleteTemplate(ctx, "gone"); !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
	if _, err := store.GetTemplate(ctx, "gone"); !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound after delete, got %v", err)
	}
}

func TestTemplateClaim(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tpl := EmbedTemplate{Name: "claimable", EmbedData: []byte(`{}`), CreatedAt: time.Now()}
	if err := store.CreateTemplate(ctx, tpl); err != nil {
		t.Fatalf("create template: %v", err)
	}

	if err := store.ClaimTemplate(ctx, "claimable", "u9"); err != nil {
		t.Fatalf("claim template: %v", err)
	}
	got, err := store.GetTemplate(ctx, "claimable")
	if err != nil {
		t.Fatalf("get template: %v", err)
	}
	if !got.Claimed || got.ClaimedBy != "u9" {
		t.Fatalf("claim not recorded: %+v", got)
	}

	if err := store.ReleaseTemplate(ctx, "claimable"); err != nil {
		t.Fatalf("release template: %v", err)
	}
	got, _ = store.GetTemplate(ctx, "claimable")
	if got.Claimed || got.ClaimedBy != "" {
		t.Fatalf("release not recorded: %+v", got)
	}

	if err := store.ClaimTemplate(ctx, "missing", "u9"); !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestListTemplatesOrdered(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"zeta", "alpha", "mid"} {
		tpl := EmbedTemplate{Name: name, EmbedData: []byte(`{}`), CreatedAt: time.Now()}
		if err := store.CreateTemplate(ctx, tpl); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	templates, err := store.ListTemplates(ctx)
	if err != nil {
		t.Fatalf("list templates: %v", err)
	}
	if len(templates) != 3 || templates[0].Name != "alpha" || templates[2].Name != "zeta" {
		t.Fatalf("unexpected order: %+v", templates)
	}
}
