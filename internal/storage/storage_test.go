package storage

import (
	"context"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(store.Close)
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store
}

func TestUpsertGuildSettings(t *testing.T) {
	store := newTestStore(t)

	settings := GuildSettings{
		GuildID:           "g1",
		BuilderLogChannel: "c1",
		AuditToChannel:    true,
	}
	if err := store.UpsertGuildSettings(context.Background(), settings); err != nil {
		t.Fatalf("upsert guild settings: %v", err)
	}

	settings.BuilderLogChannel = "c2"
	if err := store.UpsertGuildSettings(context.Background(), settings); err != nil {
		t.Fatalf("update guild settings: %v", err)
	}

	got, err := store.GetGuildSettings(context.Background(), "g1", GuildSettings{})
	if err != nil {
		t.Fatalf("get guild settings: %v", err)
	}
	if got.BuilderLogChannel != "c2" {
		t.Fatalf("expected channel c2, got %q", got.BuilderLogChannel)
	}
	if !got.AuditToChannel {
		t.Fatalf("expected audit flag to persist")
	}
}

func TestGuildSettingsDefaults(t *testing.T) {
	store := newTestStore(t)

	defaults := GuildSettings{BuilderLogChannel: "fallback"}
	got, err := store.GetGuildSettings(context.Background(), "missing", defaults)
	if err != nil {
		t.Fatalf("get guild settings: %v", err)
	}
	if got.GuildID != "missing" || got.BuilderLogChannel != "fallback" {
		t.Fatalf("unexpected defaults: %+v", got)
	}
}

func TestAuditLogs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	entry := AuditLog{
		GuildID:   "g1",
		UserID:    "u1",
		Level:     "INFO",
		Event:     "embed_post",
		Details:   "channel=c1",
		CreatedAt: time.Now(),
	}
	if err := store.AddAuditLog(ctx, entry); err != nil {
		t.Fatalf("add audit log: %v", err)
	}

	logs, err := store.ListAuditLogs(ctx, "g1", time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("list audit logs: %v", err)
	}
	if len(logs) != 1 || logs[0].Event != "embed_post" {
		t.Fatalf("unexpected logs: %+v", logs)
	}

	logs, err = store.ListAuditLogs(ctx, "other", time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("list audit logs: %v", err)
	}
	if len(logs) != 0 {
		t.Fatalf("expected per-guild isolation, got %+v", logs)
	}
}
