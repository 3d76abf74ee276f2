package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/exileenig/drako-bot-sub003/internal/storage"
)

func TestReport(t *testing.T) {
	store, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer store.Close()
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	ctx := context.Background()
	for _, event := range []string{"embed_post", "embed_post", "template_save"} {
		entry := storage.AuditLog{GuildID: "g1", Level: "INFO", Event: event, CreatedAt: time.Now()}
		if err := store.AddAuditLog(ctx, entry); err != nil {
			t.Fatalf("add audit log: %v", err)
		}
	}

	report, err := New(store).Report(ctx, "g1", time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.Total != 3 || report.ByEvent["embed_post"] != 2 || report.ByEvent["template_save"] != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
}
