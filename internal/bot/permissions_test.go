package bot

import (
	"testing"

	"github.com/exileenig/drako-bot-sub003/internal/config"

	"github.com/bwmarrin/discordgo"
)

func memberInteraction(permissions int64, roles ...string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Member: &discordgo.Member{
			User:        &discordgo.User{ID: "user-1"},
			Roles:       roles,
			Permissions: permissions,
		},
	}}
}

func TestCanUseBuilder(t *testing.T) {
	b := &Bot{cfg: config.Config{}}
	b.cfg.Builder.AllowedRoleIDs = []string{"role-editor"}

	if !b.canUseBuilder(memberInteraction(discordgo.PermissionAdministrator)) {
		t.Fatalf("administrators must always pass")
	}
	if !b.canUseBuilder(memberInteraction(0, "role-other", "role-editor")) {
		t.Fatalf("allowed role must pass")
	}
	if b.canUseBuilder(memberInteraction(0, "role-other")) {
		t.Fatalf("member without an allowed role must be rejected")
	}
	if b.canUseBuilder(&discordgo.InteractionCreate{Interaction: &discordgo.Interaction{}}) {
		t.Fatalf("interactions without a member must be rejected")
	}
}

func TestCanUseBuilderEmptyRoleList(t *testing.T) {
	b := &Bot{cfg: config.Config{}}

	if b.canUseBuilder(memberInteraction(0, "role-any")) {
		t.Fatalf("with no configured roles only admins may build")
	}
	if !b.canUseBuilder(memberInteraction(discordgo.PermissionAdministrator)) {
		t.Fatalf("admin must pass even with no configured roles")
	}
}
