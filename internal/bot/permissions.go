package bot

import "github.com/bwmarrin/discordgo"

// canUseBuilder gates the builder commands: administrators always pass,
// everyone else needs one of the configured role IDs.
func (b *Bot) canUseBuilder(interaction *discordgo.InteractionCreate) bool {
	member := interaction.Member
	if member == nil || member.User == nil {
		return false
	}
	if member.Permissions&discordgo.PermissionAdministrator != 0 {
		return true
	}
	if len(b.cfg.Builder.AllowedRoleIDs) == 0 {
		return false
	}
	allowed := make(map[string]struct{}, len(b.cfg.Builder.AllowedRoleIDs))
	for _, id := range b.cfg.Builder.AllowedRoleIDs {
		allowed[id] = struct{}{}
	}
	for _, roleID := range member.Roles {
		if _, ok := allowed[roleID]; ok {
			return true
		}
	}
	return false
}
