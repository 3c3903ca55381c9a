// AngelaMos | 2026
// discord.go

package directory

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/angelamos/gatekeeper/internal/config"
)

// DiscordSyncer maintains role labels on a single guild. The managed set
// is exactly the values of cfg.RoleIDs; any guild role outside that set is
// left alone.
type DiscordSyncer struct {
	session *discordgo.Session
	guildID string
	roleIDs map[string]string
}

func NewDiscordSyncer(cfg config.DirectoryConfig) (*DiscordSyncer, error) {
	session, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}

	if len(cfg.RoleIDs) == 0 {
		return nil, fmt.Errorf("directory role_ids must not be empty")
	}

	return &DiscordSyncer{
		session: session,
		guildID: cfg.GuildID,
		roleIDs: cfg.RoleIDs,
	}, nil
}

func (s *DiscordSyncer) Sync(ctx context.Context, discordID, role string) error {
	target, ok := s.roleIDs[role]
	if !ok {
		return fmt.Errorf("no directory role mapped for %q", role)
	}

	member, err := s.session.GuildMember(
		s.guildID, discordID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("fetch member %s: %w", discordID, err)
	}

	held := make(map[string]struct{}, len(member.Roles))
	for _, id := range member.Roles {
		held[id] = struct{}{}
	}

	// Strip every managed label except the target before assigning, so a
	// repeated sync with an unchanged role is a no-op.
	for _, id := range s.roleIDs {
		if id == target {
			continue
		}
		if _, has := held[id]; !has {
			continue
		}
		err := s.session.GuildMemberRoleRemove(
			s.guildID, discordID, id, discordgo.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("remove role %s from %s: %w", id, discordID, err)
		}
	}

	if _, has := held[target]; !has {
		err := s.session.GuildMemberRoleAdd(
			s.guildID, discordID, target, discordgo.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("add role %s to %s: %w", target, discordID, err)
		}
	}

	return nil
}

var _ Syncer = (*DiscordSyncer)(nil)

// Ping verifies the bot can still reach the guild. Feeds the readiness
// probe when the directory is enabled.
func (s *DiscordSyncer) Ping(ctx context.Context) error {
	_, err := s.session.Guild(s.guildID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("ping guild %s: %w", s.guildID, err)
	}
	return nil
}
