package commands

import (
	"context"

	"github.com/morezero/interactions-gateway/pkg/command"
)

// PreconditionGuildOnly is the name commands use to require a server.
const PreconditionGuildOnly = "guild-only"

// MessageGuildOnly is shown when a guild-only command is used in DMs.
const MessageGuildOnly = "This command can only be used in a server."

// GuildOnly rejects interactions that do not come from a guild.
func GuildOnly() command.Precondition {
	check := func(_ context.Context, req *command.Request) error {
		if req.Interaction == nil || req.Interaction.GuildID == "" {
			return command.Fail(MessageGuildOnly)
		}
		return nil
	}
	return &command.FuncPrecondition{
		PreconditionName: PreconditionGuildOnly,
		ChatInput:        check,
		ContextMenu:      check,
	}
}
