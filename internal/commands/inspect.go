package commands

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/morezero/interactions-gateway/pkg/command"
	"github.com/morezero/interactions-gateway/pkg/reply"
)

// Inspect is a context menu command showing details about the targeted
// user or message.
type Inspect struct {
	command.Base
	kind discordgo.ApplicationCommandType
}

// NewInspectUser returns the user context menu command.
func NewInspectUser() *Inspect {
	return &Inspect{
		Base: command.Base{CommandName: "Inspect User", PreconditionNames: []string{PreconditionGuildOnly}},
		kind: discordgo.UserApplicationCommand,
	}
}

// NewInspectMessage returns the message context menu command.
func NewInspectMessage() *Inspect {
	return &Inspect{
		Base: command.Base{CommandName: "Inspect Message", PreconditionNames: []string{PreconditionGuildOnly}},
		kind: discordgo.MessageApplicationCommand,
	}
}

// Definition implements command.Definer. Context menu commands carry no
// description.
func (c *Inspect) Definition() command.Definition {
	return command.Definition{
		Command: &discordgo.ApplicationCommand{Name: c.Name(), Type: c.kind},
	}
}

// ContextMenuRun implements command.ContextMenuRunner.
func (c *Inspect) ContextMenuRun(_ context.Context, req *command.Request) (*reply.Response, error) {
	data := req.Interaction.ApplicationCommandData()

	var embed *discordgo.MessageEmbed
	switch data.CommandType {
	case discordgo.UserApplicationCommand:
		embed = inspectUser(data)
	case discordgo.MessageApplicationCommand:
		embed = inspectMessage(data)
	}
	if embed == nil {
		return nil, command.Fail("Could not find what you selected.")
	}

	return reply.Message(&reply.Data{
		Embeds: []*discordgo.MessageEmbed{embed},
		Flags:  discordgo.MessageFlagsEphemeral,
	}), nil
}

func inspectUser(data discordgo.ApplicationCommandInteractionData) *discordgo.MessageEmbed {
	if data.Resolved == nil {
		return nil
	}
	u, ok := data.Resolved.Users[data.TargetID]
	if !ok || u == nil {
		return nil
	}
	return &discordgo.MessageEmbed{
		Title: u.Username,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "ID", Value: u.ID, Inline: true},
			{Name: "Bot", Value: strconv.FormatBool(u.Bot), Inline: true},
			{Name: "Created", Value: createdAt(u.ID), Inline: true},
		},
	}
}

func inspectMessage(data discordgo.ApplicationCommandInteractionData) *discordgo.MessageEmbed {
	if data.Resolved == nil {
		return nil
	}
	m, ok := data.Resolved.Messages[data.TargetID]
	if !ok || m == nil {
		return nil
	}
	author := "unknown"
	if m.Author != nil {
		author = m.Author.Username
	}
	return &discordgo.MessageEmbed{
		Title: "Message " + m.ID,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Author", Value: author, Inline: true},
			{Name: "Length", Value: strconv.Itoa(len([]rune(m.Content))), Inline: true},
			{Name: "Attachments", Value: strconv.Itoa(len(m.Attachments)), Inline: true},
			{Name: "Created", Value: createdAt(m.ID), Inline: true},
		},
	}
}

func createdAt(snowflake string) string {
	t, err := discordgo.SnowflakeTimestamp(snowflake)
	if err != nil {
		return "unknown"
	}
	return fmt.Sprintf("<t:%d:R>", t.Truncate(time.Second).Unix())
}
