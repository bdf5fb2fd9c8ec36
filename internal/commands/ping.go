package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/morezero/interactions-gateway/pkg/command"
	"github.com/morezero/interactions-gateway/pkg/reply"
)

// followUpTimeout bounds the REST call made after a deferred reply.
const followUpTimeout = 15 * time.Second

// Ping answers with Pong. With deferred set it acknowledges first and
// edits the original reply through the REST API.
type Ping struct {
	command.Base
	// async runs background work; tests replace it to run inline.
	async func(func())
}

// NewPing returns the ping command.
func NewPing() *Ping {
	return &Ping{
		Base:  command.Base{CommandName: "ping"},
		async: func(f func()) { go f() },
	}
}

// Definition implements command.Definer.
func (c *Ping) Definition() command.Definition {
	return command.Definition{
		Command: &discordgo.ApplicationCommand{
			Name:        c.Name(),
			Description: "Check that the bot is alive",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "deferred",
					Description: "Acknowledge first and answer through a follow-up",
				},
			},
		},
	}
}

// ChatInputRun implements command.ChatInputRunner.
func (c *Ping) ChatInputRun(ctx context.Context, req *command.Request) (*reply.Response, error) {
	deferred, _ := req.Options.Boolean("deferred")
	if !deferred || req.API == nil {
		return reply.Text("Pong!"), nil
	}

	started := time.Now()
	interaction := req.Interaction
	bg := context.WithoutCancel(ctx)
	c.async(func() {
		ctx, cancel := context.WithTimeout(bg, followUpTimeout)
		defer cancel()

		content := fmt.Sprintf("Pong! (deferred %s)", time.Since(started).Round(time.Millisecond))
		if _, err := req.API.EditReply(ctx, interaction, "", &discordgo.WebhookEdit{Content: &content}); err != nil {
			req.Logger.Warn(fmt.Sprintf("%s - ping follow-up failed: %v", logPrefix, err))
		}
	})
	return reply.Defer(false), nil
}
