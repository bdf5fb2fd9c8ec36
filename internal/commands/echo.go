package commands

import (
	"context"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/morezero/interactions-gateway/pkg/command"
	"github.com/morezero/interactions-gateway/pkg/reply"
)

// maxChoices is the most autocomplete choices Discord accepts.
const maxChoices = 25

var echoSuggestions = []string{
	"hello",
	"hello world",
	"good morning",
	"good night",
	"see you later",
	"thanks",
	"thank you very much",
	"welcome",
}

// Echo repeats its text option back and suggests phrases while typing.
type Echo struct {
	command.Base
}

// NewEcho returns the echo command.
func NewEcho() *Echo {
	return &Echo{Base: command.Base{CommandName: "echo"}}
}

// Definition implements command.Definer.
func (c *Echo) Definition() command.Definition {
	return command.Definition{
		Command: &discordgo.ApplicationCommand{
			Name:        c.Name(),
			Description: "Repeat a message",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         "text",
					Description:  "What to say",
					Required:     true,
					Autocomplete: true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "private",
					Description: "Only show the reply to you",
				},
			},
		},
	}
}

// ChatInputRun implements command.ChatInputRunner.
func (c *Echo) ChatInputRun(_ context.Context, req *command.Request) (*reply.Response, error) {
	text, ok := req.Options.String("text")
	if !ok || strings.TrimSpace(text) == "" {
		return nil, command.Fail("Nothing to echo.")
	}
	if private, _ := req.Options.Boolean("private"); private {
		return reply.Ephemeral(text), nil
	}
	return reply.Text(text), nil
}

// AutocompleteRun implements command.AutocompleteRunner.
func (c *Echo) AutocompleteRun(_ context.Context, req *command.Request) (*reply.Response, error) {
	prefix := ""
	if focused, ok := req.Options.Focused(); ok {
		if s, ok := focused.Value.(string); ok {
			prefix = strings.ToLower(strings.TrimSpace(s))
		}
	}

	var choices []*discordgo.ApplicationCommandOptionChoice
	for _, s := range echoSuggestions {
		if !strings.HasPrefix(s, prefix) {
			continue
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: s, Value: s})
		if len(choices) == maxChoices {
			break
		}
	}
	return reply.Autocomplete(choices...), nil
}
