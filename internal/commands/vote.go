package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/morezero/interactions-gateway/pkg/command"
	"github.com/morezero/interactions-gateway/pkg/customid"
	"github.com/morezero/interactions-gateway/pkg/reply"
)

// Vote actions carried in button custom ids.
const (
	VoteUp    = "up"
	VoteDown  = "down"
	VoteClose = "close"
)

const (
	fieldUp   = "up"
	fieldDown = "down"
)

// Vote posts a question with up and down buttons. The tally lives in the
// buttons' custom ids, so no storage is needed. Anyone can vote; only the
// author can close the poll.
type Vote struct {
	command.Base
}

// NewVote returns the vote command.
func NewVote() *Vote {
	return &Vote{Base: command.Base{
		CommandName:       "vote",
		PreconditionNames: []string{PreconditionGuildOnly},
		ComponentParse: customid.Options{
			AllowOthers: true,
			ExtraFields: map[string]customid.Kind{
				fieldUp:   customid.KindNumber,
				fieldDown: customid.KindNumber,
			},
		},
	}}
}

// Definition implements command.Definer.
func (c *Vote) Definition() command.Definition {
	return command.Definition{
		Command: &discordgo.ApplicationCommand{
			Name:        c.Name(),
			Description: "Ask the server a yes or no question",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "question",
					Description: "The question to vote on",
					Required:    true,
					MaxLength:   200,
				},
			},
		},
	}
}

// ChatInputRun implements command.ChatInputRunner.
func (c *Vote) ChatInputRun(_ context.Context, req *command.Request) (*reply.Response, error) {
	question, ok := req.Options.String("question")
	if !ok || strings.TrimSpace(question) == "" {
		return nil, command.Fail("Please ask a question.")
	}
	return reply.Message(&reply.Data{
		Content:    question,
		Components: c.buttons(req.InvokerID(), 0, 0, false),
	}), nil
}

// ComponentRun implements command.ComponentRunner.
func (c *Vote) ComponentRun(_ context.Context, req *command.Request, data *customid.Parsed) (*reply.Response, error) {
	up, _ := data.Number(fieldUp)
	down, _ := data.Number(fieldDown)

	question := ""
	if req.Interaction.Message != nil {
		question = req.Interaction.Message.Content
	}

	switch data.Action {
	case VoteUp:
		up++
	case VoteDown:
		down++
	case VoteClose:
		if req.InvokerID() != data.ID {
			return nil, command.Fail("Only the author of this poll can close it.")
		}
		return reply.Update(&reply.Data{
			Content:    fmt.Sprintf("%s\n\nFinal result: %d up, %d down", question, int(up), int(down)),
			Components: c.buttons(data.ID, int(up), int(down), true),
		}), nil
	default:
		return nil, command.Fail("Unknown vote action.")
	}

	return reply.Update(&reply.Data{
		Content:    question,
		Components: c.buttons(data.ID, int(up), int(down), false),
	}), nil
}

func (c *Vote) buttons(owner string, up, down int, closed bool) []discordgo.MessageComponent {
	token := func(action string) string {
		return customid.MustEncode(customid.Payload{
			Command: c.Name(),
			Action:  action,
			ID:      owner,
			Extra:   map[string]any{fieldUp: up, fieldDown: down},
		})
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    fmt.Sprintf("Up (%d)", up),
				Style:    discordgo.SuccessButton,
				CustomID: token(VoteUp),
				Disabled: closed,
			},
			discordgo.Button{
				Label:    fmt.Sprintf("Down (%d)", down),
				Style:    discordgo.DangerButton,
				CustomID: token(VoteDown),
				Disabled: closed,
			},
			discordgo.Button{
				Label:    "Close",
				Style:    discordgo.SecondaryButton,
				CustomID: token(VoteClose),
				Disabled: closed,
			},
		}},
	}
}
