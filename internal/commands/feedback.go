package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/morezero/interactions-gateway/pkg/command"
	"github.com/morezero/interactions-gateway/pkg/customid"
	"github.com/morezero/interactions-gateway/pkg/reply"
)

// feedbackInputID is the custom id of the modal's text input.
const feedbackInputID = "feedback-text"

// Feedback opens a modal and answers the submission with a receipt file.
type Feedback struct {
	command.Base
	now func() time.Time
}

// NewFeedback returns the feedback command.
func NewFeedback() *Feedback {
	return &Feedback{
		Base: command.Base{CommandName: "feedback"},
		now:  time.Now,
	}
}

// Definition implements command.Definer.
func (c *Feedback) Definition() command.Definition {
	return command.Definition{
		Command: &discordgo.ApplicationCommand{
			Name:        c.Name(),
			Description: "Send feedback to the maintainers",
		},
	}
}

// ChatInputRun implements command.ChatInputRunner.
func (c *Feedback) ChatInputRun(_ context.Context, req *command.Request) (*reply.Response, error) {
	id := customid.MustEncode(customid.Payload{
		Command: c.Name(),
		Action:  "submit",
		ID:      req.InvokerID(),
	})
	return reply.Modal(id, "Feedback",
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.TextInput{
				CustomID:    feedbackInputID,
				Label:       "What should we know?",
				Style:       discordgo.TextInputParagraph,
				Placeholder: "Bugs, ideas, anything",
				Required:    true,
				MaxLength:   1000,
			},
		}},
	), nil
}

// ModalRun implements command.ModalRunner.
func (c *Feedback) ModalRun(_ context.Context, req *command.Request) (*reply.Response, error) {
	data := req.Interaction.ModalSubmitData()
	text := strings.TrimSpace(textInputValue(data.Components, feedbackInputID))
	if text == "" {
		return nil, command.Fail("Feedback cannot be empty.")
	}

	receipt := fmt.Sprintf("from: %s\nat: %s\n\n%s\n",
		req.InvokerID(), c.now().UTC().Format(time.RFC3339), text)

	return reply.Message(&reply.Data{
		Content: "Thanks for the feedback! A copy is attached.",
		Flags:   discordgo.MessageFlagsEphemeral,
		Files:   []*reply.Attachment{reply.FromBytes([]byte(receipt), "feedback.txt")},
	}), nil
}

// textInputValue finds the value of the text input with customID among
// modal components.
func textInputValue(components []discordgo.MessageComponent, customID string) string {
	for _, comp := range components {
		switch v := comp.(type) {
		case *discordgo.ActionsRow:
			if s := textInputValue(v.Components, customID); s != "" {
				return s
			}
		case discordgo.ActionsRow:
			if s := textInputValue(v.Components, customID); s != "" {
				return s
			}
		case *discordgo.TextInput:
			if v.CustomID == customID {
				return v.Value
			}
		case discordgo.TextInput:
			if v.CustomID == customID {
				return v.Value
			}
		}
	}
	return ""
}
