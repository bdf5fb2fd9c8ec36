// Package restapi talks to the Discord REST API on behalf of command handlers:
// follow-up messages after the initial response, and command deployment.
package restapi

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

const logPrefix = "restapi:client"

// OriginalMessage addresses the initial interaction response.
const OriginalMessage = "@original"

// session is the subset of *discordgo.Session the client uses.
type session interface {
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
	FollowupMessageEdit(interaction *discordgo.Interaction, messageID string, data *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	FollowupMessageDelete(interaction *discordgo.Interaction, messageID string, options ...discordgo.RequestOption) error
	InteractionResponse(interaction *discordgo.Interaction, options ...discordgo.RequestOption) (*discordgo.Message, error)
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	InteractionResponseDelete(interaction *discordgo.Interaction, options ...discordgo.RequestOption) error
	ApplicationCommandBulkOverwrite(appID, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// Client implements command.FollowUpAPI over a discordgo session.
type Client struct {
	session session
	logger  *slog.Logger
}

// New creates a bot-authenticated client. Interaction webhooks do not need
// the token, so an empty token is accepted for serve-only deployments.
func New(token string, logger *slog.Logger) (*Client, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("%s - failed to create session: %w", logPrefix, err)
	}
	return newClient(s, logger), nil
}

func newClient(s session, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{session: s, logger: logger}
}

// FollowUp sends a new message after the initial response and waits for it
// to be created.
func (c *Client) FollowUp(ctx context.Context, i *discordgo.Interaction, data *discordgo.WebhookParams) (*discordgo.Message, error) {
	msg, err := c.session.FollowupMessageCreate(i, true, data, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("%s - follow-up for interaction %s: %w", logPrefix, i.ID, err)
	}
	return msg, nil
}

// EditReply edits the message with messageID, or the initial response when
// messageID is empty or OriginalMessage.
func (c *Client) EditReply(ctx context.Context, i *discordgo.Interaction, messageID string, data *discordgo.WebhookEdit) (*discordgo.Message, error) {
	var (
		msg *discordgo.Message
		err error
	)
	if messageID == "" || messageID == OriginalMessage {
		msg, err = c.session.InteractionResponseEdit(i, data, discordgo.WithContext(ctx))
	} else {
		msg, err = c.session.FollowupMessageEdit(i, messageID, data, discordgo.WithContext(ctx))
	}
	if err != nil {
		return nil, fmt.Errorf("%s - edit reply %s for interaction %s: %w", logPrefix, messageIDOrOriginal(messageID), i.ID, err)
	}
	return msg, nil
}

// GetOriginalReply fetches the initial response message.
func (c *Client) GetOriginalReply(ctx context.Context, i *discordgo.Interaction) (*discordgo.Message, error) {
	msg, err := c.session.InteractionResponse(i, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("%s - get original reply for interaction %s: %w", logPrefix, i.ID, err)
	}
	return msg, nil
}

// DeleteReply deletes the message with messageID, or the initial response
// when messageID is empty or OriginalMessage.
func (c *Client) DeleteReply(ctx context.Context, i *discordgo.Interaction, messageID string) error {
	var err error
	if messageID == "" || messageID == OriginalMessage {
		err = c.session.InteractionResponseDelete(i, discordgo.WithContext(ctx))
	} else {
		err = c.session.FollowupMessageDelete(i, messageID, discordgo.WithContext(ctx))
	}
	if err != nil {
		return fmt.Errorf("%s - delete reply %s for interaction %s: %w", logPrefix, messageIDOrOriginal(messageID), i.ID, err)
	}
	return nil
}

func messageIDOrOriginal(id string) string {
	if id == "" {
		return OriginalMessage
	}
	return id
}
