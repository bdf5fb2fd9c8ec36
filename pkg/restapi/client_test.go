package restapi

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/morezero/interactions-gateway/pkg/command"
)

const clientTestPrefix = "restapi:client_test"

// mockSession records the REST calls made by the client.
type mockSession struct {
	calls       []string
	lastMsgID   string
	lastWait    bool
	overwrites  map[string][]*discordgo.ApplicationCommand
	optionCount int
	err         error
}

func (m *mockSession) record(call string, options []discordgo.RequestOption) {
	m.calls = append(m.calls, call)
	m.optionCount = len(options)
}

func (m *mockSession) FollowupMessageCreate(_ *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.record("followup-create", options)
	m.lastWait = wait
	if m.err != nil {
		return nil, m.err
	}
	return &discordgo.Message{ID: "m-1", Content: data.Content}, nil
}

func (m *mockSession) FollowupMessageEdit(_ *discordgo.Interaction, messageID string, data *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.record("followup-edit", options)
	m.lastMsgID = messageID
	if m.err != nil {
		return nil, m.err
	}
	return &discordgo.Message{ID: messageID}, nil
}

func (m *mockSession) FollowupMessageDelete(_ *discordgo.Interaction, messageID string, options ...discordgo.RequestOption) error {
	m.record("followup-delete", options)
	m.lastMsgID = messageID
	return m.err
}

func (m *mockSession) InteractionResponse(_ *discordgo.Interaction, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.record("response-get", options)
	if m.err != nil {
		return nil, m.err
	}
	return &discordgo.Message{ID: "original"}, nil
}

func (m *mockSession) InteractionResponseEdit(_ *discordgo.Interaction, _ *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.record("response-edit", options)
	if m.err != nil {
		return nil, m.err
	}
	return &discordgo.Message{ID: "original"}, nil
}

func (m *mockSession) InteractionResponseDelete(_ *discordgo.Interaction, options ...discordgo.RequestOption) error {
	m.record("response-delete", options)
	return m.err
}

func (m *mockSession) ApplicationCommandBulkOverwrite(_, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	m.record("overwrite:"+guildID, options)
	if m.err != nil {
		return nil, m.err
	}
	if m.overwrites == nil {
		m.overwrites = map[string][]*discordgo.ApplicationCommand{}
	}
	m.overwrites[guildID] = commands
	return commands, nil
}

var testInteraction = &discordgo.Interaction{ID: "i-1", AppID: "app", Token: "tok"}

func TestClient_FollowUp(t *testing.T) {
	mock := &mockSession{}
	c := newClient(mock, nil)

	msg, err := c.FollowUp(context.Background(), testInteraction, &discordgo.WebhookParams{Content: "later"})
	if err != nil {
		t.Fatalf("%s - FollowUp: %v", clientTestPrefix, err)
	}
	if msg.Content != "later" || !mock.lastWait {
		t.Errorf("%s - msg = %+v wait = %v", clientTestPrefix, msg, mock.lastWait)
	}
	if mock.optionCount != 1 {
		t.Errorf("%s - expected the request context to be passed, got %d options", clientTestPrefix, mock.optionCount)
	}
}

func TestClient_EditReply(t *testing.T) {
	tests := []struct {
		name      string
		messageID string
		wantCall  string
	}{
		{"default is original", "", "response-edit"},
		{"explicit original", OriginalMessage, "response-edit"},
		{"follow-up message", "m-9", "followup-edit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockSession{}
			c := newClient(mock, nil)
			content := "edited"
			if _, err := c.EditReply(context.Background(), testInteraction, tt.messageID, &discordgo.WebhookEdit{Content: &content}); err != nil {
				t.Fatalf("%s - EditReply: %v", clientTestPrefix, err)
			}
			if len(mock.calls) != 1 || mock.calls[0] != tt.wantCall {
				t.Errorf("%s - calls = %v, want %s", clientTestPrefix, mock.calls, tt.wantCall)
			}
		})
	}
}

func TestClient_DeleteReply(t *testing.T) {
	mock := &mockSession{}
	c := newClient(mock, nil)

	if err := c.DeleteReply(context.Background(), testInteraction, ""); err != nil {
		t.Fatalf("%s - DeleteReply: %v", clientTestPrefix, err)
	}
	if err := c.DeleteReply(context.Background(), testInteraction, "m-2"); err != nil {
		t.Fatalf("%s - DeleteReply: %v", clientTestPrefix, err)
	}
	if len(mock.calls) != 2 || mock.calls[0] != "response-delete" || mock.calls[1] != "followup-delete" {
		t.Errorf("%s - calls = %v", clientTestPrefix, mock.calls)
	}
	if mock.lastMsgID != "m-2" {
		t.Errorf("%s - lastMsgID = %q", clientTestPrefix, mock.lastMsgID)
	}
}

func TestClient_GetOriginalReply(t *testing.T) {
	c := newClient(&mockSession{}, nil)
	msg, err := c.GetOriginalReply(context.Background(), testInteraction)
	if err != nil || msg.ID != "original" {
		t.Errorf("%s - GetOriginalReply = %v, %v", clientTestPrefix, msg, err)
	}
}

func TestClient_ErrorsAreWrapped(t *testing.T) {
	cause := errors.New("429 too many requests")
	c := newClient(&mockSession{err: cause}, nil)
	ctx := context.Background()

	if _, err := c.FollowUp(ctx, testInteraction, &discordgo.WebhookParams{}); !errors.Is(err, cause) {
		t.Errorf("%s - FollowUp err = %v", clientTestPrefix, err)
	}
	if _, err := c.EditReply(ctx, testInteraction, "", &discordgo.WebhookEdit{}); !errors.Is(err, cause) {
		t.Errorf("%s - EditReply err = %v", clientTestPrefix, err)
	}
	if _, err := c.GetOriginalReply(ctx, testInteraction); !errors.Is(err, cause) {
		t.Errorf("%s - GetOriginalReply err = %v", clientTestPrefix, err)
	}
	if err := c.DeleteReply(ctx, testInteraction, "m"); !errors.Is(err, cause) {
		t.Errorf("%s - DeleteReply err = %v", clientTestPrefix, err)
	}
}

var _ command.FollowUpAPI = (*Client)(nil)
