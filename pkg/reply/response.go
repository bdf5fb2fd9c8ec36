// Package reply builds interaction responses and encodes them for the wire.
package reply

import (
	"github.com/bwmarrin/discordgo"
)

// Response is the body of an interaction callback.
type Response struct {
	Type discordgo.InteractionResponseType `json:"type"`
	Data *Data                             `json:"data,omitempty"`
}

// Data is the callback data of a Response. Files are never serialized; the
// encoder turns them into multipart parts and Attachments references.
type Data struct {
	TTS             bool                                         `json:"tts,omitempty"`
	Content         string                                       `json:"content,omitempty"`
	Embeds          []*discordgo.MessageEmbed                    `json:"embeds,omitempty"`
	Components      []discordgo.MessageComponent                 `json:"components,omitempty"`
	AllowedMentions *AllowedMentions                             `json:"allowed_mentions,omitempty"`
	Flags           discordgo.MessageFlags                       `json:"flags,omitempty"`
	Attachments     []AttachmentRef                              `json:"attachments,omitempty"`
	Choices         *[]*discordgo.ApplicationCommandOptionChoice `json:"choices,omitempty"`
	CustomID        string                                       `json:"custom_id,omitempty"`
	Title           string                                       `json:"title,omitempty"`

	Files []*Attachment `json:"-"`
}

// AllowedMentions controls which mentions in the content notify anyone.
type AllowedMentions struct {
	Parse       []string `json:"parse"`
	Roles       []string `json:"roles,omitempty"`
	Users       []string `json:"users,omitempty"`
	RepliedUser bool     `json:"replied_user,omitempty"`
}

// AttachmentRef points a message attachment at the multipart part holding it.
type AttachmentRef struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
}

// NoMentions is the default mention policy: nothing pings.
func NoMentions() *AllowedMentions {
	return &AllowedMentions{Parse: []string{}}
}

// Pong acknowledges a ping.
func Pong() *Response {
	return &Response{Type: discordgo.InteractionResponsePong}
}

// Message replies with a new message.
func Message(data *Data) *Response {
	return &Response{Type: discordgo.InteractionResponseChannelMessageWithSource, Data: data}
}

// Text replies with a plain public message.
func Text(content string) *Response {
	return Message(&Data{Content: content})
}

// Ephemeral replies with a message only the invoking user can see.
func Ephemeral(content string) *Response {
	return Message(&Data{Content: content, Flags: discordgo.MessageFlagsEphemeral})
}

// Update edits the message a component is attached to.
func Update(data *Data) *Response {
	return &Response{Type: discordgo.InteractionResponseUpdateMessage, Data: data}
}

// Defer acknowledges the interaction; the reply is sent later through the
// REST API.
func Defer(ephemeral bool) *Response {
	resp := &Response{Type: discordgo.InteractionResponseDeferredChannelMessageWithSource}
	if ephemeral {
		resp.Data = &Data{Flags: discordgo.MessageFlagsEphemeral}
	}
	return resp
}

// DeferUpdate acknowledges a component interaction without changing the message yet.
func DeferUpdate() *Response {
	return &Response{Type: discordgo.InteractionResponseDeferredMessageUpdate}
}

// Autocomplete answers an autocomplete interaction.
func Autocomplete(choices ...*discordgo.ApplicationCommandOptionChoice) *Response {
	if choices == nil {
		choices = []*discordgo.ApplicationCommandOptionChoice{}
	}
	return &Response{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &Data{Choices: &choices},
	}
}

// Modal opens a modal dialog.
func Modal(customID, title string, components ...discordgo.MessageComponent) *Response {
	return &Response{
		Type: discordgo.InteractionResponseModal,
		Data: &Data{CustomID: customID, Title: title, Components: components},
	}
}

// carriesMessage reports whether the response creates or edits a message,
// which is when the mention policy applies.
func (r *Response) carriesMessage() bool {
	return r.Type == discordgo.InteractionResponseChannelMessageWithSource ||
		r.Type == discordgo.InteractionResponseUpdateMessage
}
