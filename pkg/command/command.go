// Package command defines command and precondition handles, the immutable
// registries holding them, and the precondition chain.
//
// A handle always has a name and a list of precondition names. Everything
// else is an optional capability expressed as a separate interface; the
// dispatcher resolves them once per interaction with CapabilitiesOf.
package command

import (
	"context"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/morezero/interactions-gateway/pkg/customid"
	"github.com/morezero/interactions-gateway/pkg/reply"
)

// Handle is a registered command.
type Handle interface {
	Name() string
	Preconditions() []string
}

// Request is what every hook receives for one interaction.
type Request struct {
	ID          string
	Interaction *discordgo.Interaction
	// Options is empty for components and modal submissions.
	Options *Options
	API     FollowUpAPI
	Logger  *slog.Logger
}

// InvokerID returns the id of the user who triggered the interaction.
func (r *Request) InvokerID() string {
	return InvokerID(r.Interaction)
}

// InvokerID returns the invoking user of i: the guild member's user when
// present, otherwise the DM user.
func InvokerID(i *discordgo.Interaction) string {
	if i == nil {
		return ""
	}
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// FollowUpAPI sends, edits, fetches and deletes messages after the initial
// response has been returned.
type FollowUpAPI interface {
	FollowUp(ctx context.Context, i *discordgo.Interaction, data *discordgo.WebhookParams) (*discordgo.Message, error)
	EditReply(ctx context.Context, i *discordgo.Interaction, messageID string, data *discordgo.WebhookEdit) (*discordgo.Message, error)
	GetOriginalReply(ctx context.Context, i *discordgo.Interaction) (*discordgo.Message, error)
	DeleteReply(ctx context.Context, i *discordgo.Interaction, messageID string) error
}

// PreDispatcher runs before preconditions for application commands.
type PreDispatcher interface {
	PreDispatch(ctx context.Context, req *Request) error
}

// ChatInputRunner handles slash commands.
type ChatInputRunner interface {
	ChatInputRun(ctx context.Context, req *Request) (*reply.Response, error)
}

// ContextMenuRunner handles user and message context menu commands.
type ContextMenuRunner interface {
	ContextMenuRun(ctx context.Context, req *Request) (*reply.Response, error)
}

// ComponentRunner handles message components whose custom id names this command.
type ComponentRunner interface {
	ComponentRun(ctx context.Context, req *Request, data *customid.Parsed) (*reply.Response, error)
}

// AutocompleteRunner answers autocomplete interactions.
type AutocompleteRunner interface {
	AutocompleteRun(ctx context.Context, req *Request) (*reply.Response, error)
}

// ModalRunner handles modal submissions whose custom id names this command.
type ModalRunner interface {
	ModalRun(ctx context.Context, req *Request) (*reply.Response, error)
}

// ComponentParser declares how component custom ids are validated.
type ComponentParser interface {
	ComponentOptions() customid.Options
}

// Definition is the application command registered with the platform.
// Commands without guild ids are registered globally.
type Definition struct {
	Command  *discordgo.ApplicationCommand
	GuildIDs []string
}

// Definer exposes the command definition used by deploy.
type Definer interface {
	Definition() Definition
}

// Capabilities lists the optional hooks a handle implements. A nil field
// means the capability is absent.
type Capabilities struct {
	PreDispatch  PreDispatcher
	ChatInput    ChatInputRunner
	ContextMenu  ContextMenuRunner
	Component    ComponentRunner
	Autocomplete AutocompleteRunner
	Modal        ModalRunner
	Parser       ComponentParser
	Definer      Definer
}

// CapabilitiesOf resolves the optional hooks of h.
func CapabilitiesOf(h Handle) Capabilities {
	var c Capabilities
	c.PreDispatch, _ = h.(PreDispatcher)
	c.ChatInput, _ = h.(ChatInputRunner)
	c.ContextMenu, _ = h.(ContextMenuRunner)
	c.Component, _ = h.(ComponentRunner)
	c.Autocomplete, _ = h.(AutocompleteRunner)
	c.Modal, _ = h.(ModalRunner)
	c.Parser, _ = h.(ComponentParser)
	c.Definer, _ = h.(Definer)
	return c
}

// ComponentOptions returns the custom id options of c, or the defaults
// (owner only, no extra fields).
func (c Capabilities) ComponentOptions() customid.Options {
	if c.Parser == nil {
		return customid.Options{}
	}
	return c.Parser.ComponentOptions()
}

// Base carries the fields every command has. Embed it to satisfy Handle
// and ComponentParser.
type Base struct {
	CommandName       string
	PreconditionNames []string
	ComponentParse    customid.Options
}

// Name implements Handle.
func (b Base) Name() string { return b.CommandName }

// Preconditions implements Handle.
func (b Base) Preconditions() []string { return b.PreconditionNames }

// ComponentOptions implements ComponentParser.
func (b Base) ComponentOptions() customid.Options { return b.ComponentParse }
