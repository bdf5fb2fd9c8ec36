package command

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"
)

// Precondition is a named, reusable check attached to commands by name.
type Precondition interface {
	Name() string
}

// ChatInputChecker checks slash command interactions.
type ChatInputChecker interface {
	CheckChatInput(ctx context.Context, req *Request) error
}

// ContextMenuChecker checks user and message context menu interactions.
type ContextMenuChecker interface {
	CheckContextMenu(ctx context.Context, req *Request) error
}

// CheckFunc is a single precondition check. A non-nil error fails the check
// and its message is shown to the user.
type CheckFunc func(ctx context.Context, req *Request) error

// FuncPrecondition builds a Precondition from functions. Nil functions
// leave the corresponding capability unimplemented.
type FuncPrecondition struct {
	PreconditionName string
	ChatInput        CheckFunc
	ContextMenu      CheckFunc
}

// Name implements Precondition.
func (p *FuncPrecondition) Name() string { return p.PreconditionName }

// CheckChatInput implements ChatInputChecker.
func (p *FuncPrecondition) CheckChatInput(ctx context.Context, req *Request) error {
	if p.ChatInput == nil {
		return nil
	}
	return p.ChatInput(ctx, req)
}

// CheckContextMenu implements ContextMenuChecker.
func (p *FuncPrecondition) CheckContextMenu(ctx context.Context, req *Request) error {
	if p.ContextMenu == nil {
		return nil
	}
	return p.ContextMenu(ctx, req)
}

// Failure is a user-facing precondition or handler failure.
type Failure struct {
	Message string
}

func (f *Failure) Error() string { return f.Message }

// Fail returns a Failure carrying message.
func Fail(message string) error {
	return &Failure{Message: message}
}

// IsFailure reports whether err is a user-facing Failure.
func IsFailure(err error) bool {
	var f *Failure
	return errors.As(err, &f)
}

// RunPreconditions evaluates names in order against req and returns the
// first failure. Names missing from the registry are skipped, and a
// precondition lacking the check for the interaction kind passes.
func (r *Registry) RunPreconditions(ctx context.Context, names []string, req *Request) error {
	chatInput := IsChatInput(req.Interaction)

	for _, name := range names {
		p, ok := r.Precondition(name)
		if !ok {
			continue
		}

		var err error
		if chatInput {
			if c, ok := p.(ChatInputChecker); ok {
				err = c.CheckChatInput(ctx, req)
			}
		} else {
			if c, ok := p.(ContextMenuChecker); ok {
				err = c.CheckContextMenu(ctx, req)
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// IsChatInput reports whether i is a slash command. An application command
// without a command type is a slash command.
func IsChatInput(i *discordgo.Interaction) bool {
	if i == nil || i.Type != discordgo.InteractionApplicationCommand {
		return false
	}
	data, ok := i.Data.(discordgo.ApplicationCommandInteractionData)
	if !ok {
		return false
	}
	return data.CommandType == discordgo.ChatApplicationCommand || data.CommandType == 0
}
