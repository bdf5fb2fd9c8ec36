// Package commands holds the commands and preconditions served by the
// gateway binary. Everything is registered explicitly in Handles and
// Preconditions; there is no discovery.
package commands

import (
	"github.com/morezero/interactions-gateway/pkg/command"
)

const logPrefix = "commands:commands"

// Handles returns every command served by the gateway.
func Handles() []command.Handle {
	return []command.Handle{
		NewPing(),
		NewEcho(),
		NewVote(),
		NewFeedback(),
		NewInspectUser(),
		NewInspectMessage(),
	}
}

// Preconditions returns every precondition commands may refer to.
func Preconditions() []command.Precondition {
	return []command.Precondition{
		GuildOnly(),
	}
}

// NewRegistry builds the registry served by the gateway.
func NewRegistry() (*command.Registry, error) {
	return command.NewRegistry(Handles(), Preconditions())
}
