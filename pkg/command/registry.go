package command

import (
	"fmt"
	"sort"
)

const logPrefix = "command:registry"

// Registry maps names to commands and preconditions. It is built once at
// startup and only read afterwards, so it is safe for concurrent use.
type Registry struct {
	commands      map[string]Handle
	preconditions map[string]Precondition
}

// NewRegistry builds a registry from an explicit list of commands and
// preconditions. Empty or duplicate names are rejected.
func NewRegistry(commands []Handle, preconditions []Precondition) (*Registry, error) {
	r := &Registry{
		commands:      make(map[string]Handle, len(commands)),
		preconditions: make(map[string]Precondition, len(preconditions)),
	}

	for _, c := range commands {
		name := c.Name()
		if name == "" {
			return nil, fmt.Errorf("%s - command with empty name", logPrefix)
		}
		if _, dup := r.commands[name]; dup {
			return nil, fmt.Errorf("%s - duplicate command %q", logPrefix, name)
		}
		r.commands[name] = c
	}

	for _, p := range preconditions {
		name := p.Name()
		if name == "" {
			return nil, fmt.Errorf("%s - precondition with empty name", logPrefix)
		}
		if _, dup := r.preconditions[name]; dup {
			return nil, fmt.Errorf("%s - duplicate precondition %q", logPrefix, name)
		}
		r.preconditions[name] = p
	}

	return r, nil
}

// Command returns the command registered under name.
func (r *Registry) Command(name string) (Handle, bool) {
	c, ok := r.commands[name]
	return c, ok
}

// Precondition returns the precondition registered under name.
func (r *Registry) Precondition(name string) (Precondition, bool) {
	p, ok := r.preconditions[name]
	return p, ok
}

// Commands returns all commands sorted by name.
func (r *Registry) Commands() []Handle {
	list := make([]Handle, 0, len(r.commands))
	for _, c := range r.commands {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name() < list[j].Name()
	})
	return list
}

// Len returns the number of registered commands and preconditions.
func (r *Registry) Len() (commands, preconditions int) {
	return len(r.commands), len(r.preconditions)
}
