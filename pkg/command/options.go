package command

import (
	"strconv"

	"github.com/bwmarrin/discordgo"
)

// Options resolves the options of a slash command or autocomplete
// interaction by name. Subcommand and subcommand group layers are unwrapped.
type Options struct {
	subcommandGroup string
	subcommand      string
	options         []*discordgo.ApplicationCommandInteractionDataOption
}

// NewOptions flattens opts.
func NewOptions(opts []*discordgo.ApplicationCommandInteractionDataOption) *Options {
	o := &Options{options: opts}
	for len(o.options) == 1 {
		first := o.options[0]
		switch first.Type {
		case discordgo.ApplicationCommandOptionSubCommandGroup:
			o.subcommandGroup = first.Name
		case discordgo.ApplicationCommandOptionSubCommand:
			o.subcommand = first.Name
		default:
			return o
		}
		o.options = first.Options
	}
	return o
}

// OptionsOf returns the resolved options of an application command or
// autocomplete interaction, or empty options for anything else.
func OptionsOf(i *discordgo.Interaction) *Options {
	if i == nil {
		return NewOptions(nil)
	}
	data, ok := i.Data.(discordgo.ApplicationCommandInteractionData)
	if !ok {
		return NewOptions(nil)
	}
	return NewOptions(data.Options)
}

// Subcommand returns the invoked subcommand name, if any.
func (o *Options) Subcommand() string { return o.subcommand }

// SubcommandGroup returns the invoked subcommand group name, if any.
func (o *Options) SubcommandGroup() string { return o.subcommandGroup }

// Get returns the raw option named name.
func (o *Options) Get(name string) (*discordgo.ApplicationCommandInteractionDataOption, bool) {
	for _, opt := range o.options {
		if opt.Name == name {
			return opt, true
		}
	}
	return nil, false
}

// Focused returns the option the user is typing in during autocomplete.
func (o *Options) Focused() (*discordgo.ApplicationCommandInteractionDataOption, bool) {
	for _, opt := range o.options {
		if opt.Focused {
			return opt, true
		}
	}
	return nil, false
}

// String returns a string option. User, channel, role and mentionable
// options resolve to their snowflake.
func (o *Options) String(name string) (string, bool) {
	opt, ok := o.Get(name)
	if !ok {
		return "", false
	}
	s, ok := opt.Value.(string)
	return s, ok
}

// Integer returns an integer option. Autocomplete sends partially typed
// values as strings, which are parsed when possible.
func (o *Options) Integer(name string) (int64, bool) {
	opt, ok := o.Get(name)
	if !ok {
		return 0, false
	}
	switch v := opt.Value.(type) {
	case float64:
		return int64(v), true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	}
	return 0, false
}

// Number returns a number option.
func (o *Options) Number(name string) (float64, bool) {
	opt, ok := o.Get(name)
	if !ok {
		return 0, false
	}
	switch v := opt.Value.(type) {
	case float64:
		return v, true
	case string:
		n, err := strconv.ParseFloat(v, 64)
		return n, err == nil
	}
	return 0, false
}

// Boolean returns a boolean option.
func (o *Options) Boolean(name string) (bool, bool) {
	opt, ok := o.Get(name)
	if !ok {
		return false, false
	}
	b, ok := opt.Value.(bool)
	return b, ok
}
