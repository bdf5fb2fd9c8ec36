package restapi

import (
	"context"
	"fmt"
	"sort"

	"github.com/bwmarrin/discordgo"

	"github.com/morezero/interactions-gateway/pkg/command"
)

// DeployResult counts the commands registered per scope. The empty key is
// the global scope.
type DeployResult map[string]int

// Plan groups the definitions of handles by scope. Global commands are not
// usable in DMs. Handles without a definition are skipped. extraGuilds
// receives every guild-scoped command in addition to its own guilds when
// non-empty, which is how commands are tested on a development guild.
func Plan(handles []command.Handle, extraGuilds []string) map[string][]*discordgo.ApplicationCommand {
	plan := map[string][]*discordgo.ApplicationCommand{"": {}}
	noDM := false

	for _, h := range handles {
		definer, ok := h.(command.Definer)
		if !ok {
			continue
		}
		def := definer.Definition()
		if def.Command == nil {
			continue
		}
		cmd := *def.Command
		if cmd.Name == "" {
			cmd.Name = h.Name()
		}

		if len(def.GuildIDs) == 0 {
			if cmd.DMPermission == nil {
				cmd.DMPermission = &noDM
			}
			plan[""] = append(plan[""], &cmd)
			continue
		}

		seen := map[string]bool{}
		for _, guildID := range append(append([]string{}, def.GuildIDs...), extraGuilds...) {
			if guildID == "" || seen[guildID] {
				continue
			}
			seen[guildID] = true
			plan[guildID] = append(plan[guildID], &cmd)
		}
	}
	return plan
}

// Deploy overwrites the global and per-guild command sets of appID with the
// definitions of handles.
func (c *Client) Deploy(ctx context.Context, appID string, handles []command.Handle, extraGuilds []string) (DeployResult, error) {
	plan := Plan(handles, extraGuilds)

	scopes := make([]string, 0, len(plan))
	for scope := range plan {
		scopes = append(scopes, scope)
	}
	sort.Strings(scopes)

	result := DeployResult{}
	for _, scope := range scopes {
		cmds := plan[scope]
		registered, err := c.session.ApplicationCommandBulkOverwrite(appID, scope, cmds, discordgo.WithContext(ctx))
		if err != nil {
			return result, fmt.Errorf("%s - failed to deploy %d commands to %s: %w", logPrefix, len(cmds), scopeName(scope), err)
		}
		result[scope] = len(registered)
		c.logger.Info(fmt.Sprintf("%s - Deployed %d commands to %s", logPrefix, len(registered), scopeName(scope)))
	}
	return result, nil
}

func scopeName(scope string) string {
	if scope == "" {
		return "global scope"
	}
	return "guild " + scope
}
