package server

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/morezero/interactions-gateway/pkg/command"
)

// homePageTemplate is the HTML for the gateway status page.
const homePageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Interactions Gateway</title>
  <style>
    * { box-sizing: border-box; }
    body { background: #fff; color: #000; font-family: system-ui, sans-serif; margin: 0; padding: 2rem; line-height: 1.5; }
    h1, h2 { color: #5865f2; }
    .status-healthy { color: #5865f2; font-weight: bold; }
    .status-degraded { color: #cc0000; font-weight: bold; }
    table { border-collapse: collapse; width: 100%; max-width: 900px; margin-top: 0.5rem; }
    th, td { text-align: left; padding: 0.5rem 0.75rem; border: 1px solid #ccc; }
    th { background: #f0f2fe; color: #5865f2; }
    .meta { color: #333; font-size: 0.9rem; }
    section { margin-bottom: 2rem; }
  </style>
</head>
<body>
  <h1>Interactions Gateway</h1>
  <p class="meta">Endpoint <code>POST {{.Route}}</code></p>

  <section>
    <h2>Health</h2>
    <p>Status: <span class="status-{{.Health.Status}}">{{.Health.Status}}</span></p>
    <p>COMMS: {{.Health.Comms}}</p>
    <p>Uptime: {{.Health.Uptime}}</p>
  </section>

  <section>
    <h2>Commands</h2>
    {{if not .Commands}}
    <p>No commands registered.</p>
    {{else}}
    <table>
      <thead>
        <tr><th>Name</th><th>Handles</th><th>Preconditions</th><th>Scope</th></tr>
      </thead>
      <tbody>
        {{range .Commands}}
        <tr>
          <td>{{.Name}}</td>
          <td>{{.Handles}}</td>
          <td>{{if .Preconditions}}{{.Preconditions}}{{else}}none{{end}}</td>
          <td>{{.Scope}}</td>
        </tr>
        {{end}}
      </tbody>
    </table>
    {{end}}
  </section>
</body>
</html>
`

type commandRow struct {
	Name          string
	Handles       string
	Preconditions string
	Scope         string
}

type homeData struct {
	Route    string
	Health   *healthOutput
	Commands []commandRow
}

// describeCommand summarizes h for the status page. Precondition names the
// registry does not know are never evaluated, so they are flagged.
func describeCommand(reg *command.Registry, h command.Handle) commandRow {
	caps := command.CapabilitiesOf(h)
	var handles []string
	if caps.ChatInput != nil {
		handles = append(handles, "chat input")
	}
	if caps.ContextMenu != nil {
		handles = append(handles, "context menu")
	}
	if caps.Autocomplete != nil {
		handles = append(handles, "autocomplete")
	}
	if caps.Component != nil {
		handles = append(handles, "components")
	}
	if caps.Modal != nil {
		handles = append(handles, "modals")
	}

	scope := "not deployed"
	if caps.Definer != nil {
		if guilds := caps.Definer.Definition().GuildIDs; len(guilds) > 0 {
			scope = "guilds " + strings.Join(guilds, ", ")
		} else {
			scope = "global"
		}
	}

	return commandRow{
		Name:          h.Name(),
		Handles:       strings.Join(handles, ", "),
		Preconditions: strings.Join(preconditionLabels(reg, h.Preconditions()), ", "),
		Scope:         scope,
	}
}

func preconditionLabels(reg *command.Registry, names []string) []string {
	labels := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := reg.Precondition(name); !ok {
			name += " (not registered)"
		}
		labels = append(labels, name)
	}
	return labels
}

// handleHome returns an HTTP handler for the status page.
func (s *Server) handleHome() http.HandlerFunc {
	tmpl := template.Must(template.New("home").Parse(homePageTemplate))
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}

		data := homeData{Route: s.cfg.Route, Health: s.health()}
		if s.registry != nil {
			for _, h := range s.registry.Commands() {
				data.Commands = append(data.Commands, describeCommand(s.registry, h))
			}
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.Execute(w, data); err != nil {
			s.logger.Error(fmt.Sprintf("%s - home template execute: %v", logPrefix, err))
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	}
}
