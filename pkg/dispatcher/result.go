package dispatcher

import (
	"net/http"

	"github.com/morezero/interactions-gateway/pkg/events"
	"github.com/morezero/interactions-gateway/pkg/reply"
)

// Interaction kinds used in logs, metrics and events.
const (
	KindLabelPing         = "ping"
	KindLabelCommand      = "command"
	KindLabelContextMenu  = "context_menu"
	KindLabelAutocomplete = "autocomplete"
	KindLabelComponent    = "component"
	KindLabelModal        = "modal"
	KindLabelUnknown      = "unknown"
)

// Result is the terminal state of one dispatched interaction. Exactly one of
// Response and Text is meaningful: Response is the callback body for a 200,
// Text the plain body of a rejection.
type Result struct {
	Status   int
	Response *reply.Response
	Text     string

	InteractionKind string
	Command         string
	CustomID        string
	Outcome         string
	Err             *Error
}

func (r *Result) respond(resp *reply.Response) *Result {
	r.Status = http.StatusOK
	r.Response = resp
	r.Outcome = events.OutcomeHandled
	return r
}

func (r *Result) reject(status int, text string) *Result {
	r.Status = status
	r.Text = text
	r.Outcome = events.OutcomeRejected
	return r
}

func (r *Result) ignore() *Result {
	r.Status = http.StatusNotFound
	r.Text = MessageUnknownCommand
	r.Outcome = events.OutcomeIgnored
	return r
}
