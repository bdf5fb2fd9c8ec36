// Package events defines the interaction dispatch event and the publishers
// that emit it.
package events

// Outcomes of a dispatched interaction.
const (
	OutcomeHandled  = "handled"
	OutcomeFailed   = "failed"
	OutcomeRejected = "rejected"
	OutcomeIgnored  = "ignored"
)

// InteractionDispatchedEvent is emitted after every interaction that passed
// signature verification has been dispatched.
type InteractionDispatchedEvent struct {
	RequestID     string `json:"requestId"`
	InteractionID string `json:"interactionId,omitempty"`
	Kind          string `json:"kind"`
	Command       string `json:"command,omitempty"`
	CustomID      string `json:"customId,omitempty"`
	GuildID       string `json:"guildId,omitempty"`
	UserID        string `json:"userId,omitempty"`
	Outcome       string `json:"outcome"`
	ErrorKind     string `json:"errorKind,omitempty"`
	DurationMs    int64  `json:"durationMs"`
	Timestamp     string `json:"timestamp"`
}
