package events

import (
	"fmt"
	"log/slog"

	comms "github.com/nats-io/nats.go"

	"github.com/morezero/interactions-gateway/pkg/commsutil"
)

const subscriberLogPrefix = "events:subscriber"

// SubscribeDispatched subscribes to the global dispatch event subject and
// calls fn with each decoded event. Messages that do not decode are logged
// and skipped.
func SubscribeDispatched(nc *comms.Conn, subject string, logger *slog.Logger, fn func(*InteractionDispatchedEvent)) (*comms.Subscription, error) {
	if subject == "" {
		subject = commsutil.SubjectInteractionDispatched
	}
	if logger == nil {
		logger = slog.Default()
	}

	// Every event is also published on the global subject, so the
	// per-command copies are not followed.
	sub, err := nc.Subscribe(subject, func(msg *comms.Msg) {
		var event InteractionDispatchedEvent
		if err := commsutil.DecodePayload(msg.Data, &event); err != nil {
			logger.Warn(fmt.Sprintf("%s - skipping message on %s: %v", subscriberLogPrefix, msg.Subject, err))
			return
		}
		fn(&event)
	})
	if err != nil {
		return nil, fmt.Errorf("%s - subscribe %s: %w", subscriberLogPrefix, subject, err)
	}
	if err := nc.Flush(); err != nil {
		_ = sub.Unsubscribe()
		return nil, fmt.Errorf("%s - flush subscription %s: %w", subscriberLogPrefix, subject, err)
	}
	return sub, nil
}
