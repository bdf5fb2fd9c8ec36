package events

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

const publisherTestPrefix = "events:publisher_test"

func TestNoOpPublisher(t *testing.T) {
	var pub EventPublisher = NoOpPublisher{}
	err := pub.PublishDispatched(context.Background(), &InteractionDispatchedEvent{
		Kind:    "command",
		Command: "ping",
		Outcome: OutcomeHandled,
	})
	if err != nil {
		t.Errorf("%s - expected no error, got %v", publisherTestPrefix, err)
	}
}

func TestPublisherFunc(t *testing.T) {
	var captured *InteractionDispatchedEvent
	var pub EventPublisher = PublisherFunc(func(_ context.Context, event *InteractionDispatchedEvent) error {
		captured = event
		return nil
	})

	err := pub.PublishDispatched(context.Background(), &InteractionDispatchedEvent{
		RequestID: "req-1",
		Kind:      "component",
		Command:   "vote",
		UserID:    "42",
		Outcome:   OutcomeFailed,
		ErrorKind: "authorization",
	})
	if err != nil {
		t.Errorf("%s - expected no error, got %v", publisherTestPrefix, err)
	}
	if captured == nil {
		t.Fatalf("%s - expected function to be called", publisherTestPrefix)
	}
	if captured.Command != "vote" || captured.ErrorKind != "authorization" {
		t.Errorf("%s - captured %+v", publisherTestPrefix, captured)
	}
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	pub := &LogPublisher{Logger: logger}

	err := pub.PublishDispatched(context.Background(), &InteractionDispatchedEvent{
		RequestID: "req-9",
		Kind:      "modal",
		Command:   "feedback",
		Outcome:   OutcomeHandled,
	})
	if err != nil {
		t.Fatalf("%s - PublishDispatched: %v", publisherTestPrefix, err)
	}
	out := buf.String()
	for _, want := range []string{"modal feedback: handled", "request_id=req-9"} {
		if !strings.Contains(out, want) {
			t.Errorf("%s - log output %q missing %q", publisherTestPrefix, out, want)
		}
	}
}
