// Package dispatcher routes verified interactions to registered commands and
// converts every failure into either a rejection status or an ephemeral reply.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/morezero/interactions-gateway/pkg/command"
	"github.com/morezero/interactions-gateway/pkg/customid"
	"github.com/morezero/interactions-gateway/pkg/events"
	"github.com/morezero/interactions-gateway/pkg/metrics"
	"github.com/morezero/interactions-gateway/pkg/reply"
)

const logPrefix = "dispatcher:dispatch"

// ComponentParserFunc validates and authorizes a component custom id. When
// configured it replaces the per-command custom id decoding.
type ComponentParserFunc func(ctx context.Context, req *command.Request, handle command.Handle) (*customid.Parsed, error)

// Options configures a Dispatcher. Zero values use defaults.
type Options struct {
	Logger          *slog.Logger
	ComponentParser ComponentParserFunc
	API             command.FollowUpAPI
	Publisher       events.EventPublisher
	Metrics         *metrics.Metrics
}

// Dispatcher routes interactions to the commands of a registry.
type Dispatcher struct {
	registry        *command.Registry
	logger          *slog.Logger
	componentParser ComponentParserFunc
	api             command.FollowUpAPI
	publisher       events.EventPublisher
	metrics         *metrics.Metrics
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(reg *command.Registry, opts Options) *Dispatcher {
	d := &Dispatcher{
		registry:        reg,
		logger:          opts.Logger,
		componentParser: opts.ComponentParser,
		api:             opts.API,
		publisher:       opts.Publisher,
		metrics:         opts.Metrics,
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	if d.publisher == nil {
		d.publisher = events.NoOpPublisher{}
	}
	return d
}

// Dispatch routes one verified interaction and returns its terminal state.
// It never panics and never returns nil.
func (d *Dispatcher) Dispatch(ctx context.Context, requestID string, i *discordgo.Interaction) *Result {
	start := time.Now()
	logger := d.logger.With("request_id", requestID)

	res := d.route(ctx, logger, requestID, i)
	elapsed := time.Since(start)

	d.metrics.ObserveDispatch(res.InteractionKind, res.Outcome, elapsed)
	if res.InteractionKind != KindLabelPing {
		d.publish(ctx, logger, requestID, i, res, elapsed)
	}

	logger.Debug(fmt.Sprintf("%s - kind=%s command=%s outcome=%s status=%d", logPrefix, res.InteractionKind, res.Command, res.Outcome, res.Status))
	return res
}

func (d *Dispatcher) route(ctx context.Context, logger *slog.Logger, requestID string, i *discordgo.Interaction) *Result {
	if i == nil {
		res := &Result{InteractionKind: KindLabelUnknown}
		return res.reject(http.StatusBadRequest, MessageUnknownInteractionType)
	}

	switch i.Type {
	case discordgo.InteractionPing:
		res := &Result{InteractionKind: KindLabelPing}
		return res.respond(reply.Pong())
	case discordgo.InteractionApplicationCommand:
		return d.handleApplicationCommand(ctx, logger, requestID, i)
	case discordgo.InteractionApplicationCommandAutocomplete:
		return d.handleAutocomplete(ctx, logger, requestID, i)
	case discordgo.InteractionMessageComponent:
		return d.handleComponent(ctx, logger, requestID, i)
	case discordgo.InteractionModalSubmit:
		return d.handleModal(ctx, logger, requestID, i)
	default:
		res := &Result{InteractionKind: KindLabelUnknown}
		return res.reject(http.StatusBadRequest, MessageUnknownInteractionType)
	}
}

func (d *Dispatcher) handleApplicationCommand(ctx context.Context, logger *slog.Logger, requestID string, i *discordgo.Interaction) *Result {
	res := &Result{InteractionKind: KindLabelCommand}
	data, ok := i.Data.(discordgo.ApplicationCommandInteractionData)
	if !ok {
		return res.reject(http.StatusBadRequest, MessageInvalidInteraction)
	}
	res.Command = data.Name

	chatInput := command.IsChatInput(i)
	if !chatInput {
		res.InteractionKind = KindLabelContextMenu
	}

	handle, ok := d.registry.Command(data.Name)
	if !ok {
		return res.ignore()
	}
	caps := command.CapabilitiesOf(handle)
	req := d.newRequest(logger, requestID, i)

	resp, err := d.safely(logger, res, func() (*reply.Response, error) {
		if caps.PreDispatch != nil {
			if err := caps.PreDispatch.PreDispatch(ctx, req); err != nil {
				return nil, err
			}
		}
		if err := d.registry.RunPreconditions(ctx, handle.Preconditions(), req); err != nil {
			return nil, asBusiness(err)
		}

		if !chatInput {
			if caps.ContextMenu == nil {
				return nil, notImplemented("context menu commands")
			}
			return caps.ContextMenu.ContextMenuRun(ctx, req)
		}
		if caps.ChatInput == nil {
			return nil, notImplemented("chat input commands")
		}
		return caps.ChatInput.ChatInputRun(ctx, req)
	})
	return d.finish(logger, res, resp, err)
}

// Preconditions are not evaluated for autocomplete.
func (d *Dispatcher) handleAutocomplete(ctx context.Context, logger *slog.Logger, requestID string, i *discordgo.Interaction) *Result {
	res := &Result{InteractionKind: KindLabelAutocomplete}
	data, ok := i.Data.(discordgo.ApplicationCommandInteractionData)
	if !ok {
		return res.reject(http.StatusBadRequest, MessageInvalidInteraction)
	}
	res.Command = data.Name

	handle, ok := d.registry.Command(data.Name)
	if !ok {
		return res.ignore()
	}
	caps := command.CapabilitiesOf(handle)
	req := d.newRequest(logger, requestID, i)

	resp, err := d.safely(logger, res, func() (*reply.Response, error) {
		if caps.Autocomplete == nil {
			return nil, notImplemented("autocomplete")
		}
		return caps.Autocomplete.AutocompleteRun(ctx, req)
	})
	return d.finish(logger, res, resp, err)
}

func (d *Dispatcher) handleComponent(ctx context.Context, logger *slog.Logger, requestID string, i *discordgo.Interaction) *Result {
	res := &Result{InteractionKind: KindLabelComponent}
	data, ok := i.Data.(discordgo.MessageComponentInteractionData)
	if !ok {
		return res.reject(http.StatusBadRequest, MessageInvalidInteraction)
	}
	res.CustomID = data.CustomID

	name, err := customid.Peek(data.CustomID)
	if err != nil {
		return res.reject(http.StatusBadRequest, MessageInvalidInteraction)
	}
	res.Command = name

	handle, ok := d.registry.Command(name)
	if !ok {
		return res.reject(http.StatusBadRequest, MessageInvalidInteraction)
	}
	caps := command.CapabilitiesOf(handle)
	if caps.Component == nil {
		return res.reject(http.StatusBadRequest, MessageInvalidInteraction)
	}
	req := d.newRequest(logger, requestID, i)

	resp, err := d.safely(logger, res, func() (*reply.Response, error) {
		parsed, err := d.parseComponent(ctx, req, handle, caps, data.CustomID)
		if err != nil {
			return nil, err
		}
		return caps.Component.ComponentRun(ctx, req, parsed)
	})
	return d.finish(logger, res, resp, err)
}

func (d *Dispatcher) parseComponent(ctx context.Context, req *command.Request, handle command.Handle, caps command.Capabilities, token string) (*customid.Parsed, error) {
	if d.componentParser != nil {
		parsed, err := d.componentParser(ctx, req, handle)
		if err == nil && parsed == nil {
			return nil, NewError(KindBusiness, customid.ErrMalformed.Error(), nil)
		}
		return parsed, err
	}
	return customid.Decode(token, req.InvokerID(), caps.ComponentOptions())
}

// Modal submissions have no authorization step.
func (d *Dispatcher) handleModal(ctx context.Context, logger *slog.Logger, requestID string, i *discordgo.Interaction) *Result {
	res := &Result{InteractionKind: KindLabelModal}
	data, ok := i.Data.(discordgo.ModalSubmitInteractionData)
	if !ok {
		return res.reject(http.StatusBadRequest, MessageInvalidInteraction)
	}
	res.CustomID = data.CustomID

	name, err := customid.Peek(data.CustomID)
	if err != nil {
		return res.reject(http.StatusBadRequest, MessageInvalidInteraction)
	}
	res.Command = name

	handle, ok := d.registry.Command(name)
	if !ok {
		return res.ignore()
	}
	caps := command.CapabilitiesOf(handle)
	req := d.newRequest(logger, requestID, i)

	resp, err := d.safely(logger, res, func() (*reply.Response, error) {
		if caps.Modal == nil {
			return nil, notImplemented("modal submissions")
		}
		return caps.Modal.ModalRun(ctx, req)
	})
	return d.finish(logger, res, resp, err)
}

func (d *Dispatcher) newRequest(logger *slog.Logger, requestID string, i *discordgo.Interaction) *command.Request {
	return &command.Request{
		ID:          requestID,
		Interaction: i,
		Options:     command.OptionsOf(i),
		API:         d.api,
		Logger:      logger,
	}
}

// safely runs fn and turns a panic into a fault.
func (d *Dispatcher) safely(logger *slog.Logger, res *Result, fn func() (*reply.Response, error)) (resp *reply.Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(fmt.Sprintf("%s - panic in %s %q: %v", logPrefix, res.InteractionKind, res.Command, r),
				"custom_id", res.CustomID,
				"stack", string(debug.Stack()),
			)
			resp = nil
			err = NewError(KindFault, faultMessage, fmt.Errorf("panic: %v", r))
		}
	}()
	return fn()
}

// finish is the single terminal step: a response is sent as is, any error
// becomes an ephemeral reply or, for structural errors, a rejection.
func (d *Dispatcher) finish(logger *slog.Logger, res *Result, resp *reply.Response, err error) *Result {
	if err == nil && resp == nil {
		err = NewError(KindFault, "This command did not produce a response", nil)
	}
	if err == nil {
		return res.respond(resp)
	}

	e := Classify(err)
	res.Err = e

	if status := e.HTTPStatus(); status != http.StatusOK {
		return res.reject(status, e.Message)
	}

	attrs := []any{"kind", string(e.Kind), "command", res.Command}
	if res.CustomID != "" {
		attrs = append(attrs, "custom_id", res.CustomID)
	}
	msg := fmt.Sprintf("%s - %s %q errored: %v", logPrefix, res.InteractionKind, res.Command, err)
	if e.Kind == KindFault {
		logger.Error(msg, attrs...)
	} else {
		logger.Warn(msg, attrs...)
	}

	res.respond(reply.Ephemeral(e.Message))
	res.Outcome = events.OutcomeFailed
	return res
}

// Any precondition error is shown to the user, not treated as a fault.
func asBusiness(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if command.IsFailure(err) {
		return err
	}
	return NewError(KindBusiness, err.Error(), err)
}

func (d *Dispatcher) publish(ctx context.Context, logger *slog.Logger, requestID string, i *discordgo.Interaction, res *Result, elapsed time.Duration) {
	event := &events.InteractionDispatchedEvent{
		RequestID:  requestID,
		Kind:       res.InteractionKind,
		Command:    res.Command,
		CustomID:   res.CustomID,
		Outcome:    res.Outcome,
		DurationMs: elapsed.Milliseconds(),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	if i != nil {
		event.InteractionID = i.ID
		event.GuildID = i.GuildID
		event.UserID = command.InvokerID(i)
	}
	if res.Err != nil {
		event.ErrorKind = string(res.Err.Kind)
	}

	if err := d.publisher.PublishDispatched(ctx, event); err != nil {
		logger.Warn(fmt.Sprintf("%s - failed to publish dispatch event: %v", logPrefix, err))
	}
}
