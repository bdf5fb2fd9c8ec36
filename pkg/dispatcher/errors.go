package dispatcher

import (
	"errors"
	"net/http"

	"github.com/morezero/interactions-gateway/pkg/command"
	"github.com/morezero/interactions-gateway/pkg/customid"
)

// Kind classifies a dispatch failure.
type Kind string

const (
	// KindAuthentication is a request that failed signature verification.
	KindAuthentication Kind = "authentication"
	// KindStructural is a request that cannot be attributed to a command.
	KindStructural Kind = "structural"
	// KindAuthorization is a component used by someone other than its owner.
	KindAuthorization Kind = "authorization"
	// KindBusiness covers precondition failures, missing hooks and
	// handler-reported failures.
	KindBusiness Kind = "business"
	// KindFault is an unexpected handler error or panic.
	KindFault Kind = "fault"
)

// Messages returned for structural rejections.
const (
	MessageUnknownInteractionType = "unknown interaction type"
	MessageInvalidInteraction     = "invalid interaction"
	MessageUnknownCommand         = "unknown command"
	MessageInvalidSignature       = "invalid request signature"
)

// faultMessage is shown for panics and unclassified errors. The error
// itself only goes to the log.
const faultMessage = "Something went wrong while running this command."

// Error is a classified dispatch failure. Message is what the user (or the
// platform, for authentication and structural kinds) sees.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus is the status the transport answers with. Only authentication
// and structural failures leave the 200 ephemeral reply path.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindStructural:
		return http.StatusBadRequest
	default:
		return http.StatusOK
	}
}

// NewError returns an Error of kind with message.
func NewError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func notImplemented(capability string) *Error {
	return NewError(KindBusiness, "This command does not implement "+capability, nil)
}

// Classify maps err to an Error. Precondition and handler failures are
// business errors and ownership mismatches are authorization errors. Any
// other error is a fault that shows the user a generic message.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	var f *command.Failure
	if errors.As(err, &f) {
		return NewError(KindBusiness, f.Message, err)
	}
	if errors.Is(err, customid.ErrNotOwner) {
		return NewError(KindAuthorization, customid.ErrNotOwner.Error(), err)
	}
	if errors.Is(err, customid.ErrMalformed) {
		return NewError(KindBusiness, customid.ErrMalformed.Error(), err)
	}
	return NewError(KindFault, faultMessage, err)
}
