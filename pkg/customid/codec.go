// Package customid encodes and decodes the structured tokens carried in the
// custom_id of message components and modals.
//
// A token is a JSON object with three required string fields: "command" (the
// registry key of the owning command), "action" and "id" (the user allowed to
// use the component). Commands may declare extra string or number fields.
package customid

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

const logPrefix = "customid:codec"

// Reserved field names.
const (
	FieldCommand = "command"
	FieldAction  = "action"
	FieldID      = "id"
)

var (
	// ErrMalformed is returned when a token is not an object, lacks a required
	// field, or has a declared extra field of the wrong kind.
	ErrMalformed = errors.New("invalid custom_id")
	// ErrNotOwner is returned when the token belongs to another user and the
	// command does not allow others to use its components.
	ErrNotOwner = errors.New("this interaction does not belong to you")
)

// Kind is the declared type of an extra field.
type Kind string

const (
	KindString Kind = "string"
	KindNumber Kind = "number"
)

// Payload is the data encoded into a token.
type Payload struct {
	Command string
	Action  string
	ID      string
	Extra   map[string]any
}

// Options controls validation and authorization on Decode.
type Options struct {
	// AllowOthers lets users other than Payload.ID use the component.
	AllowOthers bool
	// ExtraFields declares the extra fields to validate and keep.
	ExtraFields map[string]Kind
}

// Parsed is the result of a successful Decode: action, id and the declared
// extra fields only.
type Parsed struct {
	Action string
	ID     string
	Extra  map[string]any
}

// String returns a declared string extra field.
func (p *Parsed) String(name string) (string, bool) {
	v, ok := p.Extra[name].(string)
	return v, ok
}

// Number returns a declared number extra field.
func (p *Parsed) Number(name string) (float64, bool) {
	v, ok := p.Extra[name].(float64)
	return v, ok
}

// Encode serializes a payload into a token.
func Encode(p Payload) (string, error) {
	obj := make(map[string]any, len(p.Extra)+3)
	for k, v := range p.Extra {
		if k == FieldCommand || k == FieldAction || k == FieldID {
			return "", fmt.Errorf("%s - extra field %q collides with a reserved field", logPrefix, k)
		}
		switch v.(type) {
		case string, int, int32, int64, uint, uint32, uint64, float32, float64, json.Number:
		default:
			return "", fmt.Errorf("%s - extra field %q has unsupported type %T", logPrefix, k, v)
		}
		obj[k] = v
	}
	obj[FieldCommand] = p.Command
	obj[FieldAction] = p.Action
	obj[FieldID] = p.ID

	data, err := json.Marshal(obj)
	if err != nil {
		return "", fmt.Errorf("%s - failed to encode payload: %w", logPrefix, err)
	}
	return string(data), nil
}

// MustEncode is Encode for payloads known to be valid at compile time.
func MustEncode(p Payload) string {
	s, err := Encode(p)
	if err != nil {
		panic(err)
	}
	return s
}

// Peek extracts the owning command name without validating anything else.
func Peek(token string) (string, error) {
	obj, err := parseObject(token)
	if err != nil {
		return "", err
	}
	cmd, ok := obj[FieldCommand].(string)
	if !ok {
		return "", ErrMalformed
	}
	return cmd, nil
}

// Decode validates token against opts and, unless opts.AllowOthers is set,
// checks that it belongs to invokerID.
func Decode(token, invokerID string, opts Options) (*Parsed, error) {
	obj, err := parseObject(token)
	if err != nil {
		return nil, err
	}

	action, okAction := obj[FieldAction].(string)
	_, okCommand := obj[FieldCommand].(string)
	id, okID := obj[FieldID].(string)
	if !okAction || !okCommand || !okID {
		return nil, ErrMalformed
	}

	extra := make(map[string]any, len(opts.ExtraFields))
	for name, kind := range opts.ExtraFields {
		v, err := checkKind(obj[name], kind)
		if err != nil {
			return nil, err
		}
		extra[name] = v
	}

	if !opts.AllowOthers && id != invokerID {
		return nil, ErrNotOwner
	}

	return &Parsed{Action: action, ID: id, Extra: extra}, nil
}

func parseObject(token string) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(token)))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil || obj == nil {
		return nil, ErrMalformed
	}
	// Anything after the object, including a stray closer, is rejected.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, ErrMalformed
	}
	return obj, nil
}

func checkKind(v any, kind Kind) (any, error) {
	switch kind {
	case KindString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case KindNumber:
		if n, ok := v.(json.Number); ok {
			f, err := n.Float64()
			if err == nil {
				return f, nil
			}
		}
	}
	return nil, ErrMalformed
}
