package commsutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

const codecLogPrefix = "commsutil:codec"

// EncodePayload serializes an event for publishing on a subject.
func EncodePayload(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%s - failed to encode payload: %w", codecLogPrefix, err)
	}
	return data, nil
}

// DecodePayload deserializes a received message into v. A message carrying
// more than one JSON value is rejected.
func DecodePayload(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%s - failed to decode payload: %w", codecLogPrefix, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New(codecLogPrefix + " - trailing data after payload")
	}
	return nil
}
