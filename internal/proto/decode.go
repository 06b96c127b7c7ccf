package proto

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrUnknownEvent is returned for an inbound event name the relay does not serve.
	ErrUnknownEvent = errors.New("unknown event")
	// ErrInvalidPayload is returned when an inbound payload is malformed.
	ErrInvalidPayload = errors.New("invalid payload")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ParseInbound decodes a raw websocket frame into its envelope.
func ParseInbound(frame []byte) (Inbound, error) {
	var in Inbound
	if err := json.Unmarshal(frame, &in); err != nil {
		return Inbound{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return in, nil
}

// DecodeJoin decodes the bare-string room name of a "join" event.
func DecodeJoin(data json.RawMessage) (string, error) {
	var room *string
	if err := json.Unmarshal(data, &room); err != nil {
		return "", fmt.Errorf("%w: join: %v", ErrInvalidPayload, err)
	}
	if room == nil {
		return "", fmt.Errorf("%w: join: room is null", ErrInvalidPayload)
	}
	return *room, nil
}

// DecodeMessage decodes and validates the payload of a "message" event.
func DecodeMessage(data json.RawMessage) (string, string, error) {
	var msg MessageIn
	if err := json.Unmarshal(data, &msg); err != nil {
		return "", "", fmt.Errorf("%w: message: %v", ErrInvalidPayload, err)
	}
	if err := validate.Struct(msg); err != nil {
		return "", "", fmt.Errorf("%w: message: %v", ErrInvalidPayload, err)
	}
	return *msg.Room, *msg.Text, nil
}
