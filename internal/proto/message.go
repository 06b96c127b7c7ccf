package proto

import (
	"encoding/json"
	"time"
)

// Event names used on the wire.
const (
	EventJoin     = "join"
	EventMessage  = "message"
	EventMessages = "messages"
	EventHello    = "hello"
)

// Inbound is the envelope for frames coming from the client.
type Inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Outbound is the envelope for frames sent to the client.
type Outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// MessageIn is the payload of an inbound "message" event. Both fields are
// required; pointers tell a missing field apart from an empty string.
type MessageIn struct {
	Room *string `json:"room" validate:"required"`
	Text *string `json:"text" validate:"required"`
}

// Message is the payload of an outbound "message" event and the element of a
// "messages" history payload.
type Message struct {
	Text string    `json:"text"`
	User string    `json:"user"`
	Date time.Time `json:"date"`
}

// Messages is the payload of the "messages" event sent to a joining client.
type Messages struct {
	Messages []Message `json:"messages"`
}

// MarshalJSON writes the date in UTC with the fraction padded to 0, 3, 6 or 9
// digits, whichever is the shortest that keeps full precision.
func (m Message) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Text string `json:"text"`
		User string `json:"user"`
		Date string `json:"date"`
	}{
		Text: m.Text,
		User: m.User,
		Date: formatDate(m.Date),
	})
}

func formatDate(t time.Time) string {
	t = t.UTC()
	layout := "2006-01-02T15:04:05"
	switch ns := t.Nanosecond(); {
	case ns == 0:
	case ns%1_000_000 == 0:
		layout += ".000"
	case ns%1_000 == 0:
		layout += ".000000"
	default:
		layout += ".000000000"
	}
	return t.Format(layout + "Z")
}
