package proto

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestDecodeJoin(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    string
		wantErr bool
	}{
		{name: "bare string", data: `"lobby"`, want: "lobby"},
		{name: "empty string is a room", data: `""`, want: ""},
		{name: "null", data: `null`, wantErr: true},
		{name: "number", data: `42`, wantErr: true},
		{name: "object", data: `{"room":"lobby"}`, wantErr: true},
		{name: "missing", data: ``, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeJoin(json.RawMessage(tt.data))
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPayload) {
					t.Fatalf("expected ErrInvalidPayload, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("room = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeMessage(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantRoom string
		wantText string
		wantErr  bool
	}{
		{name: "complete", data: `{"room":"lobby","text":"hi"}`, wantRoom: "lobby", wantText: "hi"},
		{name: "empty text allowed", data: `{"room":"lobby","text":""}`, wantRoom: "lobby", wantText: ""},
		{name: "extra fields ignored", data: `{"room":"lobby","text":"hi","user":"mallory"}`, wantRoom: "lobby", wantText: "hi"},
		{name: "missing text", data: `{"room":"lobby"}`, wantErr: true},
		{name: "missing room", data: `{"text":"hi"}`, wantErr: true},
		{name: "null room", data: `{"room":null,"text":"hi"}`, wantErr: true},
		{name: "wrong type", data: `{"room":"lobby","text":7}`, wantErr: true},
		{name: "bare string", data: `"hi"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			room, text, err := DecodeMessage(json.RawMessage(tt.data))
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPayload) {
					t.Fatalf("expected ErrInvalidPayload, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if room != tt.wantRoom || text != tt.wantText {
				t.Fatalf("got (%q, %q), want (%q, %q)", room, text, tt.wantRoom, tt.wantText)
			}
		})
	}
}

func TestParseInboundRejectsGarbage(t *testing.T) {
	if _, err := ParseInbound([]byte("not json")); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
}

func TestOutboundMessageShape(t *testing.T) {
	out := Outbound{
		Event: EventMessage,
		Data: Message{
			Text: "hi",
			User: "anon-1",
			Date: time.Date(2024, 5, 1, 12, 0, 0, 500_000_000, time.UTC),
		},
	}

	raw, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	want := `{"event":"message","data":{"text":"hi","user":"anon-1","date":"2024-05-01T12:00:00.500Z"}}`
	if string(raw) != want {
		t.Fatalf("unexpected wire shape:\n got  %s\n want %s", raw, want)
	}
}

func TestMessageDatePrecision(t *testing.T) {
	tests := []struct {
		name string
		nsec int
		want string
	}{
		{name: "whole seconds", nsec: 0, want: "2024-05-01T12:00:00Z"},
		{name: "milliseconds", nsec: 500_000_000, want: "2024-05-01T12:00:00.500Z"},
		{name: "microseconds", nsec: 123_456_000, want: "2024-05-01T12:00:00.123456Z"},
		{name: "nanoseconds", nsec: 123_456_789, want: "2024-05-01T12:00:00.123456789Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := Message{Text: "hi", User: "anon-1", Date: time.Date(2024, 5, 1, 12, 0, 0, tt.nsec, time.UTC)}
			raw, err := json.Marshal(in)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}

			var wire struct {
				Date string `json:"date"`
			}
			if err := json.Unmarshal(raw, &wire); err != nil {
				t.Fatalf("unmarshal wire: %v", err)
			}
			if wire.Date != tt.want {
				t.Fatalf("date = %q, want %q", wire.Date, tt.want)
			}

			var out Message
			if err := json.Unmarshal(raw, &out); err != nil {
				t.Fatalf("unmarshal message: %v", err)
			}
			if !out.Date.Equal(in.Date) {
				t.Fatalf("date round trip: got %v, want %v", out.Date, in.Date)
			}
		})
	}
}

func TestMessageDateIsWrittenInUTC(t *testing.T) {
	zone := time.FixedZone("UTC+3", 3*60*60)
	raw, err := json.Marshal(Message{Date: time.Date(2024, 5, 1, 15, 0, 0, 0, zone)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	want := `{"text":"","user":"","date":"2024-05-01T12:00:00Z"}`
	if string(raw) != want {
		t.Fatalf("got %s, want %s", raw, want)
	}
}

func TestOutboundEmptyHistoryIsArray(t *testing.T) {
	raw, err := json.Marshal(Outbound{Event: EventMessages, Data: Messages{Messages: []Message{}}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	want := `{"event":"messages","data":{"messages":[]}}`
	if string(raw) != want {
		t.Fatalf("got %s, want %s", raw, want)
	}
}
