package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/roomrelay/internal/proto"
)

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func main() {
	var (
		addr    string
		room    string
		text    string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:          "ws_smoke",
		Short:        "Join a room, send one message and wait for it to come back",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return run(ctx, addr, room, text)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "ws://127.0.0.1:3000/ws", "WebSocket address")
	cmd.Flags().StringVar(&room, "room", "lobby", "room name")
	cmd.Flags().StringVar(&text, "text", "hello from smoke test", "message text to send")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "total timeout for the run")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "ws_smoke: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, addr, room, text string) error {
	conn, _, err := websocket.Dial(ctx, addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(event string, data any) error {
		payload, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", event, err)
		}
		if err := wsjson.Write(ctx, conn, proto.Inbound{Event: event, Data: payload}); err != nil {
			return fmt.Errorf("send %s: %w", event, err)
		}
		return nil
	}

	if err := send(proto.EventJoin, room); err != nil {
		return err
	}
	if err := send(proto.EventMessage, map[string]string{"room": room, "text": text}); err != nil {
		return err
	}

	for {
		var in frame
		if err := wsjson.Read(ctx, conn, &in); err != nil {
			return fmt.Errorf("read: %w", err)
		}

		switch in.Event {
		case proto.EventMessages:
			var history proto.Messages
			if err := json.Unmarshal(in.Data, &history); err != nil {
				return fmt.Errorf("unmarshal history: %w", err)
			}
			fmt.Printf("history: %d message(s) in %s\n", len(history.Messages), room)
		case proto.EventMessage:
			var msg proto.Message
			if err := json.Unmarshal(in.Data, &msg); err != nil {
				return fmt.Errorf("unmarshal message: %w", err)
			}
			fmt.Printf("message: user=%s text=%q date=%s\n", msg.User, msg.Text, msg.Date.Format(time.RFC3339Nano))
			if msg.Text == text {
				return nil
			}
		default:
			fmt.Printf("event=%s data=%s\n", in.Event, in.Data)
		}
	}
}
