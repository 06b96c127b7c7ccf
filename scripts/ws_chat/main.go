package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

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
	var addr, room string

	cmd := &cobra.Command{
		Use:          "ws_chat",
		Short:        "Interactive relay client. Lines are sent to the current room; /join <room> switches rooms.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), addr, room)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "ws://127.0.0.1:3000/ws", "WebSocket address")
	cmd.Flags().StringVar(&room, "room", "lobby", "room to join")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "ws_chat: %v\n", err)
		os.Exit(1)
	}
}

func run(baseCtx context.Context, addr, room string) error {
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	if err := send(ctx, conn, proto.EventJoin, room); err != nil {
		return err
	}

	fmt.Printf("Connected to %s in room %s\n", addr, room)
	fmt.Println("Type messages and press Enter to send. /join <room> to switch. Ctrl+C to exit.")

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	return writeLoop(ctx, conn, room)
}

func send(ctx context.Context, conn *websocket.Conn, event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", event, err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Event: event, Data: payload}); err != nil {
		return fmt.Errorf("send %s: %w", event, err)
	}
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var in frame
		if err := wsjson.Read(ctx, conn, &in); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			fmt.Fprintf(os.Stderr, "read error: %v\n", err)
			return
		}

		switch in.Event {
		case proto.EventMessages:
			var history proto.Messages
			if err := json.Unmarshal(in.Data, &history); err != nil {
				fmt.Fprintf(os.Stderr, "unmarshal history: %v\n", err)
				continue
			}
			for _, m := range history.Messages {
				printMessage(m)
			}
		case proto.EventMessage:
			var m proto.Message
			if err := json.Unmarshal(in.Data, &m); err != nil {
				fmt.Fprintf(os.Stderr, "unmarshal message: %v\n", err)
				continue
			}
			printMessage(m)
		default:
			fmt.Printf("event=%s data=%s\n", in.Event, in.Data)
		}
	}
}

func printMessage(m proto.Message) {
	fmt.Printf("[%s] %s: %s\n", m.Date.Local().Format("15:04:05"), m.User, m.Text)
}

func writeLoop(ctx context.Context, conn *websocket.Conn, room string) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}

			if next, ok := strings.CutPrefix(text, "/join "); ok {
				room = strings.TrimSpace(next)
				if err := send(ctx, conn, proto.EventJoin, room); err != nil {
					return err
				}
				fmt.Printf("-- now in %s\n", room)
				continue
			}

			if err := send(ctx, conn, proto.EventMessage, map[string]string{"room": room, "text": text}); err != nil {
				return err
			}
		}
	}
}
