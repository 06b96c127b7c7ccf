package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"
	"net/url"
	"slices"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/roomrelay/internal/config"
	"github.com/vovakirdan/roomrelay/internal/core"
	"github.com/vovakirdan/roomrelay/internal/metrics"
	"github.com/vovakirdan/roomrelay/internal/proto"
	"github.com/vovakirdan/roomrelay/internal/utils"
)

// WSHandler upgrades HTTP connections and bridges them to the relay.
type WSHandler struct {
	relay     *core.Relay
	gateway   *Gateway
	accept    *websocket.AcceptOptions
	readLimit int64
	rateLimit int
	log       *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(relay *core.Relay, gateway *Gateway, cfg *config.Config, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{
		relay:     relay,
		gateway:   gateway,
		accept:    acceptOptions(cfg.CORSAllowedOrigins),
		readLimit: cfg.MaxMessageBytes,
		rateLimit: cfg.RateLimitPerMinute,
		log:       logger,
	}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	conn, err := websocket.Accept(w, r, h.accept)
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.CloseNow()

	if h.readLimit > 0 {
		conn.SetReadLimit(h.readLimit)
	}

	client := core.NewClient(utils.NewID())
	queue := h.gateway.Register(client.ID)
	h.relay.Connect(client)
	defer func() {
		h.relay.Disconnect(client)
		h.gateway.Unregister(client.ID)
	}()

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		return h.readLoop(ctx, conn, client)
	})
	g.Go(func() error {
		return h.writeLoop(ctx, conn, client, queue)
	})
	err = g.Wait()

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
		switch websocket.CloseStatus(err) {
		case websocket.StatusNormalClosure, websocket.StatusGoingAway, websocket.StatusNoStatusRcvd:
		case -1:
			status, reason = websocket.StatusInternalError, "internal error"
			h.log.Warn().Err(err).Str("client_id", client.ID).Msg("ws connection closed with error")
		default:
			h.log.Debug().Err(err).Str("client_id", client.ID).Msg("ws connection closed by peer")
		}
	}

	_ = conn.Close(status, reason)
}

// readLoop hands decoded events to the relay one at a time. Frames that fail
// to decode are dropped without a reply and the connection stays open.
func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	limiter := newRateLimiter(h.rateLimit)

	for {
		_, frame, err := conn.Read(ctx)
		if err != nil {
			return err
		}

		if !limiter.allow() {
			metrics.InboundDropped.WithLabelValues("rate_limited").Inc()
			h.log.Debug().Str("client_id", client.ID).Msg("inbound rate limit exceeded")
			continue
		}

		inbound, err := proto.ParseInbound(frame)
		var cmd core.Command
		if err == nil {
			cmd, err = inboundToCommand(inbound)
		}
		if err != nil {
			reason := "invalid_payload"
			if errors.Is(err, proto.ErrUnknownEvent) {
				reason = "unknown_event"
			}
			metrics.InboundDropped.WithLabelValues(reason).Inc()
			h.log.Debug().Err(err).Str("client_id", client.ID).Msg("dropping inbound frame")
			continue
		}

		metrics.InboundEvents.WithLabelValues(inbound.Event).Inc()
		if err := h.relay.Handle(client, cmd); err != nil {
			h.log.Warn().Err(err).Str("client_id", client.ID).Msg("relay rejected command")
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client, queue <-chan proto.Outbound) error {
	for {
		select {
		case out, ok := <-queue:
			if !ok {
				return nil
			}
			if err := wsjson.Write(ctx, conn, out); err != nil {
				h.log.Debug().Err(err).Str("client_id", client.ID).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// acceptOptions maps allowed CORS origins onto websocket origin patterns.
// A wildcard, or no list at all, disables the origin check.
func acceptOptions(origins []string) *websocket.AcceptOptions {
	if len(origins) == 0 || slices.Contains(origins, "*") {
		return &websocket.AcceptOptions{InsecureSkipVerify: true}
	}
	return &websocket.AcceptOptions{
		OriginPatterns: lo.Map(origins, func(origin string, _ int) string {
			if u, err := url.Parse(origin); err == nil && u.Host != "" {
				return u.Host
			}
			return origin
		}),
	}
}
