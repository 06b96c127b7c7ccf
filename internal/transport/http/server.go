package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/roomrelay/internal/config"
	"github.com/vovakirdan/roomrelay/internal/core"
	"github.com/vovakirdan/roomrelay/internal/metrics"
	"github.com/vovakirdan/roomrelay/internal/proto"
)

// NewServer builds the HTTP server: the websocket endpoint plus a few plain routes.
func NewServer(relay *core.Relay, gateway *Gateway, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	router.GET("/", rootHandler)
	router.GET("/hello", helloHandler(gateway))
	router.GET("/health", healthHandler)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/ws", gin.WrapH(NewWSHandler(relay, gateway, cfg, logger)))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           CORSMiddleware(cfg.CORSAllowedOrigins).Handler(router),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func rootHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "Hello, World!")
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}

// helloHandler greets every connected client.
func helloHandler(gateway *Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		gateway.Broadcast(proto.Outbound{Event: proto.EventHello, Data: "world"})
		c.Status(stdhttp.StatusOK)
	}
}
