package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/shfq/lovechat-server/internal/blob"
	"github.com/shfq/lovechat-server/internal/config"
	"github.com/shfq/lovechat-server/internal/core"
	"github.com/shfq/lovechat-server/internal/store"
)

// NewServer builds the HTTP server: websocket relay endpoint, upload gateway,
// message history REST endpoint, and static serving for uploaded media.
func NewServer(relay *core.Relay, st store.MessageStore, blobs blob.Store, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))
	router.MaxMultipartMemory = 16 << 20

	uploadHandlers := NewUploadHandlers(blobs, logger)
	messageHandlers := NewMessageHandlers(st, cfg.HistoryLimit, logger)
	wsHandler := NewWSHandler(relay, cfg, logger)

	router.GET("/health", healthHandler)
	router.GET("/ws", gin.WrapH(wsHandler))
	router.POST("/api/upload", uploadHandlers.Upload)
	router.GET("/api/messages", messageHandlers.List)
	router.Static("/media", cfg.MediaDir)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
