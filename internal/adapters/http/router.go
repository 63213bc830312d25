package http

import (
	"context"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/bubble/internal/adapters/signal"
	"github.com/dkeye/bubble/internal/app/orch"
	"github.com/dkeye/bubble/internal/config"
)

// SetupRouter wires the local UI bridge: static UI, REST commands under
// /api and the event socket at /api/ws.
func SetupRouter(ctx context.Context, cfg *config.WebConfig, o *orch.Orchestrator, hub *signal.Hub) *gin.Engine {
	switch cfg.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	if cfg.StaticPath != "" {
		if _, err := os.Stat(cfg.StaticPath); err == nil {
			r.Static("/static", cfg.StaticPath)
			r.GET("/", func(c *gin.Context) {
				c.File(filepath.Join(cfg.StaticPath, "index.html"))
			})
		}
	}

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	h := &handlers{orch: o}
	api := r.Group("/api")
	api.POST("/rooms/enter", h.enterRoom)
	api.DELETE("/rooms/current", h.leaveRoom)
	api.GET("/rooms/current", h.currentRoom)
	api.GET("/rooms", h.listRooms)
	api.POST("/messages", h.sendMessage)

	limiter := signal.NewSendRateLimiter(cfg.SendRate, cfg.SendWindow)
	ctrl := signal.NewSignalWSController(o, hub, limiter)
	api.GET("/ws", func(c *gin.Context) {
		ctrl.HandleSignal(ctx, c)
	})

	return r
}
