package main

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"beloteserver/internal/config"
	"beloteserver/internal/logging"
	"beloteserver/internal/room"
	"beloteserver/internal/session"
	"beloteserver/internal/transport"
)

func main() {
	if err := config.Load(os.Args[1:], run); err != nil {
		panic(err)
	}
}

func run(cfg config.Config) error {
	logger, err := logging.New(cfg.Development)
	if err != nil {
		return err
	}
	defer logger.Sync()

	signer, err := session.NewSigner(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		return err
	}

	roomService := room.NewService(logger)
	manager := transport.NewManager(roomService, signer, logger, cfg.PingInterval, cfg.PongTimeout)
	go manager.Run()

	r := newRouter(roomService, manager, logger, cfg.AllowedOrigins)

	logger.Info("beloteserver starting", zap.String("addr", cfg.ListenAddr))
	return r.Run(cfg.ListenAddr)
}

// newRouter builds the HTTP surface (component G) without starting it,
// so it can be exercised directly with httptest in tests.
func newRouter(roomService *room.Service, manager *transport.Manager, logger *zap.Logger, allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware(allowedOrigins))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ws", func(c *gin.Context) {
		if err := manager.HandleWebSocket(c.Writer, c.Request); err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
		}
	})

	r.GET("/api/rooms", func(c *gin.Context) {
		rooms := roomService.Rooms()
		summaries := make([]gin.H, 0, len(rooms))
		for _, rm := range rooms {
			phase := "waiting"
			if rm.Deal != nil {
				phase = string(rm.Deal.Phase)
			}
			summaries = append(summaries, gin.H{
				"roomCode":    rm.Code,
				"playerCount": rm.SeatCount(),
				"phase":       phase,
			})
		}
		c.JSON(http.StatusOK, gin.H{"rooms": summaries})
	})

	return r
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	originHeader := "*"
	if len(allowedOrigins) > 0 {
		originHeader = allowedOrigins[0]
	}
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", originHeader)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
