package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tehtaankatu/tasting/internal/config"
	"github.com/tehtaankatu/tasting/internal/middleware"
	"github.com/tehtaankatu/tasting/internal/realtime"
	"github.com/tehtaankatu/tasting/internal/service"
	"github.com/tehtaankatu/tasting/internal/utils"
)

// Router assembles the HTTP surface: session lifecycle, guesses, scores and
// the websocket feed.
type Router struct {
	engine *gin.Engine
	log    *zap.Logger
}

// NewRouter builds the engine with all routes and middleware installed.
func NewRouter(
	svc service.GameService,
	hub *realtime.Hub,
	jwtManager *utils.JWTManager,
	cfg *config.Config,
	log *zap.Logger,
) *Router {
	if cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger())
	engine.Use(middleware.CORS())

	sessionHandler := NewSessionHandler(svc, &cfg.Game, log)
	guessHandler := NewGuessHandler(svc, log)
	wsHandler := NewWebSocketHandler(svc, hub, &cfg.WebSocket, log)
	auth := middleware.NewAuthMiddleware(jwtManager)

	router := &Router{engine: engine, log: log}

	engine.GET("/health", router.healthCheck)

	v1 := engine.Group("/api/v1")
	{
		v1.GET("/meta", sessionHandler.Meta)

		sessions := v1.Group("/sessions")
		{
			// hosting and joining are the two unauthenticated entry points;
			// everything else requires the token they hand out
			sessions.POST("", sessionHandler.Host)
			sessions.POST("/join", sessionHandler.Join)

			player := sessions.Group("")
			player.Use(auth.RequirePlayer())
			{
				player.GET("/:id", sessionHandler.Get)
				player.GET("/:id/scores", sessionHandler.Scores)
			}

			host := sessions.Group("")
			host.Use(auth.RequireHost())
			{
				host.POST("/:id/rounds/:number/start", sessionHandler.StartRound)
				host.POST("/:id/pause", sessionHandler.Pause)
				host.POST("/:id/resume", sessionHandler.Resume)
				host.POST("/:id/end", sessionHandler.End)
			}
		}

		guesses := v1.Group("/guesses")
		guesses.Use(auth.RequirePlayer())
		{
			guesses.POST("", guessHandler.Submit)
		}
	}

	ws := engine.Group("/ws")
	ws.Use(auth.RequirePlayer())
	{
		ws.GET("/sessions/:id", wsHandler.Serve)
	}

	return router
}

func (r *Router) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	})
}

// Engine exposes the underlying gin engine.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Run starts the HTTP server.
func (r *Router) Run(addr string) error {
	return r.engine.Run(addr)
}
