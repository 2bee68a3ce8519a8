// File: api/router.go

package api

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/XZXY-AI/reddit-crawler/api/handlers"
	"github.com/XZXY-AI/reddit-crawler/internal/config"
	"github.com/XZXY-AI/reddit-crawler/internal/session"
)

// Dependencies are the services the HTTP surface delegates to
type Dependencies struct {
	Config       *config.Config
	SessionStore session.Store
	Auth         handlers.Authenticator
	Searcher     handlers.Searcher
	Snapshots    handlers.SnapshotWriter
	Logger       *slog.Logger
}

// NewRouter builds the gin engine serving the /api routes
func NewRouter(deps Dependencies) *gin.Engine {
	cfg := deps.Config

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(requestID())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.FrontendOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization", requestIDHeader},
		ExposeHeaders:    []string{"Content-Length", requestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(session.Middleware(deps.SessionStore, session.CookieOptions{
		MaxAge: cfg.Session.TTL,
		Secure: cfg.Session.CookieSecure,
	}, deps.Logger))

	authHandler := handlers.NewAuthHandler(deps.Auth, cfg.Server.FrontendRedirectURI, deps.Logger)
	searchHandler := handlers.NewSearchHandler(deps.Searcher, deps.Snapshots, deps.Logger)

	api := r.Group("/api")
	{
		api.GET("/auth/url", authHandler.HandleAuthURL)
		api.GET("/auth/callback", authHandler.HandleCallback)
		api.POST("/reddit/search", searchHandler.HandleSearch)
		api.GET("/health", handlers.HandleHealth(cfg.Session.Backend, cfg.Snapshot.Backend))
	}

	return r
}
