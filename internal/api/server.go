package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewServer creates the HTTP server with all routes configured.
func NewServer(handler *Handler, debug bool) *gin.Engine {
	if debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Article detail takes a URL-escaped URL as its path parameter; routing
	// must happen before percent-decoding or the embedded slashes split the
	// segment.
	r.UseRawPath = true

	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware(handler.opts.FrontendURL))

	setupRoutes(r, handler)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler) {
	r.GET("/", handler.Index)

	api := r.Group("/api")
	{
		api.GET("/health", handler.HealthCheck)
		api.GET("/news", handler.GetNews)
		api.GET("/article/:id", handler.GetArticle)
		api.POST("/share", handler.ShareArticle)
		api.GET("/shared/:shareId", handler.GetSharedArticle)
		api.POST("/preferences", handler.SavePreferences)
	}

	authGroup := r.Group("/auth")
	{
		authGroup.GET("/login/:provider", handler.Login)
		authGroup.GET("/callback/:provider", handler.Callback)
		authGroup.GET("/logout", handler.Logout)
		authGroup.GET("/user", handler.GetUser)
	}

	r.GET("/metrics", handler.Metrics)

	// Favicon handler (return 204 to avoid 404s)
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	r.NoRoute(handler.NotFound)
}

// corsMiddleware allows the configured frontend origin with credentials, so
// the session cookie survives cross-origin requests.
func corsMiddleware(frontendURL string) gin.HandlerFunc {
	allowed := map[string]bool{
		"http://localhost:3000": true,
		"http://localhost:3001": true,
	}
	if frontendURL != "" {
		allowed[frontendURL] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if allowed[origin] {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
