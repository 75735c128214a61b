package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/baka-byte447/NewsDigest/internal/cache"
	"github.com/baka-byte447/NewsDigest/internal/logger"
	"github.com/baka-byte447/NewsDigest/internal/metrics"
	"github.com/baka-byte447/NewsDigest/internal/newsclient"
	"github.com/baka-byte447/NewsDigest/internal/pipeline"
	"github.com/baka-byte447/NewsDigest/internal/share"
)

func (h *Handler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":          "ok",
		"message":         "News Digest API is running",
		"version":         "1.0.0",
		"health_endpoint": "/api/health",
		"documentation":   "Available endpoints: /api/news, /api/health, /auth/login/github",
	})
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "News Digest API",
		"features": gin.H{
			"summarization": h.opts.SummarizeEnabled,
			"translation":   h.opts.TranslateEnabled,
			"oauth_google":  h.authSvc.Configured("google"),
			"oauth_github":  h.authSvc.Configured("github"),
		},
	})
}

func (h *Handler) Metrics(c *gin.Context) {
	c.JSON(http.StatusOK, metrics.Global.GetStats())
}

type newsResponse struct {
	Articles     []pipeline.Article `json:"articles"`
	Category     string             `json:"category"`
	Timestamp    string             `json:"timestamp"`
	TotalResults int                `json:"totalResults"`
}

func (h *Handler) GetNews(c *gin.Context) {
	category := c.DefaultQuery("category", "general")
	language := c.DefaultQuery("language", "en")
	userLanguage := c.DefaultQuery("userLanguage", "en")

	metrics.Global.IncrementNewsRequests()

	cacheKey := cache.QueryKey(category, language, userLanguage)
	if cached, ok := h.respCache.Get(cacheKey); ok {
		metrics.Global.IncrementCacheHits()
		resp := cached.(newsResponse)
		resp.Timestamp = time.Now().Format(time.RFC3339)
		c.JSON(http.StatusOK, resp)
		return
	}

	start := time.Now()

	raw := h.source.Fetch(c.Request.Context(), newsclient.FetchParams{
		Category: category,
		Language: language,
	})
	if raw.Status == newsclient.StatusError {
		message := raw.Message
		if message == "" {
			message = "No articles found"
		}
		metrics.Global.SetError(message)
		c.JSON(http.StatusOK, gin.H{"articles": []pipeline.Article{}, "error": message})
		return
	}

	translateTo := ""
	if userLanguage != "en" {
		translateTo = userLanguage
	}

	processed := h.processor.Process(c.Request.Context(), raw, pipeline.Options{
		Summarize:      true,
		TranslateTo:    translateTo,
		SourceLanguage: language,
	})

	metrics.Global.RecordProcessingTime(time.Since(start))
	metrics.Global.SetHealthy()

	resp := newsResponse{
		Articles:     processed.Articles,
		Category:     category,
		Timestamp:    time.Now().Format(time.RFC3339),
		TotalResults: processed.TotalResults,
	}
	h.respCache.Set(cacheKey, resp, h.opts.CacheTTL)

	c.JSON(http.StatusOK, resp)
}

// GetArticle serves article detail by scraping the article page. The id path
// parameter is the URL-escaped article URL (processed articles use their URL
// as id).
func (h *Handler) GetArticle(c *gin.Context) {
	// The router unescapes the parameter, so this is the full article URL.
	articleURL := c.Param("id")
	if !strings.HasPrefix(articleURL, "http") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Article id must be a URL-escaped article URL"})
		return
	}

	content, err := h.scraper.Extract(c.Request.Context(), articleURL)
	if err != nil {
		logger.Warn("Article extraction failed", "url", articleURL, "error", err)
		c.JSON(http.StatusOK, gin.H{
			"id":      articleURL,
			"message": "Article details could not be extracted; open the original URL",
		})
		return
	}

	c.JSON(http.StatusOK, content)
}

type shareRequest struct {
	Article json.RawMessage `json:"article"`
}

func (h *Handler) ShareArticle(c *gin.Context) {
	var req shareRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Article) == 0 || string(req.Article) == "null" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No article data provided"})
		return
	}

	// The article URL seeds the share ID; an absent URL still shares fine.
	var fields struct {
		URL string `json:"url"`
	}
	_ = json.Unmarshal(req.Article, &fields)

	shareID, err := h.shareStore.Create(req.Article, fields.URL)
	if err != nil {
		logger.Error("Failed to store shared article", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create share link"})
		return
	}

	metrics.Global.IncrementSharesCreated()

	c.JSON(http.StatusOK, gin.H{
		"shareId":  shareID,
		"shareUrl": h.shareBaseURL(c) + "/shared/" + shareID,
	})
}

func (h *Handler) GetSharedArticle(c *gin.Context) {
	shareID := c.Param("shareId")

	record, err := h.shareStore.Get(shareID)
	if errors.Is(err, share.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
		return
	}
	if err != nil {
		logger.Error("Failed to read shared article", "id", shareID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load shared article"})
		return
	}

	metrics.Global.IncrementSharedViews()
	c.JSON(http.StatusOK, record)
}

func (h *Handler) SavePreferences(c *gin.Context) {
	user := h.sessions.CurrentUser(c.Request)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var preferences map[string]interface{}
	if err := c.ShouldBindJSON(&preferences); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid preferences payload"})
		return
	}

	// Preferences are echoed back; durable storage is a later concern.
	c.JSON(http.StatusOK, gin.H{
		"message":     "Preferences saved successfully",
		"preferences": preferences,
	})
}

func (h *Handler) Login(c *gin.Context) {
	provider := c.Param("provider")
	if provider != "google" && provider != "github" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid provider. Supported providers: google, github"})
		return
	}

	if !h.authSvc.Configured(provider) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": provider + " OAuth is not configured. Please set the client ID and secret environment variables."})
		return
	}

	state, err := h.sessions.NewState(c.Writer, c.Request)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start login flow"})
		return
	}

	loginURL, err := h.authSvc.LoginURL(provider, state)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Redirect(http.StatusFound, loginURL)
}

func (h *Handler) Callback(c *gin.Context) {
	provider := c.Param("provider")
	if provider != "google" && provider != "github" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid provider"})
		return
	}

	if !h.sessions.CheckState(c.Writer, c.Request, c.Query("state")) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid OAuth state"})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing authorization code"})
		return
	}

	user, err := h.authSvc.Exchange(c.Request.Context(), provider, code)
	if err != nil {
		logger.Error("OAuth callback failed", "provider", provider, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.sessions.SaveUser(c.Writer, c.Request, user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
		return
	}

	c.Redirect(http.StatusFound, h.opts.FrontendURL+"/dashboard")
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.sessions.ClearUser(c.Writer, c.Request); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *Handler) GetUser(c *gin.Context) {
	user := h.sessions.CurrentUser(c.Request)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"error": "Endpoint not found",
		"available_endpoints": []string{
			"/ (GET) - API info",
			"/api/health (GET) - Health check",
			"/api/news (GET) - Get news articles",
			"/api/article/<id> (GET) - Article detail",
			"/api/share (POST) - Share article",
			"/api/shared/<shareId> (GET) - Shared article",
			"/auth/login/<provider> (GET) - OAuth login",
		},
	})
}

// shareBaseURL picks the public base for share links: the configured BASE_URL
// when set, otherwise the scheme and host of the incoming request.
func (h *Handler) shareBaseURL(c *gin.Context) string {
	if h.opts.BaseURL != "" {
		return strings.TrimSuffix(h.opts.BaseURL, "/")
	}

	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}
