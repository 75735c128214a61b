package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/baka-byte447/NewsDigest/internal/api"
	"github.com/baka-byte447/NewsDigest/internal/auth"
	"github.com/baka-byte447/NewsDigest/internal/cache"
	"github.com/baka-byte447/NewsDigest/internal/config"
	"github.com/baka-byte447/NewsDigest/internal/logger"
	"github.com/baka-byte447/NewsDigest/internal/newsclient"
	"github.com/baka-byte447/NewsDigest/internal/pipeline"
	"github.com/baka-byte447/NewsDigest/internal/ratelimit"
	"github.com/baka-byte447/NewsDigest/internal/retry"
	"github.com/baka-byte447/NewsDigest/internal/scraper"
	"github.com/baka-byte447/NewsDigest/internal/share"
	"github.com/baka-byte447/NewsDigest/internal/summarizer"
	"github.com/baka-byte447/NewsDigest/internal/translator"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	logger.Init(cfg.Debug)
	logger.Info("Starting News Digest API",
		"port", cfg.Port,
		"summarization", cfg.SummarizeEnabled(),
		"translation", cfg.TranslateEnabled(),
	)

	ctx := context.Background()

	// News source: the News API when a key is configured, otherwise the RSS
	// fallback from configs/sources.yaml.
	var source api.NewsSource
	if cfg.NewsAPIKey != "" {
		source = newsclient.New(cfg.NewsAPIKey, cfg.NewsPageSize, cfg.RequestTimeout)
	} else {
		feeds, err := newsclient.LoadFeedSource(cfg.SourcesConfigPath)
		if err != nil {
			logger.Error("No NEWS_API_KEY and RSS sources unavailable", "path", cfg.SourcesConfigPath, "error", err)
			os.Exit(1)
		}
		logger.Warn("NEWS_API_KEY not set - falling back to RSS sources", "path", cfg.SourcesConfigPath)
		source = feeds
	}

	limiter := ratelimit.New(cfg.MaxGeminiRequests, 0, 0)
	summ, err := summarizer.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, limiter, retry.Config{
		MaxAttempts: cfg.RetryAttempts,
		Delay:       cfg.RetryDelay,
		Backoff:     true,
	})
	if err != nil {
		logger.Error("Failed to initialize summarizer", "error", err)
		os.Exit(1)
	}
	defer summ.Close()

	trans := translator.New(cfg.GoogleTranslateKey, cfg.OpenAIAPIKey, cfg.RequestTimeout)

	// A nil *translator.Translator must stay a nil interface in the pipeline.
	var pipelineTranslator pipeline.Translator
	if trans != nil {
		pipelineTranslator = trans
	}
	processor := pipeline.New(summ, pipelineTranslator)

	var shareStore share.Store
	if cfg.ShareDBPath != "" {
		sqlStore, err := share.NewSQLiteStore(cfg.ShareDBPath)
		if err != nil {
			logger.Error("Failed to open share database", "path", cfg.ShareDBPath, "error", err)
			os.Exit(1)
		}
		shareStore = sqlStore
		logger.Info("Share store: sqlite", "path", cfg.ShareDBPath)
	} else {
		shareStore = share.NewMemoryStore()
		logger.Info("Share store: in-memory")
	}
	defer shareStore.Close()

	authSvc := auth.NewService(auth.Credentials{
		GoogleClientID:     cfg.GoogleClientID,
		GoogleClientSecret: cfg.GoogleClientSecret,
		GitHubClientID:     cfg.GitHubClientID,
		GitHubClientSecret: cfg.GitHubClientSecret,
		RedirectBase:       redirectBase(cfg),
	})
	sessions := auth.NewSessions(cfg.SecretKey)

	handler := api.NewHandler(
		source,
		processor,
		shareStore,
		scraper.New(cfg.RequestTimeout),
		authSvc,
		sessions,
		cache.New(),
		api.Options{
			BaseURL:          cfg.BaseURL,
			FrontendURL:      cfg.FrontendURL,
			CacheTTL:         cfg.NewsCacheTTL,
			SummarizeEnabled: cfg.SummarizeEnabled(),
			TranslateEnabled: cfg.TranslateEnabled(),
		},
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.NewServer(handler, cfg.Debug),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("Listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}
	logger.Info("Server stopped")
}

// redirectBase is the externally reachable base for OAuth callbacks.
func redirectBase(cfg *config.Config) string {
	if cfg.BaseURL != "" {
		return cfg.BaseURL
	}
	return "http://localhost:" + cfg.Port
}
