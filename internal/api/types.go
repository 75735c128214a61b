package api

import (
	"context"
	"time"

	"github.com/baka-byte447/NewsDigest/internal/auth"
	"github.com/baka-byte447/NewsDigest/internal/cache"
	"github.com/baka-byte447/NewsDigest/internal/newsclient"
	"github.com/baka-byte447/NewsDigest/internal/pipeline"
	"github.com/baka-byte447/NewsDigest/internal/scraper"
	"github.com/baka-byte447/NewsDigest/internal/share"
)

// NewsSource is anything that can fetch raw headlines: the News API client or
// the RSS fallback.
type NewsSource interface {
	Fetch(ctx context.Context, p newsclient.FetchParams) newsclient.Result
}

var (
	_ NewsSource = (*newsclient.Client)(nil)
	_ NewsSource = (*newsclient.FeedSource)(nil)
)

// Options carries the request-independent settings the handlers need.
type Options struct {
	// BaseURL is the public base for share links; empty means derive from
	// the incoming request.
	BaseURL     string
	FrontendURL string
	CacheTTL    time.Duration
	// SummarizeEnabled and TranslateEnabled are reported by the health
	// endpoint.
	SummarizeEnabled bool
	TranslateEnabled bool
}

type Handler struct {
	source     NewsSource
	processor  *pipeline.Processor
	shareStore share.Store
	scraper    *scraper.Scraper
	authSvc    *auth.Service
	sessions   *auth.Sessions
	respCache  *cache.Cache
	opts       Options
}

func NewHandler(source NewsSource, processor *pipeline.Processor, shareStore share.Store,
	articleScraper *scraper.Scraper, authSvc *auth.Service, sessions *auth.Sessions,
	respCache *cache.Cache, opts Options) *Handler {
	return &Handler{
		source:     source,
		processor:  processor,
		shareStore: shareStore,
		scraper:    articleScraper,
		authSvc:    authSvc,
		sessions:   sessions,
		respCache:  respCache,
		opts:       opts,
	}
}
