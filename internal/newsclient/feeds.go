package newsclient

import (
	"context"
	"os"
	"time"

	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"

	"github.com/baka-byte447/NewsDigest/internal/logger"
)

// SourcesConfig is the YAML config structure
// categories:
//
//	general:
//	  - https://...
type SourcesConfig struct {
	Categories map[string][]string `yaml:"categories"`
}

// FeedSource serves headlines from plain RSS feeds. It backs deployments
// without a News API key and keeps the same Result contract as Client.
type FeedSource struct {
	categories map[string][]string
	parser     *gofeed.Parser
}

// LoadFeedSource reads the category-to-feeds mapping from a YAML file.
func LoadFeedSource(path string) (*FeedSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg SourcesConfig
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}

	return &FeedSource{
		categories: cfg.Categories,
		parser:     gofeed.NewParser(),
	}, nil
}

// Fetch downloads and parses the feeds for the requested category and maps
// items into the raw article shape. Individual feed failures are logged and
// skipped; only a fully empty harvest is an error result.
func (s *FeedSource) Fetch(ctx context.Context, p FetchParams) Result {
	category := p.Category
	if category == "" || category == "all" {
		category = "general"
	}

	urls, ok := s.categories[category]
	if !ok {
		return ErrorResult("no RSS sources configured for category: " + category)
	}

	var articles []RawArticle
	successCount := 0

	for _, feedURL := range urls {
		feed, err := s.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			logger.Warn("Error parsing RSS feed", "url", feedURL, "error", err)
			continue // Log error, but don't stop
		}
		for _, item := range feed.Items {
			articles = append(articles, itemToArticle(feed, item))
		}
		successCount++
		logger.Debug("Loaded feed", "url", feedURL, "items", len(feed.Items))
	}

	logger.Info("Processed RSS feeds", "ok", successCount, "total", len(urls))

	if len(articles) == 0 {
		return ErrorResult("all RSS sources failed for category: " + category)
	}

	if p.PageSize > 0 && len(articles) > p.PageSize {
		articles = articles[:p.PageSize]
	}

	return Result{
		Status:       StatusOK,
		TotalResults: len(articles),
		Articles:     articles,
	}
}

func itemToArticle(feed *gofeed.Feed, item *gofeed.Item) RawArticle {
	a := RawArticle{
		Source:      Source{Name: feed.Title},
		Title:       item.Title,
		Description: item.Description,
		URL:         item.Link,
		Content:     item.Content,
	}
	if item.PublishedParsed != nil {
		a.PublishedAt = item.PublishedParsed.UTC().Format(time.RFC3339)
	}
	if item.Image != nil && item.Image.URL != "" {
		img := item.Image.URL
		a.URLToImage = &img
	}
	if len(item.Authors) > 0 && item.Authors[0].Name != "" {
		author := item.Authors[0].Name
		a.Author = &author
	}
	return a
}
