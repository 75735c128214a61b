// Package scraper extracts readable article content from a news page, used
// by the article detail endpoint.
package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ArticleContent is the extracted article detail.
type ArticleContent struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	ImageURL    string `json:"imageUrl,omitempty"`
	URL         string `json:"url"`
}

// candidateSelectors are tried in order; the first one yielding paragraphs
// wins. News sites mostly wrap body copy in one of these.
var candidateSelectors = []string{
	"article p",
	".article-body p",
	".article-content p",
	".post-content p",
	".content p",
	"main p",
}

type Scraper struct {
	httpClient *http.Client
}

func New(timeout time.Duration) *Scraper {
	return &Scraper{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Extract downloads the page and pulls out title, description, lead image and
// body text.
func (s *Scraper) Extract(ctx context.Context, pageURL string) (*ArticleContent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", "NewsDigest/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error loading page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error parsing HTML: %w", err)
	}

	content := ExtractFromDocument(doc, pageURL)
	if content.Content == "" && content.Description == "" {
		return nil, fmt.Errorf("can't extract content from %s", pageURL)
	}

	return content, nil
}

// ExtractFromDocument pulls article fields out of an already-parsed page.
func ExtractFromDocument(doc *goquery.Document, pageURL string) *ArticleContent {
	return &ArticleContent{
		Title:       extractTitle(doc),
		Description: metaContent(doc, "og:description", "description"),
		Content:     extractBody(doc),
		ImageURL:    metaContent(doc, "og:image"),
		URL:         pageURL,
	}
}

func extractTitle(doc *goquery.Document) string {
	if title := metaContent(doc, "og:title"); title != "" {
		return title
	}
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

func extractBody(doc *goquery.Document) string {
	var paragraphs []string

	for _, selector := range candidateSelectors {
		doc.Find(selector).Each(func(i int, sel *goquery.Selection) {
			text := strings.TrimSpace(sel.Text())
			if text != "" && len(text) > 10 {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) > 0 {
			break
		}
	}

	return cleanContent(strings.Join(paragraphs, "\n\n"))
}

// metaContent returns the first non-empty meta tag content among the given
// property/name values.
func metaContent(doc *goquery.Document, keys ...string) string {
	for _, key := range keys {
		selector := fmt.Sprintf(`meta[property=%q], meta[name=%q]`, key, key)
		if content, ok := doc.Find(selector).First().Attr("content"); ok {
			if trimmed := strings.TrimSpace(content); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

func cleanContent(content string) string {
	content = strings.ReplaceAll(content, "\n\n\n", "\n\n")
	return strings.TrimSpace(content)
}
