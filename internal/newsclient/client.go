// Package newsclient fetches headlines from the News API, with an RSS feed
// fallback for deployments that have no API key.
package newsclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/baka-byte447/NewsDigest/internal/logger"
)

const defaultBaseURL = "https://newsapi.org/v2"

// FetchParams selects what to fetch. Query wins over Category; an empty or
// "all" category means unfiltered top headlines.
type FetchParams struct {
	Query    string
	Category string
	Language string
	PageSize int
}

type Client struct {
	apiKey     string
	baseURL    string
	pageSize   int
	httpClient *http.Client
}

func New(apiKey string, pageSize int, timeout time.Duration) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		pageSize:   pageSize,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SetBaseURL overrides the upstream endpoint, used by tests.
func (c *Client) SetBaseURL(base string) {
	c.baseURL = strings.TrimSuffix(base, "/")
}

// Configured reports whether a News API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Fetch queries the News API. A search query hits /everything sorted by
// publish date; otherwise /top-headlines, constrained by category when one is
// given. Upstream failures come back as an error-status Result.
func (c *Client) Fetch(ctx context.Context, p FetchParams) Result {
	if p.Language == "" {
		p.Language = "en"
	}
	if p.PageSize <= 0 {
		p.PageSize = c.pageSize
	}

	endpoint, params := c.buildRequest(p)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return ErrorResult(fmt.Sprintf("building request: %v", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("News API request failed", "error", err)
		return ErrorResult(fmt.Sprintf("fetching news: %v", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ErrorResult(fmt.Sprintf("reading response: %v", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Error("News API returned non-2xx status", "status", resp.StatusCode)
		return ErrorResult(fmt.Sprintf("news API returned status %d: %s", resp.StatusCode, upstreamMessage(body)))
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return ErrorResult(fmt.Sprintf("decoding response: %v", err))
	}

	if result.Status != StatusOK {
		if result.Message == "" {
			result.Message = "news API reported an error"
		}
		result.Status = StatusError
		return result
	}

	logger.Debug("Fetched news", "articles", len(result.Articles), "total", result.TotalResults)
	return result
}

func (c *Client) buildRequest(p FetchParams) (string, url.Values) {
	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("language", p.Language)
	params.Set("pageSize", strconv.Itoa(p.PageSize))

	if p.Query != "" {
		params.Set("q", p.Query)
		params.Set("sortBy", "publishedAt")
		return c.baseURL + "/everything", params
	}

	if p.Category != "" && strings.ToLower(p.Category) != "all" {
		params.Set("category", strings.ToLower(p.Category))
	}
	return c.baseURL + "/top-headlines", params
}

// upstreamMessage pulls the message field out of a News API error body, if
// there is one.
func upstreamMessage(body []byte) string {
	var errBody struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &errBody); err == nil && errBody.Message != "" {
		return errBody.Message
	}
	return "no details"
}
