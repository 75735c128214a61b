package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/baka-byte447/NewsDigest/internal/auth"
	"github.com/baka-byte447/NewsDigest/internal/cache"
	"github.com/baka-byte447/NewsDigest/internal/newsclient"
	"github.com/baka-byte447/NewsDigest/internal/pipeline"
	"github.com/baka-byte447/NewsDigest/internal/scraper"
	"github.com/baka-byte447/NewsDigest/internal/share"
)

// sourceFunc adapts a function to the NewsSource interface.
type sourceFunc func(ctx context.Context, p newsclient.FetchParams) newsclient.Result

func (f sourceFunc) Fetch(ctx context.Context, p newsclient.FetchParams) newsclient.Result {
	return f(ctx, p)
}

func okSource(articles ...newsclient.RawArticle) sourceFunc {
	return func(ctx context.Context, p newsclient.FetchParams) newsclient.Result {
		return newsclient.Result{
			Status:       newsclient.StatusOK,
			TotalResults: len(articles),
			Articles:     articles,
		}
	}
}

func sampleArticle(title string) newsclient.RawArticle {
	return newsclient.RawArticle{
		Source:      newsclient.Source{Name: "Test Wire"},
		Title:       title,
		Description: "Something happened somewhere today.",
		URL:         "https://example.com/" + strings.ToLower(title),
		PublishedAt: "2025-01-15T10:00:00Z",
	}
}

func newTestServer(t *testing.T, source NewsSource) (*gin.Engine, *Handler) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	handler := NewHandler(
		source,
		pipeline.New(nil, nil),
		share.NewMemoryStore(),
		scraper.New(2*time.Second),
		auth.NewService(auth.Credentials{}),
		auth.NewSessions("test-secret"),
		cache.New(),
		Options{
			FrontendURL: "http://localhost:3000",
			CacheTTL:    time.Minute,
		},
	)

	return NewServer(handler, false), handler
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var parsed map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("invalid JSON response for %s %s: %v\nbody: %s", method, path, err, w.Body.String())
	}
	return w, parsed
}

func TestHealthCheck(t *testing.T) {
	r, _ := newTestServer(t, okSource())

	w, body := doJSON(t, r, http.MethodGet, "/api/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	if body["status"] != "healthy" {
		t.Errorf("status field: got %v", body["status"])
	}
	if body["timestamp"] == "" {
		t.Error("missing timestamp")
	}
}

func TestGetNews(t *testing.T) {
	r, _ := newTestServer(t, okSource(sampleArticle("First"), sampleArticle("Second")))

	w, body := doJSON(t, r, http.MethodGet, "/api/news?category=technology", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	if body["category"] != "technology" {
		t.Errorf("category: got %v", body["category"])
	}
	if body["totalResults"] != float64(2) {
		t.Errorf("totalResults: got %v", body["totalResults"])
	}

	articles, ok := body["articles"].([]interface{})
	if !ok || len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %v", body["articles"])
	}
	first := articles[0].(map[string]interface{})
	if first["title"] != "First" {
		t.Errorf("order not preserved: first title %v", first["title"])
	}
	if first["originalLanguage"] != "en" {
		t.Errorf("originalLanguage: got %v", first["originalLanguage"])
	}
}

func TestGetNewsFetchError(t *testing.T) {
	r, _ := newTestServer(t, sourceFunc(func(ctx context.Context, p newsclient.FetchParams) newsclient.Result {
		return newsclient.ErrorResult("upstream said no")
	}))

	w, body := doJSON(t, r, http.MethodGet, "/api/news", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 with error field", w.Code)
	}
	if body["error"] != "upstream said no" {
		t.Errorf("error field: got %v", body["error"])
	}
	if articles := body["articles"].([]interface{}); len(articles) != 0 {
		t.Errorf("expected empty articles, got %d", len(articles))
	}
}

func TestGetNewsUsesCache(t *testing.T) {
	fetches := 0
	r, _ := newTestServer(t, sourceFunc(func(ctx context.Context, p newsclient.FetchParams) newsclient.Result {
		fetches++
		return newsclient.Result{
			Status:       newsclient.StatusOK,
			TotalResults: 1,
			Articles:     []newsclient.RawArticle{sampleArticle("Cached")},
		}
	}))

	doJSON(t, r, http.MethodGet, "/api/news?category=science", "")
	doJSON(t, r, http.MethodGet, "/api/news?category=science", "")
	if fetches != 1 {
		t.Errorf("expected 1 upstream fetch, got %d", fetches)
	}

	// A different query must miss the cache.
	doJSON(t, r, http.MethodGet, "/api/news?category=sports", "")
	if fetches != 2 {
		t.Errorf("expected 2 upstream fetches after new category, got %d", fetches)
	}
}

func TestShareAndRetrieve(t *testing.T) {
	r, _ := newTestServer(t, okSource())

	w, body := doJSON(t, r, http.MethodPost, "/api/share",
		`{"article":{"title":"Shared story","url":"https://example.com/shared"}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("share status: got %d, body %s", w.Code, w.Body.String())
	}

	shareID, _ := body["shareId"].(string)
	if !regexp.MustCompile(`^[0-9a-f]{12}$`).MatchString(shareID) {
		t.Fatalf("shareId must be 12 hex chars, got %q", shareID)
	}
	shareURL, _ := body["shareUrl"].(string)
	if !strings.HasSuffix(shareURL, "/shared/"+shareID) {
		t.Errorf("shareUrl %q must end with /shared/%s", shareURL, shareID)
	}

	// Two reads bump the view counter to 2.
	doJSON(t, r, http.MethodGet, "/api/shared/"+shareID, "")
	w2, record := doJSON(t, r, http.MethodGet, "/api/shared/"+shareID, "")
	if w2.Code != http.StatusOK {
		t.Fatalf("shared status: got %d", w2.Code)
	}
	if record["views"] != float64(2) {
		t.Errorf("views: got %v, want 2", record["views"])
	}
	article := record["article"].(map[string]interface{})
	if article["title"] != "Shared story" {
		t.Errorf("stored article title: got %v", article["title"])
	}
}

func TestShareWithoutArticle(t *testing.T) {
	r, _ := newTestServer(t, okSource())

	for _, payload := range []string{`{}`, `{"article":null}`, `not json`} {
		w, body := doJSON(t, r, http.MethodPost, "/api/share", payload)
		if w.Code != http.StatusBadRequest {
			t.Errorf("payload %q: status %d, want 400", payload, w.Code)
		}
		if body["error"] != "No article data provided" {
			t.Errorf("payload %q: error %v", payload, body["error"])
		}
	}
}

func TestSharedUnknownID(t *testing.T) {
	r, _ := newTestServer(t, okSource())

	w, body := doJSON(t, r, http.MethodGet, "/api/shared/deadbeef0000", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want 404", w.Code)
	}
	if body["error"] != "Article not found" {
		t.Errorf("error: got %v", body["error"])
	}
}

func TestPreferencesRequireAuth(t *testing.T) {
	r, _ := newTestServer(t, okSource())

	w, body := doJSON(t, r, http.MethodPost, "/api/preferences", `{"theme":"dark"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want 401", w.Code)
	}
	if body["error"] != "Not authenticated" {
		t.Errorf("error: got %v", body["error"])
	}
}

func TestUserRequiresAuth(t *testing.T) {
	r, _ := newTestServer(t, okSource())

	w, _ := doJSON(t, r, http.MethodGet, "/auth/user", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", w.Code)
	}
}

func TestLoginInvalidProvider(t *testing.T) {
	r, _ := newTestServer(t, okSource())

	w, _ := doJSON(t, r, http.MethodGet, "/auth/login/gitlab", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", w.Code)
	}
}

func TestLoginUnconfiguredProvider(t *testing.T) {
	r, _ := newTestServer(t, okSource())

	w, body := doJSON(t, r, http.MethodGet, "/auth/login/github", "")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want 500", w.Code)
	}
	if msg, _ := body["error"].(string); !strings.Contains(msg, "not configured") {
		t.Errorf("error: got %v", body["error"])
	}
}

func TestGetArticleRejectsNonURL(t *testing.T) {
	r, _ := newTestServer(t, okSource())

	w, _ := doJSON(t, r, http.MethodGet, "/api/article/not-a-url", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", w.Code)
	}
}

func TestGetArticleScrapesPage(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>Page Title</title>
			<meta property="og:description" content="Lead paragraph."></head>
			<body><article><p>Body text long enough to keep.</p></article></body></html>`))
	}))
	defer page.Close()

	r, _ := newTestServer(t, okSource())

	escaped := strings.ReplaceAll(page.URL, "/", "%2F")
	escaped = strings.ReplaceAll(escaped, ":", "%3A")
	w, body := doJSON(t, r, http.MethodGet, "/api/article/"+escaped, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", w.Code, w.Body.String())
	}
	if body["title"] != "Page Title" {
		t.Errorf("title: got %v", body["title"])
	}
	if body["description"] != "Lead paragraph." {
		t.Errorf("description: got %v", body["description"])
	}
}

func TestNotFoundListsEndpoints(t *testing.T) {
	r, _ := newTestServer(t, okSource())

	w, body := doJSON(t, r, http.MethodGet, "/api/nonexistent", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status: got %d", w.Code)
	}
	if body["error"] != "Endpoint not found" {
		t.Errorf("error: got %v", body["error"])
	}
	if _, ok := body["available_endpoints"].([]interface{}); !ok {
		t.Error("missing available_endpoints list")
	}
}

func TestCORSAllowsFrontendOrigin(t *testing.T) {
	r, _ := newTestServer(t, okSource())

	req := httptest.NewRequest(http.MethodOptions, "/api/news", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status: got %d, want 204", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Errorf("allow-origin: got %q", w.Header().Get("Access-Control-Allow-Origin"))
	}
	if w.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Error("credentials header missing")
	}
}
