package newsclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := New("test-key", 20, 5*time.Second)
	c.SetBaseURL(srv.URL)
	return c, srv
}

func TestFetchTopHeadlines(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string

	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","totalResults":1,"articles":[{"source":{"id":null,"name":"BBC"},"title":"Hello","url":"http://x/1"}]}`))
	}))
	defer srv.Close()

	result := c.Fetch(context.Background(), FetchParams{Category: "Business"})

	if result.Status != StatusOK {
		t.Fatalf("expected ok status, got %q (%s)", result.Status, result.Message)
	}
	if gotPath != "/top-headlines" {
		t.Errorf("expected /top-headlines, got %s", gotPath)
	}
	if got := gotQuery["category"]; len(got) != 1 || got[0] != "business" {
		t.Errorf("expected lowercased category, got %v", got)
	}
	if got := gotQuery["language"]; len(got) != 1 || got[0] != "en" {
		t.Errorf("expected default language en, got %v", got)
	}
	if len(result.Articles) != 1 || result.Articles[0].Source.Name != "BBC" {
		t.Errorf("unexpected articles: %+v", result.Articles)
	}
}

func TestFetchAllCategoryIsUnfiltered(t *testing.T) {
	var gotQuery map[string][]string

	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"status":"ok","totalResults":0,"articles":[]}`))
	}))
	defer srv.Close()

	c.Fetch(context.Background(), FetchParams{Category: "all"})

	if _, ok := gotQuery["category"]; ok {
		t.Error("category 'all' must not be forwarded upstream")
	}
}

func TestFetchQueryUsesEverything(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string

	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"status":"ok","totalResults":0,"articles":[]}`))
	}))
	defer srv.Close()

	c.Fetch(context.Background(), FetchParams{Query: "golang"})

	if gotPath != "/everything" {
		t.Errorf("expected /everything, got %s", gotPath)
	}
	if got := gotQuery["sortBy"]; len(got) != 1 || got[0] != "publishedAt" {
		t.Errorf("expected sortBy=publishedAt, got %v", got)
	}
	if got := gotQuery["q"]; len(got) != 1 || got[0] != "golang" {
		t.Errorf("expected q=golang, got %v", got)
	}
}

func TestFetchUpstreamErrorNeverRaises(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"status":"error","message":"apiKey invalid"}`))
	}))
	defer srv.Close()

	result := c.Fetch(context.Background(), FetchParams{Category: "general"})

	if result.Status != StatusError {
		t.Fatalf("expected error status, got %q", result.Status)
	}
	if result.Message == "" {
		t.Error("error result must carry a non-empty message")
	}
	if len(result.Articles) != 0 {
		t.Error("error result must not carry articles")
	}
}

func TestFetchTransportErrorNeverRaises(t *testing.T) {
	c := New("test-key", 20, time.Second)
	c.SetBaseURL("http://127.0.0.1:1") // nothing listens here

	result := c.Fetch(context.Background(), FetchParams{})

	if result.Status != StatusError {
		t.Fatalf("expected error status, got %q", result.Status)
	}
	if result.Message == "" {
		t.Error("error result must carry a non-empty message")
	}
}

func TestFetchUpstreamErrorStatusBody(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"error","message":"rate limited"}`))
	}))
	defer srv.Close()

	result := c.Fetch(context.Background(), FetchParams{})

	if result.Status != StatusError || result.Message != "rate limited" {
		t.Errorf("expected upstream error surfaced, got %+v", result)
	}
}
