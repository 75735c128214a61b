package translator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewWithoutKeyReturnsNil(t *testing.T) {
	if tr := New("", "", time.Second); tr != nil {
		t.Error("translator without a key must be nil, so callers see it is unconfigured")
	}
}

func TestTranslateEnglishTargetIsNoop(t *testing.T) {
	tr := New("key", "", time.Second)

	if got := tr.Translate(context.Background(), "Hola", "en"); got != "Hola" {
		t.Errorf("expected passthrough for en target, got %q", got)
	}
	if got := tr.Translate(context.Background(), "", "uk"); got != "" {
		t.Errorf("expected passthrough for empty text, got %q", got)
	}
}

func TestTranslateSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("tl") != "uk" {
			t.Errorf("expected target uk, got %q", r.URL.Query().Get("tl"))
		}
		w.Write([]byte(`[[["Привіт, ","Hello, ",null,null],["світе","world",null,null]],null,"en"]`))
	}))
	defer srv.Close()

	tr := New("key", "", time.Second)
	tr.SetEndpoint(srv.URL)

	got := tr.Translate(context.Background(), "Hello, world", "uk")
	if got != "Привіт, світе" {
		t.Errorf("expected joined segments, got %q", got)
	}
}

func TestTranslateBackendFailureReturnsOriginal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	tr := New("key", "", time.Second)
	tr.SetEndpoint(srv.URL)

	if got := tr.Translate(context.Background(), "Hola", "uk"); got != "Hola" {
		t.Errorf("expected original text on failure, got %q", got)
	}
}

func TestTranslateMalformedResponseReturnsOriginal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"an array"}`))
	}))
	defer srv.Close()

	tr := New("key", "", time.Second)
	tr.SetEndpoint(srv.URL)

	if got := tr.Translate(context.Background(), "Hola", "uk"); got != "Hola" {
		t.Errorf("expected original text on parse failure, got %q", got)
	}
}

func TestParseGoogleResponse(t *testing.T) {
	out, err := parseGoogleResponse([]byte(`[[["abc","x",null],["def","y",null]]]`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if out != "abcdef" {
		t.Errorf("expected abcdef, got %q", out)
	}

	if _, err := parseGoogleResponse([]byte(`[]`)); err == nil {
		t.Error("expected error for empty response")
	}
	if _, err := parseGoogleResponse([]byte(`"nope"`)); err == nil {
		t.Error("expected error for non-array response")
	}
}
