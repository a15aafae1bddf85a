package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestExtractFirstURL(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    string
		wantErr bool
	}{
		{"bare url", "https://example.com/watch", "https://example.com/watch", false},
		{"url inside share text", "Check this out! https://youtu.be/abc123 so good", "https://youtu.be/abc123", false},
		{"first of several", "http://a.com and https://b.com", "http://a.com", false},
		{"scheme-less ignored", "visit example.com today", "", true},
		{"ftp ignored", "ftp://files.example.com/a.zip", "", true},
		{"no url at all", "just some text", "", true},
		{"empty", "", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractFirstURL(tc.text)
			if tc.wantErr {
				if !errors.Is(err, ErrNoURLFound) {
					t.Fatalf("Expected ErrNoURLFound, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("Expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		base      string
		want      string
	}{
		{"empty stays empty", "", "https://example.com", ""},
		{"absolute passes through", "https://cdn.example.com/img.png", "https://example.com", "https://cdn.example.com/img.png"},
		{"protocol-relative gets https", "//cdn.example.com/img.png", "https://example.com", "https://cdn.example.com/img.png"},
		{"relative joins base", "icon.png", "https://example.com/blog/post", "https://example.com/blog/icon.png"},
		{"root-relative joins host", "/favicon.ico", "https://example.com/blog/post", "https://example.com/favicon.ico"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeURL(tc.candidate, tc.base); got != tc.want {
				t.Errorf("Expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestFaviconGuess(t *testing.T) {
	tests := []struct {
		rawURL string
		want   string
	}{
		{"https://example.com/some/deep/path?q=1", "https://example.com/favicon.ico"},
		{"http://blog.example.com/post", "http://blog.example.com/favicon.ico"},
		{"not a url", ""},
	}

	for _, tc := range tests {
		if got := FaviconGuess(tc.rawURL); got != tc.want {
			t.Errorf("FaviconGuess(%q): expected %q, got %q", tc.rawURL, tc.want, got)
		}
	}
}

func TestFollowRedirects_Chain(t *testing.T) {
	var final string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/start":
			http.Redirect(w, r, "/middle", http.StatusFound)
		case "/middle":
			http.Redirect(w, r, "/end", http.StatusMovedPermanently)
		case "/end":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()
	final = srv.URL + "/end"

	resolver := NewURLResolver(2*time.Second, 8)
	got, err := resolver.FollowRedirects(context.Background(), srv.URL+"/start")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != final {
		t.Errorf("Expected %q, got %q", final, got)
	}
}

func TestFollowRedirects_HopLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Every hop redirects to a fresh path so the chain never ends.
		http.Redirect(w, r, r.URL.Path+"x", http.StatusFound)
	}))
	defer srv.Close()

	resolver := NewURLResolver(2*time.Second, 3)
	_, err := resolver.FollowRedirects(context.Background(), srv.URL+"/a")
	if !errors.Is(err, ErrTooManyRedirects) {
		t.Fatalf("Expected ErrTooManyRedirects, got %v", err)
	}
}

func TestFollowRedirects_IntentFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		location := "intent://post/123#Intent;scheme=app;" +
			"S.browser_fallback_url=https%3A%2F%2Fexample.com%2Fpost%2F123;end"
		w.Header().Set("Location", location)
		w.WriteHeader(http.StatusFound)
	}))
	defer srv.Close()

	resolver := NewURLResolver(2*time.Second, 8)
	got, err := resolver.FollowRedirects(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != "https://example.com/post/123" {
		t.Errorf("Expected intent fallback URL, got %q", got)
	}
}

func TestFollowRedirects_IntentWithoutFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", "kakaotalk://open/profile")
		w.WriteHeader(http.StatusFound)
	}))
	defer srv.Close()

	resolver := NewURLResolver(2*time.Second, 8)
	if _, err := resolver.FollowRedirects(context.Background(), srv.URL); err == nil {
		t.Fatal("Expected error for app scheme without fallback")
	}
}

func TestFollowRedirects_TerminalStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	resolver := NewURLResolver(2*time.Second, 8)
	if _, err := resolver.FollowRedirects(context.Background(), srv.URL); err == nil {
		t.Fatal("Expected error for 5xx response")
	}
}

func TestFollowRedirects_RelativeLocation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/here" {
			fmt.Fprint(w, "ok")
			return
		}
		w.Header().Set("Location", "/here")
		w.WriteHeader(http.StatusFound)
	}))
	defer srv.Close()

	resolver := NewURLResolver(2*time.Second, 8)
	got, err := resolver.FollowRedirects(context.Background(), srv.URL+"/start")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != srv.URL+"/here" {
		t.Errorf("Expected %q, got %q", srv.URL+"/here", got)
	}
}

func TestExtractIntentFallback(t *testing.T) {
	tests := []struct {
		name     string
		location string
		want     string
		ok       bool
	}{
		{
			"standard intent link",
			"intent://view#Intent;S.browser_fallback_url=https%3A%2F%2Fexample.com%2Fx;end",
			"https://example.com/x",
			true,
		},
		{
			"fallback at end without semicolon",
			"app://x?S.browser_fallback_url=https%3A%2F%2Fexample.com",
			"https://example.com",
			true,
		},
		{"no marker", "intent://view#Intent;end", "", false},
		{"non-http fallback", "intent://v#Intent;S.browser_fallback_url=market%3A%2F%2Fdetails;end", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := extractIntentFallback(tc.location)
			if ok != tc.ok {
				t.Fatalf("Expected ok=%v, got %v", tc.ok, ok)
			}
			if got != tc.want {
				t.Errorf("Expected %q, got %q", tc.want, got)
			}
		})
	}
}
