package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/text/encoding/korean"
)

func newTestScraper() *PageScraper {
	resolver := NewURLResolver(2*time.Second, 8)
	return NewPageScraper(2*time.Second, resolver)
}

func TestScraperAnalyze_OpenGraphPriority(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head>
			<title>Plain Title</title>
			<meta property="og:title" content="OG Title">
			<meta property="og:image" content="/images/cover.png">
			<meta property="og:description" content="OG description">
			<meta name="description" content="Meta description">
			<link rel="shortcut icon" href="/static/fav.png">
		</head><body><article>Hello   world</article></body></html>`)
	}))
	defer srv.Close()

	meta := newTestScraper().Analyze(context.Background(), srv.URL)

	if meta.Title != "OG Title" {
		t.Errorf("Expected og:title to win, got %q", meta.Title)
	}
	if meta.Thumbnail != srv.URL+"/images/cover.png" {
		t.Errorf("Expected resolved og:image, got %q", meta.Thumbnail)
	}
	if meta.Description != "OG description" {
		t.Errorf("Expected og:description to win, got %q", meta.Description)
	}
	if meta.Favicon != srv.URL+"/static/fav.png" {
		t.Errorf("Expected declared favicon, got %q", meta.Favicon)
	}
	if meta.Body != "Hello   world" {
		t.Errorf("Expected article body, got %q", meta.Body)
	}
}

func TestScraperAnalyze_Fallbacks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head>
			<title> Plain Title </title>
			<meta name="description" content="Meta description">
		</head><body><div class="post-content">Fallback body</div></body></html>`)
	}))
	defer srv.Close()

	meta := newTestScraper().Analyze(context.Background(), srv.URL)

	if meta.Title != "Plain Title" {
		t.Errorf("Expected trimmed <title> fallback, got %q", meta.Title)
	}
	if meta.Description != "Meta description" {
		t.Errorf("Expected meta description fallback, got %q", meta.Description)
	}
	if meta.Body != "Fallback body" {
		t.Errorf("Expected .post-content body, got %q", meta.Body)
	}
	if meta.Favicon != srv.URL+"/favicon.ico" {
		t.Errorf("Expected conventional favicon fallback, got %q", meta.Favicon)
	}
}

func TestScraperAnalyze_SelectorOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<article></article>
			<div id="content">Second choice</div>
			<main>Last choice</main>
		</body></html>`)
	}))
	defer srv.Close()

	meta := newTestScraper().Analyze(context.Background(), srv.URL)

	// The empty <article> is skipped in favor of the first selector with text.
	if meta.Body != "Second choice" {
		t.Errorf("Expected #content body, got %q", meta.Body)
	}
}

func TestScraperAnalyze_BreakTagsAndScripts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><article>
			line one<br>line two
			<script>var hidden = true;</script>
			<style>.x{}</style>
		</article></body></html>`)
	}))
	defer srv.Close()

	meta := newTestScraper().Analyze(context.Background(), srv.URL)

	if meta.Body != "line one\nline two" {
		t.Errorf("Expected br converted to newline and scripts removed, got %q", meta.Body)
	}
}

func TestScraperAnalyze_CharsetReDecoding(t *testing.T) {
	title := "한글 제목"
	encoded, err := korean.EUCKR.NewEncoder().Bytes([]byte(
		`<html><head><title>` + title + `</title></head><body></body></html>`))
	if err != nil {
		t.Fatalf("Failed to encode fixture: %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=euc-kr")
		w.Write(encoded)
	}))
	defer srv.Close()

	meta := newTestScraper().Analyze(context.Background(), srv.URL)

	if meta.Title != title {
		t.Errorf("Expected re-decoded title %q, got %q", title, meta.Title)
	}
}

func TestScraperAnalyze_UnreachableHostDegrades(t *testing.T) {
	meta := newTestScraper().Analyze(context.Background(), "http://127.0.0.1:1/nothing")

	if meta.URL != "http://127.0.0.1:1/nothing" {
		t.Errorf("Expected original URL kept, got %q", meta.URL)
	}
	if meta.Favicon != "http://127.0.0.1:1/favicon.ico" {
		t.Errorf("Expected favicon guess, got %q", meta.Favicon)
	}
	if meta.Title != "" || meta.Body != "" {
		t.Errorf("Expected empty record, got title=%q body=%q", meta.Title, meta.Body)
	}
	if meta.Tags == nil || len(meta.Tags) != 0 {
		t.Errorf("Expected empty tag slice, got %v", meta.Tags)
	}
}

func TestScraperAnalyze_NonOKStatus(t *testing.T) {
	// First request resolves fine, the re-fetch for parsing gets a 500.
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests > 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	meta := newTestScraper().Analyze(context.Background(), srv.URL)
	if meta.Title != "" {
		t.Errorf("Expected empty title for failed fetch, got %q", meta.Title)
	}
	if meta.Favicon != srv.URL+"/favicon.ico" {
		t.Errorf("Expected favicon guess kept, got %q", meta.Favicon)
	}
}
