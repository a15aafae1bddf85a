package services

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"linkmark-backend/internal/models"
)

// bodySelectors is tried in order; the first selector with visible text wins.
// Covers the semantic article tag plus the content containers of common blog
// and CMS themes.
var bodySelectors = []string{
	"article",
	"#article_view",
	".article_view",
	".post-content",
	".entry-content",
	".article-body",
	".post_article",
	"#content",
	".content",
	"main",
}

type PageScraper struct {
	client   *http.Client
	resolver *URLResolver
}

func NewPageScraper(timeout time.Duration, resolver *URLResolver) *PageScraper {
	return &PageScraper{
		client:   &http.Client{Timeout: timeout},
		resolver: resolver,
	}
}

// Analyze fetches and parses an arbitrary web page. It never fails: any
// fetch or parse problem degrades to an empty record with a best-effort
// favicon, because a post should still be saveable when its page is not
// scrapable.
func (s *PageScraper) Analyze(ctx context.Context, rawURL string) *models.ContentMetadata {
	meta := &models.ContentMetadata{URL: rawURL, Tags: []string{}}

	resolved, err := s.resolver.FollowRedirects(ctx, rawURL)
	if err != nil {
		log.Printf("scrape: redirect resolution failed for %q: %v", rawURL, err)
		meta.Favicon = FaviconGuess(rawURL)
		return meta
	}
	meta.URL = resolved
	meta.Favicon = FaviconGuess(resolved)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resolved, nil)
	if err != nil {
		return meta
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("scrape: fetch failed for %q: %v", resolved, err)
		return meta
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("scrape: unexpected status %d for %q", resp.StatusCode, resolved)
		return meta
	}

	// Re-decode through the detected encoding; sites misdeclare charsets
	// and the raw bytes would garble non-UTF-8 text.
	reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return meta
	}

	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return meta
	}

	if content, ok := doc.Find("meta[property='og:title']").Attr("content"); ok && strings.TrimSpace(content) != "" {
		meta.Title = strings.TrimSpace(content)
	} else {
		meta.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	if content, ok := doc.Find("meta[property='og:image']").Attr("content"); ok {
		meta.Thumbnail = NormalizeURL(strings.TrimSpace(content), resolved)
	}

	if content, ok := doc.Find("meta[property='og:description']").Attr("content"); ok && strings.TrimSpace(content) != "" {
		meta.Description = strings.TrimSpace(content)
	} else if content, ok := doc.Find("meta[name='description']").Attr("content"); ok {
		meta.Description = strings.TrimSpace(content)
	}

	meta.Body = extractBodyText(doc)

	if href, ok := doc.Find("link[rel*='icon']").First().Attr("href"); ok && strings.TrimSpace(href) != "" {
		meta.Favicon = NormalizeURL(strings.TrimSpace(href), resolved)
	}

	return meta
}

func extractBodyText(doc *goquery.Document) string {
	for _, selector := range bodySelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		if text := visibleText(sel); text != "" {
			return text
		}
	}
	return ""
}

// visibleText flattens a content node to newline-joined text lines.
func visibleText(sel *goquery.Selection) string {
	sel.Find("br").Each(func(_ int, br *goquery.Selection) {
		br.ReplaceWithHtml("\n")
	})
	sel.Find("script, style, noscript").Remove()

	var lines []string
	for _, line := range strings.Split(sel.Text(), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
