package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"mvdan.cc/xurls/v2"
)

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"

var (
	ErrNoURLFound       = errors.New("no http(s) URL found in text")
	ErrTooManyRedirects = errors.New("redirect chain exceeds hop limit")
)

var httpURLRe = func() *regexp.Regexp {
	re, err := xurls.StrictMatchingScheme(`https?://`)
	if err != nil {
		panic(err)
	}
	return re
}()

// ExtractFirstURL returns the first well-formed http(s) URL embedded in text.
// Scheme-less and non-http URLs never match.
func ExtractFirstURL(text string) (string, error) {
	match := httpURLRe.FindString(text)
	if match == "" {
		return "", ErrNoURLFound
	}
	return strings.TrimSpace(match), nil
}

// NormalizeURL resolves a candidate URL (as found in an href attribute)
// against the page it was found on. Empty stays empty, protocol-relative gets
// https, absolute http(s) passes through, everything else joins the base.
func NormalizeURL(candidate, base string) string {
	if candidate == "" {
		return ""
	}
	if strings.HasPrefix(candidate, "//") {
		return "https:" + candidate
	}
	if strings.HasPrefix(candidate, "http://") || strings.HasPrefix(candidate, "https://") {
		return candidate
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return candidate
	}
	ref, err := url.Parse(candidate)
	if err != nil {
		return candidate
	}
	return baseURL.ResolveReference(ref).String()
}

// FaviconGuess builds the conventional /favicon.ico URL for a page. Used as
// the best-effort fallback when resolution or scraping fails.
func FaviconGuess(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	scheme := u.Scheme
	if scheme == "" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/favicon.ico", scheme, u.Host)
}

type URLResolver struct {
	client  *http.Client
	maxHops int
}

func NewURLResolver(timeout time.Duration, maxHops int) *URLResolver {
	return &URLResolver{
		client: &http.Client{
			Timeout: timeout,
			// Redirects are followed manually so app-intent Location
			// targets can be intercepted.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		maxHops: maxHops,
	}
}

// FollowRedirects walks a redirect chain by hand. App-intent schemes in a
// Location header short-circuit to their embedded fallback URL. The loop is
// bounded by maxHops.
func (rs *URLResolver) FollowRedirects(ctx context.Context, rawURL string) (string, error) {
	current := rawURL

	for hop := 0; hop < rs.maxHops; hop++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, current, nil)
		if err != nil {
			return "", fmt.Errorf("build request for %q: %w", current, err)
		}
		req.Header.Set("User-Agent", browserUserAgent)

		resp, err := rs.client.Do(req)
		if err != nil {
			return "", fmt.Errorf("fetch %q: %w", current, err)
		}
		status := resp.StatusCode
		location := resp.Header.Get("Location")
		resp.Body.Close()

		if status >= 200 && status < 300 {
			return current, nil
		}
		if status < 300 || status >= 400 {
			return "", fmt.Errorf("fetch %q: terminal status %d", current, status)
		}
		if location == "" {
			return "", fmt.Errorf("fetch %q: redirect without Location", current)
		}

		next, err := resolveRedirectTarget(current, location)
		if err != nil {
			return "", err
		}
		if next.terminal {
			return next.url, nil
		}
		current = next.url
	}

	return "", ErrTooManyRedirects
}

type redirectTarget struct {
	url string
	// terminal is set when the target came out of an app-intent fallback;
	// the chain stops there without re-fetching.
	terminal bool
}

func resolveRedirectTarget(base, location string) (redirectTarget, error) {
	loc, err := url.Parse(location)
	if err != nil {
		return redirectTarget{}, fmt.Errorf("parse Location %q: %w", location, err)
	}

	switch loc.Scheme {
	case "http", "https":
		return redirectTarget{url: location}, nil
	case "":
		baseURL, err := url.Parse(base)
		if err != nil {
			return redirectTarget{}, fmt.Errorf("parse base %q: %w", base, err)
		}
		return redirectTarget{url: baseURL.ResolveReference(loc).String()}, nil
	default:
		// App-intent deep link (intent://, kakaotalk:// and friends).
		fallback, ok := extractIntentFallback(location)
		if !ok {
			return redirectTarget{}, fmt.Errorf("unsupported redirect scheme %q without fallback URL", loc.Scheme)
		}
		return redirectTarget{url: fallback, terminal: true}, nil
	}
}

// extractIntentFallback pulls the URL-encoded browser fallback out of an
// Android intent link (the S.browser_fallback_url segment).
func extractIntentFallback(location string) (string, bool) {
	const marker = "S.browser_fallback_url="

	idx := strings.Index(location, marker)
	if idx < 0 {
		return "", false
	}

	raw := location[idx+len(marker):]
	if end := strings.IndexAny(raw, ";"); end >= 0 {
		raw = raw[:end]
	}

	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return "", false
	}
	if !strings.HasPrefix(decoded, "http://") && !strings.HasPrefix(decoded, "https://") {
		return "", false
	}
	return decoded, true
}
