package services

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"reflect"
	"strings"
	"testing"

	"linkmark-backend/internal/models"
)

func TestArticleBundleRoundTrip(t *testing.T) {
	items := []models.ArticleBundleItem{
		{
			URL:         "https://youtu.be/dQw4w9WgXcQ",
			Title:       "A video",
			Thumbnail:   "https://i.ytimg.com/vi/dQw4w9WgXcQ/hqdefault.jpg",
			ContentType: "video",
			VideoLength: 212,
			Tags:        []string{"music"},
		},
		{
			URL:         "https://example.com/post",
			Title:       "A post",
			Description: "about things",
			Favicon:     "https://example.com/favicon.ico",
			ContentType: "post",
			Body:        "line one\nline two",
			Tags:        []string{"reading", "later"},
		},
	}

	encoded, err := EncodeArticleBundle(items)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded, err := DecodeArticleBundle(encoded)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !reflect.DeepEqual(items, decoded) {
		t.Errorf("Round trip mismatch:\nwant %+v\ngot  %+v", items, decoded)
	}
}

func TestDecodeArticleBundle_Malformed(t *testing.T) {
	gzOnly := func(payload string) string {
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		gz.Write([]byte(payload))
		gz.Close()
		return base64.StdEncoding.EncodeToString(buf.Bytes())
	}

	tests := []struct {
		name    string
		encoded string
	}{
		{"not base64", "!!!not-base64!!!"},
		{"base64 but not gzip", base64.StdEncoding.EncodeToString([]byte("plain"))},
		{"gzip but not json", gzOnly("{{{")},
		{"json but wrong shape", gzOnly(`{"url":"https://example.com"}`)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecodeArticleBundle(tc.encoded); err == nil {
				t.Fatal("Expected error for malformed bundle")
			}
		})
	}
}

func TestDecodeArticleBundle_Empty(t *testing.T) {
	encoded, err := EncodeArticleBundle([]models.ArticleBundleItem{})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	items, err := DecodeArticleBundle(encoded)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Expected no items, got %d", len(items))
	}
}

func TestDecodeArticleBundle_SizeLimit(t *testing.T) {
	// A highly compressible payload that inflates past the cap.
	huge := `[{"body":"` + strings.Repeat("a", maxBundleBytes+1024) + `"}]`

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	gz.Write([]byte(huge))
	gz.Close()
	encoded := base64.StdEncoding.EncodeToString(buf.Bytes())

	if _, err := DecodeArticleBundle(encoded); err == nil {
		t.Fatal("Expected error for oversized bundle")
	}
}
