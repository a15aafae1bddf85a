package services

import "testing"

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name     string
		videoURL string
		want     string
	}{
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch url without www", "https://youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"mobile host", "https://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short link with query", "https://youtu.be/dQw4w9WgXcQ?si=abc", "dQw4w9WgXcQ"},
		{"shorts", "https://www.youtube.com/shorts/AbCdEfGhIjK", "AbCdEfGhIjK"},
		{"shorts with trailing slash", "https://www.youtube.com/shorts/AbCdEfGhIjK/", "AbCdEfGhIjK"},
		{"embed", "https://www.youtube.com/embed/AbCdEfGhIjK", "AbCdEfGhIjK"},
		{"watch without v param", "https://www.youtube.com/watch", ""},
		{"unsupported host", "https://vimeo.com/12345", ""},
		{"not a url", "::not a url::", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractVideoID(tc.videoURL); got != tc.want {
				t.Errorf("Expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestConvertDurationToSeconds(t *testing.T) {
	tests := []struct {
		name string
		iso  string
		want int64
	}{
		{"minutes and seconds", "PT4M13S", 253},
		{"hours", "PT1H2M3S", 3723},
		{"seconds only", "PT45S", 45},
		{"zero", "PT0S", 0},
		{"malformed is zero", "4 minutes", 0},
		{"empty is zero", "", 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ConvertDurationToSeconds(tc.iso); got != tc.want {
				t.Errorf("Expected %d, got %d", tc.want, got)
			}
		})
	}
}
