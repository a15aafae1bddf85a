package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sosodev/duration"
	"google.golang.org/api/option"
	youtube "google.golang.org/api/youtube/v3"

	"linkmark-backend/internal/models"
)

const videoCacheTTL = time.Hour

type VideoService struct {
	yt    *youtube.Service
	cache *redis.Client
}

func NewVideoService(ctx context.Context, apiKey string, cache *redis.Client) (*VideoService, error) {
	yt, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube client: %w", err)
	}
	return &VideoService{yt: yt, cache: cache}, nil
}

// ExtractVideoID pulls the 11-character video id out of the main domain,
// short-link domain and shorts path forms. Unsupported hosts yield "".
func ExtractVideoID(videoURL string) string {
	u, err := url.Parse(videoURL)
	if err != nil {
		return ""
	}

	host := strings.TrimPrefix(u.Hostname(), "www.")

	switch host {
	case "youtube.com", "m.youtube.com":
		if rest, ok := strings.CutPrefix(u.Path, "/shorts/"); ok {
			return firstPathSegment(rest)
		}
		if rest, ok := strings.CutPrefix(u.Path, "/embed/"); ok {
			return firstPathSegment(rest)
		}
		return u.Query().Get("v")
	case "youtu.be":
		return firstPathSegment(strings.TrimPrefix(u.Path, "/"))
	default:
		return ""
	}
}

func firstPathSegment(path string) string {
	path = strings.Trim(path, "/")
	if idx := strings.IndexByte(path, '/'); idx >= 0 {
		return path[:idx]
	}
	return path
}

// ConvertDurationToSeconds converts an ISO-8601 duration (PT1H2M3S) to
// seconds. Malformed input is 0, not an error.
func ConvertDurationToSeconds(iso string) int64 {
	d, err := duration.Parse(iso)
	if err != nil {
		return 0
	}
	return int64(d.ToTimeDuration() / time.Second)
}

// Analyze resolves a video URL through the platform API. Unlike the page
// scraper this hard-fails: the API call is authoritative, so an empty result
// means the source itself is missing.
func (s *VideoService) Analyze(ctx context.Context, videoURL string, tagCount int) (*models.ContentMetadata, error) {
	videoID := ExtractVideoID(videoURL)
	if videoID == "" {
		return nil, &UpstreamError{Message: fmt.Sprintf("no video found for URL %q", videoURL)}
	}

	meta, err := s.lookup(ctx, videoID)
	if err != nil {
		return nil, err
	}

	meta.URL = videoURL
	if tagCount > 0 && len(meta.Tags) > tagCount {
		meta.Tags = meta.Tags[:tagCount]
	}
	return meta, nil
}

func (s *VideoService) lookup(ctx context.Context, videoID string) (*models.ContentMetadata, error) {
	cacheKey := "video_meta:" + videoID

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			meta := &models.ContentMetadata{}
			if err := json.Unmarshal([]byte(cached), meta); err == nil {
				return meta, nil
			}
		}
	}

	resp, err := s.yt.Videos.List([]string{"snippet", "contentDetails"}).Id(videoID).Context(ctx).Do()
	if err != nil {
		return nil, &UpstreamError{Message: fmt.Sprintf("video platform request failed: %v", err)}
	}
	if len(resp.Items) == 0 {
		return nil, &UpstreamError{Message: fmt.Sprintf("video %s not found on platform", videoID)}
	}

	item := resp.Items[0]
	meta := &models.ContentMetadata{
		Title:       item.Snippet.Title,
		Description: item.Snippet.Description,
		Tags:        item.Snippet.Tags,
		VideoLength: ConvertDurationToSeconds(item.ContentDetails.Duration),
	}
	if meta.Tags == nil {
		meta.Tags = []string{}
	}
	if thumbs := item.Snippet.Thumbnails; thumbs != nil {
		switch {
		case thumbs.High != nil:
			meta.Thumbnail = thumbs.High.Url
		case thumbs.Medium != nil:
			meta.Thumbnail = thumbs.Medium.Url
		case thumbs.Default != nil:
			meta.Thumbnail = thumbs.Default.Url
		}
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(meta); err == nil {
			if err := s.cache.Set(ctx, cacheKey, encoded, videoCacheTTL).Err(); err != nil {
				log.Printf("video: cache write failed for %s: %v", videoID, err)
			}
		}
	}

	return meta, nil
}
