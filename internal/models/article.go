package models

import (
	"time"

	"github.com/google/uuid"
)

type Article struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	Body           string    `json:"body"`
	EncodedContent string    `json:"encoded_content"`
	UpCount        int       `json:"up_count"`
	DownCount      int       `json:"down_count"`
	UserID         uuid.UUID `json:"user_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type CreateArticleRequest struct {
	Title          string   `json:"title"`
	Body           string   `json:"body"`
	EncodedContent string   `json:"encoded_content"`
	Tags           []string `json:"tags"`
}

type ArticleResponse struct {
	ID               uuid.UUID `json:"id"`
	Title            string    `json:"title"`
	Body             string    `json:"body"`
	UpCount          int       `json:"up_count"`
	DownCount        int       `json:"down_count"`
	UserName         string    `json:"user_name"`
	UserProfileImage *string   `json:"user_profile_image"`
	Tags             []string  `json:"tags"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ArticleBundleItem is a single content item inside an article's encoded
// bundle. Download materializes these as the downloading user's contents.
type ArticleBundleItem struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Thumbnail   string   `json:"thumbnail"`
	Favicon     string   `json:"favicon"`
	ContentType string   `json:"content_type"`
	VideoLength int64    `json:"video_length"`
	Body        string   `json:"body"`
	Tags        []string `json:"tags"`
}

type DownloadArticleResponse struct {
	ContentIDs []uuid.UUID `json:"content_ids"`
}
