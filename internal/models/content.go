package models

import (
	"time"

	"github.com/google/uuid"
)

type ContentType string

const (
	ContentTypeVideo ContentType = "video"
	ContentTypePost  ContentType = "post"
)

func (t ContentType) Valid() bool {
	return t == ContentTypeVideo || t == ContentTypePost
}

type Content struct {
	ID          uuid.UUID   `json:"id"`
	URL         string      `json:"url"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Thumbnail   *string     `json:"thumbnail"`
	Favicon     *string     `json:"favicon"`
	Bookmark    bool        `json:"bookmark"`
	ContentType ContentType `json:"content_type"`
	UserID      uuid.UUID   `json:"user_id"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type VideoMetadata struct {
	ID          uuid.UUID `json:"id"`
	VideoLength int64     `json:"video_length"`
	ContentID   uuid.UUID `json:"content_id"`
}

type PostMetadata struct {
	ID        uuid.UUID `json:"id"`
	Body      string    `json:"body"`
	ContentID uuid.UUID `json:"content_id"`
}

// ContentMetadata is the uniform output of both metadata extractors.
type ContentMetadata struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Thumbnail   string   `json:"thumbnail"`
	Favicon     string   `json:"favicon"`
	Description string   `json:"description"`
	Body        string   `json:"body"`
	VideoLength int64    `json:"video_length"`
	Tags        []string `json:"tags"`
}

type AnalyzeRequest struct {
	URL          string `json:"url"`
	TagCount     int    `json:"tag_count"`
	DetailDegree int    `json:"detail_degree"`
}

type SaveContentRequest struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Thumbnail   string   `json:"thumbnail"`
	Favicon     string   `json:"favicon"`
	Bookmark    bool     `json:"bookmark"`
	VideoLength int64    `json:"video_length"`
	Body        string   `json:"body"`
	Tags        []string `json:"tags"`
}

type SaveContentResponse struct {
	ID   uuid.UUID     `json:"id"`
	Tags []TagResponse `json:"tags"`
}

type EditContentRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Thumbnail   string   `json:"thumbnail"`
	Bookmark    bool     `json:"bookmark"`
	Tags        []string `json:"tags"`
}

type EditContentResponse struct {
	Tags []TagResponse `json:"tags"`
}

// ContentResponse is the list/search item shape. VideoLength is present for
// videos, Body for posts.
type ContentResponse struct {
	ID          uuid.UUID `json:"id"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Thumbnail   *string   `json:"thumbnail"`
	Favicon     *string   `json:"favicon"`
	Description string    `json:"description"`
	Bookmark    bool      `json:"bookmark"`
	VideoLength *int64    `json:"video_length,omitempty"`
	Body        *string   `json:"body,omitempty"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
	Type        string    `json:"type"`
}
