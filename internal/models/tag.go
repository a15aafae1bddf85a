package models

import "github.com/google/uuid"

// DefaultTagColor is a packed 32-bit ARGB mid-grey.
const DefaultTagColor int64 = 4288585374

type Tag struct {
	ID      uuid.UUID `json:"id"`
	Tagname string    `json:"tagname"`
	Color   int64     `json:"color"`
	UserID  uuid.UUID `json:"user_id"`
}

type TagResponse struct {
	ID      uuid.UUID `json:"id"`
	Tagname string    `json:"tagname"`
	Color   int64     `json:"color"`
}

type CreateTagRequest struct {
	Tagname string `json:"tagname"`
	Color   *int64 `json:"color"`
}

type UpdateTagRequest struct {
	Tagname string `json:"tagname"`
	Color   *int64 `json:"color"`
}

type DeleteTagRequest struct {
	Tagname string `json:"tagname"`
}
