package model

import (
	"time"

	"github.com/uptrace/bun"
	"gopkg.in/guregu/null.v3"
)

type BlogPost struct {
	bun.BaseModel `bun:"table:blog_posts,alias:bp"`

	PostID         int64       `bun:",pk,autoincrement" json:"id"`
	Slug           string      `bun:",unique,notnull" json:"slug"`
	Language       string      `bun:",notnull,default:'en'" json:"language"`
	Title          string      `bun:",notnull" json:"title"`
	Excerpt        string      `bun:",notnull,default:''" json:"excerpt"`
	Body           string      `bun:",notnull" json:"body,omitempty"`
	CoverImageURL  null.String `json:"coverImageUrl"`
	Category       string      `bun:",notnull" json:"category"`
	Tags           []string    `bun:",array" json:"tags"`
	AuthorID       null.Int    `json:"authorId"`
	Status         string      `bun:",notnull,default:'draft'" json:"status"`
	ReadingMinutes int         `bun:",notnull,default:1" json:"readingMinutes"`
	PublishedAt    null.Time   `json:"publishedAt"`
	CreatedAt      time.Time   `bun:",nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt      time.Time   `bun:",nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

type BlogCategory struct {
	Category string `bun:"category" json:"category"`
	Count    int    `bun:"count" json:"count"`
}
