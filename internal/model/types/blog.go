package types

import "gopkg.in/guregu/null.v3"

type BlogListQuery struct {
	Pagination

	Lang     string `query:"lang" validate:"omitempty,sitelanguage"`
	Category string `query:"category" validate:"omitempty,max=64"`
	Tag      string `query:"tag" validate:"omitempty,max=64"`
}

type AdminBlogListQuery struct {
	Pagination

	Status string `query:"status" validate:"omitempty,oneof=draft published archived"`
}

type BlogPostRequest struct {
	Title         string   `json:"title" validate:"required,max=200"`
	Language      string   `json:"language" validate:"omitempty,sitelanguage"`
	Excerpt       string   `json:"excerpt" validate:"omitempty,max=500"`
	Body          string   `json:"body" validate:"required"`
	CoverImageURL string   `json:"coverImageUrl" validate:"omitempty,url"`
	Category      string   `json:"category" validate:"required,max=64"`
	Tags          []string `json:"tags" validate:"omitempty,max=20,dive,max=64"`
}

type BlogPostUpdateRequest struct {
	Title         null.String `json:"title" validate:"omitempty,max=200"`
	Excerpt       null.String `json:"excerpt" validate:"omitempty,max=500"`
	Body          null.String `json:"body"`
	CoverImageURL null.String `json:"coverImageUrl" validate:"omitempty,url"`
	Category      null.String `json:"category" validate:"omitempty,max=64"`
	Tags          []string    `json:"tags" validate:"omitempty,max=20,dive,max=64"`
}
