package types

import "properly.homes/backend/internal/constant"

type Pagination struct {
	Page     int `query:"page" validate:"omitempty,min=1"`
	PageSize int `query:"pageSize" validate:"omitempty,min=1,max=50"`
}

// Normalize fills in defaults and returns the SQL offset and limit.
func (p *Pagination) Normalize() (offset int, limit int) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = constant.DefaultPageSize
	}
	if p.PageSize > constant.MaxPageSize {
		p.PageSize = constant.MaxPageSize
	}
	return (p.Page - 1) * p.PageSize, p.PageSize
}

type Page[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

func NewPage[T any](items []T, total int, p Pagination) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items:    items,
		Total:    total,
		Page:     p.Page,
		PageSize: p.PageSize,
	}
}

type StatusResponse struct {
	Message string `json:"message"`
}

const (
	HealthStatusOK       = "ok"
	HealthStatusDegraded = "degraded"
)

type HealthReport struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}
