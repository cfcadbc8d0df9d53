// Package pgqry composes the listing search filters onto a bun query.
package pgqry

import (
	"strings"

	"github.com/uptrace/bun"

	"properly.homes/backend/internal/constant"
	"properly.homes/backend/internal/model/types"
)

type pq struct {
	Q *bun.SelectQuery
}

func New(bunQuery *bun.SelectQuery) *pq {
	return &pq{Q: bunQuery}
}

func (pq *pq) UseCityByID(onColumn string) *pq {
	pq.Q = pq.Q.Join("LEFT JOIN cities AS ci ON ci.city_id = " + onColumn)
	return pq
}

func (pq *pq) DoFilterActive() *pq {
	pq.Q = pq.Q.Where("p.status = ?", constant.PropertyStatusActive)
	return pq
}

// escapeLike escapes the LIKE wildcards of user input.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// DoFilterSearch applies every non-zero filter of the query. Text search needs UseCityByID.
func (pq *pq) DoFilterSearch(query *types.PropertySearchQuery) *pq {
	q := pq.Q
	if s := strings.TrimSpace(query.Q); s != "" {
		pattern := "%" + escapeLike(s) + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("p.title ILIKE ?", pattern).WhereOr("ci.name ILIKE ?", pattern)
		})
	}
	if query.ListingType != "" {
		q = q.Where("p.listing_type = ?", query.ListingType)
	}
	if query.PropertyType != "" {
		q = q.Where("p.property_type = ?", query.PropertyType)
	}
	if query.CountryID > 0 {
		q = q.Where("p.country_id = ?", query.CountryID)
	}
	if query.RegionID > 0 {
		q = q.Where("p.region_id = ?", query.RegionID)
	}
	if query.CityID > 0 {
		q = q.Where("p.city_id = ?", query.CityID)
	}
	if query.MinPrice > 0 {
		q = q.Where("p.price_cents >= ?", query.MinPrice*100)
	}
	if query.MaxPrice > 0 {
		q = q.Where("p.price_cents <= ?", query.MaxPrice*100)
	}
	if query.MinBedrooms > 0 {
		q = q.Where("p.bedrooms >= ?", query.MinBedrooms)
	}
	if query.Featured {
		q = q.Where("p.featured = TRUE")
	}
	pq.Q = q
	return pq
}

func (pq *pq) DoSort(sort string) *pq {
	switch strings.ToLower(sort) {
	case "price_asc":
		pq.Q = pq.Q.Order("p.price_cents ASC", "p.property_id DESC")
	case "price_desc":
		pq.Q = pq.Q.Order("p.price_cents DESC", "p.property_id DESC")
	default:
		pq.Q = pq.Q.OrderExpr("p.published_at DESC NULLS LAST, p.property_id DESC")
	}
	return pq
}
