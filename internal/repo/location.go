package repo

import (
	"context"

	"github.com/uptrace/bun"

	"properly.homes/backend/internal/model"
	"properly.homes/backend/internal/repo/selector"
)

type Location struct {
	db        *bun.DB
	countries selector.S[model.Country]
	regions   selector.S[model.Region]
	cities    selector.S[model.City]
}

func NewLocation(db *bun.DB) *Location {
	return &Location{
		db:        db,
		countries: selector.New[model.Country](db),
		regions:   selector.New[model.Region](db),
		cities:    selector.New[model.City](db),
	}
}

func (r *Location) Countries(ctx context.Context) ([]*model.Country, error) {
	return r.countries.SelectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Order("name ASC")
	})
}

func (r *Location) GetCountryByISO(ctx context.Context, iso string) (*model.Country, error) {
	return r.countries.SelectOne(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("iso_code = ?", iso)
	})
}

func (r *Location) RegionsByCountry(ctx context.Context, countryID int64) ([]*model.Region, error) {
	return r.regions.SelectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("country_id = ?", countryID).Order("name ASC")
	})
}

func (r *Location) CitiesByRegion(ctx context.Context, regionID int64) ([]*model.City, error) {
	return r.cities.SelectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("region_id = ?", regionID).Order("name ASC")
	})
}

// CityInCountry reports whether the city belongs to one of the country's regions, and returns that region.
func (r *Location) CityInCountry(ctx context.Context, cityID, countryID int64) (regionID int64, ok bool, err error) {
	err = r.db.NewSelect().
		TableExpr("cities AS ci").
		Join("JOIN regions AS r ON r.region_id = ci.region_id").
		Column("r.region_id").
		Where("ci.city_id = ?", cityID).
		Where("r.country_id = ?", countryID).
		Limit(1).
		Scan(ctx, &regionID)
	if err != nil {
		if isNoRows(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return regionID, true, nil
}

func (r *Location) UpsertCountry(ctx context.Context, c *model.Country) error {
	return r.db.NewInsert().
		Model(c).
		On("CONFLICT (iso_code) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("slug = EXCLUDED.slug").
		Returning("country_id").
		Scan(ctx)
}

func (r *Location) UpsertRegion(ctx context.Context, reg *model.Region) error {
	return r.db.NewInsert().
		Model(reg).
		On("CONFLICT (country_id, slug) DO UPDATE").
		Set("name = EXCLUDED.name").
		Returning("region_id").
		Scan(ctx)
}

func (r *Location) UpsertCity(ctx context.Context, c *model.City) error {
	return r.db.NewInsert().
		Model(c).
		On("CONFLICT (region_id, slug) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("latitude = EXCLUDED.latitude").
		Set("longitude = EXCLUDED.longitude").
		Returning("city_id").
		Scan(ctx)
}
