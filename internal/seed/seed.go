// Package seed loads the reference data the site needs to run: plans and locations.
package seed

import (
	"context"

	"github.com/gosimple/slug"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"

	"properly.homes/backend/internal/model"
	"properly.homes/backend/internal/model/cache"
)

type Result struct {
	Plans     int `json:"plans"`
	Countries int `json:"countries"`
	Regions   int `json:"regions"`
	Cities    int `json:"cities"`
}

// Run upserts the reference data. Running it again updates names and prices in place.
func Run(ctx context.Context, db *bun.DB, currency string) (*Result, error) {
	res := &Result{}
	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := seedPlans(ctx, tx, currency, res); err != nil {
			return errors.Wrap(err, "seed plans")
		}
		if err := seedLocations(ctx, tx, res); err != nil {
			return errors.Wrap(err, "seed locations")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := cache.DeleteAll(); err != nil {
		log.Warn().Err(err).Msg("seeded, but failed to flush caches")
	}
	return res, nil
}

func seedPlans(ctx context.Context, tx bun.Tx, currency string, res *Result) error {
	for i, p := range plans {
		plan := &model.SubscriptionPlan{
			Code:                 p.Code,
			Name:                 p.Name,
			MonthlyPriceCents:    p.MonthlyPriceCents,
			Currency:             currency,
			ListingLimit:         p.ListingLimit,
			FeaturedListingQuota: p.FeaturedQuota,
			Features:             p.Features,
			SortOrder:            i + 1,
			Active:               true,
		}
		_, err := tx.NewInsert().
			Model(plan).
			On("CONFLICT (code) DO UPDATE").
			Set("name = EXCLUDED.name").
			Set("monthly_price_cents = EXCLUDED.monthly_price_cents").
			Set("currency = EXCLUDED.currency").
			Set("listing_limit = EXCLUDED.listing_limit").
			Set("featured_listing_quota = EXCLUDED.featured_listing_quota").
			Set("features = EXCLUDED.features").
			Set("sort_order = EXCLUDED.sort_order").
			Exec(ctx)
		if err != nil {
			return errors.Wrapf(err, "plan %s", p.Code)
		}
		res.Plans++
	}
	return nil
}

func seedLocations(ctx context.Context, tx bun.Tx, res *Result) error {
	for _, c := range locations {
		country := &model.Country{ISOCode: c.ISOCode, Name: c.Name, Slug: slug.Make(c.Name)}
		_, err := tx.NewInsert().
			Model(country).
			On("CONFLICT (iso_code) DO UPDATE").
			Set("name = EXCLUDED.name").
			Returning("country_id").
			Exec(ctx)
		if err != nil {
			return errors.Wrapf(err, "country %s", c.ISOCode)
		}
		res.Countries++

		for _, r := range c.Regions {
			region := &model.Region{CountryID: country.CountryID, Name: r.Name, Slug: slug.Make(r.Name)}
			_, err := tx.NewInsert().
				Model(region).
				On("CONFLICT (country_id, slug) DO UPDATE").
				Set("name = EXCLUDED.name").
				Returning("region_id").
				Exec(ctx)
			if err != nil {
				return errors.Wrapf(err, "region %s/%s", c.ISOCode, r.Name)
			}
			res.Regions++

			for _, ci := range r.Cities {
				city := &model.City{
					RegionID:  region.RegionID,
					Name:      ci.Name,
					Slug:      slug.Make(ci.Name),
					Latitude:  ci.Latitude,
					Longitude: ci.Longitude,
				}
				_, err := tx.NewInsert().
					Model(city).
					On("CONFLICT (region_id, slug) DO UPDATE").
					Set("name = EXCLUDED.name").
					Set("latitude = EXCLUDED.latitude").
					Set("longitude = EXCLUDED.longitude").
					Returning("city_id").
					Exec(ctx)
				if err != nil {
					return errors.Wrapf(err, "city %s", ci.Name)
				}
				res.Cities++
			}
		}
	}
	return nil
}
