package service

import (
	"context"
	"strconv"
	"time"

	"github.com/samber/lo"

	"properly.homes/backend/internal/model"
	modelcache "properly.homes/backend/internal/model/cache"
	"properly.homes/backend/internal/pkg/prerr"
	"properly.homes/backend/internal/repo"
)

const locationCacheTTL = 24 * time.Hour

type Location struct {
	Locations LocationStore
}

func NewLocation(locations *repo.Location) *Location {
	modelcache.Initialize()
	return &Location{
		Locations: locations,
	}
}

// Cache: countries, 24 hrs
func (s *Location) Countries(ctx context.Context) ([]*model.Country, error) {
	var countries []*model.Country
	_, err := modelcache.Countries.MutexGetSet("all", &countries, func() ([]*model.Country, error) {
		return s.Locations.Countries(ctx)
	}, locationCacheTTL)
	return countries, err
}

// Cache: regions#countryId, 24 hrs
func (s *Location) Regions(ctx context.Context, countryID int64) ([]*model.Region, error) {
	countries, err := s.Countries(ctx)
	if err != nil {
		return nil, err
	}
	if !lo.ContainsBy(countries, func(c *model.Country) bool { return c.CountryID == countryID }) {
		return nil, prerr.ErrNotFound.Msg("country %d not found", countryID)
	}

	var regions []*model.Region
	_, err = modelcache.RegionsByCountryID.MutexGetSet(strconv.FormatInt(countryID, 10), &regions, func() ([]*model.Region, error) {
		return s.Locations.RegionsByCountry(ctx, countryID)
	}, locationCacheTTL)
	return regions, err
}

// Cache: cities#regionId, 24 hrs
func (s *Location) Cities(ctx context.Context, regionID int64) ([]*model.City, error) {
	var cities []*model.City
	_, err := modelcache.CitiesByRegionID.MutexGetSet(strconv.FormatInt(regionID, 10), &cities, func() ([]*model.City, error) {
		return s.Locations.CitiesByRegion(ctx, regionID)
	}, locationCacheTTL)
	return cities, err
}
