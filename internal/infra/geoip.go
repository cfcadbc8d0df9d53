package infra

import (
	"github.com/oschwald/geoip2-golang"
	"github.com/rs/zerolog/log"

	"properly.homes/backend/internal/app/appconfig"
)

// GeoIPDatabase opens the country database. A nil reader means locale suggestions fall back to Accept-Language.
func GeoIPDatabase(conf *appconfig.Config) (*geoip2.Reader, error) {
	if conf.GeoIPDBPath == "" {
		log.Warn().Msg("infra: geoip: no database configured; locale suggestion will use Accept-Language only")
		return nil, nil
	}
	db, err := geoip2.Open(conf.GeoIPDBPath)
	if err != nil {
		log.Error().Err(err).Str("path", conf.GeoIPDBPath).Msg("infra: geoip: failed to open database")
		return nil, err
	}

	return db, nil
}
