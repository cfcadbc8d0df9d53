package service

import (
	"net"

	"github.com/oschwald/geoip2-golang"
	"github.com/pkg/errors"

	"properly.homes/backend/internal/constant"
	"properly.homes/backend/internal/model/types"
	"properly.homes/backend/internal/util/i18n"
)

var (
	frenchSpeaking  = map[string]bool{"FR": true, "BE": true, "CH": true, "LU": true, "MC": true}
	spanishSpeaking = map[string]bool{"ES": true, "MX": true, "AR": true, "CO": true}

	currencyByCountry = map[string]string{
		"US": "USD",
		"GB": "GBP",
		"CH": "CHF",
	}

	// eurozone and microstates using the euro
	euroCountries = map[string]bool{
		"AT": true, "BE": true, "CY": true, "DE": true, "EE": true, "ES": true, "FI": true,
		"FR": true, "GR": true, "HR": true, "IE": true, "IT": true, "LT": true, "LU": true,
		"LV": true, "MT": true, "NL": true, "PT": true, "SI": true, "SK": true, "MC": true,
		"AD": true, "SM": true, "VA": true, "ME": true,
	}
)

type GeoIP struct {
	// DB is nil when no database is configured.
	DB *geoip2.Reader
}

func NewGeoIP(db *geoip2.Reader) *GeoIP {
	return &GeoIP{
		DB: db,
	}
}

func (s *GeoIP) Country(ip string) (string, error) {
	if s.DB == nil {
		return "", errors.New("geoip database not configured")
	}
	netIP := net.ParseIP(ip)
	if netIP == nil {
		return "", errors.New("invalid ip")
	}
	country, err := s.DB.Country(netIP)
	if err != nil {
		return "", err
	}
	return country.Country.IsoCode, nil
}

// Locale suggests a site language and display currency for a client.
// The Accept-Language header is used when the country cannot be resolved.
func (s *GeoIP) Locale(ip, acceptLanguage string) *types.LocaleResponse {
	country, err := s.Country(ip)
	if err != nil || country == "" {
		lang := i18n.Match(acceptLanguage)
		return &types.LocaleResponse{
			Language: lang,
			Currency: "EUR",
			Source:   "accept-language",
		}
	}

	return &types.LocaleResponse{
		Country:  country,
		Language: LanguageForCountry(country),
		Currency: CurrencyForCountry(country),
		Source:   "geoip",
	}
}

func LanguageForCountry(iso string) string {
	switch {
	case frenchSpeaking[iso]:
		return "fr"
	case spanishSpeaking[iso]:
		return "es"
	default:
		return constant.DefaultLanguage
	}
}

func CurrencyForCountry(iso string) string {
	if c, ok := currencyByCountry[iso]; ok {
		return c
	}
	if euroCountries[iso] {
		return "EUR"
	}
	// the site only displays four currencies
	return "USD"
}
