package model

import "github.com/uptrace/bun"

type Country struct {
	bun.BaseModel `bun:"table:countries,alias:co"`

	CountryID int64  `bun:",pk,autoincrement" json:"id"`
	ISOCode   string `bun:"iso_code,unique,notnull" json:"isoCode"`
	Name      string `bun:",notnull" json:"name"`
	Slug      string `bun:",unique,notnull" json:"slug"`
}

type Region struct {
	bun.BaseModel `bun:"table:regions,alias:r"`

	RegionID  int64  `bun:",pk,autoincrement" json:"id"`
	CountryID int64  `bun:",notnull" json:"countryId"`
	Name      string `bun:",notnull" json:"name"`
	Slug      string `bun:",notnull" json:"slug"`
}

type City struct {
	bun.BaseModel `bun:"table:cities,alias:ci"`

	CityID    int64   `bun:",pk,autoincrement" json:"id"`
	RegionID  int64   `bun:",notnull" json:"regionId"`
	Name      string  `bun:",notnull" json:"name"`
	Slug      string  `bun:",notnull" json:"slug"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
