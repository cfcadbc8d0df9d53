package types

import (
	"gopkg.in/guregu/null.v3"

	"properly.homes/backend/internal/model"
)

type PropertySearchQuery struct {
	Pagination

	Q            string `query:"q" validate:"omitempty,max=128"`
	ListingType  string `query:"listingType" validate:"omitempty,oneof=sale rent"`
	PropertyType string `query:"propertyType" validate:"omitempty,propertytype"`
	CountryID    int64  `query:"countryId" validate:"omitempty,min=1"`
	RegionID     int64  `query:"regionId" validate:"omitempty,min=1"`
	CityID       int64  `query:"cityId" validate:"omitempty,min=1"`
	MinPrice     int64  `query:"minPrice" validate:"omitempty,min=0,max=10000000000"`
	MaxPrice     int64  `query:"maxPrice" validate:"omitempty,min=0,max=10000000000,gtefield=MinPrice"`
	MinBedrooms  int    `query:"minBedrooms" validate:"omitempty,min=0,max=50"`
	Featured     bool   `query:"featured"`
	Sort         string `query:"sort" validate:"omitempty,caseinsensitiveoneof=newest price_asc price_desc"`
}

type PropertyCreateRequest struct {
	Title        string   `json:"title" validate:"required,min=8,max=160"`
	Description  string   `json:"description" validate:"required,min=30,max=10000"`
	ListingType  string   `json:"listingType" validate:"required,oneof=sale rent"`
	PropertyType string   `json:"propertyType" validate:"required,propertytype"`
	Price        int64    `json:"price" validate:"required,min=1,max=10000000000"`
	Currency     string   `json:"currency" validate:"omitempty,len=3,alpha"`
	Bedrooms     int      `json:"bedrooms" validate:"min=0,max=50"`
	Bathrooms    int      `json:"bathrooms" validate:"min=0,max=50"`
	AreaSqm      int      `json:"areaSqm" validate:"min=0,max=1000000"`
	CountryID    int64    `json:"countryId" validate:"required,min=1"`
	RegionID     int64    `json:"regionId" validate:"omitempty,min=1"`
	CityID       int64    `json:"cityId" validate:"required,min=1"`
	Address      string   `json:"address" validate:"omitempty,max=256"`
	Latitude     *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude    *float64 `json:"longitude" validate:"omitempty,longitude"`
	Amenities    []string `json:"amenities" validate:"omitempty,max=40,dive,max=64"`
	Featured     bool     `json:"featured"`
}

// PropertyUpdateRequest carries only the fields a client wants to change.
type PropertyUpdateRequest struct {
	Title        null.String `json:"title" validate:"omitempty,min=8,max=160"`
	Description  null.String `json:"description" validate:"omitempty,min=30,max=10000"`
	ListingType  null.String `json:"listingType" validate:"omitempty,oneof=sale rent"`
	PropertyType null.String `json:"propertyType" validate:"omitempty,propertytype"`
	Price        null.Int    `json:"price" validate:"omitempty,min=1,max=10000000000"`
	Bedrooms     null.Int    `json:"bedrooms" validate:"omitempty,min=0,max=50"`
	Bathrooms    null.Int    `json:"bathrooms" validate:"omitempty,min=0,max=50"`
	AreaSqm      null.Int    `json:"areaSqm" validate:"omitempty,min=0,max=1000000"`
	Address      null.String `json:"address" validate:"omitempty,max=256"`
	Amenities    []string    `json:"amenities" validate:"omitempty,max=40,dive,max=64"`
	Featured     null.Bool   `json:"featured"`
}

type PropertyStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active sold rented"`
}

type ModerationDecisionRequest struct {
	Note string `json:"note" validate:"omitempty,max=1000"`
}

type ImageUploadURLRequest struct {
	ContentType string `json:"contentType" validate:"required,oneof=image/jpeg image/png image/webp"`
	Filename    string `json:"filename" validate:"required,max=200"`
}

type ImageUploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	Key       string `json:"key"`
	PublicURL string `json:"publicUrl"`
	ExpiresIn int    `json:"expiresIn"`
}

type RegisterImageRequest struct {
	Key string `json:"key" validate:"required,max=512"`
}

type AgentPropertiesResponse struct {
	Items []*model.Property `json:"items"`
	Usage ListingUsage      `json:"usage"`
}

type ModerationRuleRequest struct {
	Name       string `json:"name" validate:"required,max=128"`
	Expression string `json:"expression" validate:"required,max=2000"`
	Action     string `json:"action" validate:"required,oneof=hold reject"`
	Active     *bool  `json:"active"`
}

type AdminPropertyQuery struct {
	Pagination

	Status string `query:"status" validate:"omitempty,oneof=draft pending active sold rented archived"`
}
