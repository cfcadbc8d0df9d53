package model

import (
	"time"

	"github.com/uptrace/bun"
	"gopkg.in/guregu/null.v3"
)

type Property struct {
	bun.BaseModel `bun:"table:properties,alias:p"`

	PropertyID     int64       `bun:",pk,autoincrement" json:"-"`
	Reference      string      `bun:",unique,notnull" json:"reference"`
	AgentID        int64       `bun:",notnull" json:"agentId"`
	Title          string      `bun:",notnull" json:"title"`
	Description    string      `bun:",notnull" json:"description"`
	ListingType    string      `bun:",notnull" json:"listingType"`
	PropertyType   string      `bun:",notnull" json:"propertyType"`
	PriceCents     int64       `bun:",notnull" json:"priceCents"`
	Currency       string      `bun:",notnull,default:'eur'" json:"currency"`
	Bedrooms       int         `bun:",notnull,default:0" json:"bedrooms"`
	Bathrooms      int         `bun:",notnull,default:0" json:"bathrooms"`
	AreaSqm        int         `bun:",notnull,default:0" json:"areaSqm"`
	CountryID      int64       `bun:",notnull" json:"countryId"`
	RegionID       null.Int    `json:"regionId"`
	CityID         int64       `bun:",notnull" json:"cityId"`
	Address        null.String `json:"address"`
	Latitude       null.Float  `json:"latitude"`
	Longitude      null.Float  `json:"longitude"`
	Amenities      []string    `bun:",array" json:"amenities"`
	Featured       bool        `bun:",notnull,default:false" json:"featured"`
	Status         string      `bun:",notnull,default:'pending'" json:"status"`
	ModerationNote null.String `json:"moderationNote,omitempty"`
	ViewCount      int64       `bun:",notnull,default:0" json:"viewCount"`
	PublishedAt    null.Time   `json:"publishedAt"`
	CreatedAt      time.Time   `bun:",nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt      time.Time   `bun:",nullzero,notnull,default:current_timestamp" json:"updatedAt"`

	Images []*PropertyImage `bun:"rel:has-many,join:property_id=property_id" json:"images,omitempty"`
}

type PropertyImage struct {
	bun.BaseModel `bun:"table:property_images,alias:pi"`

	ImageID    int64     `bun:",pk,autoincrement" json:"id"`
	PropertyID int64     `bun:",notnull" json:"-"`
	ObjectKey  string    `bun:",notnull" json:"-"`
	URL        string    `bun:"url,notnull" json:"url"`
	SortOrder  int       `bun:",notnull,default:0" json:"sortOrder"`
	CreatedAt  time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"createdAt"`
}

type Favorite struct {
	bun.BaseModel `bun:"table:favorites,alias:f"`

	UserID     int64     `bun:",pk" json:"userId"`
	PropertyID int64     `bun:",pk" json:"-"`
	CreatedAt  time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"createdAt"`

	Property *Property `bun:"rel:belongs-to,join:property_id=property_id" json:"property,omitempty"`
}

// ModerationRule is an expression evaluated against every new or edited listing.
type ModerationRule struct {
	bun.BaseModel `bun:"table:moderation_rules,alias:mr"`

	RuleID     int64     `bun:",pk,autoincrement" json:"id"`
	Name       string    `bun:",notnull" json:"name"`
	Expression string    `bun:",notnull" json:"expression"`
	Action     string    `bun:",notnull" json:"action"`
	Active     bool      `bun:",notnull,default:true" json:"active"`
	CreatedAt  time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"createdAt"`
}
