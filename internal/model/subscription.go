package model

import (
	"time"

	"github.com/uptrace/bun"
	"gopkg.in/guregu/null.v3"

	"properly.homes/backend/internal/constant"
)

type SubscriptionPlan struct {
	bun.BaseModel `bun:"table:subscription_plans,alias:sp"`

	PlanID               int64     `bun:",pk,autoincrement" json:"id"`
	Code                 string    `bun:",unique,notnull" json:"code"`
	Name                 string    `bun:",notnull" json:"name"`
	MonthlyPriceCents    int64     `bun:",notnull" json:"monthlyPriceCents"`
	Currency             string    `bun:",notnull,default:'eur'" json:"currency"`
	ListingLimit         int       `bun:",notnull" json:"listingLimit"`
	FeaturedListingQuota int       `bun:",notnull,default:0" json:"featuredListingQuota"`
	Features             []string  `bun:",array" json:"features"`
	SortOrder            int       `bun:",notnull,default:0" json:"sortOrder"`
	Active               bool      `bun:",notnull,default:true" json:"active"`
	CreatedAt            time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"createdAt"`
}

type Subscription struct {
	bun.BaseModel `bun:"table:subscriptions,alias:s"`

	SubscriptionID         int64       `bun:",pk,autoincrement" json:"id"`
	UserID                 int64       `bun:",notnull" json:"userId"`
	PlanID                 int64       `bun:",notnull" json:"planId"`
	BillingCycle           string      `bun:",notnull" json:"billingCycle"`
	Status                 string      `bun:",notnull,default:'pending'" json:"status"`
	Reference              string      `bun:",unique,notnull" json:"reference"`
	ProviderCustomerID     null.String `json:"-"`
	ProviderSubscriptionID null.String `json:"-"`
	CheckoutSessionID      null.String `json:"-"`
	CurrentPeriodStart     null.Time   `json:"currentPeriodStart"`
	CurrentPeriodEnd       null.Time   `json:"currentPeriodEnd"`
	CancelAtPeriodEnd      bool        `bun:",notnull,default:false" json:"cancelAtPeriodEnd"`
	CreatedAt              time.Time   `bun:",nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt              time.Time   `bun:",nullzero,notnull,default:current_timestamp" json:"updatedAt"`

	Plan *SubscriptionPlan `bun:"rel:belongs-to,join:plan_id=plan_id" json:"plan,omitempty"`
}

// Grants reports whether the subscription entitles its owner to publish listings at now.
// Active subscriptions grant until the period end; past_due ones keep their rights until the
// grace period after it runs out.
func (s *Subscription) Grants(now time.Time, grace time.Duration) bool {
	if !s.CurrentPeriodEnd.Valid {
		return false
	}
	switch s.Status {
	case constant.SubscriptionStatusActive:
		return now.Before(s.CurrentPeriodEnd.Time)
	case constant.SubscriptionStatusPastDue:
		return now.Before(s.CurrentPeriodEnd.Time.Add(grace))
	default:
		return false
	}
}
