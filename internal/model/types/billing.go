package types

type PlanView struct {
	ID                   int64    `json:"id"`
	Code                 string   `json:"code"`
	Name                 string   `json:"name"`
	Currency             string   `json:"currency"`
	MonthlyPrice         float64  `json:"monthlyPrice"`
	AnnualPrice          float64  `json:"annualPrice"`
	DisplayPrice         float64  `json:"displayPrice"`
	BillingCycle         string   `json:"billingCycle"`
	ListingLimit         int      `json:"listingLimit"`
	FeaturedListingQuota int      `json:"featuredListingQuota"`
	Features             []string `json:"features"`
}

type PlansQuery struct {
	Billing string `query:"billing" validate:"omitempty,billingcycle"`
}

type CreateCheckoutRequest struct {
	PlanID       int64  `json:"planId" validate:"required,min=1"`
	BillingCycle string `json:"billingCycle" validate:"required,billingcycle"`

	// IdempotencyKey is forwarded to the payment provider. It is taken from the request header.
	IdempotencyKey string `json:"-"`
}

type CreateCheckoutResponse struct {
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
	Reference string `json:"reference"`
}

type ListingUsage struct {
	Used  int `json:"used"`
	Limit int `json:"limit"`
}
