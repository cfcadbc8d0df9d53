package constant

const (
	BillingCycleMonthly = "monthly"
	BillingCycleAnnual  = "annual"

	// AnnualDiscountPercent is the discount applied to twelve monthly payments when billed yearly.
	AnnualDiscountPercent = 20

	// UnlimitedListings marks a plan without a listing cap.
	UnlimitedListings = -1
)

const (
	PlanCodeBronze = "bronze"
	PlanCodeSilver = "silver"
	PlanCodeGold   = "gold"
)

const (
	SubscriptionStatusPending  = "pending"
	SubscriptionStatusActive   = "active"
	SubscriptionStatusPastDue  = "past_due"
	SubscriptionStatusCanceled = "canceled"
	SubscriptionStatusExpired  = "expired"
)

const (
	BlogStatusDraft     = "draft"
	BlogStatusPublished = "published"
	BlogStatusArchived  = "archived"

	BlogWordsPerMinute = 200
)
