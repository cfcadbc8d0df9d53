// Package pricing derives the prices shown and charged for subscription plans.
package pricing

import (
	"properly.homes/backend/internal/constant"
	"properly.homes/backend/internal/model"
	"properly.homes/backend/internal/model/types"
)

// AnnualPriceCents is twelve monthly payments minus the annual discount, rounded half up to the cent.
func AnnualPriceCents(monthlyCents int64) int64 {
	gross := monthlyCents * 12 * (100 - constant.AnnualDiscountPercent)
	return (gross + 50) / 100
}

// PriceCents is the amount charged per billing period.
func PriceCents(monthlyCents int64, cycle string) int64 {
	if cycle == constant.BillingCycleAnnual {
		return AnnualPriceCents(monthlyCents)
	}
	return monthlyCents
}

// Interval is the recurring interval of a billing cycle as understood by the payment provider.
func Interval(cycle string) string {
	if cycle == constant.BillingCycleAnnual {
		return "year"
	}
	return "month"
}

func toUnits(cents int64) float64 {
	return float64(cents) / 100
}

func View(plan *model.SubscriptionPlan, cycle string) *types.PlanView {
	if cycle == "" {
		cycle = constant.BillingCycleMonthly
	}
	features := plan.Features
	if features == nil {
		features = []string{}
	}
	return &types.PlanView{
		ID:                   plan.PlanID,
		Code:                 plan.Code,
		Name:                 plan.Name,
		Currency:             plan.Currency,
		MonthlyPrice:         toUnits(plan.MonthlyPriceCents),
		AnnualPrice:          toUnits(AnnualPriceCents(plan.MonthlyPriceCents)),
		DisplayPrice:         toUnits(PriceCents(plan.MonthlyPriceCents, cycle)),
		BillingCycle:         cycle,
		ListingLimit:         plan.ListingLimit,
		FeaturedListingQuota: plan.FeaturedListingQuota,
		Features:             features,
	}
}
