package service

import (
	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("service", fx.Provide(
		NewAuth,
		NewBlog,
		NewPlan,
		NewGeoIP,
		NewMedia,
		NewHealth,
		NewInquiry,
		NewWebhook,
		NewCheckout,
		NewFavorite,
		NewLocation,
		NewProperty,
		NewS3Storage,
		NewAgentWizard,
		NewSubscription,
		NewMailPublisher,
		NewStripeBilling,
		NewModerationRule,
	))
}
