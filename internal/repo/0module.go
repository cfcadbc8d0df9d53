package repo

import (
	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("repo", fx.Provide(
		NewUser,
		NewInquiry,
		NewMessage,
		NewLocation,
		NewProperty,
		NewFavorite,
		NewBlogPost,
		NewSubscription,
		NewPropertyImage,
		NewModerationRule,
		NewSubscriptionPlan,
		NewVerificationToken,
	))
}
