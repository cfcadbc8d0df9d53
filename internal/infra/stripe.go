package infra

import (
	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"properly.homes/backend/internal/app/appconfig"
)

func Stripe(conf *appconfig.Config) *client.API {
	if conf.StripeSecretKey == "" {
		log.Warn().Msg("infra: stripe: no secret key configured; checkout calls will fail")
	}
	stripe.DefaultLeveledLogger = &stripe.LeveledLogger{Level: stripe.LevelWarn}
	return client.New(conf.StripeSecretKey, nil)
}
