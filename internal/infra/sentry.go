package infra

import (
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog/log"

	"properly.homes/backend/internal/app/appconfig"
	"properly.homes/backend/internal/pkg/bininfo"
)

// SentryInit initializes sentry with side-effect
func SentryInit(conf *appconfig.Config) error {
	if conf.SentryDSN == "" {
		log.Warn().Msg("Sentry is disabled due to missing DSN.")
		return nil
	}
	log.Info().Msg("Initializing Sentry...")
	return sentry.Init(sentry.ClientOptions{
		Dsn:              conf.SentryDSN,
		Release:          bininfo.Name + "@" + bininfo.Version,
		Environment:      conf.AppContext.Env.String(),
		Debug:            conf.DevMode,
		AttachStacktrace: true,
		TracesSampleRate: conf.TracingSampleRate,
		BeforeSend:       scrubCredentials,
	})
}

// scrubCredentials drops session cookies and bearer tokens before an event leaves the process.
func scrubCredentials(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	if event.Request == nil {
		return event
	}
	event.Request.Cookies = ""
	for k := range event.Request.Headers {
		switch strings.ToLower(k) {
		case "authorization", "cookie", "x-properly-admin-key", "stripe-signature":
			event.Request.Headers[k] = "[redacted]"
		}
	}
	return event
}
