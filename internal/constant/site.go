package constant

import "time"

const (
	SiteName           = "Properly"
	DefaultLanguage    = "en"
	ServiceName        = "properly"
	MailStreamName     = "properly-mail"
	MailSubjectPrefix  = "MAIL."
	MailQueueGroup     = "properly-mail"
	SweeperMutexName   = "mutex:subscription-sweeper"
	RedirectAdmin      = "/admin"
	RedirectAgentHome  = "/agent/dashboard"
	RedirectPricing    = "/pricing"
	RedirectHome       = "/"
	RedirectVerifyMail = "/verify-email"
)

// ListingQuotaMutexPrefix is suffixed with the agent id.
const (
	ListingQuotaMutexPrefix = "mutex:listing-quota:"
	ListingQuotaLockExpiry  = 10 * time.Second
	ListingQuotaLockTries   = 20
)

// SupportedLanguages are the languages the site is translated to.
var SupportedLanguages = []string{"en", "fr", "es"}
