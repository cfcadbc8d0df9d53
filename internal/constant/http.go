package constant

import "time"

const (
	RequestIDHeader    = "X-Properly-Request-ID"
	IdempotencyHeader  = "X-Properly-Idempotency"
	IdempotencyKeyHdr  = "Idempotency-Key"
	CacheStatusHeader  = "X-Properly-Cache"
	StripeSignatureHdr = "Stripe-Signature"

	IdempotencyKeyLengthLimit = 128
)

const (
	LocalsKeyRequestID   = "requestId"
	LocalsKeyIdempotency = "idempotencyKey"
	LocalsKeyTranslator  = "T"
	LocalsKeyLanguage    = "lang"
	LocalsKeyPrincipal   = "principal"
)

const (
	IdempotencyLifetime       = 24 * time.Hour
	IdempotencyRedisKeyPrefix = "idempotency"
	RateLimitRedisKeyPrefix   = "ratelimit"

	AuthRateLimitMax    = 10
	AuthRateLimitWindow = time.Minute

	ContactRateLimitMax    = 5
	ContactRateLimitWindow = 10 * time.Minute
)
