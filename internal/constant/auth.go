package constant

const (
	AuthCookieName        = "properly_token"
	AuthorizationRealm    = "Bearer "
	AdminKeyHeader        = "X-Properly-Admin-Key"
	JWTIssuer             = "properly.homes"
	BcryptCost            = 12
	VerificationCodeDigit = 6
)

const (
	RoleUser  = "user"
	RoleAgent = "agent"
	RoleAdmin = "admin"
)

const (
	UserStatusPending   = "pending"
	UserStatusActive    = "active"
	UserStatusSuspended = "suspended"
	UserStatusDeleted   = "deleted"
)

const (
	TokenPurposeEmailVerification = "email_verification"
	TokenPurposePasswordReset     = "password_reset"
)
