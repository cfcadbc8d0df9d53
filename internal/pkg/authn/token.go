// Package authn issues and verifies the session tokens carried by API clients.
package authn

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"properly.homes/backend/internal/app/appconfig"
	"properly.homes/backend/internal/constant"
)

var ErrInvalidToken = errors.New("authn: invalid token")

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID int64
	Role   string
}

func (p *Principal) Is(roles ...string) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type Issued struct {
	Token     string
	ExpiresAt time.Time
}

type Authenticator struct {
	secret      []byte
	ttl         time.Duration
	rememberTTL time.Duration
	now         func() time.Time
}

func New(conf *appconfig.Config) *Authenticator {
	return NewWithSecret([]byte(conf.JWTSecret), conf.JWTTTL, conf.JWTRememberTTL)
}

func NewWithSecret(secret []byte, ttl, rememberTTL time.Duration) *Authenticator {
	return &Authenticator{
		secret:      secret,
		ttl:         ttl,
		rememberTTL: rememberTTL,
		now:         time.Now,
	}
}

// Issue signs an HS256 token for the user. remember selects the long-lived TTL.
func (a *Authenticator) Issue(userID int64, role string, remember bool) (*Issued, error) {
	ttl := a.ttl
	if remember {
		ttl = a.rememberTTL
	}
	now := a.now()
	exp := now.Add(ttl)
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    constant.JWTIssuer,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return nil, errors.Wrap(err, "sign token")
	}
	return &Issued{Token: signed, ExpiresAt: exp}, nil
}

func (a *Authenticator) Parse(token string) (*Principal, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(constant.JWTIssuer),
		jwt.WithTimeFunc(a.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidToken, err.Error())
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return nil, errors.Wrap(ErrInvalidToken, "bad subject")
	}
	return &Principal{UserID: id, Role: claims.Role}, nil
}

// TokenFromRequest reads a bearer token, falling back to the session cookie.
func TokenFromRequest(ctx *fiber.Ctx) string {
	if h := ctx.Get(fiber.HeaderAuthorization); strings.HasPrefix(h, constant.AuthorizationRealm) {
		return strings.TrimSpace(strings.TrimPrefix(h, constant.AuthorizationRealm))
	}
	return ctx.Cookies(constant.AuthCookieName)
}

func PrincipalFromCtx(ctx *fiber.Ctx) (*Principal, bool) {
	p, ok := ctx.Locals(constant.LocalsKeyPrincipal).(*Principal)
	return p, ok && p != nil
}

func SetPrincipal(ctx *fiber.Ctx, p *Principal) {
	ctx.Locals(constant.LocalsKeyPrincipal, p)
}
