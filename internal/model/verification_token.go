package model

import (
	"time"

	"github.com/uptrace/bun"
	"gopkg.in/guregu/null.v3"
)

// VerificationToken is a one-time code proving ownership of an email address.
// Only the SHA-256 digest of the code is stored.
type VerificationToken struct {
	bun.BaseModel `bun:"table:verification_tokens,alias:vt"`

	TokenID    int64     `bun:",pk,autoincrement" json:"id"`
	UserID     int64     `bun:",notnull" json:"userId"`
	Purpose    string    `bun:",notnull" json:"purpose"`
	CodeHash   string    `bun:",notnull" json:"-"`
	Attempts   int       `bun:",notnull,default:0" json:"attempts"`
	ExpiresAt  time.Time `bun:",notnull" json:"expiresAt"`
	ConsumedAt null.Time `json:"consumedAt"`
	CreatedAt  time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"createdAt"`
}

func (t *VerificationToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
