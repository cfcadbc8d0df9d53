package model

import (
	"time"

	"github.com/uptrace/bun"
	"gopkg.in/guregu/null.v3"
)

// Inquiry is a prospective buyer's or tenant's request about a listing, addressed to its agent.
type Inquiry struct {
	bun.BaseModel `bun:"table:inquiries,alias:iq"`

	InquiryID  int64       `bun:",pk,autoincrement" json:"id"`
	PropertyID int64       `bun:",notnull" json:"-"`
	AgentID    int64       `bun:",notnull" json:"agentId"`
	UserID     null.Int    `json:"userId"`
	Name       string      `bun:",notnull" json:"name"`
	Email      string      `bun:",notnull" json:"email"`
	Phone      null.String `json:"phone"`
	Message    string      `bun:",notnull" json:"message"`
	Status     string      `bun:",notnull,default:'new'" json:"status"`
	CreatedAt  time.Time   `bun:",nullzero,notnull,default:current_timestamp" json:"createdAt"`

	Property *Property `bun:"rel:belongs-to,join:property_id=property_id" json:"property,omitempty"`
}

type Message struct {
	bun.BaseModel `bun:"table:messages,alias:m"`

	MessageID   int64       `bun:",pk,autoincrement" json:"id"`
	SenderID    null.Int    `json:"senderId"`
	RecipientID null.Int    `json:"recipientId"`
	PropertyID  null.Int    `json:"propertyId"`
	Name        null.String `json:"name"`
	Email       null.String `json:"email"`
	Subject     string      `bun:",notnull" json:"subject"`
	Body        string      `bun:",notnull" json:"body"`
	ReadAt      null.Time   `json:"readAt"`
	CreatedAt   time.Time   `bun:",nullzero,notnull,default:current_timestamp" json:"createdAt"`
}
