package model

import (
	"time"

	"github.com/uptrace/bun"
	"gopkg.in/guregu/null.v3"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	UserID          int64       `bun:",pk,autoincrement" json:"id"`
	Email           string      `bun:",unique,notnull" json:"email"`
	PasswordHash    string      `bun:",notnull" json:"-"`
	FirstName       string      `bun:",notnull" json:"firstName"`
	LastName        string      `bun:",notnull" json:"lastName"`
	Phone           null.String `json:"phone"`
	Role            string      `bun:",notnull,default:'user'" json:"role"`
	Status          string      `bun:",notnull,default:'pending'" json:"status"`
	Language        string      `bun:",notnull,default:'en'" json:"language"`
	EmailVerifiedAt null.Time   `json:"emailVerifiedAt"`
	CreatedAt       time.Time   `bun:",nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt       time.Time   `bun:",nullzero,notnull,default:current_timestamp" json:"updatedAt"`

	AgentProfile *AgentProfile `bun:"rel:has-one,join:user_id=user_id" json:"agentProfile,omitempty"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

type AgentProfile struct {
	bun.BaseModel `bun:"table:agent_profiles,alias:ap"`

	UserID          int64       `bun:",pk" json:"userId"`
	AgencyName      string      `bun:",notnull" json:"agencyName"`
	LicenseNumber   string      `bun:",notnull" json:"licenseNumber"`
	CountryID       int64       `bun:",notnull" json:"countryId"`
	CityID          int64       `bun:",notnull" json:"cityId"`
	Bio             null.String `json:"bio"`
	Website         null.String `json:"website"`
	YearsExperience null.Int    `json:"yearsExperience"`
	CreatedAt       time.Time   `bun:",nullzero,notnull,default:current_timestamp" json:"createdAt"`
}
