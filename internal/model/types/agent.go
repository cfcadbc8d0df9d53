package types

import "properly.homes/backend/internal/model"

// AgentPersonalStep is step 1 of the agent registration wizard.
type AgentPersonalStep struct {
	FirstName string `json:"firstName" msgpack:"firstName" validate:"required,max=64"`
	LastName  string `json:"lastName" msgpack:"lastName" validate:"required,max=64"`
	Email     string `json:"email" msgpack:"email" validate:"required,email,max=254"`
	Phone     string `json:"phone" msgpack:"phone" validate:"required,e164"`
}

// AgentAgencyStep is step 2 of the agent registration wizard.
type AgentAgencyStep struct {
	AgencyName      string `json:"agencyName" msgpack:"agencyName" validate:"required,max=128"`
	LicenseNumber   string `json:"licenseNumber" msgpack:"licenseNumber" validate:"required,max=64"`
	CountryID       int64  `json:"countryId" msgpack:"countryId" validate:"required,min=1"`
	CityID          int64  `json:"cityId" msgpack:"cityId" validate:"required,min=1"`
	Bio             string `json:"bio" msgpack:"bio" validate:"omitempty,max=2000"`
	Website         string `json:"website" msgpack:"website" validate:"omitempty,url"`
	YearsExperience int    `json:"yearsExperience" msgpack:"yearsExperience" validate:"omitempty,min=0,max=80"`
}

// AgentAccountStep is step 3 of the agent registration wizard. It is never persisted in a draft.
type AgentAccountStep struct {
	Password        string `json:"password" validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

// AgentPlanStep is step 4 of the agent registration wizard.
type AgentPlanStep struct {
	PlanID       int64  `json:"planId" msgpack:"planId" validate:"required,min=1"`
	BillingCycle string `json:"billingCycle" msgpack:"billingCycle" validate:"required,billingcycle"`
	AcceptTerms  bool   `json:"acceptTerms" msgpack:"acceptTerms" validate:"required"`
}

// AgentDraft is the saved progress of a registration. Step is the first step still to fill,
// 1 for a new draft and 0 once every step is saved.
type AgentDraft struct {
	DraftID        string             `json:"draftId" msgpack:"draftId"`
	Personal       *AgentPersonalStep `json:"personal,omitempty" msgpack:"personal"`
	Agency         *AgentAgencyStep   `json:"agency,omitempty" msgpack:"agency"`
	AccountChecked bool               `json:"accountChecked" msgpack:"accountChecked"`
	Plan           *AgentPlanStep     `json:"plan,omitempty" msgpack:"plan"`
	Step           int                `json:"step" msgpack:"step"`
	UpdatedAt      int64              `json:"updatedAt" msgpack:"updatedAt"`
}

type AgentRegisterRequest struct {
	DraftID  string            `json:"draftId" validate:"omitempty,alphanum,max=32"`
	Personal AgentPersonalStep `json:"personal"`
	Agency   AgentAgencyStep   `json:"agency"`
	Account  AgentAccountStep  `json:"account"`
	Plan     AgentPlanStep     `json:"plan"`
}

type AgentRegisterResponse struct {
	User           *model.User `json:"user"`
	CheckoutPlanID int64       `json:"checkoutPlanId"`
	BillingCycle   string      `json:"billingCycle"`
	RedirectURL    string      `json:"redirectUrl"`
}
