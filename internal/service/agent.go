package service

import (
	"context"
	"strings"
	"time"

	"github.com/dchest/uniuri"
	"github.com/pkg/errors"
	"gopkg.in/guregu/null.v3"

	"properly.homes/backend/internal/app/appconfig"
	"properly.homes/backend/internal/constant"
	"properly.homes/backend/internal/model"
	modelcache "properly.homes/backend/internal/model/cache"
	"properly.homes/backend/internal/model/types"
	"properly.homes/backend/internal/pkg/cache"
	"properly.homes/backend/internal/pkg/prerr"
	"properly.homes/backend/internal/repo"
)

const (
	StepPersonal = 1
	StepAgency   = 2
	StepAccount  = 3
	StepPlan     = 4

	draftIDLength = 24
)

// DraftStore keeps registration drafts between requests.
type DraftStore interface {
	Get(key string, dest *types.AgentDraft) error
	Set(key string, value types.AgentDraft, expire time.Duration) error
	Delete(key string) error
}

// AgentWizard drives the multi-step agent registration.
type AgentWizard struct {
	Auth      *Auth
	Users     UserStore
	Plans     PlanStore
	Locations LocationStore
	Drafts    DraftStore

	DraftTTL time.Duration
}

func NewAgentWizard(conf *appconfig.Config, auth *Auth, users *repo.User, plans *repo.SubscriptionPlan, locations *repo.Location) *AgentWizard {
	modelcache.Initialize()
	return &AgentWizard{
		Auth:      auth,
		Users:     users,
		Plans:     plans,
		Locations: locations,
		Drafts:    modelcache.AgentDrafts,
		DraftTTL:  conf.AgentDraftTTL,
	}
}

func (s *AgentWizard) CreateDraft(ctx context.Context) (*types.AgentDraft, error) {
	draft := types.AgentDraft{
		DraftID:   uniuri.NewLen(draftIDLength),
		Step:      StepPersonal,
		UpdatedAt: time.Now().Unix(),
	}
	if err := s.Drafts.Set(draft.DraftID, draft, s.DraftTTL); err != nil {
		return nil, errors.Wrap(err, "store draft")
	}
	return &draft, nil
}

func (s *AgentWizard) GetDraft(ctx context.Context, draftID string) (*types.AgentDraft, error) {
	var draft types.AgentDraft
	err := s.Drafts.Get(draftID, &draft)
	if errors.Is(err, cache.ErrNotFound) {
		return nil, prerr.ErrNotFound.Msg("registration draft not found or expired")
	} else if err != nil {
		return nil, err
	}
	return &draft, nil
}

// nextStep is the first step that has not been completed yet, or 0 when every step is done.
func nextStep(d *types.AgentDraft) int {
	switch {
	case d.Personal == nil:
		return StepPersonal
	case d.Agency == nil:
		return StepAgency
	case !d.AccountChecked:
		return StepAccount
	case d.Plan == nil:
		return StepPlan
	default:
		return 0
	}
}

func stepOutOfOrder(expected int) error {
	return prerr.ErrInvalidReq.
		Msg("complete step %d first", expected).
		WithExtras(prerr.Extras{"expectedStep": expected})
}

// SaveStep validates the business rules of one step and merges it into the draft.
// Steps can be revisited, but not skipped.
func (s *AgentWizard) SaveStep(ctx context.Context, draftID string, step int, payload any) (*types.AgentDraft, error) {
	draft, err := s.GetDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}

	if expected := nextStep(draft); expected != 0 && step > expected {
		return nil, stepOutOfOrder(expected)
	}

	switch p := payload.(type) {
	case *types.AgentPersonalStep:
		if step != StepPersonal {
			return nil, prerr.ErrInvalidReq
		}
		if err := s.checkPersonal(ctx, p); err != nil {
			return nil, err
		}
		draft.Personal = p
	case *types.AgentAgencyStep:
		if step != StepAgency {
			return nil, prerr.ErrInvalidReq
		}
		if err := s.checkAgency(ctx, p); err != nil {
			return nil, err
		}
		draft.Agency = p
	case *types.AgentAccountStep:
		if step != StepAccount {
			return nil, prerr.ErrInvalidReq
		}
		if p.Password != p.ConfirmPassword {
			return nil, prerr.ErrPasswordMismatch
		}
		draft.AccountChecked = true
	case *types.AgentPlanStep:
		if step != StepPlan {
			return nil, prerr.ErrInvalidReq
		}
		if err := s.checkPlan(ctx, p); err != nil {
			return nil, err
		}
		draft.Plan = p
	default:
		return nil, prerr.ErrInvalidReq.Msg("unknown step %d", step)
	}

	draft.Step = nextStep(draft)
	draft.UpdatedAt = time.Now().Unix()
	if err := s.Drafts.Set(draft.DraftID, *draft, s.DraftTTL); err != nil {
		return nil, errors.Wrap(err, "store draft")
	}
	return draft, nil
}

func (s *AgentWizard) checkPersonal(ctx context.Context, p *types.AgentPersonalStep) error {
	_, err := s.Users.GetByEmail(ctx, p.Email)
	if err == nil {
		return prerr.ErrConflict.Msg("an account with this email already exists")
	} else if !errors.Is(err, prerr.ErrNotFound) {
		return err
	}
	return nil
}

func (s *AgentWizard) checkAgency(ctx context.Context, p *types.AgentAgencyStep) error {
	_, ok, err := s.Locations.CityInCountry(ctx, p.CityID, p.CountryID)
	if err != nil {
		return err
	}
	if !ok {
		return prerr.ErrInvalidReq.Msg("city %d is not in country %d", p.CityID, p.CountryID)
	}
	return nil
}

func (s *AgentWizard) checkPlan(ctx context.Context, p *types.AgentPlanStep) error {
	if !p.AcceptTerms {
		return prerr.ErrInvalidReq.Msg("the terms of service must be accepted")
	}
	plan, err := s.Plans.GetByID(ctx, p.PlanID)
	if errors.Is(err, prerr.ErrNotFound) || (err == nil && !plan.Active) {
		return prerr.ErrInvalidReq.Msg("plan %d does not exist", p.PlanID)
	}
	return err
}

// Register creates the agent account from a complete submission. Every step is checked again.
func (s *AgentWizard) Register(ctx context.Context, req *types.AgentRegisterRequest, lang string) (*types.AgentRegisterResponse, error) {
	if req.Account.Password != req.Account.ConfirmPassword {
		return nil, prerr.ErrPasswordMismatch
	}
	if err := s.checkAgency(ctx, &req.Agency); err != nil {
		return nil, err
	}
	if err := s.checkPlan(ctx, &req.Plan); err != nil {
		return nil, err
	}

	hash, err := s.Auth.hash(req.Account.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Personal.Email)),
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.Personal.FirstName),
		LastName:     strings.TrimSpace(req.Personal.LastName),
		Phone:        null.StringFrom(req.Personal.Phone),
		Role:         constant.RoleAgent,
		Status:       constant.UserStatusPending,
		Language:     lang,
	}
	profile := &model.AgentProfile{
		AgencyName:      req.Agency.AgencyName,
		LicenseNumber:   req.Agency.LicenseNumber,
		CountryID:       req.Agency.CountryID,
		CityID:          req.Agency.CityID,
		Bio:             null.NewString(req.Agency.Bio, req.Agency.Bio != ""),
		Website:         null.NewString(req.Agency.Website, req.Agency.Website != ""),
		YearsExperience: null.NewInt(int64(req.Agency.YearsExperience), req.Agency.YearsExperience > 0),
	}
	if err := s.Users.CreateAgent(ctx, user, profile); err != nil {
		return nil, err
	}
	user.AgentProfile = profile

	s.Auth.sendCode(ctx, user, constant.TokenPurposeEmailVerification)

	if req.DraftID != "" {
		// the draft expires on its own if this fails
		_ = s.Drafts.Delete(req.DraftID)
	}

	return &types.AgentRegisterResponse{
		User:           user,
		CheckoutPlanID: req.Plan.PlanID,
		BillingCycle:   req.Plan.BillingCycle,
		RedirectURL:    constant.RedirectVerifyMail,
	}, nil
}
