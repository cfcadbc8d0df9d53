package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gopkg.in/guregu/null.v3"

	"properly.homes/backend/internal/constant"
	"properly.homes/backend/internal/model"
	"properly.homes/backend/internal/model/types"
	"properly.homes/backend/internal/pkg/authn"
	"properly.homes/backend/internal/pkg/middlewares"
	"properly.homes/backend/internal/pkg/moderation"
	"properly.homes/backend/internal/pkg/observability"
	"properly.homes/backend/internal/pkg/prerr"
	"properly.homes/backend/internal/repo"
)

// SuspendedNote marks listings taken offline because their agent has no subscription.
const SuspendedNote = "subscription expired"

var requestConverters = []copier.TypeConverter{
	{
		SrcType: int64(0),
		DstType: null.Int{},
		Fn: func(src any) (any, error) {
			v := src.(int64)
			return null.NewInt(v, v != 0), nil
		},
	},
	{
		SrcType: "",
		DstType: null.String{},
		Fn: func(src any) (any, error) {
			v := src.(string)
			return null.NewString(v, v != ""), nil
		},
	},
	{
		SrcType: (*float64)(nil),
		DstType: null.Float{},
		Fn: func(src any) (any, error) {
			return null.FloatFromPtr(src.(*float64)), nil
		},
	},
}

type Property struct {
	Properties    PropertyStore
	Rules         ModerationRuleStore
	Locations     LocationStore
	Subscriptions *Subscription
	Evaluator     *moderation.Evaluator
	// Locker serializes quota checks per agent so two requests cannot both take the last slot.
	Locker middlewares.Locker

	now func() time.Time
}

func NewProperty(properties *repo.Property, rules *repo.ModerationRule, locations *repo.Location, subscriptions *Subscription, locker middlewares.Locker) *Property {
	return &Property{
		Properties:    properties,
		Rules:         rules,
		Locations:     locations,
		Subscriptions: subscriptions,
		Evaluator:     moderation.NewEvaluator(),
		Locker:        locker,
		now:           time.Now,
	}
}

// withListingQuota runs fn while holding the agent's quota lock.
func (s *Property) withListingQuota(agentID int64, fn func() error) error {
	if s.Locker == nil {
		return fn()
	}
	mutex := s.Locker.NewMutex(constant.ListingQuotaMutexPrefix+strconv.FormatInt(agentID, 10),
		redsync.WithExpiry(constant.ListingQuotaLockExpiry),
		redsync.WithTries(constant.ListingQuotaLockTries))
	if err := mutex.Lock(); err != nil {
		log.Warn().
			Err(err).
			Str("evt.name", "property.quota.lock_failed").
			Int64("agentId", agentID).
			Msg("failed to acquire listing quota lock")
		return prerr.ErrTooManyRequests.Msg("another listing change is in progress, please retry")
	}
	defer func() {
		if _, err := mutex.Unlock(); err != nil {
			log.Warn().Err(err).Int64("agentId", agentID).Msg("failed to release listing quota lock")
		}
	}()
	return fn()
}

func (s *Property) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

func (s *Property) Search(ctx context.Context, query *types.PropertySearchQuery) (*types.Page[*model.Property], error) {
	offset, limit := query.Normalize()
	query.Sort = strings.ToLower(query.Sort)

	var (
		items []*model.Property
		total int
	)
	eg, ectx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		items, err = s.Properties.Search(ectx, query, offset, limit)
		return err
	})
	eg.Go(func() error {
		var err error
		total, err = s.Properties.CountSearch(ectx, query)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return types.NewPage(items, total, query.Pagination), nil
}

func canManage(p *model.Property, principal *authn.Principal, allowAdmin bool) bool {
	if principal == nil {
		return false
	}
	if allowAdmin && principal.Is(constant.RoleAdmin) {
		return true
	}
	return principal.UserID != 0 && principal.UserID == p.AgentID
}

// Get returns a listing by reference. Listings that are not active are only visible to their owner and admins.
// Public views are counted in the background.
func (s *Property) Get(ctx context.Context, ref string, principal *authn.Principal) (*model.Property, error) {
	p, err := s.Properties.GetByReference(ctx, ref)
	if err != nil {
		return nil, err
	}
	if p.Status != constant.PropertyStatusActive {
		if !canManage(p, principal, true) {
			return nil, prerr.ErrNotFound
		}
		return p, nil
	}

	if !canManage(p, principal, false) {
		go func(propertyID int64) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.Properties.IncrementViews(ctx, propertyID); err != nil {
				log.Warn().Err(err).Str("evt.name", "property.views.failed").Int64("propertyId", propertyID).Msg("failed to count view")
			}
		}(p.PropertyID)
	}
	return p, nil
}

// loadOwned fetches a listing the principal may modify.
func (s *Property) loadOwned(ctx context.Context, ref string, principal *authn.Principal, allowAdmin bool) (*model.Property, error) {
	p, err := s.Properties.GetByReference(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !canManage(p, principal, allowAdmin) {
		// hide listings of other agents
		if p.Status != constant.PropertyStatusActive {
			return nil, prerr.ErrNotFound
		}
		return nil, prerr.ErrForbidden
	}
	if p.Status == constant.PropertyStatusArchived {
		return nil, prerr.ErrNotFound
	}
	return p, nil
}

func (s *Property) resolveLocation(ctx context.Context, countryID, cityID, regionID int64) (int64, error) {
	cityRegion, ok, err := s.Locations.CityInCountry(ctx, cityID, countryID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, prerr.ErrInvalidReq.Msg("city %d is not in country %d", cityID, countryID)
	}
	if regionID != 0 && regionID != cityRegion {
		return 0, prerr.ErrInvalidReq.Msg("city %d is not in region %d", cityID, regionID)
	}
	return cityRegion, nil
}

// moderate runs the active rules and sets the status the listing would go live with.
func (s *Property) moderate(ctx context.Context, p *model.Property) error {
	rules, err := s.Rules.ListActive(ctx)
	if err != nil {
		return err
	}

	verdict := s.Evaluator.Evaluate(rules, p)
	switch {
	case verdict.Rejected():
		observability.ListingsModerated.WithLabelValues(constant.ModerationActionReject).Inc()
		return prerr.ErrListingRejected.WithExtras(prerr.Extras{"rule": verdict.Rule.Name})
	case verdict.Held():
		observability.ListingsModerated.WithLabelValues(constant.ModerationActionHold).Inc()
		p.Status = constant.PropertyStatusPending
		p.ModerationNote = null.StringFrom("held for review: " + verdict.Rule.Name)
	default:
		observability.ListingsModerated.WithLabelValues("publish").Inc()
		p.Status = constant.PropertyStatusActive
		p.ModerationNote = null.String{}
		if !p.PublishedAt.Valid {
			p.PublishedAt = null.TimeFrom(s.clock())
		}
	}
	return nil
}

func (s *Property) Create(ctx context.Context, agentID int64, req *types.PropertyCreateRequest) (*model.Property, error) {
	regionID, err := s.resolveLocation(ctx, req.CountryID, req.CityID, req.RegionID)
	if err != nil {
		return nil, err
	}
	var p model.Property
	if err := copier.CopyWithOption(&p, req, copier.Option{Converters: requestConverters}); err != nil {
		return nil, errors.Wrap(err, "map listing")
	}
	p.Reference = NewReference()
	p.AgentID = agentID
	p.RegionID = null.IntFrom(regionID)
	p.PriceCents = req.Price * 100
	p.Currency = strings.ToLower(req.Currency)
	if p.Currency == "" {
		p.Currency = "eur"
	}
	if p.Amenities == nil {
		p.Amenities = []string{}
	}

	err = s.withListingQuota(agentID, func() error {
		if err := s.Subscriptions.EnsureCanList(ctx, agentID); err != nil {
			return err
		}
		if err := s.moderate(ctx, &p); err != nil {
			return err
		}
		return s.Properties.Create(ctx, &p)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Property) Update(ctx context.Context, principal *authn.Principal, ref string, req *types.PropertyUpdateRequest) (*model.Property, error) {
	p, err := s.loadOwned(ctx, ref, principal, false)
	if err != nil {
		return nil, err
	}

	var columns []string
	remoderate := false
	if req.Title.Valid {
		p.Title = req.Title.String
		columns, remoderate = append(columns, "title"), true
	}
	if req.Description.Valid {
		p.Description = req.Description.String
		columns, remoderate = append(columns, "description"), true
	}
	if req.ListingType.Valid {
		p.ListingType = req.ListingType.String
		columns, remoderate = append(columns, "listing_type"), true
	}
	if req.PropertyType.Valid {
		p.PropertyType = req.PropertyType.String
		columns, remoderate = append(columns, "property_type"), true
	}
	if req.Price.Valid {
		p.PriceCents = req.Price.Int64 * 100
		columns, remoderate = append(columns, "price_cents"), true
	}
	if req.Bedrooms.Valid {
		p.Bedrooms = int(req.Bedrooms.Int64)
		columns = append(columns, "bedrooms")
	}
	if req.Bathrooms.Valid {
		p.Bathrooms = int(req.Bathrooms.Int64)
		columns = append(columns, "bathrooms")
	}
	if req.AreaSqm.Valid {
		p.AreaSqm = int(req.AreaSqm.Int64)
		columns = append(columns, "area_sqm")
	}
	if req.Address.Valid {
		p.Address = req.Address
		columns = append(columns, "address")
	}
	if req.Amenities != nil {
		p.Amenities = req.Amenities
		columns = append(columns, "amenities")
	}
	if req.Featured.Valid {
		p.Featured = req.Featured.Bool
		columns = append(columns, "featured")
	}
	if len(columns) == 0 {
		return p, nil
	}

	if remoderate && p.Status == constant.PropertyStatusActive {
		if err := s.moderate(ctx, p); err != nil {
			return nil, err
		}
		columns = append(columns, "status", "moderation_note", "published_at")
	}

	if err := s.Properties.Update(ctx, p, columns...); err != nil {
		return nil, err
	}
	return p, nil
}

// Archive soft deletes a listing.
func (s *Property) Archive(ctx context.Context, principal *authn.Principal, ref string) error {
	p, err := s.loadOwned(ctx, ref, principal, true)
	if err != nil {
		return err
	}
	p.Status = constant.PropertyStatusArchived
	return s.Properties.Update(ctx, p, "status")
}

// SetStatus lets an agent mark a listing sold or rented, or put it back online.
// Going back online checks the listing limit and runs the moderation rules again.
func (s *Property) SetStatus(ctx context.Context, principal *authn.Principal, ref, status string) (*model.Property, error) {
	p, err := s.loadOwned(ctx, ref, principal, false)
	if err != nil {
		return nil, err
	}
	if p.Status == status {
		return p, nil
	}

	switch status {
	case constant.PropertyStatusSold, constant.PropertyStatusRented:
		if p.Status != constant.PropertyStatusActive {
			return nil, prerr.ErrInvalidReq.Msg("only active listings can be marked %s", status)
		}
		p.Status = status
		return p, s.Properties.Update(ctx, p, "status")

	case constant.PropertyStatusActive:
		switch {
		case p.Status == constant.PropertyStatusPending && p.ModerationNote.String == SuspendedNote:
			// already counted against the limit
			if _, err := s.Subscriptions.Subscriptions.GetGranting(ctx, p.AgentID, s.clock(), s.Subscriptions.GracePeriod); err != nil {
				if errors.Is(err, prerr.ErrNotFound) {
					return nil, prerr.ErrSubscriptionRequired
				}
				return nil, err
			}
		case p.Status == constant.PropertyStatusSold, p.Status == constant.PropertyStatusRented, p.Status == constant.PropertyStatusDraft:
			err := s.withListingQuota(p.AgentID, func() error {
				if err := s.Subscriptions.EnsureCanList(ctx, p.AgentID); err != nil {
					return err
				}
				if err := s.moderate(ctx, p); err != nil {
					return err
				}
				return s.Properties.Update(ctx, p, "status", "moderation_note", "published_at")
			})
			if err != nil {
				return nil, err
			}
			return p, nil
		default:
			return nil, prerr.ErrInvalidReq.Msg("a %s listing cannot be reactivated", p.Status)
		}
		if err := s.moderate(ctx, p); err != nil {
			return nil, err
		}
		return p, s.Properties.Update(ctx, p, "status", "moderation_note", "published_at")
	}

	return nil, prerr.ErrInvalidReq.Msg("unsupported status %q", status)
}

func (s *Property) ListForAgent(ctx context.Context, agentID int64) (*types.AgentPropertiesResponse, error) {
	var (
		items []*model.Property
		usage *types.ListingUsage
	)
	eg, ectx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		items, err = s.Properties.ListByAgent(ectx, agentID)
		return err
	})
	eg.Go(func() error {
		var err error
		usage, err = s.Subscriptions.Usage(ectx, agentID)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return &types.AgentPropertiesResponse{Items: items, Usage: *usage}, nil
}

func (s *Property) ListForReview(ctx context.Context, query *types.AdminPropertyQuery) (*types.Page[*model.Property], error) {
	offset, limit := query.Normalize()
	items, total, err := s.Properties.ListByStatus(ctx, query.Status, offset, limit)
	if err != nil {
		return nil, err
	}
	return types.NewPage(items, total, query.Pagination), nil
}

// Approve publishes a listing held for review.
func (s *Property) Approve(ctx context.Context, ref string) (*model.Property, error) {
	p, err := s.Properties.GetByReference(ctx, ref)
	if err != nil {
		return nil, err
	}
	if p.Status != constant.PropertyStatusPending && p.Status != constant.PropertyStatusDraft {
		return nil, prerr.ErrInvalidReq.Msg("a %s listing cannot be approved", p.Status)
	}
	p.Status = constant.PropertyStatusActive
	p.ModerationNote = null.String{}
	if !p.PublishedAt.Valid {
		p.PublishedAt = null.TimeFrom(s.clock())
	}
	return p, s.Properties.Update(ctx, p, "status", "moderation_note", "published_at")
}

// Reject sends a listing back to its agent as a draft with the moderator's note.
func (s *Property) Reject(ctx context.Context, ref, note string) (*model.Property, error) {
	p, err := s.Properties.GetByReference(ctx, ref)
	if err != nil {
		return nil, err
	}
	if p.Status == constant.PropertyStatusArchived {
		return nil, prerr.ErrNotFound
	}
	p.Status = constant.PropertyStatusDraft
	p.ModerationNote = null.NewString(note, note != "")
	return p, s.Properties.Update(ctx, p, "status", "moderation_note")
}
