package service

import (
	"context"
	"crypto/rand"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/stripe/stripe-go/v76"
	"github.com/tidwall/gjson"
	"gopkg.in/guregu/null.v3"

	"properly.homes/backend/internal/app/appconfig"
	"properly.homes/backend/internal/constant"
	"properly.homes/backend/internal/model"
	modelcache "properly.homes/backend/internal/model/cache"
	"properly.homes/backend/internal/model/types"
	"properly.homes/backend/internal/pkg/observability"
	"properly.homes/backend/internal/pkg/pricing"
	"properly.homes/backend/internal/pkg/prerr"
	"properly.homes/backend/internal/repo"
)

// abandonedCheckoutAfter is how long a pending subscription waits for its checkout to complete.
const abandonedCheckoutAfter = 24 * time.Hour

// NewReference returns a sortable public identifier.
func NewReference() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// periodEnd is the end of a billing period of cycle starting at start.
func periodEnd(start time.Time, cycle string) time.Time {
	if cycle == constant.BillingCycleAnnual {
		return start.AddDate(1, 0, 0)
	}
	return start.AddDate(0, 1, 0)
}

type Plan struct {
	Plans PlanStore
}

func NewPlan(plans *repo.SubscriptionPlan) *Plan {
	modelcache.Initialize()
	return &Plan{
		Plans: plans,
	}
}

// Cache: plans, 24 hrs
func (s *Plan) List(ctx context.Context, cycle string) ([]*types.PlanView, error) {
	var plans []*model.SubscriptionPlan
	_, err := modelcache.Plans.MutexGetSet(modelcache.PlansKey, &plans, func() ([]*model.SubscriptionPlan, error) {
		return s.Plans.ListActive(ctx)
	}, 24*time.Hour)
	if err != nil {
		return nil, err
	}

	return lo.Map(plans, func(p *model.SubscriptionPlan, _ int) *types.PlanView {
		return pricing.View(p, cycle)
	}), nil
}

// Cache: plan#planId, 24 hrs
func (s *Plan) Get(ctx context.Context, planID int64) (*model.SubscriptionPlan, error) {
	var plan model.SubscriptionPlan
	_, err := modelcache.PlanByID.MutexGetSet(strconv.FormatInt(planID, 10), &plan, func() (model.SubscriptionPlan, error) {
		p, err := s.Plans.GetByID(ctx, planID)
		if err != nil {
			return model.SubscriptionPlan{}, err
		}
		return *p, nil
	}, 24*time.Hour)
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

type Subscription struct {
	Subscriptions SubscriptionStore
	Properties    PropertyStore
	Provider      BillingProvider

	GracePeriod time.Duration

	now func() time.Time
}

func NewSubscription(conf *appconfig.Config, subs *repo.Subscription, properties *repo.Property, provider *StripeBilling) *Subscription {
	return &Subscription{
		Subscriptions: subs,
		Properties:    properties,
		Provider:      provider,
		GracePeriod:   conf.SubscriptionGracePeriod,
		now:           time.Now,
	}
}

func (s *Subscription) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

func (s *Subscription) Current(ctx context.Context, userID int64) (*model.Subscription, error) {
	return s.Subscriptions.GetCurrent(ctx, userID)
}

// Cancel stops renewal at the end of the current period. The subscription keeps granting until then.
func (s *Subscription) Cancel(ctx context.Context, userID int64) (*model.Subscription, error) {
	sub, err := s.Subscriptions.GetCurrent(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sub.Status != constant.SubscriptionStatusActive && sub.Status != constant.SubscriptionStatusPastDue {
		return nil, prerr.ErrInvalidReq.Msg("subscription is %s and cannot be canceled", sub.Status)
	}
	if sub.CancelAtPeriodEnd {
		return sub, nil
	}
	if sub.ProviderSubscriptionID.Valid {
		if err := s.Provider.CancelAtPeriodEnd(ctx, sub.ProviderSubscriptionID.String); err != nil {
			log.Error().Err(err).Str("evt.name", "billing.cancel.failed").Int64("subscriptionId", sub.SubscriptionID).Msg("payment provider refused cancellation")
			return nil, prerr.ErrPaymentProvider
		}
	}
	if err := s.Subscriptions.SetCancelAtPeriodEnd(ctx, sub.SubscriptionID, true); err != nil {
		return nil, err
	}
	sub.CancelAtPeriodEnd = true
	return sub, nil
}

// Usage reports how many listing slots an agent uses. Limit is 0 without a granting subscription.
func (s *Subscription) Usage(ctx context.Context, agentID int64) (*types.ListingUsage, error) {
	used, err := s.Properties.CountListedByAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}
	usage := &types.ListingUsage{Used: used}

	sub, err := s.Subscriptions.GetGranting(ctx, agentID, s.clock(), s.GracePeriod)
	if errors.Is(err, prerr.ErrNotFound) {
		return usage, nil
	} else if err != nil {
		return nil, err
	}
	if sub.Plan != nil {
		usage.Limit = sub.Plan.ListingLimit
	}
	return usage, nil
}

// EnsureCanList checks that the agent may put one more listing online.
func (s *Subscription) EnsureCanList(ctx context.Context, agentID int64) error {
	sub, err := s.Subscriptions.GetGranting(ctx, agentID, s.clock(), s.GracePeriod)
	if errors.Is(err, prerr.ErrNotFound) {
		return prerr.ErrSubscriptionRequired
	} else if err != nil {
		return err
	}
	if sub.Plan == nil || sub.Plan.ListingLimit == constant.UnlimitedListings {
		return nil
	}

	used, err := s.Properties.CountListedByAgent(ctx, agentID)
	if err != nil {
		return err
	}
	if used >= sub.Plan.ListingLimit {
		return prerr.ErrListingLimitReached.WithExtras(prerr.Extras{
			"used":  used,
			"limit": sub.Plan.ListingLimit,
		})
	}
	return nil
}

// Sweep expires lapsed subscriptions and takes the listings of agents left without one offline.
func (s *Subscription) Sweep(ctx context.Context) (expired int64, suspended int64, err error) {
	now := s.clock()
	expired, err = s.Subscriptions.ExpireEnded(ctx, now, s.GracePeriod, abandonedCheckoutAfter)
	if err != nil {
		return 0, 0, errors.Wrap(err, "expire subscriptions")
	}
	suspended, err = s.Properties.SuspendUnsubscribed(ctx, now, s.GracePeriod, SuspendedNote)
	if err != nil {
		return expired, 0, errors.Wrap(err, "suspend listings")
	}
	observability.SubscriptionsSwept.WithLabelValues("expired").Add(float64(expired))
	observability.SubscriptionsSwept.WithLabelValues("suspended").Add(float64(suspended))
	return expired, suspended, nil
}

type Checkout struct {
	Plans         *Plan
	Users         UserStore
	Subscriptions SubscriptionStore
	Provider      BillingProvider
}

func NewCheckout(plans *Plan, users *repo.User, subs *repo.Subscription, provider *StripeBilling) *Checkout {
	return &Checkout{
		Plans:         plans,
		Users:         users,
		Subscriptions: subs,
		Provider:      provider,
	}
}

func (s *Checkout) Create(ctx context.Context, userID int64, req *types.CreateCheckoutRequest) (*types.CreateCheckoutResponse, error) {
	plan, err := s.Plans.Get(ctx, req.PlanID)
	if errors.Is(err, prerr.ErrNotFound) || (err == nil && !plan.Active) {
		return nil, prerr.ErrInvalidReq.Msg("plan %d does not exist", req.PlanID)
	} else if err != nil {
		return nil, err
	}
	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	sub := &model.Subscription{
		UserID:       userID,
		PlanID:       plan.PlanID,
		BillingCycle: req.BillingCycle,
		Status:       constant.SubscriptionStatusPending,
		Reference:    NewReference(),
	}
	if err := s.Subscriptions.Create(ctx, sub); err != nil {
		return nil, err
	}

	sess, err := s.Provider.CreateCheckoutSession(ctx, &CheckoutInput{
		SubscriptionID: sub.SubscriptionID,
		UserID:         userID,
		Reference:      sub.Reference,
		CustomerEmail:  user.Email,
		PlanCode:       plan.Code,
		PlanName:       plan.Name,
		Currency:       plan.Currency,
		AmountCents:    pricing.PriceCents(plan.MonthlyPriceCents, req.BillingCycle),
		Interval:       pricing.Interval(req.BillingCycle),
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		log.Error().Err(err).Str("evt.name", "billing.checkout.failed").Int64("subscriptionId", sub.SubscriptionID).Msg("failed to create checkout session")
		return nil, prerr.ErrPaymentProvider
	}
	if err := s.Subscriptions.SetCheckoutSession(ctx, sub.SubscriptionID, sess.ID); err != nil {
		return nil, err
	}

	observability.CheckoutSessions.WithLabelValues(plan.Code, req.BillingCycle).Inc()
	return &types.CreateCheckoutResponse{
		URL:       sess.URL,
		SessionID: sess.ID,
		Reference: sub.Reference,
	}, nil
}

var ErrInvalidSignature = prerr.ErrInvalidReq.Msg("invalid webhook signature")

type Webhook struct {
	Subscriptions SubscriptionStore
	Provider      BillingProvider

	now func() time.Time
}

func NewWebhook(subs *repo.Subscription, provider *StripeBilling) *Webhook {
	return &Webhook{
		Subscriptions: subs,
		Provider:      provider,
		now:           time.Now,
	}
}

func (s *Webhook) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

// Handle verifies and applies a payment provider event. Unknown events are ignored.
func (s *Webhook) Handle(ctx context.Context, payload []byte, signature string) error {
	event, err := s.Provider.ConstructEvent(payload, signature)
	if err != nil {
		observability.WebhookEvents.WithLabelValues("unknown", "bad_signature").Inc()
		return ErrInvalidSignature
	}

	var object gjson.Result
	if event.Data != nil {
		object = gjson.ParseBytes(event.Data.Raw)
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		err = s.checkoutCompleted(ctx, object)
	case stripe.EventTypeInvoicePaid:
		err = s.invoicePaid(ctx, object)
	case stripe.EventTypeInvoicePaymentFailed:
		err = s.setStatus(ctx, object.Get("subscription").String(), constant.SubscriptionStatusPastDue)
	case stripe.EventTypeCustomerSubscriptionDeleted:
		err = s.setStatus(ctx, object.Get("id").String(), constant.SubscriptionStatusCanceled)
	default:
		observability.WebhookEvents.WithLabelValues(string(event.Type), "ignored").Inc()
		return nil
	}

	if err != nil {
		observability.WebhookEvents.WithLabelValues(string(event.Type), "error").Inc()
		log.Error().Err(err).Str("evt.name", "billing.webhook.failed").Str("eventId", event.ID).Str("type", string(event.Type)).Msg("failed to apply webhook event")
		return err
	}
	observability.WebhookEvents.WithLabelValues(string(event.Type), "ok").Inc()
	return nil
}

func (s *Webhook) checkoutCompleted(ctx context.Context, session gjson.Result) error {
	subscriptionID := session.Get("metadata.subscription_id").Int()
	if subscriptionID == 0 {
		log.Warn().Str("evt.name", "billing.webhook.no_metadata").Str("sessionId", session.Get("id").String()).Msg("checkout session without subscription metadata")
		return nil
	}

	sub, err := s.Subscriptions.GetByID(ctx, subscriptionID)
	if errors.Is(err, prerr.ErrNotFound) {
		log.Warn().Str("evt.name", "billing.webhook.unknown_subscription").Int64("subscriptionId", subscriptionID).Msg("checkout completed for an unknown subscription")
		return nil
	} else if err != nil {
		return err
	}

	providerID := session.Get("subscription").String()
	if sub.Status == constant.SubscriptionStatusActive && sub.ProviderSubscriptionID.String == providerID {
		// redelivery
		return nil
	}

	now := s.clock()
	sub.Status = constant.SubscriptionStatusActive
	sub.ProviderCustomerID = null.NewString(session.Get("customer").String(), session.Get("customer").String() != "")
	sub.ProviderSubscriptionID = null.NewString(providerID, providerID != "")
	sub.CheckoutSessionID = null.StringFrom(session.Get("id").String())
	sub.CurrentPeriodStart = null.TimeFrom(now)
	sub.CurrentPeriodEnd = null.TimeFrom(periodEnd(now, sub.BillingCycle))
	sub.CancelAtPeriodEnd = false
	sub.UpdatedAt = now
	superseded, err := s.Subscriptions.Activate(ctx, sub)
	if err != nil {
		return err
	}

	// stop billing for the plans this checkout replaces
	for _, old := range superseded {
		if !old.ProviderSubscriptionID.Valid || old.ProviderSubscriptionID.String == providerID {
			continue
		}
		if err := s.Provider.CancelAtPeriodEnd(ctx, old.ProviderSubscriptionID.String); err != nil {
			observability.WebhookEvents.WithLabelValues("superseded.cancel", "error").Inc()
			log.Error().
				Err(err).
				Str("evt.name", "billing.webhook.supersede_failed").
				Int64("subscriptionId", old.SubscriptionID).
				Str("providerSubscriptionId", old.ProviderSubscriptionID.String).
				Msg("failed to cancel superseded provider subscription")
		}
	}
	return nil
}

func (s *Webhook) invoicePaid(ctx context.Context, invoice gjson.Result) error {
	providerID := invoice.Get("subscription").String()
	if providerID == "" {
		return nil
	}

	period := invoice.Get("lines.data.0.period")
	start, end := period.Get("start").Int(), period.Get("end").Int()
	if end == 0 {
		sub, err := s.Subscriptions.GetByProviderSubscriptionID(ctx, providerID)
		if errors.Is(err, prerr.ErrNotFound) {
			return nil
		} else if err != nil {
			return err
		}
		now := s.clock()
		start, end = now.Unix(), periodEnd(now, sub.BillingCycle).Unix()
	}

	_, err := s.Subscriptions.ExtendPeriod(ctx, providerID, time.Unix(start, 0), time.Unix(end, 0))
	return err
}

func (s *Webhook) setStatus(ctx context.Context, providerID, status string) error {
	if providerID == "" {
		return nil
	}
	n, err := s.Subscriptions.SetStatusByProviderID(ctx, providerID, status)
	if err != nil {
		return err
	}
	if n == 0 {
		log.Warn().Str("evt.name", "billing.webhook.unknown_subscription").Str("providerId", providerID).Msg("no subscription matches provider id")
	}
	return nil
}
