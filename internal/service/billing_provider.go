package service

import (
	"context"
	"strconv"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"properly.homes/backend/internal/app/appconfig"
)

type CheckoutInput struct {
	SubscriptionID int64
	UserID         int64
	Reference      string
	CustomerEmail  string
	PlanCode       string
	PlanName       string
	Currency       string
	AmountCents    int64
	Interval       string
	IdempotencyKey string
}

type CheckoutSession struct {
	ID  string
	URL string
}

// BillingProvider is the payment provider as seen by the billing services.
type BillingProvider interface {
	CreateCheckoutSession(ctx context.Context, in *CheckoutInput) (*CheckoutSession, error)
	CancelAtPeriodEnd(ctx context.Context, providerSubscriptionID string) error
	ConstructEvent(payload []byte, signature string) (stripe.Event, error)
}

type StripeBilling struct {
	API           *client.API
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
}

func NewStripeBilling(conf *appconfig.Config, api *client.API) *StripeBilling {
	return &StripeBilling{
		API:           api,
		WebhookSecret: conf.StripeWebhookSecret,
		SuccessURL:    conf.FrontendBaseURL + "/agent/dashboard?checkout=success&session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     conf.FrontendBaseURL + "/pricing?checkout=canceled",
	}
}

func (b *StripeBilling) CreateCheckoutSession(ctx context.Context, in *CheckoutInput) (*CheckoutSession, error) {
	metadata := map[string]string{
		"subscription_id": strconv.FormatInt(in.SubscriptionID, 10),
		"user_id":         strconv.FormatInt(in.UserID, 10),
		"plan_code":       in.PlanCode,
		"reference":       in.Reference,
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL:        stripe.String(b.SuccessURL),
		CancelURL:         stripe.String(b.CancelURL),
		ClientReferenceID: stripe.String(in.Reference),
		CustomerEmail:     stripe.String(in.CustomerEmail),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(in.Currency),
					UnitAmount: stripe.Int64(in.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(in.PlanName),
					},
					Recurring: &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
						Interval: stripe.String(in.Interval),
					},
				},
			},
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: metadata,
		},
	}
	params.Context = ctx
	if in.IdempotencyKey != "" {
		params.SetIdempotencyKey("checkout:" + in.IdempotencyKey)
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	sess, err := b.API.CheckoutSessions.New(params)
	if err != nil {
		return nil, err
	}
	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

func (b *StripeBilling) CancelAtPeriodEnd(ctx context.Context, providerSubscriptionID string) error {
	params := &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(true),
	}
	params.Context = ctx
	_, err := b.API.Subscriptions.Update(providerSubscriptionID, params)
	return err
}

func (b *StripeBilling) ConstructEvent(payload []byte, signature string) (stripe.Event, error) {
	return webhook.ConstructEventWithOptions(payload, signature, b.WebhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
}
