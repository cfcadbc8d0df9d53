package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"
	"gopkg.in/guregu/null.v3"

	"properly.homes/backend/internal/constant"
	"properly.homes/backend/internal/model"
	modelcache "properly.homes/backend/internal/model/cache"
	"properly.homes/backend/internal/pkg/prerr"
)

const testWebhookSecret = "whsec_test_secret"

var billingNow = time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)

func grantingSub(userID int64, limit int) *model.Subscription {
	return &model.Subscription{
		SubscriptionID:   1,
		UserID:           userID,
		Status:           constant.SubscriptionStatusActive,
		CurrentPeriodEnd: null.TimeFrom(billingNow.Add(10 * 24 * time.Hour)),
		Plan:             &model.SubscriptionPlan{Code: "silver", ListingLimit: limit},
	}
}

func newTestSubscription(subs *fakeSubscriptions, props *fakeProperties) *Subscription {
	return &Subscription{
		Subscriptions: subs,
		Properties:    props,
		Provider:      &fakeProvider{},
		GracePeriod:   72 * time.Hour,
		now:           func() time.Time { return billingNow },
	}
}

func TestEnsureCanList(t *testing.T) {
	ctx := context.Background()

	t.Run("no subscription", func(t *testing.T) {
		s := newTestSubscription(newFakeSubscriptions(), newFakeProperties())
		assert.ErrorIs(t, s.EnsureCanList(ctx, 7), prerr.ErrSubscriptionRequired)
	})

	t.Run("under limit", func(t *testing.T) {
		subs := newFakeSubscriptions()
		subs.granting = grantingSub(7, 5)
		props := newFakeProperties()
		props.listed = 4
		assert.NoError(t, newTestSubscription(subs, props).EnsureCanList(ctx, 7))
	})

	t.Run("limit reached", func(t *testing.T) {
		subs := newFakeSubscriptions()
		subs.granting = grantingSub(7, 5)
		props := newFakeProperties()
		props.listed = 5
		err := newTestSubscription(subs, props).EnsureCanList(ctx, 7)
		require.ErrorIs(t, err, prerr.ErrListingLimitReached)
		var pe *prerr.Error
		require.ErrorAs(t, err, &pe)
		require.NotNil(t, pe.Extras)
		assert.Equal(t, 5, (*pe.Extras)["limit"])
	})

	t.Run("unlimited plan", func(t *testing.T) {
		subs := newFakeSubscriptions()
		subs.granting = grantingSub(7, constant.UnlimitedListings)
		props := newFakeProperties()
		props.listed = 500
		assert.NoError(t, newTestSubscription(subs, props).EnsureCanList(ctx, 7))
	})

	t.Run("past due within grace", func(t *testing.T) {
		subs := newFakeSubscriptions()
		sub := grantingSub(7, 5)
		sub.Status = constant.SubscriptionStatusPastDue
		sub.CurrentPeriodEnd = null.TimeFrom(billingNow.Add(-48 * time.Hour))
		subs.granting = sub
		assert.NoError(t, newTestSubscription(subs, newFakeProperties()).EnsureCanList(ctx, 7))

		sub.CurrentPeriodEnd = null.TimeFrom(billingNow.Add(-73 * time.Hour))
		assert.ErrorIs(t, newTestSubscription(subs, newFakeProperties()).EnsureCanList(ctx, 7), prerr.ErrSubscriptionRequired)
	})

	t.Run("active past period end gets no grace", func(t *testing.T) {
		subs := newFakeSubscriptions()
		sub := grantingSub(7, 5)
		sub.CurrentPeriodEnd = null.TimeFrom(billingNow.Add(-24 * time.Hour))
		subs.granting = sub
		assert.ErrorIs(t, newTestSubscription(subs, newFakeProperties()).EnsureCanList(ctx, 7), prerr.ErrSubscriptionRequired)
	})
}

func TestUsageWithoutSubscription(t *testing.T) {
	props := newFakeProperties()
	props.listed = 3
	usage, err := newTestSubscription(newFakeSubscriptions(), props).Usage(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 3, usage.Used)
	assert.Equal(t, 0, usage.Limit)
}

func TestCancelSubscription(t *testing.T) {
	ctx := context.Background()
	subs := newFakeSubscriptions()
	sub := grantingSub(7, 5)
	sub.ProviderSubscriptionID = null.StringFrom("sub_123")
	require.NoError(t, subs.Create(ctx, sub))

	provider := &fakeProvider{}
	s := newTestSubscription(subs, newFakeProperties())
	s.Provider = provider

	got, err := s.Cancel(ctx, 7)
	require.NoError(t, err)
	assert.True(t, got.CancelAtPeriodEnd)
	assert.Equal(t, []string{"sub_123"}, provider.canceled)

	_, err = s.Cancel(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, provider.canceled, 1)
}

func TestCancelProviderFailure(t *testing.T) {
	ctx := context.Background()
	subs := newFakeSubscriptions()
	sub := grantingSub(7, 5)
	sub.ProviderSubscriptionID = null.StringFrom("sub_123")
	require.NoError(t, subs.Create(ctx, sub))

	s := newTestSubscription(subs, newFakeProperties())
	s.Provider = &fakeProvider{fail: true}
	_, err := s.Cancel(ctx, 7)
	assert.ErrorIs(t, err, prerr.ErrPaymentProvider)
	assert.False(t, sub.CancelAtPeriodEnd)
}

func TestPeriodEnd(t *testing.T) {
	start := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2027, 1, 31, 0, 0, 0, 0, time.UTC), periodEnd(start, constant.BillingCycleAnnual))
	assert.Equal(t, start.AddDate(0, 1, 0), periodEnd(start, constant.BillingCycleMonthly))
}

func newTestWebhook(subs *fakeSubscriptions) *Webhook {
	return &Webhook{
		Subscriptions: subs,
		Provider:      &fakeProvider{stripe: &StripeBilling{WebhookSecret: testWebhookSecret}},
		now:           func() time.Time { return billingNow },
	}
}

func signedEvent(id, eventType, object string) ([]byte, string) {
	payload := []byte(fmt.Sprintf(`{"id":%q,"object":"event","type":%q,"api_version":"2023-10-16","data":{"object":%s}}`, id, eventType, object))
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload: payload,
		Secret:  testWebhookSecret,
	})
	return signed.Payload, signed.Header
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	w := newTestWebhook(newFakeSubscriptions())
	payload, _ := signedEvent("evt_1", "invoice.paid", `{}`)
	assert.ErrorIs(t, w.Handle(context.Background(), payload, "t=1,v1=deadbeef"), ErrInvalidSignature)
}

func TestWebhookLifecycle(t *testing.T) {
	ctx := context.Background()
	subs := newFakeSubscriptions()
	pending := &model.Subscription{UserID: 7, PlanID: 2, BillingCycle: constant.BillingCycleMonthly, Status: constant.SubscriptionStatusPending}
	require.NoError(t, subs.Create(ctx, pending))
	w := newTestWebhook(subs)

	completed := fmt.Sprintf(`{"id":"cs_test_1","object":"checkout.session","customer":"cus_1","subscription":"sub_1","metadata":{"subscription_id":"%d"}}`, pending.SubscriptionID)
	payload, sig := signedEvent("evt_1", "checkout.session.completed", completed)
	require.NoError(t, w.Handle(ctx, payload, sig))

	sub := subs.subs[pending.SubscriptionID]
	assert.Equal(t, constant.SubscriptionStatusActive, sub.Status)
	assert.Equal(t, "sub_1", sub.ProviderSubscriptionID.String)
	assert.Equal(t, billingNow.AddDate(0, 1, 0), sub.CurrentPeriodEnd.Time)

	// redelivery leaves the period alone
	w.now = func() time.Time { return billingNow.Add(time.Hour) }
	payload, sig = signedEvent("evt_1", "checkout.session.completed", completed)
	require.NoError(t, w.Handle(ctx, payload, sig))
	assert.Equal(t, billingNow.AddDate(0, 1, 0), subs.subs[pending.SubscriptionID].CurrentPeriodEnd.Time)

	payload, sig = signedEvent("evt_2", "invoice.payment_failed", `{"id":"in_1","object":"invoice","subscription":"sub_1"}`)
	require.NoError(t, w.Handle(ctx, payload, sig))
	assert.Equal(t, constant.SubscriptionStatusPastDue, sub.Status)

	end := billingNow.AddDate(0, 2, 0).Unix()
	invoice := fmt.Sprintf(`{"id":"in_2","object":"invoice","subscription":"sub_1","lines":{"data":[{"period":{"start":%d,"end":%d}}]}}`, billingNow.Unix(), end)
	payload, sig = signedEvent("evt_3", "invoice.paid", invoice)
	require.NoError(t, w.Handle(ctx, payload, sig))
	assert.Equal(t, constant.SubscriptionStatusActive, sub.Status)
	assert.Equal(t, end, sub.CurrentPeriodEnd.Time.Unix())

	payload, sig = signedEvent("evt_4", "customer.subscription.deleted", `{"id":"sub_1","object":"subscription"}`)
	require.NoError(t, w.Handle(ctx, payload, sig))
	assert.Equal(t, constant.SubscriptionStatusCanceled, sub.Status)
}

func TestWebhookCheckoutCancelsSupersededSubscription(t *testing.T) {
	ctx := context.Background()
	subs := newFakeSubscriptions()
	old := &model.Subscription{
		UserID:                 7,
		PlanID:                 1,
		BillingCycle:           constant.BillingCycleMonthly,
		Status:                 constant.SubscriptionStatusActive,
		ProviderSubscriptionID: null.StringFrom("sub_old"),
		CurrentPeriodEnd:       null.TimeFrom(billingNow.AddDate(0, 0, 10)),
	}
	require.NoError(t, subs.Create(ctx, old))
	upgrade := &model.Subscription{UserID: 7, PlanID: 3, BillingCycle: constant.BillingCycleMonthly, Status: constant.SubscriptionStatusPending}
	require.NoError(t, subs.Create(ctx, upgrade))

	w := newTestWebhook(subs)
	provider := w.Provider.(*fakeProvider)

	completed := fmt.Sprintf(`{"id":"cs_test_2","object":"checkout.session","customer":"cus_1","subscription":"sub_new","metadata":{"subscription_id":"%d"}}`, upgrade.SubscriptionID)
	payload, sig := signedEvent("evt_10", "checkout.session.completed", completed)
	require.NoError(t, w.Handle(ctx, payload, sig))

	assert.Equal(t, constant.SubscriptionStatusActive, subs.subs[upgrade.SubscriptionID].Status)
	assert.Equal(t, constant.SubscriptionStatusCanceled, subs.subs[old.SubscriptionID].Status)
	assert.Equal(t, []string{"sub_old"}, provider.canceled)

	// a late failed invoice for the replaced plan must not reopen it
	payload, sig = signedEvent("evt_11", "invoice.payment_failed", `{"id":"in_9","object":"invoice","subscription":"sub_old"}`)
	require.NoError(t, w.Handle(ctx, payload, sig))
	assert.Equal(t, constant.SubscriptionStatusCanceled, subs.subs[old.SubscriptionID].Status)
}

func TestWebhookIgnoresUnknownEvents(t *testing.T) {
	w := newTestWebhook(newFakeSubscriptions())
	payload, sig := signedEvent("evt_9", "customer.created", `{"id":"cus_1","object":"customer"}`)
	assert.NoError(t, w.Handle(context.Background(), payload, sig))
}

func TestNewReferenceIsSortable(t *testing.T) {
	a := NewReference()
	time.Sleep(2 * time.Millisecond)
	b := NewReference()
	assert.Len(t, a, 26)
	assert.Less(t, a, b)
}

func TestPlanListSeesReseededPlans(t *testing.T) {
	ctx := context.Background()
	modelcache.Initialize()
	plans := fakePlans{1: {PlanID: 1, Code: "bronze", Active: true}}
	svc := &Plan{Plans: plans}

	views, err := svc.List(ctx, constant.BillingCycleMonthly)
	require.NoError(t, err)
	assert.Len(t, views, 1)

	// a seed run flushes the shared cache; nothing must be pinned in this process
	plans[2] = &model.SubscriptionPlan{PlanID: 2, Code: "silver", Active: true}
	require.NoError(t, modelcache.DeleteAll())

	views, err = svc.List(ctx, constant.BillingCycleMonthly)
	require.NoError(t, err)
	assert.Len(t, views, 2)
}
