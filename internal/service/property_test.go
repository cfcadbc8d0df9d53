package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v3"

	"properly.homes/backend/internal/constant"
	"properly.homes/backend/internal/model"
	"properly.homes/backend/internal/model/types"
	"properly.homes/backend/internal/pkg/authn"
	"properly.homes/backend/internal/pkg/middlewares"
	"properly.homes/backend/internal/pkg/moderation"
	"properly.homes/backend/internal/pkg/prerr"
)

const testAgentID = 7

func newTestProperty(props *fakeProperties, rules ...*model.ModerationRule) (*Property, *fakeSubscriptions) {
	subs := newFakeSubscriptions()
	subs.granting = grantingSub(testAgentID, 5)
	return &Property{
		Properties:    props,
		Rules:         &fakeRules{rules: rules},
		Locations:     fakeLocations{},
		Subscriptions: newTestSubscription(subs, props),
		Evaluator:     moderation.NewEvaluator(),
		now:           func() time.Time { return billingNow },
	}, subs
}

func createRequest() *types.PropertyCreateRequest {
	return &types.PropertyCreateRequest{
		Title:        "Sea view penthouse in Cannes",
		Description:  "A bright penthouse with a wraparound terrace facing the bay.",
		ListingType:  constant.ListingTypeSale,
		PropertyType: "penthouse",
		Price:        2500000,
		Bedrooms:     3,
		CountryID:    1,
		CityID:       10,
		Address:      "1 Boulevard de la Croisette",
	}
}

func agent() *authn.Principal {
	return &authn.Principal{UserID: testAgentID, Role: constant.RoleAgent}
}

func TestCreatePublishes(t *testing.T) {
	props := newFakeProperties()
	svc, _ := newTestProperty(props)

	p, err := svc.Create(context.Background(), testAgentID, createRequest())
	require.NoError(t, err)
	assert.Equal(t, constant.PropertyStatusActive, p.Status)
	assert.Equal(t, int64(250000000), p.PriceCents)
	assert.Equal(t, "eur", p.Currency)
	assert.Equal(t, int64(5), p.RegionID.Int64)
	assert.Equal(t, "1 Boulevard de la Croisette", p.Address.String)
	assert.True(t, p.PublishedAt.Valid)
	assert.Len(t, p.Reference, 26)
	assert.NotNil(t, p.Amenities)
}

func TestCreateChecksLocationAndQuota(t *testing.T) {
	ctx := context.Background()

	t.Run("city outside country", func(t *testing.T) {
		svc, _ := newTestProperty(newFakeProperties())
		req := createRequest()
		req.CountryID = 2
		_, err := svc.Create(ctx, testAgentID, req)
		assert.ErrorIs(t, err, prerr.ErrInvalidReq)
	})

	t.Run("region mismatch", func(t *testing.T) {
		svc, _ := newTestProperty(newFakeProperties())
		req := createRequest()
		req.RegionID = 6
		_, err := svc.Create(ctx, testAgentID, req)
		assert.ErrorIs(t, err, prerr.ErrInvalidReq)
	})

	t.Run("quota exhausted", func(t *testing.T) {
		props := newFakeProperties()
		props.listed = 5
		svc, _ := newTestProperty(props)
		_, err := svc.Create(ctx, testAgentID, createRequest())
		assert.ErrorIs(t, err, prerr.ErrListingLimitReached)
		assert.Empty(t, props.byRef)
	})

	t.Run("no subscription", func(t *testing.T) {
		svc, subs := newTestProperty(newFakeProperties())
		subs.granting = nil
		_, err := svc.Create(ctx, testAgentID, createRequest())
		assert.ErrorIs(t, err, prerr.ErrSubscriptionRequired)
	})
}

// quotaLocker is an in-process Locker with one mutex per name.
type quotaLocker struct {
	mu       sync.Mutex
	mutexes  map[string]*sync.Mutex
	names    []string
	held     bool
	unlocked int
}

type quotaMutex struct {
	l  *quotaLocker
	mu *sync.Mutex
}

func (m quotaMutex) Lock() error {
	if m.l.held {
		return redsync.ErrFailed
	}
	m.mu.Lock()
	return nil
}

func (m quotaMutex) Unlock() (bool, error) {
	m.mu.Unlock()
	m.l.mu.Lock()
	m.l.unlocked++
	m.l.mu.Unlock()
	return true, nil
}

func (l *quotaLocker) NewMutex(name string, _ ...redsync.Option) middlewares.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.mutexes == nil {
		l.mutexes = map[string]*sync.Mutex{}
	}
	if l.mutexes[name] == nil {
		l.mutexes[name] = &sync.Mutex{}
	}
	l.names = append(l.names, name)
	return quotaMutex{l: l, mu: l.mutexes[name]}
}

func TestCreateHoldsListingQuotaLock(t *testing.T) {
	ctx := context.Background()

	t.Run("lock taken per agent", func(t *testing.T) {
		locker := &quotaLocker{}
		svc, _ := newTestProperty(newFakeProperties())
		svc.Locker = locker

		_, err := svc.Create(ctx, testAgentID, createRequest())
		require.NoError(t, err)
		assert.Equal(t, []string{"mutex:listing-quota:7"}, locker.names)
		assert.Equal(t, 1, locker.unlocked)
	})

	t.Run("lock busy", func(t *testing.T) {
		props := newFakeProperties()
		svc, _ := newTestProperty(props)
		svc.Locker = &quotaLocker{held: true}

		_, err := svc.Create(ctx, testAgentID, createRequest())
		assert.ErrorIs(t, err, prerr.ErrTooManyRequests)
		assert.Empty(t, props.byRef)
	})

	t.Run("concurrent creates respect the limit", func(t *testing.T) {
		props := newFakeProperties()
		svc, subs := newTestProperty(props)
		subs.granting = grantingSub(testAgentID, 2)
		svc.Locker = &quotaLocker{}

		const attempts = 8
		errs := make([]error, attempts)
		var wg sync.WaitGroup
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = svc.Create(ctx, testAgentID, createRequest())
			}(i)
		}
		wg.Wait()

		created := 0
		for _, err := range errs {
			if err == nil {
				created++
				continue
			}
			assert.ErrorIs(t, err, prerr.ErrListingLimitReached)
		}
		assert.Equal(t, 2, created)
		assert.Len(t, props.byRef, 2)
	})
}

func TestReactivateHoldsListingQuotaLock(t *testing.T) {
	props := newFakeProperties(&model.Property{PropertyID: 1, Reference: "SOLD", AgentID: testAgentID, Status: constant.PropertyStatusSold})
	svc, _ := newTestProperty(props)
	locker := &quotaLocker{}
	svc.Locker = locker

	p, err := svc.SetStatus(context.Background(), agent(), "SOLD", constant.PropertyStatusActive)
	require.NoError(t, err)
	assert.Equal(t, constant.PropertyStatusActive, p.Status)
	assert.Equal(t, []string{"mutex:listing-quota:7"}, locker.names)
	assert.Equal(t, 1, locker.unlocked)
}

func TestCreateModeration(t *testing.T) {
	ctx := context.Background()
	reject := &model.ModerationRule{RuleID: 1, Name: "suspiciously cheap", Expression: "price < 1000", Action: constant.ModerationActionReject, Active: true}
	hold := &model.ModerationRule{RuleID: 2, Name: "cash only", Expression: `Mentions("cash only")`, Action: constant.ModerationActionHold, Active: true}

	t.Run("rejected", func(t *testing.T) {
		props := newFakeProperties()
		svc, _ := newTestProperty(props, reject, hold)
		req := createRequest()
		req.Price = 500
		_, err := svc.Create(ctx, testAgentID, req)
		assert.ErrorIs(t, err, prerr.ErrListingRejected)
		assert.Empty(t, props.byRef)
	})

	t.Run("held", func(t *testing.T) {
		svc, _ := newTestProperty(newFakeProperties(), reject, hold)
		req := createRequest()
		req.Description += " Cash only buyers please."
		p, err := svc.Create(ctx, testAgentID, req)
		require.NoError(t, err)
		assert.Equal(t, constant.PropertyStatusPending, p.Status)
		assert.Equal(t, "held for review: cash only", p.ModerationNote.String)
		assert.False(t, p.PublishedAt.Valid)
	})
}

func TestUpdateRemoderatesActiveListing(t *testing.T) {
	ctx := context.Background()
	listing := &model.Property{
		PropertyID: 1, Reference: "REF1", AgentID: testAgentID, Title: "Villa", PriceCents: 100000000,
		Status: constant.PropertyStatusActive, PublishedAt: null.TimeFrom(billingNow),
	}
	other := &model.Property{
		PropertyID: 2, Reference: "REF2", AgentID: testAgentID, Title: "Chalet", PriceCents: 90000000,
		Status: constant.PropertyStatusActive, PublishedAt: null.TimeFrom(billingNow),
	}
	hold := &model.ModerationRule{RuleID: 2, Name: "cash only", Expression: `Mentions("cash only")`, Action: constant.ModerationActionHold, Active: true}
	svc, _ := newTestProperty(newFakeProperties(listing, other), hold)

	p, err := svc.Update(ctx, agent(), "REF1", &types.PropertyUpdateRequest{Bedrooms: null.IntFrom(4)})
	require.NoError(t, err)
	assert.Equal(t, constant.PropertyStatusActive, p.Status)
	assert.Equal(t, 4, p.Bedrooms)

	p, err = svc.Update(ctx, agent(), "REF1", &types.PropertyUpdateRequest{Title: null.StringFrom("Villa, cash only")})
	require.NoError(t, err)
	assert.Equal(t, constant.PropertyStatusPending, p.Status)

	stranger := &authn.Principal{UserID: 99, Role: constant.RoleAgent}
	_, err = svc.Update(ctx, stranger, "REF2", &types.PropertyUpdateRequest{Bedrooms: null.IntFrom(1)})
	assert.ErrorIs(t, err, prerr.ErrForbidden)

	// REF1 is now held for review, so strangers cannot tell it exists
	_, err = svc.Update(ctx, stranger, "REF1", &types.PropertyUpdateRequest{Bedrooms: null.IntFrom(1)})
	assert.ErrorIs(t, err, prerr.ErrNotFound)
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()
	props := newFakeProperties(
		&model.Property{PropertyID: 1, Reference: "ACTIVE", AgentID: testAgentID, Status: constant.PropertyStatusActive},
		&model.Property{PropertyID: 2, Reference: "HELD", AgentID: testAgentID, Status: constant.PropertyStatusPending, ModerationNote: null.StringFrom("held for review: x")},
		&model.Property{PropertyID: 3, Reference: "SUSPENDED", AgentID: testAgentID, Status: constant.PropertyStatusPending, ModerationNote: null.StringFrom(SuspendedNote)},
	)
	svc, subs := newTestProperty(props)

	p, err := svc.SetStatus(ctx, agent(), "ACTIVE", constant.PropertyStatusSold)
	require.NoError(t, err)
	assert.Equal(t, constant.PropertyStatusSold, p.Status)

	_, err = svc.SetStatus(ctx, agent(), "HELD", constant.PropertyStatusRented)
	assert.ErrorIs(t, err, prerr.ErrInvalidReq)

	_, err = svc.SetStatus(ctx, agent(), "HELD", constant.PropertyStatusActive)
	assert.ErrorIs(t, err, prerr.ErrInvalidReq)

	// reactivating a suspended listing does not count against the limit again
	props.listed = 5
	p, err = svc.SetStatus(ctx, agent(), "SUSPENDED", constant.PropertyStatusActive)
	require.NoError(t, err)
	assert.Equal(t, constant.PropertyStatusActive, p.Status)
	assert.False(t, p.ModerationNote.Valid)

	// a sold listing coming back needs a free slot
	_, err = svc.SetStatus(ctx, agent(), "ACTIVE", constant.PropertyStatusActive)
	assert.ErrorIs(t, err, prerr.ErrListingLimitReached)

	subs.granting = nil
	props.byRef["SUSPENDED"].Status = constant.PropertyStatusPending
	props.byRef["SUSPENDED"].ModerationNote = null.StringFrom(SuspendedNote)
	_, err = svc.SetStatus(ctx, agent(), "SUSPENDED", constant.PropertyStatusActive)
	assert.ErrorIs(t, err, prerr.ErrSubscriptionRequired)
}

func TestGetHidesUnpublished(t *testing.T) {
	ctx := context.Background()
	props := newFakeProperties(&model.Property{PropertyID: 1, Reference: "DRAFT", AgentID: testAgentID, Status: constant.PropertyStatusDraft})
	svc, _ := newTestProperty(props)

	_, err := svc.Get(ctx, "DRAFT", nil)
	assert.ErrorIs(t, err, prerr.ErrNotFound)

	p, err := svc.Get(ctx, "DRAFT", agent())
	require.NoError(t, err)
	assert.Equal(t, "DRAFT", p.Reference)

	_, err = svc.Get(ctx, "DRAFT", &authn.Principal{UserID: 1, Role: constant.RoleAdmin})
	assert.NoError(t, err)
}

func TestAdminReview(t *testing.T) {
	ctx := context.Background()
	props := newFakeProperties(&model.Property{PropertyID: 1, Reference: "HELD", AgentID: testAgentID, Status: constant.PropertyStatusPending, ModerationNote: null.StringFrom("held for review: x")})
	svc, _ := newTestProperty(props)

	p, err := svc.Reject(ctx, "HELD", "photos missing")
	require.NoError(t, err)
	assert.Equal(t, constant.PropertyStatusDraft, p.Status)
	assert.Equal(t, "photos missing", p.ModerationNote.String)

	p, err = svc.Approve(ctx, "HELD")
	require.NoError(t, err)
	assert.Equal(t, constant.PropertyStatusActive, p.Status)
	assert.True(t, p.PublishedAt.Valid)

	_, err = svc.Approve(ctx, "HELD")
	assert.ErrorIs(t, err, prerr.ErrInvalidReq)
}
