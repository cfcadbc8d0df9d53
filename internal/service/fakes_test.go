package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/stripe/stripe-go/v76"

	"properly.homes/backend/internal/constant"
	"properly.homes/backend/internal/model"
	"properly.homes/backend/internal/model/types"
	"properly.homes/backend/internal/pkg/prerr"
)

type fakeUsers struct {
	mu     sync.Mutex
	users  map[int64]*model.User
	nextID int64
}

func newFakeUsers(users ...*model.User) *fakeUsers {
	f := &fakeUsers{users: map[int64]*model.User{}, nextID: 100}
	for _, u := range users {
		f.users[u.UserID] = u
	}
	return f
}

func (f *fakeUsers) GetByID(_ context.Context, userID int64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, prerr.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, prerr.ErrNotFound
}

func (f *fakeUsers) Create(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return prerr.ErrConflict
		}
	}
	f.nextID++
	user.UserID = f.nextID
	f.users[user.UserID] = user
	return nil
}

func (f *fakeUsers) CreateAgent(ctx context.Context, user *model.User, profile *model.AgentProfile) error {
	if err := f.Create(ctx, user); err != nil {
		return err
	}
	profile.UserID = user.UserID
	user.AgentProfile = profile
	return nil
}

func (f *fakeUsers) MarkVerified(_ context.Context, userID int64, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[userID].Status = "active"
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, userID int64, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[userID].PasswordHash = hash
	return nil
}

type fakeTokens struct {
	tokens map[string]*model.VerificationToken
	nextID int64
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{tokens: map[string]*model.VerificationToken{}}
}

func tokenKey(userID int64, purpose string) string {
	return purpose + ":" + strconv.FormatInt(userID, 10)
}

func (f *fakeTokens) Replace(_ context.Context, token *model.VerificationToken) error {
	f.nextID++
	token.TokenID = f.nextID
	f.tokens[tokenKey(token.UserID, token.Purpose)] = token
	return nil
}

func (f *fakeTokens) GetOpen(_ context.Context, userID int64, purpose string) (*model.VerificationToken, error) {
	t, ok := f.tokens[tokenKey(userID, purpose)]
	if !ok || t.ConsumedAt.Valid {
		return nil, prerr.ErrNotFound
	}
	return t, nil
}

func (f *fakeTokens) find(tokenID int64) *model.VerificationToken {
	for _, t := range f.tokens {
		if t.TokenID == tokenID {
			return t
		}
	}
	return nil
}

func (f *fakeTokens) IncrementAttempts(_ context.Context, tokenID int64) (int, error) {
	t := f.find(tokenID)
	t.Attempts++
	return t.Attempts, nil
}

func (f *fakeTokens) Consume(_ context.Context, tokenID int64, at time.Time) error {
	f.find(tokenID).ConsumedAt.SetValid(at)
	return nil
}

type fakeMail struct {
	mu   sync.Mutex
	jobs []*types.MailJob
}

func (f *fakeMail) Enqueue(_ context.Context, job *types.MailJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs = append(f.jobs, job)
	return nil
}

func (f *fakeMail) last() *types.MailJob {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.jobs) == 0 {
		return nil
	}
	return f.jobs[len(f.jobs)-1]
}

type fakeSubscriptions struct {
	subs   map[int64]*model.Subscription
	nextID int64
	// granting is returned by GetGranting when set.
	granting *model.Subscription
}

func newFakeSubscriptions() *fakeSubscriptions {
	return &fakeSubscriptions{subs: map[int64]*model.Subscription{}}
}

func (f *fakeSubscriptions) Create(_ context.Context, sub *model.Subscription) error {
	f.nextID++
	sub.SubscriptionID = f.nextID
	f.subs[sub.SubscriptionID] = sub
	return nil
}

func (f *fakeSubscriptions) GetByID(_ context.Context, id int64) (*model.Subscription, error) {
	s, ok := f.subs[id]
	if !ok {
		return nil, prerr.ErrNotFound
	}
	return s, nil
}

func (f *fakeSubscriptions) GetByProviderSubscriptionID(_ context.Context, providerID string) (*model.Subscription, error) {
	for _, s := range f.subs {
		if s.ProviderSubscriptionID.String == providerID {
			return s, nil
		}
	}
	return nil, prerr.ErrNotFound
}

func (f *fakeSubscriptions) GetCurrent(_ context.Context, userID int64) (*model.Subscription, error) {
	for _, s := range f.subs {
		if s.UserID == userID {
			return s, nil
		}
	}
	return nil, prerr.ErrNotFound
}

func (f *fakeSubscriptions) GetGranting(_ context.Context, userID int64, now time.Time, grace time.Duration) (*model.Subscription, error) {
	if f.granting != nil && f.granting.UserID == userID && f.granting.Grants(now, grace) {
		return f.granting, nil
	}
	return nil, prerr.ErrNotFound
}

func (f *fakeSubscriptions) Activate(_ context.Context, sub *model.Subscription) ([]*model.Subscription, error) {
	f.subs[sub.SubscriptionID] = sub
	var superseded []*model.Subscription
	for _, s := range f.subs {
		if s.UserID != sub.UserID || s.SubscriptionID == sub.SubscriptionID {
			continue
		}
		switch s.Status {
		case constant.SubscriptionStatusActive, constant.SubscriptionStatusPastDue, constant.SubscriptionStatusPending:
			s.Status = constant.SubscriptionStatusCanceled
			superseded = append(superseded, s)
		}
	}
	return superseded, nil
}

func (f *fakeSubscriptions) ExtendPeriod(_ context.Context, providerID string, start, end time.Time) (int64, error) {
	for _, s := range f.subs {
		if s.ProviderSubscriptionID.String == providerID && s.Status != constant.SubscriptionStatusCanceled && s.Status != constant.SubscriptionStatusPending {
			s.Status = constant.SubscriptionStatusActive
			s.CurrentPeriodStart.SetValid(start)
			s.CurrentPeriodEnd.SetValid(end)
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeSubscriptions) SetStatusByProviderID(_ context.Context, providerID, status string) (int64, error) {
	var n int64
	for _, s := range f.subs {
		if s.ProviderSubscriptionID.String != providerID || s.Status == constant.SubscriptionStatusExpired {
			continue
		}
		if status == constant.SubscriptionStatusPastDue && s.Status != constant.SubscriptionStatusActive && s.Status != constant.SubscriptionStatusPastDue {
			continue
		}
		s.Status = status
		n++
	}
	return n, nil
}

func (f *fakeSubscriptions) SetCancelAtPeriodEnd(_ context.Context, id int64, cancel bool) error {
	f.subs[id].CancelAtPeriodEnd = cancel
	return nil
}

func (f *fakeSubscriptions) SetCheckoutSession(_ context.Context, id int64, sessionID string) error {
	f.subs[id].CheckoutSessionID.SetValid(sessionID)
	return nil
}

func (f *fakeSubscriptions) ExpireEnded(context.Context, time.Time, time.Duration, time.Duration) (int64, error) {
	return 0, nil
}

type fakeProperties struct {
	mu     sync.Mutex
	byRef  map[string]*model.Property
	listed int
	views  map[int64]int
}

func newFakeProperties(props ...*model.Property) *fakeProperties {
	f := &fakeProperties{byRef: map[string]*model.Property{}, views: map[int64]int{}}
	for _, p := range props {
		f.byRef[p.Reference] = p
	}
	return f
}

func (f *fakeProperties) Search(context.Context, *types.PropertySearchQuery, int, int) ([]*model.Property, error) {
	return nil, nil
}

func (f *fakeProperties) CountSearch(context.Context, *types.PropertySearchQuery) (int, error) {
	return 0, nil
}

func (f *fakeProperties) GetByReference(_ context.Context, ref string) (*model.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byRef[ref]
	if !ok {
		return nil, prerr.ErrNotFound
	}
	return p, nil
}

func (f *fakeProperties) Create(_ context.Context, p *model.Property) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.PropertyID = int64(len(f.byRef) + 1)
	f.byRef[p.Reference] = p
	if p.Status == constant.PropertyStatusActive || p.Status == constant.PropertyStatusPending {
		f.listed++
	}
	return nil
}

func (f *fakeProperties) Update(_ context.Context, p *model.Property, _ ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byRef[p.Reference] = p
	return nil
}

func (f *fakeProperties) CountListedByAgent(context.Context, int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listed, nil
}

func (f *fakeProperties) ListByAgent(context.Context, int64) ([]*model.Property, error) {
	return nil, nil
}

func (f *fakeProperties) ListByStatus(context.Context, string, int, int) ([]*model.Property, int, error) {
	return nil, 0, nil
}

func (f *fakeProperties) IncrementViews(_ context.Context, propertyID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.views[propertyID]++
	return nil
}

func (f *fakeProperties) SuspendUnsubscribed(context.Context, time.Time, time.Duration, string) (int64, error) {
	return 0, nil
}

type fakeRules struct {
	rules []*model.ModerationRule
}

func (f *fakeRules) Get(_ context.Context, ruleID int64) (*model.ModerationRule, error) {
	for _, r := range f.rules {
		if r.RuleID == ruleID {
			return r, nil
		}
	}
	return nil, prerr.ErrNotFound
}

func (f *fakeRules) ListActive(context.Context) ([]*model.ModerationRule, error) {
	var out []*model.ModerationRule
	for _, r := range f.rules {
		if r.Active {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRules) ListAll(context.Context) ([]*model.ModerationRule, error) {
	return f.rules, nil
}

func (f *fakeRules) Create(_ context.Context, rule *model.ModerationRule) error {
	rule.RuleID = int64(len(f.rules) + 1)
	f.rules = append(f.rules, rule)
	return nil
}

func (f *fakeRules) Update(context.Context, *model.ModerationRule) error {
	return nil
}

func (f *fakeRules) Delete(context.Context, int64) error {
	return nil
}

// fakeLocations knows a single city 10 in region 5 of country 1.
type fakeLocations struct{}

func (fakeLocations) Countries(context.Context) ([]*model.Country, error) {
	return []*model.Country{{CountryID: 1}}, nil
}

func (fakeLocations) RegionsByCountry(context.Context, int64) ([]*model.Region, error) {
	return []*model.Region{{RegionID: 5}}, nil
}

func (fakeLocations) CitiesByRegion(context.Context, int64) ([]*model.City, error) {
	return []*model.City{{CityID: 10}}, nil
}

func (fakeLocations) CityInCountry(_ context.Context, cityID, countryID int64) (int64, bool, error) {
	if cityID == 10 && countryID == 1 {
		return 5, true, nil
	}
	return 0, false, nil
}

type fakeBlogPosts struct {
	posts []*model.BlogPost
}

func (f *fakeBlogPosts) ListPublished(context.Context, string, string, string, int, int) ([]*model.BlogPost, int, error) {
	return nil, 0, nil
}

func (f *fakeBlogPosts) GetPublishedBySlug(_ context.Context, slug string) (*model.BlogPost, error) {
	for _, p := range f.posts {
		if p.Slug == slug && p.Status == "published" {
			return p, nil
		}
	}
	return nil, prerr.ErrNotFound
}

func (f *fakeBlogPosts) Categories(context.Context, string) ([]*model.BlogCategory, error) {
	return nil, nil
}

func (f *fakeBlogPosts) ListAll(context.Context, string, int, int) ([]*model.BlogPost, int, error) {
	return f.posts, len(f.posts), nil
}

func (f *fakeBlogPosts) GetByID(_ context.Context, postID int64) (*model.BlogPost, error) {
	for _, p := range f.posts {
		if p.PostID == postID {
			return p, nil
		}
	}
	return nil, prerr.ErrNotFound
}

func (f *fakeBlogPosts) SlugExists(_ context.Context, slug string) (bool, error) {
	for _, p := range f.posts {
		if p.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBlogPosts) Create(_ context.Context, post *model.BlogPost) error {
	post.PostID = int64(len(f.posts) + 1)
	f.posts = append(f.posts, post)
	return nil
}

func (f *fakeBlogPosts) Update(context.Context, *model.BlogPost) error {
	return nil
}

func (f *fakeBlogPosts) Delete(context.Context, int64) error {
	return nil
}

type fakeProvider struct {
	fail     bool
	inputs   []*CheckoutInput
	canceled []string
	stripe   *StripeBilling
}

func (f *fakeProvider) CreateCheckoutSession(_ context.Context, in *CheckoutInput) (*CheckoutSession, error) {
	if f.fail {
		return nil, prerr.ErrInternalError
	}
	f.inputs = append(f.inputs, in)
	return &CheckoutSession{ID: "cs_test_1", URL: "https://checkout.stripe.test/cs_test_1"}, nil
}

func (f *fakeProvider) CancelAtPeriodEnd(_ context.Context, id string) error {
	if f.fail {
		return prerr.ErrInternalError
	}
	f.canceled = append(f.canceled, id)
	return nil
}

func (f *fakeProvider) ConstructEvent(payload []byte, signature string) (stripe.Event, error) {
	return f.stripe.ConstructEvent(payload, signature)
}
