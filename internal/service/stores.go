package service

import (
	"context"
	"time"

	"properly.homes/backend/internal/model"
	"properly.homes/backend/internal/model/types"
)

// The interfaces below are the slices of the repositories each service needs.
// They are satisfied by the types in internal/repo.

type UserStore interface {
	GetByID(ctx context.Context, userID int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	CreateAgent(ctx context.Context, user *model.User, profile *model.AgentProfile) error
	MarkVerified(ctx context.Context, userID int64, at time.Time) error
	UpdatePassword(ctx context.Context, userID int64, hash string) error
}

type VerificationTokenStore interface {
	Replace(ctx context.Context, token *model.VerificationToken) error
	GetOpen(ctx context.Context, userID int64, purpose string) (*model.VerificationToken, error)
	IncrementAttempts(ctx context.Context, tokenID int64) (int, error)
	Consume(ctx context.Context, tokenID int64, at time.Time) error
}

type PlanStore interface {
	ListActive(ctx context.Context) ([]*model.SubscriptionPlan, error)
	GetByID(ctx context.Context, planID int64) (*model.SubscriptionPlan, error)
}

type SubscriptionStore interface {
	Create(ctx context.Context, sub *model.Subscription) error
	GetByID(ctx context.Context, subscriptionID int64) (*model.Subscription, error)
	GetByProviderSubscriptionID(ctx context.Context, providerID string) (*model.Subscription, error)
	GetCurrent(ctx context.Context, userID int64) (*model.Subscription, error)
	GetGranting(ctx context.Context, userID int64, now time.Time, grace time.Duration) (*model.Subscription, error)
	Activate(ctx context.Context, sub *model.Subscription) ([]*model.Subscription, error)
	ExtendPeriod(ctx context.Context, providerID string, start, end time.Time) (int64, error)
	SetStatusByProviderID(ctx context.Context, providerID, status string) (int64, error)
	SetCancelAtPeriodEnd(ctx context.Context, subscriptionID int64, cancel bool) error
	SetCheckoutSession(ctx context.Context, subscriptionID int64, sessionID string) error
	ExpireEnded(ctx context.Context, now time.Time, grace, abandonAfter time.Duration) (int64, error)
}

type LocationStore interface {
	Countries(ctx context.Context) ([]*model.Country, error)
	RegionsByCountry(ctx context.Context, countryID int64) ([]*model.Region, error)
	CitiesByRegion(ctx context.Context, regionID int64) ([]*model.City, error)
	CityInCountry(ctx context.Context, cityID, countryID int64) (regionID int64, ok bool, err error)
}

type PropertyStore interface {
	Search(ctx context.Context, query *types.PropertySearchQuery, offset, limit int) ([]*model.Property, error)
	CountSearch(ctx context.Context, query *types.PropertySearchQuery) (int, error)
	GetByReference(ctx context.Context, ref string) (*model.Property, error)
	Create(ctx context.Context, p *model.Property) error
	Update(ctx context.Context, p *model.Property, columns ...string) error
	CountListedByAgent(ctx context.Context, agentID int64) (int, error)
	ListByAgent(ctx context.Context, agentID int64) ([]*model.Property, error)
	ListByStatus(ctx context.Context, status string, offset, limit int) ([]*model.Property, int, error)
	IncrementViews(ctx context.Context, propertyID int64) error
	SuspendUnsubscribed(ctx context.Context, now time.Time, grace time.Duration, note string) (int64, error)
}

type PropertyImageStore interface {
	CountByProperty(ctx context.Context, propertyID int64) (int, error)
	Append(ctx context.Context, img *model.PropertyImage) error
	Get(ctx context.Context, propertyID, imageID int64) (*model.PropertyImage, error)
	Delete(ctx context.Context, imageID int64) error
}

type ModerationRuleStore interface {
	Get(ctx context.Context, ruleID int64) (*model.ModerationRule, error)
	ListActive(ctx context.Context) ([]*model.ModerationRule, error)
	ListAll(ctx context.Context) ([]*model.ModerationRule, error)
	Create(ctx context.Context, rule *model.ModerationRule) error
	Update(ctx context.Context, rule *model.ModerationRule) error
	Delete(ctx context.Context, ruleID int64) error
}

type FavoriteStore interface {
	Add(ctx context.Context, userID, propertyID int64) error
	Remove(ctx context.Context, userID, propertyID int64) error
	ListByUser(ctx context.Context, userID int64) ([]*model.Favorite, error)
}

type InquiryStore interface {
	Create(ctx context.Context, inq *model.Inquiry) error
	ListByAgent(ctx context.Context, agentID int64, status string, offset, limit int) ([]*model.Inquiry, int, error)
	SetStatus(ctx context.Context, agentID, inquiryID int64, status string) error
}

type MessageStore interface {
	Create(ctx context.Context, msg *model.Message) error
	Inbox(ctx context.Context, recipientID int64, offset, limit int) ([]*model.Message, int, error)
	MarkRead(ctx context.Context, recipientID, messageID int64, at time.Time) error
}

type BlogPostStore interface {
	ListPublished(ctx context.Context, lang, category, tag string, offset, limit int) ([]*model.BlogPost, int, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*model.BlogPost, error)
	Categories(ctx context.Context, lang string) ([]*model.BlogCategory, error)
	ListAll(ctx context.Context, status string, offset, limit int) ([]*model.BlogPost, int, error)
	GetByID(ctx context.Context, postID int64) (*model.BlogPost, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, post *model.BlogPost) error
	Update(ctx context.Context, post *model.BlogPost) error
	Delete(ctx context.Context, postID int64) error
}

// MailQueue hands mail jobs to the delivery worker.
type MailQueue interface {
	Enqueue(ctx context.Context, job *types.MailJob) error
}
