package cache

import (
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/guregu/null.v3"

	"properly.homes/backend/internal/model"
	"properly.homes/backend/internal/model/types"
	"properly.homes/backend/internal/pkg/cache"
)

var ErrUnknownCache = errors.New("unknown cache name")

// PlansKey is the single key of Plans.
const PlansKey = "active"

type Flusher func() error

type keyDeleter func(key string) error

var (
	Plans    *cache.Set[[]*model.SubscriptionPlan]
	PlanByID *cache.Set[model.SubscriptionPlan]

	Countries          *cache.Set[[]*model.Country]
	RegionsByCountryID *cache.Set[[]*model.Region]
	CitiesByRegionID   *cache.Set[[]*model.City]

	BlogCategoriesByLang *cache.Set[[]*model.BlogCategory]
	BlogPostBySlug       *cache.Set[model.BlogPost]

	// AgentDrafts stores registration wizard progress. It is not purgeable.
	AgentDrafts *cache.Set[types.AgentDraft]

	once sync.Once

	SetMap    map[string]Flusher
	SetKeyMap map[string]keyDeleter
)

func Initialize() {
	once.Do(initializeCaches)
}

// Names lists every purgeable cache.
func Names() []string {
	names := make([]string, 0, len(SetMap))
	for name := range SetMap {
		names = append(names, name)
	}
	return names
}

// Delete drops a single key of a Set when key is given, or the whole cache otherwise.
func Delete(name string, key null.String) error {
	if key.Valid {
		if del, ok := SetKeyMap[name]; ok {
			return del(key.String)
		}
		return errors.Wrapf(ErrUnknownCache, "%q is not a keyed cache", name)
	}
	if flush, ok := SetMap[name]; ok {
		return flush()
	}
	return errors.Wrapf(ErrUnknownCache, "%q", name)
}

// DeleteAll flushes every purgeable cache.
func DeleteAll() error {
	for name, flush := range SetMap {
		if err := flush(); err != nil {
			return errors.Wrapf(err, "flush %s", name)
		}
	}
	return nil
}

func registerSet[T any](name string, s *cache.Set[T]) *cache.Set[T] {
	SetMap[name] = s.Flush
	SetKeyMap[name] = s.Delete
	return s
}

func initializeCaches() {
	SetMap = make(map[string]Flusher)
	SetKeyMap = make(map[string]keyDeleter)

	// plans
	Plans = registerSet("plans", cache.NewSet[[]*model.SubscriptionPlan]("plans"))
	PlanByID = registerSet("plan#planId", cache.NewSet[model.SubscriptionPlan]("plan#planId"))

	// locations
	Countries = registerSet("countries", cache.NewSet[[]*model.Country]("countries"))
	RegionsByCountryID = registerSet("regions#countryId", cache.NewSet[[]*model.Region]("regions#countryId"))
	CitiesByRegionID = registerSet("cities#regionId", cache.NewSet[[]*model.City]("cities#regionId"))

	// blog
	BlogCategoriesByLang = registerSet("blogCategories#lang", cache.NewSet[[]*model.BlogCategory]("blogCategories#lang"))
	BlogPostBySlug = registerSet("blogPost#slug", cache.NewSet[model.BlogPost]("blogPost#slug"))

	AgentDrafts = cache.NewSet[types.AgentDraft]("agentDraft#draftId")
}
