package services

import (
	"context"
	"log"
	"time"

	"gym_app_echo/internal/docstore"
	"gym_app_echo/internal/models"
)

const catalogTTL = 10 * time.Minute

// Catalog serves the storefront collections. Public reads only see
// active documents and go through the cache; admin writes invalidate it.
type Catalog struct {
	cache    *RedisCache
	Apparels *docstore.Collection[models.Apparel]
	Coaches  *docstore.Collection[models.Coach]
	Classes  *docstore.Collection[models.Class]
	Plans    *docstore.Collection[models.MembershipPlan]
}

func NewCatalog(store docstore.Store, cache *RedisCache) *Catalog {
	return &Catalog{
		cache:    cache,
		Apparels: docstore.NewCollection[models.Apparel](store, models.ApparelsCollection),
		Coaches:  docstore.NewCollection[models.Coach](store, models.CoachesCollection),
		Classes:  docstore.NewCollection[models.Class](store, models.ClassesCollection),
		Plans:    docstore.NewCollection[models.MembershipPlan](store, models.MembershipPlansCollection),
	}
}

func catalogKey(collection string) string {
	return "catalog:" + collection
}

func activeList[T any](ctx context.Context, cache *RedisCache, coll *docstore.Collection[T], filters ...docstore.Filter) ([]T, error) {
	return GetOrSet(cache, ctx, catalogKey(coll.Name()), catalogTTL, func() ([]T, error) {
		items, err := coll.Query(ctx, docstore.Query{
			Filters: append([]docstore.Filter{docstore.Where("isActive", docstore.OpEqual, true)}, filters...),
			OrderBy: "name",
		})
		if items == nil {
			items = []T{}
		}
		return items, err
	})
}

func (c *Catalog) ActiveApparels(ctx context.Context) ([]models.Apparel, error) {
	return activeList(ctx, c.cache, c.Apparels)
}

func (c *Catalog) ActiveCoaches(ctx context.Context) ([]models.Coach, error) {
	return activeList(ctx, c.cache, c.Coaches)
}

func (c *Catalog) ActiveClasses(ctx context.Context) ([]models.Class, error) {
	return activeList(ctx, c.cache, c.Classes)
}

func (c *Catalog) ActivePlans(ctx context.Context) ([]models.MembershipPlan, error) {
	return activeList(ctx, c.cache, c.Plans, docstore.Where("isDeleted", docstore.OpEqual, false))
}

// Invalidate drops the cached storefront list of a collection
func (c *Catalog) Invalidate(ctx context.Context, collection string) {
	if err := c.cache.Delete(ctx, catalogKey(collection)); err != nil {
		log.Printf("cache invalidate %s: %v", collection, err)
	}
}
