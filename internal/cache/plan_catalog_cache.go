package cache

import (
	"time"

	plandomain "github.com/smallbiznis/telcox/internal/plan/domain"
)

const defaultCatalogTTL = 5 * time.Minute

// PlanCatalogCache holds the active plan listing and active plans by code.
type PlanCatalogCache interface {
	GetActive() ([]plandomain.Plan, bool)
	SetActive(plans []plandomain.Plan)
	GetByCode(code string) (plandomain.Plan, bool)
	Invalidate()
}

type planCatalogCache struct {
	listing Cache[[]plandomain.Plan]
	byCode  Cache[plandomain.Plan]
	ttl     time.Duration
}

func NewPlanCatalogCache() PlanCatalogCache {
	return &planCatalogCache{
		listing: NewTTLCache[[]plandomain.Plan](),
		byCode:  NewTTLCache[plandomain.Plan](),
		ttl:     defaultCatalogTTL,
	}
}

func (c *planCatalogCache) GetActive() ([]plandomain.Plan, bool) {
	return c.listing.Get(cacheKey("plans", "active"))
}

// SetActive replaces the listing and indexes each plan by code.
func (c *planCatalogCache) SetActive(plans []plandomain.Plan) {
	c.byCode.Flush()
	stored := make([]plandomain.Plan, len(plans))
	copy(stored, plans)
	c.listing.Set(cacheKey("plans", "active"), stored, c.ttl)
	for _, plan := range stored {
		c.byCode.Set(cacheKey("plan", plan.Code), plan, c.ttl)
	}
}

func (c *planCatalogCache) GetByCode(code string) (plandomain.Plan, bool) {
	return c.byCode.Get(cacheKey("plan", code))
}

func (c *planCatalogCache) Invalidate() {
	c.listing.Flush()
	c.byCode.Flush()
}
