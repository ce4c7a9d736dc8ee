package plan

import (
	"github.com/smallbiznis/telcox/internal/cache"
	"github.com/smallbiznis/telcox/internal/plan/repository"
	"github.com/smallbiznis/telcox/internal/plan/service"
	"go.uber.org/fx"
)

var Module = fx.Module("plan.service",
	fx.Provide(repository.Provide),
	fx.Provide(cache.NewPlanCatalogCache),
	fx.Provide(service.New),
)
