package dashboard

import (
	"github.com/smallbiznis/telcox/internal/dashboard/service"
	"go.uber.org/fx"
)

var Module = fx.Module("dashboard.service",
	fx.Provide(service.New),
)
