package invoice

import (
	"github.com/smallbiznis/telcox/internal/invoice/repository"
	"github.com/smallbiznis/telcox/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
