package auth

import (
	"github.com/smallbiznis/telcox/internal/auth/service"
	"github.com/smallbiznis/telcox/internal/auth/token"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(token.Provide),
	fx.Provide(token.NewBlacklist),
	fx.Provide(service.New),
)
