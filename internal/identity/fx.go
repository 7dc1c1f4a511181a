package identity

import (
	"github.com/smallbiznis/linkpage/internal/identity/repository"
	"github.com/smallbiznis/linkpage/internal/identity/service"
	"go.uber.org/fx"
)

var Module = fx.Module("identity.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
