package content

import (
	"github.com/smallbiznis/linkpage/internal/content/repository"
	"github.com/smallbiznis/linkpage/internal/content/service"
	"go.uber.org/fx"
)

var Module = fx.Module("content.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
