package billing

import (
	"github.com/smallbiznis/linkpage/internal/billing/gateway"
	"github.com/smallbiznis/linkpage/internal/billing/repository"
	"github.com/smallbiznis/linkpage/internal/billing/service"
	"github.com/smallbiznis/linkpage/internal/config"
	"go.uber.org/fx"
)

func provideGateway(cfg config.Config) gateway.Gateway {
	return gateway.NewMidtrans(cfg.MidtransServerKey, cfg.MidtransProduction)
}

var Module = fx.Module("billing.service",
	fx.Provide(provideGateway),
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
