package ordersource

import (
	"github.com/smallbiznis/quotient/internal/ordersource/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ordersource.service",
	fx.Provide(service.New),
)
