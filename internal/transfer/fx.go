package transfer

import (
	"github.com/smallbiznis/quotient/internal/transfer/repository"
	"github.com/smallbiznis/quotient/internal/transfer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("transfer.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
