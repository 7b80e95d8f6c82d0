package reconcile

import (
	catalogdomain "github.com/smallbiznis/quotient/internal/catalog/domain"
	"github.com/smallbiznis/quotient/internal/reconcile/domain"
	"github.com/smallbiznis/quotient/internal/reconcile/service"
	"go.uber.org/fx"
)

var Module = fx.Module("reconcile.engine",
	fx.Provide(func(catalog catalogdomain.Service) domain.Catalog { return catalog }),
	fx.Provide(service.New),
)
