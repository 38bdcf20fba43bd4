package order

import (
	"go.uber.org/fx"

	"github.com/lordsbespoke/atelier/internal/order/repository"
	"github.com/lordsbespoke/atelier/internal/order/service"
)

var Module = fx.Module("order.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
