package rate

import (
	"github.com/lordsbespoke/atelier/internal/rate/repository"
	"github.com/lordsbespoke/atelier/internal/rate/service"
	"go.uber.org/fx"
)

var Module = fx.Module("rate.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
