package request

import (
	"go.uber.org/fx"

	"github.com/lordsbespoke/atelier/internal/request/repository"
	"github.com/lordsbespoke/atelier/internal/request/service"
)

var Module = fx.Module("request.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
