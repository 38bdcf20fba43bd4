package user

import (
	"github.com/lordsbespoke/atelier/internal/user/repository"
	"github.com/lordsbespoke/atelier/internal/user/service"
	"go.uber.org/fx"
)

var Module = fx.Module("user.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
