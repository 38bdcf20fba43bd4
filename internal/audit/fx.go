package audit

import (
	"go.uber.org/fx"

	"github.com/lordsbespoke/atelier/internal/audit/repository"
	"github.com/lordsbespoke/atelier/internal/audit/service"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
