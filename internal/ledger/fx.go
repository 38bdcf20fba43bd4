package ledger

import (
	"go.uber.org/fx"

	"github.com/lordsbespoke/atelier/internal/ledger/repository"
	"github.com/lordsbespoke/atelier/internal/ledger/service"
)

var Module = fx.Module("ledger.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
