package country

import (
	"github.com/parityhq/paritybanner/internal/country/repository"
	"github.com/parityhq/paritybanner/internal/country/service"
	"go.uber.org/fx"
)

var Module = fx.Module("country.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
