package views

import (
	"github.com/parityhq/paritybanner/internal/views/repository"
	"github.com/parityhq/paritybanner/internal/views/service"
	"go.uber.org/fx"
)

var Module = fx.Module("views.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
