package subscription

import (
	"github.com/parityhq/paritybanner/internal/subscription/repository"
	"github.com/parityhq/paritybanner/internal/subscription/service"
	"go.uber.org/fx"
)

var Module = fx.Module("subscription.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
