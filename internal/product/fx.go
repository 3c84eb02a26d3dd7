package product

import (
	"github.com/parityhq/paritybanner/internal/product/repository"
	"github.com/parityhq/paritybanner/internal/product/service"
	"go.uber.org/fx"
)

var Module = fx.Module("product.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
