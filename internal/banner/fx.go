package banner

import (
	"github.com/parityhq/paritybanner/internal/banner/service"
	"go.uber.org/fx"
)

var Module = fx.Module("banner.service",
	fx.Provide(service.New),
)
