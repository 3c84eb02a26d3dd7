package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/parityhq/paritybanner/internal/banner"
	"github.com/parityhq/paritybanner/internal/cache"
	"github.com/parityhq/paritybanner/internal/config"
	"github.com/parityhq/paritybanner/internal/country"
	"github.com/parityhq/paritybanner/internal/logger"
	"github.com/parityhq/paritybanner/internal/metrics"
	"github.com/parityhq/paritybanner/internal/migration"
	"github.com/parityhq/paritybanner/internal/product"
	productdomain "github.com/parityhq/paritybanner/internal/product/domain"
	"github.com/parityhq/paritybanner/internal/ratelimit"
	"github.com/parityhq/paritybanner/internal/server"
	"github.com/parityhq/paritybanner/internal/subscription"
	subscriptiondomain "github.com/parityhq/paritybanner/internal/subscription/domain"
	"github.com/parityhq/paritybanner/internal/tier"
	"github.com/parityhq/paritybanner/internal/views"
	viewdomain "github.com/parityhq/paritybanner/internal/views/domain"
	"github.com/parityhq/paritybanner/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		db.Module,
		migration.Module,
		metrics.Module,
		ratelimit.Module,
		fx.Provide(
			cache.NewStore,
			newSnowflakeNode,
			newPermissions,
		),

		// Functional domains
		country.Module,
		product.Module,
		views.Module,
		subscription.Module,
		banner.Module,

		server.Module,
	)
	app.Run()
}

func newSnowflakeNode() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}

func newPermissions(
	subs subscriptiondomain.Service,
	products productdomain.Service,
	visits viewdomain.Service,
) *tier.Permissions {
	return tier.NewPermissions(subs, products, visits)
}
