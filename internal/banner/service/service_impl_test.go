package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	bannerdomain "github.com/parityhq/paritybanner/internal/banner/domain"
	"github.com/parityhq/paritybanner/internal/cache"
	"github.com/parityhq/paritybanner/internal/config"
	countrydomain "github.com/parityhq/paritybanner/internal/country/domain"
	countryrepo "github.com/parityhq/paritybanner/internal/country/repository"
	countryservice "github.com/parityhq/paritybanner/internal/country/service"
	productdomain "github.com/parityhq/paritybanner/internal/product/domain"
	productrepo "github.com/parityhq/paritybanner/internal/product/repository"
	productservice "github.com/parityhq/paritybanner/internal/product/service"
	subscriptiondomain "github.com/parityhq/paritybanner/internal/subscription/domain"
	subscriptionrepo "github.com/parityhq/paritybanner/internal/subscription/repository"
	subscriptionservice "github.com/parityhq/paritybanner/internal/subscription/service"
	"github.com/parityhq/paritybanner/internal/tier"
	viewdomain "github.com/parityhq/paritybanner/internal/views/domain"
	viewrepo "github.com/parityhq/paritybanner/internal/views/repository"
	viewservice "github.com/parityhq/paritybanner/internal/views/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type pipelineEnv struct {
	db       *gorm.DB
	store    *cache.Store
	banner   bannerdomain.Service
	products productdomain.Service
	views    viewdomain.Service
	node     *snowflake.Node
}

// overQuotaVisits simulates an exhausted monthly visit quota without
// inserting thousands of view rows.
type overQuotaVisits struct{}

func (overQuotaVisits) MonthlyViewCount(ctx context.Context, userID string) (int, error) {
	return 1 << 20, nil
}

func setupPipeline(t *testing.T, visits tier.VisitCounter) *pipelineEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&countrydomain.CountryGroup{},
		&countrydomain.Country{},
		&productdomain.Product{},
		&productdomain.ProductCustomization{},
		&productdomain.CountryGroupDiscount{},
		&viewdomain.ProductView{},
		&subscriptiondomain.UserSubscription{},
	))

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	store := cache.NewStore()
	log := zap.NewNop()

	products := productservice.New(productservice.Params{
		DB: db, Log: log, Cache: store, GenID: node, Repo: productrepo.Provide(),
	})
	countries := countryservice.New(countryservice.Params{
		DB: db, Log: log, Cache: store, Repo: countryrepo.Provide(),
	})
	views := viewservice.New(viewservice.Params{
		DB: db, Log: log, Cache: store, GenID: node, Repo: viewrepo.Provide(),
	})
	subscriptions := subscriptionservice.New(subscriptionservice.Params{
		DB: db, Log: log, Cache: store, GenID: node,
		Repo: subscriptionrepo.Provide(), ProductRepo: productrepo.Provide(),
	})

	if visits == nil {
		visits = views
	}
	perms := tier.NewPermissions(subscriptions, products, visits)

	banner := New(Params{
		Config:    config.Config{BannerBrandingURL: "https://paritybanner.dev"},
		Log:       log,
		Products:  products,
		Countries: countries,
		Views:     views,
		Perms:     perms,
	})

	return &pipelineEnv{
		db:       db,
		store:    store,
		banner:   banner,
		products: products,
		views:    views,
		node:     node,
	}
}

// seedScenario creates a Free-tier user with one product at
// https://example.com, one parity group holding India (IN), and a SAVE20/20%
// discount for that group. Returns the product id string.
func (env *pipelineEnv) seedScenario(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	groupID := env.node.Generate().Int64()
	require.NoError(t, env.db.Create(&countrydomain.CountryGroup{
		ID: groupID, Name: "Parity Group 3", CreatedAt: now, UpdatedAt: now,
	}).Error)
	require.NoError(t, env.db.Create(&countrydomain.Country{
		ID: env.node.Generate().Int64(), Name: "India", Code: "IN",
		CountryGroupID: groupID, CreatedAt: now, UpdatedAt: now,
	}).Error)

	subs := subscriptionservice.New(subscriptionservice.Params{
		DB: env.db, Log: zap.NewNop(), Cache: env.store, GenID: env.node,
		Repo: subscriptionrepo.Provide(), ProductRepo: productrepo.Provide(),
	})
	require.NoError(t, subs.CreateDefault(ctx, "owner_1"))

	created, err := env.products.Create(ctx, "owner_1", productdomain.CreateRequest{
		Name: "Video Course",
		URL:  "https://example.com",
	})
	require.NoError(t, err)

	pct := 20.0
	require.NoError(t, env.products.ReplaceDiscounts(ctx, "owner_1", created.ID, []productdomain.DiscountEntry{{
		CountryGroupID:     snowflake.ID(groupID).String(),
		Coupon:             "SAVE20",
		DiscountPercentage: &pct,
	}}))
	return created.ID
}

func (env *pipelineEnv) viewCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, env.db.Raw(`SELECT COUNT(*) FROM product_views`).Scan(&count).Error)
	return count
}

func TestServeComposesBanner(t *testing.T) {
	env := setupPipeline(t, nil)
	productID := env.seedScenario(t)

	script, err := env.banner.Serve(context.Background(), bannerdomain.Request{
		ProductID:   productID,
		RefererURL:  "https://example.com/",
		CountryCode: "IN",
	})
	require.NoError(t, err)
	assert.Contains(t, script, "India")
	assert.Contains(t, script, "SAVE20")
	assert.Contains(t, script, "20%")
	// Free tier cannot remove branding.
	assert.Contains(t, script, "Powered by Parity Banner")
	assert.EqualValues(t, 1, env.viewCount(t))

	var countryID *int64
	require.NoError(t, env.db.Raw(`SELECT country_id FROM product_views LIMIT 1`).Scan(&countryID).Error)
	require.NotNil(t, countryID)
}

func TestServeMissingContext(t *testing.T) {
	env := setupPipeline(t, nil)
	productID := env.seedScenario(t)
	ctx := context.Background()

	_, err := env.banner.Serve(ctx, bannerdomain.Request{
		ProductID: productID, CountryCode: "IN",
	})
	assert.ErrorIs(t, err, bannerdomain.ErrNotFound)

	_, err = env.banner.Serve(ctx, bannerdomain.Request{
		ProductID: productID, RefererURL: "https://example.com",
	})
	assert.ErrorIs(t, err, bannerdomain.ErrNotFound)

	// Neither failure reached the product, so nothing was metered.
	assert.Zero(t, env.viewCount(t))
}

func TestServeURLMismatch(t *testing.T) {
	env := setupPipeline(t, nil)
	productID := env.seedScenario(t)

	_, err := env.banner.Serve(context.Background(), bannerdomain.Request{
		ProductID:   productID,
		RefererURL:  "https://other.example.com",
		CountryCode: "IN",
	})
	assert.ErrorIs(t, err, bannerdomain.ErrNotFound)
	assert.Zero(t, env.viewCount(t))
}

func TestServeUnknownCountryStillRecordsView(t *testing.T) {
	env := setupPipeline(t, nil)
	productID := env.seedScenario(t)

	_, err := env.banner.Serve(context.Background(), bannerdomain.Request{
		ProductID:   productID,
		RefererURL:  "https://example.com",
		CountryCode: "ZZ",
	})
	assert.ErrorIs(t, err, bannerdomain.ErrNotFound)
	require.EqualValues(t, 1, env.viewCount(t))

	var countryID *int64
	require.NoError(t, env.db.Raw(`SELECT country_id FROM product_views LIMIT 1`).Scan(&countryID).Error)
	assert.Nil(t, countryID)
}

func TestServeNoDiscountStillRecordsView(t *testing.T) {
	env := setupPipeline(t, nil)
	productID := env.seedScenario(t)
	ctx := context.Background()

	// Drop the discount; the country still resolves.
	require.NoError(t, env.db.Exec(`DELETE FROM country_group_discounts`).Error)
	env.store.Revalidate(cache.IDTag(productID, cache.KindProducts))

	_, err := env.banner.Serve(ctx, bannerdomain.Request{
		ProductID:   productID,
		RefererURL:  "https://example.com",
		CountryCode: "IN",
	})
	assert.ErrorIs(t, err, bannerdomain.ErrNotFound)
	assert.EqualValues(t, 1, env.viewCount(t))
}

func TestServeQuotaExhaustedStillRecordsView(t *testing.T) {
	env := setupPipeline(t, overQuotaVisits{})
	productID := env.seedScenario(t)

	_, err := env.banner.Serve(context.Background(), bannerdomain.Request{
		ProductID:   productID,
		RefererURL:  "https://example.com",
		CountryCode: "IN",
	})
	assert.ErrorIs(t, err, bannerdomain.ErrNotFound)
	assert.EqualValues(t, 1, env.viewCount(t))
}
