package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	bannerdomain "github.com/parityhq/paritybanner/internal/banner/domain"
	"github.com/parityhq/paritybanner/internal/billing"
	"github.com/parityhq/paritybanner/internal/config"
	countrydomain "github.com/parityhq/paritybanner/internal/country/domain"
	"github.com/parityhq/paritybanner/internal/identity"
	productdomain "github.com/parityhq/paritybanner/internal/product/domain"
	subscriptiondomain "github.com/parityhq/paritybanner/internal/subscription/domain"
	"github.com/parityhq/paritybanner/internal/tier"
	viewdomain "github.com/parityhq/paritybanner/internal/views/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeBannerSvc struct {
	lastRequest bannerdomain.Request
	script      string
	err         error
}

func (f *fakeBannerSvc) Serve(ctx context.Context, req bannerdomain.Request) (string, error) {
	f.lastRequest = req
	if f.err != nil {
		return "", f.err
	}
	return f.script, nil
}

type fakeProductSvc struct {
	productdomain.Service

	created      *productdomain.CreateRequest
	getResponse  *productdomain.Response
	getErr       error
	createErr    error
	replaceErr   error
	productCount int
}

func (f *fakeProductSvc) Create(ctx context.Context, userID string, req productdomain.CreateRequest) (*productdomain.Response, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = &req
	return &productdomain.Response{ID: "1", Name: req.Name, URL: req.URL}, nil
}

func (f *fakeProductSvc) Get(ctx context.Context, userID, id string) (*productdomain.Response, error) {
	return f.getResponse, f.getErr
}

func (f *fakeProductSvc) ProductCount(ctx context.Context, userID string) (int, error) {
	return f.productCount, nil
}

func (f *fakeProductSvc) ReplaceDiscounts(ctx context.Context, userID, id string, entries []productdomain.DiscountEntry) error {
	return f.replaceErr
}

type fakeSubscriptionSvc struct {
	subscriptiondomain.Service

	tier           tier.Tier
	createdDefault []string
	purged         []string
	billingCreated []subscriptiondomain.BillingCreatedRequest
}

func (f *fakeSubscriptionSvc) TierFor(ctx context.Context, userID string) (tier.Tier, error) {
	return f.tier, nil
}

func (f *fakeSubscriptionSvc) CreateDefault(ctx context.Context, userID string) error {
	f.createdDefault = append(f.createdDefault, userID)
	return nil
}

func (f *fakeSubscriptionSvc) PurgeUser(ctx context.Context, userID string) error {
	f.purged = append(f.purged, userID)
	return nil
}

func (f *fakeSubscriptionSvc) ApplyBillingCreated(ctx context.Context, req subscriptiondomain.BillingCreatedRequest) error {
	f.billingCreated = append(f.billingCreated, req)
	return nil
}

type fakeViewSvc struct {
	viewdomain.Service

	monthlyViews int
}

func (f *fakeViewSvc) MonthlyViewCount(ctx context.Context, userID string) (int, error) {
	return f.monthlyViews, nil
}

type fakeCountrySvc struct {
	countrydomain.Service
}

type testEnv struct {
	server        *Server
	banner        *fakeBannerSvc
	products      *fakeProductSvc
	subscriptions *fakeSubscriptionSvc
}

func setupServer(t *testing.T, cfg config.Config) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	bannerSvc := &fakeBannerSvc{script: `const banner = document.createElement("div");`}
	productSvc := &fakeProductSvc{}
	subscriptionSvc := &fakeSubscriptionSvc{tier: tier.Free}
	viewSvc := &fakeViewSvc{}

	identityHook, err := identity.NewAdapter(cfg.IdentityWebhookSecret)
	require.NoError(t, err)

	srv := NewServer(Params{
		Gin:             NewEngine(cfg, nil),
		Cfg:             cfg,
		Log:             zap.NewNop(),
		ProductSvc:      productSvc,
		CountrySvc:      &fakeCountrySvc{},
		ViewSvc:         viewSvc,
		SubscriptionSvc: subscriptionSvc,
		BannerSvc:       bannerSvc,
		Perms:           tier.NewPermissions(subscriptionSvc, productSvc, viewSvc),
		BillingHook:     billing.NewAdapter(cfg.BillingWebhookSecret),
		IdentityHook:    identityHook,
	})

	return &testEnv{
		server:        srv,
		banner:        bannerSvc,
		products:      productSvc,
		subscriptions: subscriptionSvc,
	}
}

func jsonBody(body string) io.Reader {
	return strings.NewReader(body)
}

func devConfig() config.Config {
	return config.Config{
		Environment:          "development",
		GeoHeader:            "X-Geo-Country",
		DevCountryCode:       "US",
		BillingWebhookSecret: "whsec_test",
	}
}

func TestServeBannerSuccess(t *testing.T) {
	env := setupServer(t, devConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/products/42/banner", nil)
	req.Header.Set("Referer", "https://example.com/pricing")
	req.Header.Set("X-Geo-Country", "IN")
	rec := httptest.NewRecorder()
	env.server.Engine().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/javascript", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "document.createElement")

	assert.Equal(t, "42", env.banner.lastRequest.ProductID)
	assert.Equal(t, "https://example.com/pricing", env.banner.lastRequest.RefererURL)
	assert.Equal(t, "IN", env.banner.lastRequest.CountryCode)
}

func TestServeBannerGeoHeaderPassedVerbatim(t *testing.T) {
	env := setupServer(t, devConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/products/42/banner", nil)
	req.Header.Set("Referer", "https://example.com")
	req.Header.Set("X-Geo-Country", "in")
	rec := httptest.NewRecorder()
	env.server.Engine().ServeHTTP(rec, req)

	// The header value reaches resolution as provided; no case normalization.
	assert.Equal(t, "in", env.banner.lastRequest.CountryCode)
}

func TestServeBannerOriginFallback(t *testing.T) {
	env := setupServer(t, devConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/products/42/banner", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	env.server.Engine().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://example.com", env.banner.lastRequest.RefererURL)
	// Dev fallback applies when the geo header is absent outside production.
	assert.Equal(t, "US", env.banner.lastRequest.CountryCode)
}

func TestServeBannerNotFoundIsEmpty(t *testing.T) {
	env := setupServer(t, devConfig())
	env.banner.err = bannerdomain.ErrNotFound

	req := httptest.NewRequest(http.MethodGet, "/api/products/42/banner", nil)
	req.Header.Set("Referer", "https://example.com")
	rec := httptest.NewRecorder()
	env.server.Engine().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestServeBannerNoGeoInProduction(t *testing.T) {
	cfg := devConfig()
	cfg.Environment = "production"
	env := setupServer(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/products/42/banner", nil)
	req.Header.Set("Referer", "https://example.com")
	rec := httptest.NewRecorder()
	env.server.Engine().ServeHTTP(rec, req)

	assert.Empty(t, env.banner.lastRequest.CountryCode)
}

func TestDashboardRequiresUserHeader(t *testing.T) {
	env := setupServer(t, devConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	rec := httptest.NewRecorder()
	env.server.Engine().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateProductQuota(t *testing.T) {
	env := setupServer(t, devConfig())
	// Free tier allows a single product.
	env.products.productCount = 1

	req := httptest.NewRequest(http.MethodPost, "/api/products",
		jsonBody(`{"name":"Course","url":"https://example.com"}`))
	req.Header.Set(UserHeader, "user_1")
	rec := httptest.NewRecorder()
	env.server.Engine().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "product limit")
	assert.Nil(t, env.products.created)

	env.products.productCount = 0
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/products",
		jsonBody(`{"name":"Course","url":"https://example.com"}`))
	req.Header.Set(UserHeader, "user_1")
	env.server.Engine().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, env.products.created)
	assert.Equal(t, "Course", env.products.created.Name)
}

func TestCreateProductDuplicateKeyMapsToConflict(t *testing.T) {
	env := setupServer(t, devConfig())
	env.products.createErr = gorm.ErrDuplicatedKey

	req := httptest.NewRequest(http.MethodPost, "/api/products",
		jsonBody(`{"name":"Course","url":"https://example.com"}`))
	req.Header.Set(UserHeader, "user_1")
	rec := httptest.NewRecorder()
	env.server.Engine().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "conflict")
}

func TestGetProductNotFound(t *testing.T) {
	env := setupServer(t, devConfig())
	env.products.getErr = productdomain.ErrNotFound

	req := httptest.NewRequest(http.MethodGet, "/api/products/9", nil)
	req.Header.Set(UserHeader, "user_1")
	rec := httptest.NewRecorder()
	env.server.Engine().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_found")
}

func TestReplaceDiscountsValidationMessage(t *testing.T) {
	env := setupServer(t, devConfig())
	env.products.replaceErr = productdomain.ErrDiscountRequired

	req := httptest.NewRequest(http.MethodPut, "/api/products/9/discounts",
		jsonBody(`{"entries":[{"country_group_id":"1","coupon":"SAVE20"}]}`))
	req.Header.Set(UserHeader, "user_1")
	rec := httptest.NewRecorder()
	env.server.Engine().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), productdomain.DiscountRequiredMessage)
}
