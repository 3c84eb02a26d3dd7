package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	bannerdomain "github.com/parityhq/paritybanner/internal/banner/domain"
	"github.com/parityhq/paritybanner/internal/billing"
	"github.com/parityhq/paritybanner/internal/config"
	countrydomain "github.com/parityhq/paritybanner/internal/country/domain"
	"github.com/parityhq/paritybanner/internal/identity"
	"github.com/parityhq/paritybanner/internal/metrics"
	productdomain "github.com/parityhq/paritybanner/internal/product/domain"
	"github.com/parityhq/paritybanner/internal/ratelimit"
	subscriptiondomain "github.com/parityhq/paritybanner/internal/subscription/domain"
	"github.com/parityhq/paritybanner/internal/tier"
	viewdomain "github.com/parityhq/paritybanner/internal/views/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Provide(provideBillingAdapter),
	fx.Provide(provideIdentityAdapter),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, m *metrics.Metrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(metrics.GinMiddleware(m))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(cfg config.Config, m *metrics.Metrics) *gin.Engine {
	return NewEngine(cfg, m)
}

func provideBillingAdapter(cfg config.Config) *billing.Adapter {
	return billing.NewAdapter(cfg.BillingWebhookSecret)
}

func provideIdentityAdapter(cfg config.Config) (*identity.Adapter, error) {
	return identity.NewAdapter(cfg.IdentityWebhookSecret)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	log             *zap.Logger
	productSvc      productdomain.Service
	countrySvc      countrydomain.Service
	viewSvc         viewdomain.Service
	subscriptionSvc subscriptiondomain.Service
	bannerSvc       bannerdomain.Service
	perms           *tier.Permissions
	billingHook     *billing.Adapter
	identityHook    *identity.Adapter
	bannerLimiter   *ratelimit.TokenBucket
	metrics         *metrics.Metrics
}

type Params struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	Log             *zap.Logger
	ProductSvc      productdomain.Service
	CountrySvc      countrydomain.Service
	ViewSvc         viewdomain.Service
	SubscriptionSvc subscriptiondomain.Service
	BannerSvc       bannerdomain.Service
	Perms           *tier.Permissions
	BillingHook     *billing.Adapter
	IdentityHook    *identity.Adapter
	BannerLimiter   *ratelimit.TokenBucket `optional:"true"`
	Metrics         *metrics.Metrics
}

func NewServer(p Params) *Server {
	s := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		log:             p.Log.Named("http.server"),
		productSvc:      p.ProductSvc,
		countrySvc:      p.CountrySvc,
		viewSvc:         p.ViewSvc,
		subscriptionSvc: p.SubscriptionSvc,
		bannerSvc:       p.BannerSvc,
		perms:           p.Perms,
		billingHook:     p.BillingHook,
		identityHook:    p.IdentityHook,
		bannerLimiter:   p.BannerLimiter,
		metrics:         p.Metrics,
	}

	s.registerPublicRoutes()
	s.registerDashboardRoutes()
	s.registerWebhookRoutes()

	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerPublicRoutes mounts the banner endpoint. It is embedded on
// arbitrary third-party pages, so it allows every origin and carries its own
// rate limit instead of user auth.
func (s *Server) registerPublicRoutes() {
	bannerCORS := cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet},
		MaxAge:          12 * time.Hour,
	})
	s.engine.GET("/api/products/:id/banner", bannerCORS, s.BannerRateLimit(), s.ServeBanner)
}

func (s *Server) registerDashboardRoutes() {
	api := s.engine.Group("/api", s.UserRequired())

	api.GET("/products", s.ListProducts)
	api.POST("/products", s.CreateProduct)
	api.GET("/products/:id", s.GetProduct)
	api.PUT("/products/:id", s.UpdateProduct)
	api.DELETE("/products/:id", s.DeleteProduct)

	api.GET("/products/:id/customization", s.GetCustomization)
	api.PUT("/products/:id/customization", s.UpdateCustomization)

	api.GET("/products/:id/discounts", s.ListProductDiscounts)
	api.PUT("/products/:id/discounts", s.ReplaceProductDiscounts)

	api.GET("/country-groups", s.ListCountryGroups)

	api.GET("/analytics/views/day", s.ViewsByDay)
	api.GET("/analytics/views/country", s.ViewsByCountry)
	api.GET("/analytics/views/group", s.ViewsByGroup)

	api.GET("/subscription", s.GetSubscription)
}

func (s *Server) registerWebhookRoutes() {
	webhooks := s.engine.Group("/api/webhooks")

	webhooks.POST("/billing", s.HandleBillingWebhook)
	webhooks.POST("/identity", s.HandleIdentityWebhook)
}
