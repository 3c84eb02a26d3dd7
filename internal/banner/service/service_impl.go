package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/parityhq/paritybanner/internal/banner/domain"
	"github.com/parityhq/paritybanner/internal/config"
	countrydomain "github.com/parityhq/paritybanner/internal/country/domain"
	productdomain "github.com/parityhq/paritybanner/internal/product/domain"
	"github.com/parityhq/paritybanner/internal/tier"
	viewdomain "github.com/parityhq/paritybanner/internal/views/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Config    config.Config
	Log       *zap.Logger
	Products  productdomain.Service
	Countries countrydomain.Service
	Views     viewdomain.Service
	Perms     *tier.Permissions
}

type Service struct {
	log         *zap.Logger
	brandingURL string
	products    productdomain.Service
	countries   countrydomain.Service
	views       viewdomain.Service
	perms       *tier.Permissions
}

func New(p Params) domain.Service {
	return &Service{
		log:         p.Log.Named("banner.service"),
		brandingURL: p.Config.BannerBrandingURL,
		products:    p.Products,
		countries:   p.Countries,
		views:       p.Views,
		perms:       p.Perms,
	}
}

// Serve walks the banner pipeline in a fixed order: resolve the product by id
// and referer URL, resolve country and discount, check the owner's visit
// quota, record the view, then compose. The view is recorded once the product
// resolves, before any gating short-circuits, so metering stays accurate for
// suppressed banners.
func (s *Service) Serve(ctx context.Context, req domain.Request) (string, error) {
	if req.RefererURL == "" || req.CountryCode == "" {
		return "", domain.ErrNotFound
	}

	productID, err := snowflake.ParseString(req.ProductID)
	if err != nil {
		return "", domain.ErrNotFound
	}
	canonical, err := productdomain.CanonicalURL(req.RefererURL)
	if err != nil {
		return "", domain.ErrNotFound
	}

	product, err := s.products.BannerProduct(ctx, productID.Int64(), canonical)
	if err != nil {
		s.log.Error("banner product lookup failed", zap.String("product_id", req.ProductID), zap.Error(err))
		return "", domain.ErrNotFound
	}
	if product == nil {
		return "", domain.ErrNotFound
	}

	country, err := s.countries.ResolveCode(ctx, req.CountryCode)
	if err != nil {
		s.log.Error("country resolution failed", zap.String("code", req.CountryCode), zap.Error(err))
		return "", domain.ErrNotFound
	}

	var discount *productdomain.BannerDiscount
	if country != nil {
		discount, err = s.products.DiscountForGroup(ctx, product.ID, country.CountryGroupID)
		if err != nil {
			s.log.Error("discount lookup failed", zap.Int64("product_id", product.ID), zap.Error(err))
			return "", domain.ErrNotFound
		}
	}

	canShow, err := s.perms.CanShowDiscountBanner(ctx, product.UserID)
	if err != nil {
		s.log.Error("entitlement check failed", zap.String("user_id", product.UserID), zap.Error(err))
		return "", domain.ErrNotFound
	}

	var countryID *int64
	if country != nil {
		countryID = &country.ID
	}
	if err := s.views.Record(ctx, product.UserID, product.ID, countryID); err != nil {
		s.log.Error("view record failed", zap.Int64("product_id", product.ID), zap.Error(err))
	}

	if !canShow {
		return "", domain.ErrNotFound
	}
	if country == nil || discount == nil {
		return "", domain.ErrNotFound
	}

	canRemoveBranding, err := s.perms.CanRemoveBranding(ctx, product.UserID)
	if err != nil {
		s.log.Error("branding check failed", zap.String("user_id", product.UserID), zap.Error(err))
		return "", domain.ErrNotFound
	}

	return domain.Compose(domain.Input{
		Customization:      product.Customization,
		CountryName:        country.Name,
		Coupon:             discount.Coupon,
		DiscountPercentage: discount.Percentage,
		CanRemoveBranding:  canRemoveBranding,
		BrandingURL:        s.brandingURL,
	}), nil
}
