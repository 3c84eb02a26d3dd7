package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/parityhq/paritybanner/internal/cache"
	"github.com/parityhq/paritybanner/internal/product/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Cache *cache.Store
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	cache *cache.Store
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("product.service"),
		cache: p.Cache,
		genID: p.GenID,
		repo:  p.Repo,
	}
}

// Create inserts the product and its customization in one transaction. A
// failed customization insert rolls the product back, so a product never
// exists without its customization.
func (s *Service) Create(ctx context.Context, userID string, req domain.CreateRequest) (*domain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	canonical, err := domain.CanonicalURL(req.URL)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &domain.Product{
		ID:          s.genID.Generate().Int64(),
		UserID:      userID,
		Name:        name,
		URL:         canonical,
		Description: trimmedPtr(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	c := &domain.ProductCustomization{
		ID:              s.genID.Generate().Int64(),
		ProductID:       p.ID,
		LocationMessage: domain.DefaultLocationMessage,
		BackgroundColor: domain.DefaultBackgroundColor,
		TextColor:       domain.DefaultTextColor,
		FontSize:        domain.DefaultFontSize,
		BannerContainer: domain.DefaultBannerContainer,
		IsSticky:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, p); err != nil {
			return err
		}
		if err := s.repo.CreateCustomization(ctx, tx, c); err != nil {
			s.log.Error("customization insert failed, rolling product back",
				zap.Int64("product_id", p.ID),
				zap.Error(err),
			)
			return fmt.Errorf("%w: %v", domain.ErrCustomizationIntegrity, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.revalidateProduct(userID, p.ID)
	resp := toResponse(p)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, userID, id string, req domain.CreateRequest) (*domain.Response, error) {
	productID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	canonical, err := domain.CanonicalURL(req.URL)
	if err != nil {
		return nil, err
	}

	p := &domain.Product{
		ID:          productID,
		UserID:      userID,
		Name:        name,
		URL:         canonical,
		Description: trimmedPtr(req.Description),
		UpdatedAt:   time.Now().UTC(),
	}
	rows, err := s.repo.Update(ctx, s.db, p)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, domain.ErrNotFound
	}

	s.revalidateProduct(userID, productID)
	return s.Get(ctx, userID, id)
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	productID, err := parseID(id)
	if err != nil {
		return err
	}

	var rows int64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err = s.repo.Delete(ctx, tx, userID, productID)
		return err
	})
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}

	s.revalidateProduct(userID, productID)
	return nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (*domain.Response, error) {
	productID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	key := cache.Key("product", userID, id)
	tags := []cache.Tag{cache.IDTag(id, cache.KindProducts)}
	p, err := cache.Read(ctx, s.cache, key, tags, func(ctx context.Context) (*domain.Product, error) {
		return s.repo.FindByID(ctx, s.db, userID, productID)
	})
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	resp := toResponse(p)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, userID string, limit int) ([]domain.Response, error) {
	key := cache.Key("products", userID, fmt.Sprint(limit))
	tags := []cache.Tag{cache.UserTag(userID, cache.KindProducts)}
	items, err := cache.Read(ctx, s.cache, key, tags, func(ctx context.Context) ([]domain.Product, error) {
		return s.repo.FindAllByUser(ctx, s.db, userID, limit)
	})
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) ProductCount(ctx context.Context, userID string) (int, error) {
	key := cache.Key("productCount", userID)
	tags := []cache.Tag{cache.UserTag(userID, cache.KindProducts)}
	count, err := cache.Read(ctx, s.cache, key, tags, func(ctx context.Context) (int64, error) {
		return s.repo.CountByUser(ctx, s.db, userID)
	})
	return int(count), err
}

func (s *Service) Customization(ctx context.Context, userID, id string) (*domain.CustomizationResponse, error) {
	productID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwnership(ctx, userID, productID); err != nil {
		return nil, err
	}

	key := cache.Key("customization", id)
	tags := []cache.Tag{cache.IDTag(id, cache.KindProducts)}
	c, err := cache.Read(ctx, s.cache, key, tags, func(ctx context.Context) (*domain.ProductCustomization, error) {
		return s.repo.FindCustomization(ctx, s.db, productID)
	})
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	resp := toCustomizationResponse(c)
	return &resp, nil
}

func (s *Service) UpdateCustomization(ctx context.Context, userID, id string, req domain.CustomizationRequest) (*domain.CustomizationResponse, error) {
	productID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwnership(ctx, userID, productID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.LocationMessage) == "" ||
		strings.TrimSpace(req.BackgroundColor) == "" ||
		strings.TrimSpace(req.TextColor) == "" ||
		strings.TrimSpace(req.FontSize) == "" ||
		strings.TrimSpace(req.BannerContainer) == "" {
		return nil, domain.ErrInvalidCustomization
	}

	c := &domain.ProductCustomization{
		ProductID:       productID,
		LocationMessage: req.LocationMessage,
		BackgroundColor: strings.TrimSpace(req.BackgroundColor),
		TextColor:       strings.TrimSpace(req.TextColor),
		FontSize:        strings.TrimSpace(req.FontSize),
		BannerContainer: strings.TrimSpace(req.BannerContainer),
		IsSticky:        req.IsSticky,
		ClassPrefix:     trimmedPtr(req.ClassPrefix),
		UpdatedAt:       time.Now().UTC(),
	}
	if err := s.repo.UpdateCustomization(ctx, s.db, c); err != nil {
		return nil, err
	}

	s.revalidateProduct(userID, productID)
	return s.Customization(ctx, userID, id)
}

func (s *Service) Discounts(ctx context.Context, userID, id string) ([]domain.DiscountResponse, error) {
	productID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwnership(ctx, userID, productID); err != nil {
		return nil, err
	}

	key := cache.Key("discounts", id)
	tags := []cache.Tag{cache.IDTag(id, cache.KindProducts)}
	items, err := cache.Read(ctx, s.cache, key, tags, func(ctx context.Context) ([]domain.CountryGroupDiscount, error) {
		return s.repo.FindDiscounts(ctx, s.db, productID)
	})
	if err != nil {
		return nil, err
	}

	resp := make([]domain.DiscountResponse, 0, len(items))
	for _, d := range items {
		resp = append(resp, domain.DiscountResponse{
			CountryGroupID:     snowflake.ID(d.CountryGroupID).String(),
			Coupon:             d.Coupon,
			DiscountPercentage: d.DiscountPercentage * 100,
		})
	}
	return resp, nil
}

// ReplaceDiscounts applies the dashboard discounts form as one atomic batch:
// groups submitted without a usable coupon lose their discount row, the rest
// are upserted. Percentages arrive in [1,100] and are stored as fractions.
func (s *Service) ReplaceDiscounts(ctx context.Context, userID, id string, entries []domain.DiscountEntry) error {
	productID, err := parseID(id)
	if err != nil {
		return err
	}
	if err := s.requireOwnership(ctx, userID, productID); err != nil {
		return err
	}

	now := time.Now().UTC()
	var upserts []domain.CountryGroupDiscount
	var deletes []int64
	for _, entry := range entries {
		groupID, err := parseID(entry.CountryGroupID)
		if err != nil {
			return err
		}
		coupon := strings.TrimSpace(entry.Coupon)
		hasCoupon := coupon != ""
		hasDiscount := entry.DiscountPercentage != nil && *entry.DiscountPercentage > 0

		if hasCoupon && !hasDiscount {
			return domain.ErrDiscountRequired
		}
		if hasDiscount && (*entry.DiscountPercentage < 1 || *entry.DiscountPercentage > 100) {
			return domain.ErrInvalidDiscount
		}

		if hasCoupon && hasDiscount {
			upserts = append(upserts, domain.CountryGroupDiscount{
				CountryGroupID:     groupID,
				ProductID:          productID,
				Coupon:             coupon,
				DiscountPercentage: *entry.DiscountPercentage / 100,
				CreatedAt:          now,
				UpdatedAt:          now,
			})
		} else {
			deletes = append(deletes, groupID)
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.DeleteDiscounts(ctx, tx, productID, deletes); err != nil {
			return err
		}
		return s.repo.UpsertDiscounts(ctx, tx, upserts)
	})
	if err != nil {
		return err
	}

	s.revalidateProduct(userID, productID)
	return nil
}

func (s *Service) BannerProduct(ctx context.Context, id int64, url string) (*domain.BannerProduct, error) {
	idStr := snowflake.ID(id).String()
	key := cache.Key("bannerProduct", idStr, url)
	tags := []cache.Tag{cache.IDTag(idStr, cache.KindProducts)}
	return cache.Read(ctx, s.cache, key, tags, func(ctx context.Context) (*domain.BannerProduct, error) {
		p, err := s.repo.FindBanner(ctx, s.db, id, url)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, nil
		}
		c, err := s.repo.FindCustomization(ctx, s.db, id)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, nil
		}
		return &domain.BannerProduct{
			ID:            p.ID,
			UserID:        p.UserID,
			Customization: toCustomizationResponse(c),
		}, nil
	})
}

func (s *Service) DiscountForGroup(ctx context.Context, productID, groupID int64) (*domain.BannerDiscount, error) {
	idStr := snowflake.ID(productID).String()
	key := cache.Key("bannerDiscount", idStr, snowflake.ID(groupID).String())
	tags := []cache.Tag{
		cache.IDTag(idStr, cache.KindProducts),
		cache.GlobalTag(cache.KindCountryGroups),
	}
	return cache.Read(ctx, s.cache, key, tags, func(ctx context.Context) (*domain.BannerDiscount, error) {
		d, err := s.repo.FindDiscountForGroup(ctx, s.db, productID, groupID)
		if err != nil {
			return nil, err
		}
		if d == nil {
			return nil, nil
		}
		return &domain.BannerDiscount{
			Coupon:     d.Coupon,
			Percentage: d.DiscountPercentage,
		}, nil
	})
}

func (s *Service) requireOwnership(ctx context.Context, userID string, productID int64) error {
	p, err := s.repo.FindByID(ctx, s.db, userID, productID)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) revalidateProduct(userID string, productID int64) {
	s.cache.Revalidate(
		cache.UserTag(userID, cache.KindProducts),
		cache.IDTag(snowflake.ID(productID).String(), cache.KindProducts),
	)
}

func toResponse(p *domain.Product) domain.Response {
	return domain.Response{
		ID:          snowflake.ID(p.ID).String(),
		Name:        p.Name,
		URL:         p.URL,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toCustomizationResponse(c *domain.ProductCustomization) domain.CustomizationResponse {
	return domain.CustomizationResponse{
		LocationMessage: c.LocationMessage,
		BackgroundColor: c.BackgroundColor,
		TextColor:       c.TextColor,
		FontSize:        c.FontSize,
		BannerContainer: c.BannerContainer,
		IsSticky:        c.IsSticky,
		ClassPrefix:     c.ClassPrefix,
	}
}

func parseID(id string) (int64, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return 0, domain.ErrInvalidID
	}
	return parsed.Int64(), nil
}

func trimmedPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
