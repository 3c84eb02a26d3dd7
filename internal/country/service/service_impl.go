package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/parityhq/paritybanner/internal/cache"
	"github.com/parityhq/paritybanner/internal/country/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Cache *cache.Store
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	cache *cache.Store
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("country.service"),
		cache: p.Cache,
		repo:  p.Repo,
	}
}

// ResolveCode matches a geo-source country code against stored codes. The
// comparison is exact and case-sensitive; stored codes are upper-case by
// convention. A nil result is a valid terminal state, not an error.
func (s *Service) ResolveCode(ctx context.Context, code string) (*domain.Country, error) {
	if code == "" {
		return nil, nil
	}
	key := cache.Key("country", "code", code)
	tags := []cache.Tag{cache.GlobalTag(cache.KindCountries)}
	return cache.Read(ctx, s.cache, key, tags, func(ctx context.Context) (*domain.Country, error) {
		return s.repo.FindByCode(ctx, s.db, code)
	})
}

func (s *Service) ListGroups(ctx context.Context) ([]domain.GroupResponse, error) {
	key := cache.Key("countryGroups", "all")
	tags := []cache.Tag{
		cache.GlobalTag(cache.KindCountryGroups),
		cache.GlobalTag(cache.KindCountries),
	}
	return cache.Read(ctx, s.cache, key, tags, s.listGroups)
}

func (s *Service) listGroups(ctx context.Context) ([]domain.GroupResponse, error) {
	groups, err := s.repo.FindAllGroups(ctx, s.db)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.GroupResponse, 0, len(groups))
	for _, group := range groups {
		countries, err := s.repo.FindCountriesByGroup(ctx, s.db, group.ID)
		if err != nil {
			return nil, err
		}
		item := domain.GroupResponse{
			ID:                            snowflake.ID(group.ID).String(),
			Name:                          group.Name,
			RecommendedDiscountPercentage: group.RecommendedDiscountPercentage,
			Countries:                     make([]domain.CountryResponse, 0, len(countries)),
		}
		for _, c := range countries {
			item.Countries = append(item.Countries, domain.CountryResponse{
				Name: c.Name,
				Code: c.Code,
			})
		}
		resp = append(resp, item)
	}
	return resp, nil
}
