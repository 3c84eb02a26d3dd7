package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/parityhq/paritybanner/internal/cache"
	"github.com/parityhq/paritybanner/internal/views/domain"
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
	now   func() time.Time
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("views.service"),
		cache: p.Cache,
		genID: p.GenID,
		repo:  p.Repo,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Record appends a view event. The owner's view tag is revalidated so quota
// and analytics reads see the event on their next load.
func (s *Service) Record(ctx context.Context, ownerID string, productID int64, countryID *int64) error {
	view := &domain.ProductView{
		ID:        s.genID.Generate().Int64(),
		ProductID: productID,
		CountryID: countryID,
		ViewTime:  s.now(),
	}
	if err := s.repo.Insert(ctx, s.db, view); err != nil {
		return err
	}
	s.cache.Revalidate(cache.UserTag(ownerID, cache.KindProductViews))
	return nil
}

// MonthlyViewCount counts every view since the start of the current UTC
// month, including views with an unresolved country.
func (s *Service) MonthlyViewCount(ctx context.Context, userID string) (int, error) {
	since := startOfMonth(s.now())
	key := cache.Key("viewCount", userID, since.Format("2006-01"))
	tags := []cache.Tag{cache.UserTag(userID, cache.KindProductViews)}
	count, err := cache.Read(ctx, s.cache, key, tags, func(ctx context.Context) (int64, error) {
		return s.repo.CountByUserSince(ctx, s.db, userID, since)
	})
	return int(count), err
}

func (s *Service) ViewsByDay(ctx context.Context, userID, productID string, interval domain.Interval) ([]domain.DayCount, error) {
	since, err := intervalStart(s.now(), interval)
	if err != nil {
		return nil, err
	}
	pid, err := optionalID(productID)
	if err != nil {
		return nil, err
	}

	key := cache.Key("viewsByDay", userID, productID, string(interval))
	tags := analyticsTags(userID, productID)
	return cache.Read(ctx, s.cache, key, tags, func(ctx context.Context) ([]domain.DayCount, error) {
		return s.repo.CountByDay(ctx, s.db, userID, pid, since)
	})
}

func (s *Service) ViewsByCountry(ctx context.Context, userID, productID string, interval domain.Interval) ([]domain.CountryCount, error) {
	since, err := intervalStart(s.now(), interval)
	if err != nil {
		return nil, err
	}
	pid, err := optionalID(productID)
	if err != nil {
		return nil, err
	}

	key := cache.Key("viewsByCountry", userID, productID, string(interval))
	tags := append(analyticsTags(userID, productID), cache.GlobalTag(cache.KindCountries))
	return cache.Read(ctx, s.cache, key, tags, func(ctx context.Context) ([]domain.CountryCount, error) {
		return s.repo.CountByCountry(ctx, s.db, userID, pid, since)
	})
}

func (s *Service) ViewsByGroup(ctx context.Context, userID, productID string, interval domain.Interval) ([]domain.GroupCount, error) {
	since, err := intervalStart(s.now(), interval)
	if err != nil {
		return nil, err
	}
	pid, err := optionalID(productID)
	if err != nil {
		return nil, err
	}

	key := cache.Key("viewsByGroup", userID, productID, string(interval))
	tags := append(analyticsTags(userID, productID),
		cache.GlobalTag(cache.KindCountries),
		cache.GlobalTag(cache.KindCountryGroups),
	)
	return cache.Read(ctx, s.cache, key, tags, func(ctx context.Context) ([]domain.GroupCount, error) {
		return s.repo.CountByGroup(ctx, s.db, userID, pid, since)
	})
}

func analyticsTags(userID, productID string) []cache.Tag {
	tags := []cache.Tag{cache.UserTag(userID, cache.KindProductViews)}
	if productID == "" {
		tags = append(tags, cache.UserTag(userID, cache.KindProducts))
	} else {
		tags = append(tags, cache.IDTag(productID, cache.KindProducts))
	}
	return tags
}

func intervalStart(now time.Time, interval domain.Interval) (time.Time, error) {
	switch interval {
	case domain.IntervalLast7Days:
		return now.AddDate(0, 0, -7), nil
	case domain.IntervalLast30Days:
		return now.AddDate(0, 0, -30), nil
	case domain.IntervalLast365Days:
		return now.AddDate(0, 0, -365), nil
	default:
		return time.Time{}, domain.ErrInvalidInterval
	}
}

func startOfMonth(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func optionalID(id string) (*int64, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := snowflake.ParseString(trimmed)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	value := parsed.Int64()
	return &value, nil
}
