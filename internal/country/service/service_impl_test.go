package service

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/parityhq/paritybanner/internal/cache"
	"github.com/parityhq/paritybanner/internal/country/domain"
	"github.com/parityhq/paritybanner/internal/country/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupService(t *testing.T) (domain.Service, *cache.Store) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.CountryGroup{}, &domain.Country{}))

	repo := repository.Provide()
	ctx := context.Background()
	now := time.Now().UTC()

	discountA, discountB := 0.2, 0.6
	groups := []domain.CountryGroup{
		{ID: 1, Name: "Parity Group 2", RecommendedDiscountPercentage: &discountA, CreatedAt: now, UpdatedAt: now},
		{ID: 2, Name: "Parity Group 6", RecommendedDiscountPercentage: &discountB, CreatedAt: now, UpdatedAt: now},
	}
	for i := range groups {
		require.NoError(t, repo.UpsertGroup(ctx, db, &groups[i]))
	}
	countries := []domain.Country{
		{ID: 10, Name: "Japan", Code: "JP", CountryGroupID: 1, CreatedAt: now, UpdatedAt: now},
		{ID: 11, Name: "India", Code: "IN", CountryGroupID: 2, CreatedAt: now, UpdatedAt: now},
		{ID: 12, Name: "Pakistan", Code: "PK", CountryGroupID: 2, CreatedAt: now, UpdatedAt: now},
	}
	for i := range countries {
		require.NoError(t, repo.UpsertCountry(ctx, db, &countries[i]))
	}

	store := cache.NewStore()
	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Cache: store,
		Repo:  repo,
	})
	return svc, store
}

func TestResolveCodeIsExactMatch(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	india, err := svc.ResolveCode(ctx, "IN")
	require.NoError(t, err)
	require.NotNil(t, india)
	assert.Equal(t, "India", india.Name)
	assert.EqualValues(t, 2, india.CountryGroupID)

	// Lookup is case-sensitive; callers normalize before resolving.
	lower, err := svc.ResolveCode(ctx, "in")
	require.NoError(t, err)
	assert.Nil(t, lower)

	missing, err := svc.ResolveCode(ctx, "ZZ")
	require.NoError(t, err)
	assert.Nil(t, missing)

	empty, err := svc.ResolveCode(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestListGroupsIncludesCountries(t *testing.T) {
	svc, _ := setupService(t)

	groups, err := svc.ListGroups(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 2)

	byName := make(map[string]domain.GroupResponse, len(groups))
	for _, g := range groups {
		byName[g.Name] = g
	}

	g6, ok := byName["Parity Group 6"]
	require.True(t, ok)
	require.NotNil(t, g6.RecommendedDiscountPercentage)
	assert.InDelta(t, 0.6, *g6.RecommendedDiscountPercentage, 1e-9)
	require.Len(t, g6.Countries, 2)

	codes := []string{g6.Countries[0].Code, g6.Countries[1].Code}
	assert.ElementsMatch(t, []string{"IN", "PK"}, codes)
}

func TestResolveCodeUsesCacheUntilRevalidated(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()

	first, err := svc.ResolveCode(ctx, "JP")
	require.NoError(t, err)
	require.NotNil(t, first)

	// A second read for the same code is served from the store.
	second, err := svc.ResolveCode(ctx, "JP")
	require.NoError(t, err)
	assert.Same(t, first, second)

	store.Revalidate(cache.GlobalTag(cache.KindCountries))

	third, err := svc.ResolveCode(ctx, "JP")
	require.NoError(t, err)
	require.NotNil(t, third)
	assert.NotSame(t, first, third)
}
