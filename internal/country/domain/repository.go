package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*Country, error)
	FindAllGroups(ctx context.Context, db *gorm.DB) ([]CountryGroup, error)
	FindCountriesByGroup(ctx context.Context, db *gorm.DB, groupID int64) ([]Country, error)
	UpsertGroup(ctx context.Context, db *gorm.DB, group *CountryGroup) error
	UpsertCountry(ctx context.Context, db *gorm.DB, country *Country) error
}
