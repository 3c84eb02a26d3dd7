package repository

import (
	"context"

	"github.com/parityhq/paritybanner/internal/country/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Country, error) {
	var c domain.Country
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, code, country_group_id, created_at, updated_at
		 FROM countries WHERE code = ?`,
		code,
	).Scan(&c).Error
	if err != nil {
		return nil, err
	}
	if c.ID == 0 {
		return nil, nil
	}
	return &c, nil
}

func (r *repo) FindAllGroups(ctx context.Context, db *gorm.DB) ([]domain.CountryGroup, error) {
	var groups []domain.CountryGroup
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, recommended_discount_percentage, created_at, updated_at
		 FROM country_groups ORDER BY recommended_discount_percentage ASC, name ASC`,
	).Scan(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *repo) FindCountriesByGroup(ctx context.Context, db *gorm.DB, groupID int64) ([]domain.Country, error) {
	var countries []domain.Country
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, code, country_group_id, created_at, updated_at
		 FROM countries WHERE country_group_id = ? ORDER BY name ASC`,
		groupID,
	).Scan(&countries).Error
	if err != nil {
		return nil, err
	}
	return countries, nil
}

func (r *repo) UpsertGroup(ctx context.Context, db *gorm.DB, group *domain.CountryGroup) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"recommended_discount_percentage", "updated_at"}),
	}).Create(group).Error
}

func (r *repo) UpsertCountry(ctx context.Context, db *gorm.DB, country *domain.Country) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "country_group_id", "updated_at"}),
	}).Create(country).Error
}
