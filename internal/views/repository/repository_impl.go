package repository

import (
	"context"
	"time"

	"github.com/parityhq/paritybanner/internal/views/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, view *domain.ProductView) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO product_views (id, product_id, country_id, view_time)
		 VALUES (?, ?, ?, ?)`,
		view.ID,
		view.ProductID,
		view.CountryID,
		view.ViewTime,
	).Error
}

func (r *repo) CountByUserSince(ctx context.Context, db *gorm.DB, userID string, since time.Time) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*)
		 FROM product_views pv
		 INNER JOIN products p ON p.id = pv.product_id
		 WHERE p.user_id = ? AND pv.view_time >= ?`,
		userID,
		since,
	).Scan(&count).Error
	return count, err
}

func (r *repo) CountByDay(ctx context.Context, db *gorm.DB, userID string, productID *int64, since time.Time) ([]domain.DayCount, error) {
	var counts []domain.DayCount
	stmt := db.WithContext(ctx).
		Table("product_views pv").
		Select("DATE(pv.view_time) AS day, COUNT(*) AS views").
		Joins("INNER JOIN products p ON p.id = pv.product_id").
		Where("p.user_id = ? AND pv.view_time >= ?", userID, since)
	if productID != nil {
		stmt = stmt.Where("pv.product_id = ?", *productID)
	}
	err := stmt.Group("DATE(pv.view_time)").Order("day ASC").Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *repo) CountByCountry(ctx context.Context, db *gorm.DB, userID string, productID *int64, since time.Time) ([]domain.CountryCount, error) {
	var counts []domain.CountryCount
	stmt := db.WithContext(ctx).
		Table("product_views pv").
		Select("c.name AS country_name, c.code AS country_code, COUNT(*) AS views").
		Joins("INNER JOIN products p ON p.id = pv.product_id").
		Joins("INNER JOIN countries c ON c.id = pv.country_id").
		Where("p.user_id = ? AND pv.view_time >= ?", userID, since)
	if productID != nil {
		stmt = stmt.Where("pv.product_id = ?", *productID)
	}
	err := stmt.Group("c.name, c.code").Order("views DESC").Limit(25).Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *repo) CountByGroup(ctx context.Context, db *gorm.DB, userID string, productID *int64, since time.Time) ([]domain.GroupCount, error) {
	var counts []domain.GroupCount
	stmt := db.WithContext(ctx).
		Table("product_views pv").
		Select("cg.name AS group_name, COUNT(*) AS views").
		Joins("INNER JOIN products p ON p.id = pv.product_id").
		Joins("INNER JOIN countries c ON c.id = pv.country_id").
		Joins("INNER JOIN country_groups cg ON cg.id = c.country_group_id").
		Where("p.user_id = ? AND pv.view_time >= ?", userID, since)
	if productID != nil {
		stmt = stmt.Where("pv.product_id = ?", *productID)
	}
	err := stmt.Group("cg.name").Order("group_name ASC").Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}
