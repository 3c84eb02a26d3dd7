package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, view *ProductView) error
	CountByUserSince(ctx context.Context, db *gorm.DB, userID string, since time.Time) (int64, error)
	CountByDay(ctx context.Context, db *gorm.DB, userID string, productID *int64, since time.Time) ([]DayCount, error)
	CountByCountry(ctx context.Context, db *gorm.DB, userID string, productID *int64, since time.Time) ([]CountryCount, error)
	CountByGroup(ctx context.Context, db *gorm.DB, userID string, productID *int64, since time.Time) ([]GroupCount, error)
}

type DayCount struct {
	Day   string `json:"day"`
	Views int64  `json:"views"`
}

type CountryCount struct {
	CountryName string `json:"country_name"`
	CountryCode string `json:"country_code"`
	Views       int64  `json:"views"`
}

type GroupCount struct {
	GroupName string `json:"group_name"`
	Views     int64  `json:"views"`
}
