package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, product *Product) error
	CreateCustomization(ctx context.Context, db *gorm.DB, customization *ProductCustomization) error
	FindByID(ctx context.Context, db *gorm.DB, userID string, id int64) (*Product, error)
	FindAllByUser(ctx context.Context, db *gorm.DB, userID string, limit int) ([]Product, error)
	CountByUser(ctx context.Context, db *gorm.DB, userID string) (int64, error)
	Update(ctx context.Context, db *gorm.DB, product *Product) (int64, error)
	Delete(ctx context.Context, db *gorm.DB, userID string, id int64) (int64, error)
	DeleteByUser(ctx context.Context, db *gorm.DB, userID string) ([]int64, error)

	FindCustomization(ctx context.Context, db *gorm.DB, productID int64) (*ProductCustomization, error)
	UpdateCustomization(ctx context.Context, db *gorm.DB, customization *ProductCustomization) error

	FindDiscounts(ctx context.Context, db *gorm.DB, productID int64) ([]CountryGroupDiscount, error)
	FindDiscountForGroup(ctx context.Context, db *gorm.DB, productID, groupID int64) (*CountryGroupDiscount, error)
	DeleteDiscounts(ctx context.Context, db *gorm.DB, productID int64, groupIDs []int64) error
	UpsertDiscounts(ctx context.Context, db *gorm.DB, discounts []CountryGroupDiscount) error

	// FindBanner matches a product by id and canonical URL. Both sides are
	// expected pre-normalized (trailing slash stripped).
	FindBanner(ctx context.Context, db *gorm.DB, id int64, url string) (*Product, error)
}
