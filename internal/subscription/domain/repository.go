package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	// InsertDefault creates the row unless the user already has one.
	InsertDefault(ctx context.Context, db *gorm.DB, sub *UserSubscription) (bool, error)
	FindByUser(ctx context.Context, db *gorm.DB, userID string) (*UserSubscription, error)
	FindByCustomer(ctx context.Context, db *gorm.DB, customerID string) (*UserSubscription, error)
	UpdateByUser(ctx context.Context, db *gorm.DB, userID string, sub *UserSubscription) (int64, error)
	UpdateByCustomer(ctx context.Context, db *gorm.DB, customerID string, sub *UserSubscription) (*UserSubscription, error)
	DeleteByUser(ctx context.Context, db *gorm.DB, userID string) (int64, error)
}
