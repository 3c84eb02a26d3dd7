package repository

import (
	"context"

	"github.com/parityhq/paritybanner/internal/subscription/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertDefault(ctx context.Context, db *gorm.DB, sub *domain.UserSubscription) (bool, error) {
	result := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(sub)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) FindByUser(ctx context.Context, db *gorm.DB, userID string) (*domain.UserSubscription, error) {
	var sub domain.UserSubscription
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, tier, billing_customer_id, billing_subscription_id, billing_item_id, created_at, updated_at
		 FROM user_subscriptions WHERE user_id = ?`,
		userID,
	).Scan(&sub).Error
	if err != nil {
		return nil, err
	}
	if sub.ID == 0 {
		return nil, nil
	}
	return &sub, nil
}

func (r *repo) FindByCustomer(ctx context.Context, db *gorm.DB, customerID string) (*domain.UserSubscription, error) {
	var sub domain.UserSubscription
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, tier, billing_customer_id, billing_subscription_id, billing_item_id, created_at, updated_at
		 FROM user_subscriptions WHERE billing_customer_id = ?`,
		customerID,
	).Scan(&sub).Error
	if err != nil {
		return nil, err
	}
	if sub.ID == 0 {
		return nil, nil
	}
	return &sub, nil
}

func (r *repo) UpdateByUser(ctx context.Context, db *gorm.DB, userID string, sub *domain.UserSubscription) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE user_subscriptions
		 SET tier = ?, billing_customer_id = ?, billing_subscription_id = ?, billing_item_id = ?, updated_at = ?
		 WHERE user_id = ?`,
		sub.Tier,
		sub.BillingCustomerID,
		sub.BillingSubscriptionID,
		sub.BillingItemID,
		sub.UpdatedAt,
		userID,
	)
	return result.RowsAffected, result.Error
}

func (r *repo) UpdateByCustomer(ctx context.Context, db *gorm.DB, customerID string, sub *domain.UserSubscription) (*domain.UserSubscription, error) {
	existing, err := r.FindByCustomer(ctx, db, customerID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}
	err = db.WithContext(ctx).Exec(
		`UPDATE user_subscriptions
		 SET tier = ?, billing_subscription_id = ?, billing_item_id = ?, updated_at = ?
		 WHERE billing_customer_id = ?`,
		sub.Tier,
		sub.BillingSubscriptionID,
		sub.BillingItemID,
		sub.UpdatedAt,
		customerID,
	).Error
	if err != nil {
		return nil, err
	}
	return existing, nil
}

func (r *repo) DeleteByUser(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`DELETE FROM user_subscriptions WHERE user_id = ?`,
		userID,
	)
	return result.RowsAffected, result.Error
}
