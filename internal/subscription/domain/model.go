package domain

import "time"

// UserSubscription is the single subscription row owned by one user identity.
// The billing identifiers reconcile provider webhook events back to the row;
// they are nil until the user first subscribes to a paid tier.
type UserSubscription struct {
	ID                    int64     `json:"id" gorm:"primaryKey"`
	UserID                string    `json:"user_id" gorm:"column:user_id;type:text;not null;uniqueIndex"`
	Tier                  string    `json:"tier" gorm:"type:text;not null"`
	BillingCustomerID     *string   `json:"billing_customer_id,omitempty" gorm:"type:text;index"`
	BillingSubscriptionID *string   `json:"billing_subscription_id,omitempty" gorm:"type:text"`
	BillingItemID         *string   `json:"billing_item_id,omitempty" gorm:"type:text"`
	CreatedAt             time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt             time.Time `json:"updated_at" gorm:"not null"`
}

func (UserSubscription) TableName() string { return "user_subscriptions" }
