package domain

import "time"

// ProductView is an immutable banner view event. CountryID is nil when the
// visitor's country code did not resolve; the view still counts toward the
// owner's monthly quota.
type ProductView struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	ProductID int64     `json:"product_id" gorm:"not null;index"`
	CountryID *int64    `json:"country_id,omitempty" gorm:"index"`
	ViewTime  time.Time `json:"view_time" gorm:"not null"`
}

func (ProductView) TableName() string { return "product_views" }
