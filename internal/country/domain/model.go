package domain

import "time"

// CountryGroup is a parity bucket of countries sharing a discount policy.
// RecommendedDiscountPercentage is a hint for operators, never enforced.
type CountryGroup struct {
	ID                            int64     `json:"id" gorm:"primaryKey"`
	Name                          string    `json:"name" gorm:"type:text;not null;uniqueIndex"`
	RecommendedDiscountPercentage *float64  `json:"recommended_discount_percentage,omitempty" gorm:"column:recommended_discount_percentage"`
	CreatedAt                     time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt                     time.Time `json:"updated_at" gorm:"not null"`
}

func (CountryGroup) TableName() string { return "country_groups" }

// Country belongs to exactly one CountryGroup. Codes are stored upper-case
// and matched exactly against the geo source.
type Country struct {
	ID             int64     `json:"id" gorm:"primaryKey"`
	Name           string    `json:"name" gorm:"type:text;not null;uniqueIndex"`
	Code           string    `json:"code" gorm:"type:text;not null;uniqueIndex"`
	CountryGroupID int64     `json:"country_group_id" gorm:"not null;index"`
	CreatedAt      time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"not null"`
}

func (Country) TableName() string { return "countries" }
