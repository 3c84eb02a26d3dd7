package domain

import "time"

// Product is a merchant site registered for parity banners. URL is canonical:
// the trailing slash is stripped at the write boundary so banner requests can
// be matched by equality.
type Product struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	UserID      string    `json:"user_id" gorm:"column:user_id;type:text;not null;index"`
	Name        string    `json:"name" gorm:"type:text;not null"`
	URL         string    `json:"url" gorm:"type:text;not null"`
	Description *string   `json:"description,omitempty" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"not null"`
}

func (Product) TableName() string { return "products" }

// Customization defaults, applied when the product is created.
const (
	DefaultLocationMessage = `Hey, it looks like you are from <b>{country}</b>. We support parity purchasing power, so if you need it, use code <b>"{coupon}"</b> to get <b>{discount}%</b> off.`
	DefaultBackgroundColor = "hsl(193, 82%, 31%)"
	DefaultTextColor       = "hsl(0, 0%, 100%)"
	DefaultFontSize        = "1rem"
	DefaultBannerContainer = "body"
)

// ProductCustomization holds the banner template and styling for exactly one
// product. It exists for every product and is never deleted on its own.
type ProductCustomization struct {
	ID              int64     `json:"id" gorm:"primaryKey"`
	ProductID       int64     `json:"product_id" gorm:"not null;uniqueIndex"`
	LocationMessage string    `json:"location_message" gorm:"type:text;not null"`
	BackgroundColor string    `json:"background_color" gorm:"type:text;not null"`
	TextColor       string    `json:"text_color" gorm:"type:text;not null"`
	FontSize        string    `json:"font_size" gorm:"type:text;not null"`
	BannerContainer string    `json:"banner_container" gorm:"type:text;not null"`
	IsSticky        bool      `json:"is_sticky" gorm:"not null"`
	ClassPrefix     *string   `json:"class_prefix,omitempty" gorm:"type:text"`
	CreatedAt       time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"not null"`
}

func (ProductCustomization) TableName() string { return "product_customizations" }

// CountryGroupDiscount overrides the banner discount for one product in one
// parity group. DiscountPercentage is stored as a fraction in [0,1]; the
// dashboard speaks percentages and the conversion happens exactly once at the
// write boundary.
type CountryGroupDiscount struct {
	CountryGroupID     int64     `json:"country_group_id" gorm:"primaryKey"`
	ProductID          int64     `json:"product_id" gorm:"primaryKey"`
	Coupon             string    `json:"coupon" gorm:"type:text;not null"`
	DiscountPercentage float64   `json:"discount_percentage" gorm:"not null"`
	CreatedAt          time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt          time.Time `json:"updated_at" gorm:"not null"`
}

func (CountryGroupDiscount) TableName() string { return "country_group_discounts" }
