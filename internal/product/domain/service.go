package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, userID string, req CreateRequest) (*Response, error)
	Update(ctx context.Context, userID, id string, req CreateRequest) (*Response, error)
	Delete(ctx context.Context, userID, id string) error
	Get(ctx context.Context, userID, id string) (*Response, error)
	List(ctx context.Context, userID string, limit int) ([]Response, error)
	// ProductCount backs the tier quota check through the tag cache.
	ProductCount(ctx context.Context, userID string) (int, error)

	Customization(ctx context.Context, userID, id string) (*CustomizationResponse, error)
	UpdateCustomization(ctx context.Context, userID, id string, req CustomizationRequest) (*CustomizationResponse, error)

	Discounts(ctx context.Context, userID, id string) ([]DiscountResponse, error)
	ReplaceDiscounts(ctx context.Context, userID, id string, entries []DiscountEntry) error

	// BannerProduct and DiscountForGroup serve the public banner pipeline.
	BannerProduct(ctx context.Context, id int64, url string) (*BannerProduct, error)
	DiscountForGroup(ctx context.Context, productID, groupID int64) (*BannerDiscount, error)
}

type CreateRequest struct {
	Name        string  `json:"name"`
	URL         string  `json:"url"`
	Description *string `json:"description"`
}

type Response struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CustomizationRequest struct {
	LocationMessage string  `json:"location_message"`
	BackgroundColor string  `json:"background_color"`
	TextColor       string  `json:"text_color"`
	FontSize        string  `json:"font_size"`
	BannerContainer string  `json:"banner_container"`
	IsSticky        bool    `json:"is_sticky"`
	ClassPrefix     *string `json:"class_prefix"`
}

type CustomizationResponse struct {
	LocationMessage string  `json:"location_message"`
	BackgroundColor string  `json:"background_color"`
	TextColor       string  `json:"text_color"`
	FontSize        string  `json:"font_size"`
	BannerContainer string  `json:"banner_container"`
	IsSticky        bool    `json:"is_sticky"`
	ClassPrefix     *string `json:"class_prefix,omitempty"`
}

// DiscountEntry is one row of the dashboard discounts form. The percentage is
// user-facing (1-100); a nil percentage with a non-empty coupon is a
// validation error, and an empty coupon deletes the group's discount.
type DiscountEntry struct {
	CountryGroupID     string   `json:"country_group_id"`
	Coupon             string   `json:"coupon"`
	DiscountPercentage *float64 `json:"discount_percentage"`
}

// DiscountResponse renders a stored discount back in percentage form.
type DiscountResponse struct {
	CountryGroupID     string  `json:"country_group_id"`
	Coupon             string  `json:"coupon"`
	DiscountPercentage float64 `json:"discount_percentage"`
}

// BannerProduct is the slice of a product the serving pipeline needs.
type BannerProduct struct {
	ID            int64
	UserID        string
	Customization CustomizationResponse
}

// BannerDiscount carries the stored fraction, not a percentage.
type BannerDiscount struct {
	Coupon     string
	Percentage float64
}

var (
	ErrNotFound             = errors.New("not_found")
	ErrInvalidName          = errors.New("invalid_name")
	ErrInvalidURL           = errors.New("invalid_url")
	ErrInvalidID            = errors.New("invalid_id")
	ErrInvalidCustomization = errors.New("invalid_customization")

	// ErrDiscountRequired rejects a coupon submitted without a usable
	// percentage.
	ErrDiscountRequired = errors.New("discount_required")
	// ErrInvalidDiscount rejects percentages outside [1,100].
	ErrInvalidDiscount = errors.New("invalid_discount")
	// ErrCustomizationIntegrity reports a failed customization insert; the
	// surrounding transaction rolls the product back.
	ErrCustomizationIntegrity = errors.New("customization_integrity")
)

// DiscountRequiredMessage is surfaced to the dashboard user verbatim.
const DiscountRequiredMessage = "A discount is required if the coupon code is provided"
