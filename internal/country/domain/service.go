package domain

import "context"

// Service resolves request country codes and lists parity groups for the
// dashboard. Resolution is exact-match only; an unknown code yields a nil
// country, not an error.
type Service interface {
	ResolveCode(ctx context.Context, code string) (*Country, error)
	ListGroups(ctx context.Context) ([]GroupResponse, error)
}

type GroupResponse struct {
	ID                            string            `json:"id"`
	Name                          string            `json:"name"`
	RecommendedDiscountPercentage *float64          `json:"recommended_discount_percentage,omitempty"`
	Countries                     []CountryResponse `json:"countries"`
}

type CountryResponse struct {
	Name string `json:"name"`
	Code string `json:"code"`
}
