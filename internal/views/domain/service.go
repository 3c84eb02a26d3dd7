package domain

import (
	"context"
	"errors"
)

// Interval selects the analytics window.
type Interval string

const (
	IntervalLast7Days   Interval = "last7Days"
	IntervalLast30Days  Interval = "last30Days"
	IntervalLast365Days Interval = "last365Days"
)

// Service records view events and serves usage counts. Views are append-only;
// no update or delete path exists outside product cascades.
type Service interface {
	Record(ctx context.Context, ownerID string, productID int64, countryID *int64) error
	MonthlyViewCount(ctx context.Context, userID string) (int, error)
	ViewsByDay(ctx context.Context, userID string, productID string, interval Interval) ([]DayCount, error)
	ViewsByCountry(ctx context.Context, userID string, productID string, interval Interval) ([]CountryCount, error)
	ViewsByGroup(ctx context.Context, userID string, productID string, interval Interval) ([]GroupCount, error)
}

var (
	ErrInvalidInterval = errors.New("invalid_interval")
	ErrInvalidID       = errors.New("invalid_id")
)
