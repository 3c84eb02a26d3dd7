package domain

import (
	"context"
	"errors"

	"github.com/parityhq/paritybanner/internal/tier"
)

// Service owns subscription rows and translates identity/billing lifecycle
// events into them. Every user has exactly one row from identity creation to
// identity deletion.
type Service interface {
	CreateDefault(ctx context.Context, userID string) error
	Get(ctx context.Context, userID string) (*Response, error)
	TierFor(ctx context.Context, userID string) (tier.Tier, error)

	ApplyBillingCreated(ctx context.Context, req BillingCreatedRequest) error
	ApplyBillingUpdated(ctx context.Context, customerID, tierName string) error
	ApplyBillingDeleted(ctx context.Context, customerID string) error

	// PurgeUser removes the subscription and every product the user owns.
	PurgeUser(ctx context.Context, userID string) error
}

type BillingCreatedRequest struct {
	UserID         string
	TierName       string
	CustomerID     string
	SubscriptionID string
	ItemID         string
}

type Response struct {
	Tier                  string  `json:"tier"`
	BillingCustomerID     *string `json:"billing_customer_id,omitempty"`
	BillingSubscriptionID *string `json:"billing_subscription_id,omitempty"`
}

var (
	// ErrNoSubscription means the invariant "one row per user" is broken or
	// the user id is foreign; callers must treat it as an error, never as an
	// implicit free tier.
	ErrNoSubscription = errors.New("no_subscription")
	ErrUnknownTier    = tier.ErrUnknownTier
)
