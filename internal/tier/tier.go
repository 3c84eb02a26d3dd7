package tier

import (
	"errors"
	"fmt"
)

// Tier bundles the quotas and feature flags of one subscription plan.
type Tier struct {
	Name               string
	PriceCents         int
	MaxProducts        int
	MaxMonthlyVisits   int
	CanAccessAnalytics bool
	CanCustomizeBanner bool
	CanRemoveBranding  bool
	// BillingPriceID reconciles billing-provider subscription events back to
	// a tier. Empty for the free tier.
	BillingPriceID string
}

const (
	FreeTierName     = "Free"
	BasicTierName    = "Basic"
	StandardTierName = "Standard"
	PremiumTierName  = "Premium"
)

var (
	Free = Tier{
		Name:             FreeTierName,
		MaxProducts:      1,
		MaxMonthlyVisits: 5_000,
	}
	Basic = Tier{
		Name:               BasicTierName,
		PriceCents:         1900,
		MaxProducts:        5,
		MaxMonthlyVisits:   10_000,
		CanAccessAnalytics: true,
		BillingPriceID:     "price_basic",
	}
	Standard = Tier{
		Name:               StandardTierName,
		PriceCents:         4900,
		MaxProducts:        30,
		MaxMonthlyVisits:   100_000,
		CanAccessAnalytics: true,
		CanCustomizeBanner: true,
		BillingPriceID:     "price_standard",
	}
	Premium = Tier{
		Name:               PremiumTierName,
		PriceCents:         9900,
		MaxProducts:        50,
		MaxMonthlyVisits:   1_000_000,
		CanAccessAnalytics: true,
		CanCustomizeBanner: true,
		CanRemoveBranding:  true,
		BillingPriceID:     "price_premium",
	}

	// Ordered lowest to highest.
	All = []Tier{Free, Basic, Standard, Premium}
)

var ErrUnknownTier = errors.New("unknown_tier")

// ByName resolves a stored tier name. An unknown name is an error, never a
// silent downgrade to Free: every user owns exactly one subscription row and
// its tier must always resolve.
func ByName(name string) (Tier, error) {
	for _, t := range All {
		if t.Name == name {
			return t, nil
		}
	}
	return Tier{}, fmt.Errorf("%w: %s", ErrUnknownTier, name)
}

// ByBillingPriceID resolves the tier sold under a billing price id, or false
// when the price does not belong to this catalog.
func ByBillingPriceID(priceID string) (Tier, bool) {
	if priceID == "" {
		return Tier{}, false
	}
	for _, t := range All {
		if t.BillingPriceID == priceID {
			return t, true
		}
	}
	return Tier{}, false
}
