package tier

import "context"

// TierResolver yields the subscription tier owned by a user.
type TierResolver interface {
	TierFor(ctx context.Context, userID string) (Tier, error)
}

// ProductCounter counts a user's products, served through the tag cache.
type ProductCounter interface {
	ProductCount(ctx context.Context, userID string) (int, error)
}

// VisitCounter counts a user's banner views for the current month, served
// through the tag cache.
type VisitCounter interface {
	MonthlyViewCount(ctx context.Context, userID string) (int, error)
}

// Permissions answers entitlement questions for a user. Quota checks read
// cached counts, so two concurrent creations may overshoot a limit by one;
// the store is reconciled on the next read and the overshoot is accepted.
type Permissions struct {
	tiers    TierResolver
	products ProductCounter
	visits   VisitCounter
}

func NewPermissions(tiers TierResolver, products ProductCounter, visits VisitCounter) *Permissions {
	return &Permissions{tiers: tiers, products: products, visits: visits}
}

// CanCreateProduct reports whether the user is below their product quota.
func (p *Permissions) CanCreateProduct(ctx context.Context, userID string) (bool, error) {
	t, err := p.tiers.TierFor(ctx, userID)
	if err != nil {
		return false, err
	}
	count, err := p.products.ProductCount(ctx, userID)
	if err != nil {
		return false, err
	}
	return count < t.MaxProducts, nil
}

// CanShowDiscountBanner reports whether the user is below their monthly
// banner visit quota.
func (p *Permissions) CanShowDiscountBanner(ctx context.Context, userID string) (bool, error) {
	t, err := p.tiers.TierFor(ctx, userID)
	if err != nil {
		return false, err
	}
	visits, err := p.visits.MonthlyViewCount(ctx, userID)
	if err != nil {
		return false, err
	}
	return visits < t.MaxMonthlyVisits, nil
}

func (p *Permissions) CanCustomizeBanner(ctx context.Context, userID string) (bool, error) {
	t, err := p.tiers.TierFor(ctx, userID)
	if err != nil {
		return false, err
	}
	return t.CanCustomizeBanner, nil
}

func (p *Permissions) CanRemoveBranding(ctx context.Context, userID string) (bool, error) {
	t, err := p.tiers.TierFor(ctx, userID)
	if err != nil {
		return false, err
	}
	return t.CanRemoveBranding, nil
}

func (p *Permissions) CanAccessAnalytics(ctx context.Context, userID string) (bool, error) {
	t, err := p.tiers.TierFor(ctx, userID)
	if err != nil {
		return false, err
	}
	return t.CanAccessAnalytics, nil
}
