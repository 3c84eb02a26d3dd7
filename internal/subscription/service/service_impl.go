package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/parityhq/paritybanner/internal/cache"
	productdomain "github.com/parityhq/paritybanner/internal/product/domain"
	"github.com/parityhq/paritybanner/internal/subscription/domain"
	"github.com/parityhq/paritybanner/internal/tier"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Cache       *cache.Store
	GenID       *snowflake.Node
	Repo        domain.Repository
	ProductRepo productdomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	cache       *cache.Store
	genID       *snowflake.Node
	repo        domain.Repository
	productRepo productdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("subscription.service"),
		cache:       p.Cache,
		genID:       p.GenID,
		repo:        p.Repo,
		productRepo: p.ProductRepo,
	}
}

// CreateDefault provisions the free-tier row for a new user. Replayed
// identity events are absorbed: an existing row is left untouched.
func (s *Service) CreateDefault(ctx context.Context, userID string) error {
	now := time.Now().UTC()
	inserted, err := s.repo.InsertDefault(ctx, s.db, &domain.UserSubscription{
		ID:        s.genID.Generate().Int64(),
		UserID:    userID,
		Tier:      tier.Free.Name,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return err
	}
	if inserted {
		s.log.Info("default subscription created", zap.String("user_id", userID))
		s.cache.Revalidate(cache.UserTag(userID, cache.KindSubscription))
	}
	return nil
}

func (s *Service) Get(ctx context.Context, userID string) (*domain.Response, error) {
	sub, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, domain.ErrNoSubscription
	}
	return &domain.Response{
		Tier:                  sub.Tier,
		BillingCustomerID:     sub.BillingCustomerID,
		BillingSubscriptionID: sub.BillingSubscriptionID,
	}, nil
}

// TierFor resolves the user's tier for entitlement checks. A missing row is
// an error, never an implicit free tier.
func (s *Service) TierFor(ctx context.Context, userID string) (tier.Tier, error) {
	sub, err := s.find(ctx, userID)
	if err != nil {
		return tier.Tier{}, err
	}
	if sub == nil {
		return tier.Tier{}, domain.ErrNoSubscription
	}
	return tier.ByName(sub.Tier)
}

// ApplyBillingCreated records the paid subscription on the user's row. The
// identity webhook normally creates the row first; if that delivery is still
// in flight the row is created here, which keeps the two webhooks safe to
// arrive in either order.
func (s *Service) ApplyBillingCreated(ctx context.Context, req domain.BillingCreatedRequest) error {
	t, err := tier.ByName(req.TierName)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	rows, err := s.repo.UpdateByUser(ctx, s.db, req.UserID, &domain.UserSubscription{
		Tier:                  t.Name,
		BillingCustomerID:     &req.CustomerID,
		BillingSubscriptionID: &req.SubscriptionID,
		BillingItemID:         &req.ItemID,
		UpdatedAt:             now,
	})
	if err != nil {
		return err
	}
	if rows == 0 {
		if _, err := s.repo.InsertDefault(ctx, s.db, &domain.UserSubscription{
			ID:                    s.genID.Generate().Int64(),
			UserID:                req.UserID,
			Tier:                  t.Name,
			BillingCustomerID:     &req.CustomerID,
			BillingSubscriptionID: &req.SubscriptionID,
			BillingItemID:         &req.ItemID,
			CreatedAt:             now,
			UpdatedAt:             now,
		}); err != nil {
			return err
		}
	}

	s.log.Info("billing subscription created",
		zap.String("user_id", req.UserID),
		zap.String("tier", t.Name),
	)
	s.cache.Revalidate(cache.UserTag(req.UserID, cache.KindSubscription))
	return nil
}

func (s *Service) ApplyBillingUpdated(ctx context.Context, customerID, tierName string) error {
	t, err := tier.ByName(tierName)
	if err != nil {
		return err
	}

	existing, err := s.repo.FindByCustomer(ctx, s.db, customerID)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrNoSubscription
	}

	existing.Tier = t.Name
	existing.UpdatedAt = time.Now().UTC()
	if _, err := s.repo.UpdateByCustomer(ctx, s.db, customerID, existing); err != nil {
		return err
	}

	s.log.Info("billing subscription updated",
		zap.String("user_id", existing.UserID),
		zap.String("tier", t.Name),
	)
	s.cache.Revalidate(cache.UserTag(existing.UserID, cache.KindSubscription))
	return nil
}

// ApplyBillingDeleted drops the user back to the free tier. The billing
// customer id is kept so a later resubscribe reconciles to the same row.
func (s *Service) ApplyBillingDeleted(ctx context.Context, customerID string) error {
	existing, err := s.repo.FindByCustomer(ctx, s.db, customerID)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrNoSubscription
	}

	existing.Tier = tier.Free.Name
	existing.BillingSubscriptionID = nil
	existing.BillingItemID = nil
	existing.UpdatedAt = time.Now().UTC()
	if _, err := s.repo.UpdateByCustomer(ctx, s.db, customerID, existing); err != nil {
		return err
	}

	s.log.Info("billing subscription deleted", zap.String("user_id", existing.UserID))
	s.cache.Revalidate(cache.UserTag(existing.UserID, cache.KindSubscription))
	return nil
}

// PurgeUser removes the subscription and every product the user owns in one
// transaction, then invalidates all caches derived from them.
func (s *Service) PurgeUser(ctx context.Context, userID string) error {
	var productIDs []int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids, err := s.productRepo.DeleteByUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		productIDs = ids
		_, err = s.repo.DeleteByUser(ctx, tx, userID)
		return err
	})
	if err != nil {
		return err
	}

	tags := []cache.Tag{
		cache.UserTag(userID, cache.KindSubscription),
		cache.UserTag(userID, cache.KindProducts),
		cache.UserTag(userID, cache.KindProductViews),
	}
	for _, id := range productIDs {
		tags = append(tags, cache.IDTag(snowflake.ID(id).String(), cache.KindProducts))
	}
	s.cache.Revalidate(tags...)

	s.log.Info("user purged",
		zap.String("user_id", userID),
		zap.Int("products_removed", len(productIDs)),
	)
	return nil
}

func (s *Service) find(ctx context.Context, userID string) (*domain.UserSubscription, error) {
	key := cache.Key("subscription", userID)
	tags := []cache.Tag{cache.UserTag(userID, cache.KindSubscription)}
	return cache.Read(ctx, s.cache, key, tags, func(ctx context.Context) (*domain.UserSubscription, error) {
		return s.repo.FindByUser(ctx, s.db, userID)
	})
}
