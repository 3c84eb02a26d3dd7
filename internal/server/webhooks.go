package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/parityhq/paritybanner/internal/billing"
	"github.com/parityhq/paritybanner/internal/identity"
	subscriptiondomain "github.com/parityhq/paritybanner/internal/subscription/domain"
	"github.com/parityhq/paritybanner/internal/tier"
	"go.uber.org/zap"
)

// HandleBillingWebhook verifies and applies billing subscription lifecycle
// events. Signature and payload failures are 400s that touch no state;
// ignored event types and out-of-order deliveries are acknowledged with 200
// so the provider stops retrying.
func (s *Server) HandleBillingWebhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	if err := s.billingHook.Verify(payload, c.Request.Header); err != nil {
		s.log.Warn("billing webhook rejected", zap.Error(err))
		c.Status(http.StatusBadRequest)
		return
	}

	event, err := s.billingHook.Parse(payload)
	if err != nil {
		if errors.Is(err, billing.ErrEventIgnored) {
			c.Status(http.StatusOK)
			return
		}
		s.log.Warn("billing webhook malformed", zap.Error(err))
		c.Status(http.StatusBadRequest)
		return
	}

	ctx := c.Request.Context()
	switch event.Type {
	case billing.EventSubscriptionCreated:
		t, ok := tier.ByBillingPriceID(event.PriceID)
		if !ok {
			s.log.Warn("billing webhook with unknown price", zap.String("price_id", event.PriceID))
			c.Status(http.StatusBadRequest)
			return
		}
		err = s.subscriptionSvc.ApplyBillingCreated(ctx, subscriptiondomain.BillingCreatedRequest{
			UserID:         event.UserID,
			TierName:       t.Name,
			CustomerID:     event.CustomerID,
			SubscriptionID: event.SubscriptionID,
			ItemID:         event.ItemID,
		})
	case billing.EventSubscriptionUpdated:
		t, ok := tier.ByBillingPriceID(event.PriceID)
		if !ok {
			s.log.Warn("billing webhook with unknown price", zap.String("price_id", event.PriceID))
			c.Status(http.StatusBadRequest)
			return
		}
		err = s.subscriptionSvc.ApplyBillingUpdated(ctx, event.CustomerID, t.Name)
	case billing.EventSubscriptionDeleted:
		err = s.subscriptionSvc.ApplyBillingDeleted(ctx, event.CustomerID)
	}

	if err != nil {
		// A missing row means the event raced a user deletion; retrying
		// will never succeed, so acknowledge it.
		if errors.Is(err, subscriptiondomain.ErrNoSubscription) {
			s.log.Warn("billing event for unknown subscription",
				zap.String("event_id", event.EventID),
				zap.String("customer_id", event.CustomerID),
			)
			c.Status(http.StatusOK)
			return
		}
		s.log.Error("billing event failed", zap.String("event_id", event.EventID), zap.Error(err))
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Status(http.StatusOK)
}

// HandleIdentityWebhook applies user lifecycle events: created provisions
// the default subscription, deleted purges the subscription and every owned
// product. Both are idempotent under duplicate delivery.
func (s *Server) HandleIdentityWebhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	if err := s.identityHook.Verify(payload, c.Request.Header); err != nil {
		s.log.Warn("identity webhook rejected", zap.Error(err))
		c.Status(http.StatusBadRequest)
		return
	}

	event, err := s.identityHook.Parse(payload)
	if err != nil {
		if errors.Is(err, identity.ErrEventIgnored) {
			c.Status(http.StatusOK)
			return
		}
		s.log.Warn("identity webhook malformed", zap.Error(err))
		c.Status(http.StatusBadRequest)
		return
	}

	ctx := c.Request.Context()
	switch event.Type {
	case identity.EventUserCreated:
		err = s.subscriptionSvc.CreateDefault(ctx, event.UserID)
	case identity.EventUserDeleted:
		err = s.subscriptionSvc.PurgeUser(ctx, event.UserID)
	}
	if err != nil {
		s.log.Error("identity event failed", zap.String("user_id", event.UserID), zap.Error(err))
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Status(http.StatusOK)
}
