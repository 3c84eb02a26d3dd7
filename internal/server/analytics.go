package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	viewdomain "github.com/parityhq/paritybanner/internal/views/domain"
)

const analyticsUpgradeMessage = "Analytics requires a paid plan."

func (s *Server) ViewsByDay(c *gin.Context) {
	s.serveAnalytics(c, func(interval viewdomain.Interval) (any, error) {
		return s.viewSvc.ViewsByDay(c.Request.Context(), userID(c), c.Query("product_id"), interval)
	})
}

func (s *Server) ViewsByCountry(c *gin.Context) {
	s.serveAnalytics(c, func(interval viewdomain.Interval) (any, error) {
		return s.viewSvc.ViewsByCountry(c.Request.Context(), userID(c), c.Query("product_id"), interval)
	})
}

func (s *Server) ViewsByGroup(c *gin.Context) {
	s.serveAnalytics(c, func(interval viewdomain.Interval) (any, error) {
		return s.viewSvc.ViewsByGroup(c.Request.Context(), userID(c), c.Query("product_id"), interval)
	})
}

func (s *Server) serveAnalytics(c *gin.Context, load func(viewdomain.Interval) (any, error)) {
	allowed, err := s.perms.CanAccessAnalytics(c.Request.Context(), userID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !allowed {
		AbortWithError(c, &EntitlementError{Message: analyticsUpgradeMessage})
		return
	}

	interval := viewdomain.Interval(c.DefaultQuery("interval", string(viewdomain.IntervalLast30Days)))
	counts, err := load(interval)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"counts": counts})
}

func (s *Server) GetSubscription(c *gin.Context) {
	ctx := c.Request.Context()

	sub, err := s.subscriptionSvc.Get(ctx, userID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	views, err := s.viewSvc.MonthlyViewCount(ctx, userID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	products, err := s.productSvc.ProductCount(ctx, userID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"subscription":       sub,
		"monthly_view_count": views,
		"product_count":      products,
	})
}
