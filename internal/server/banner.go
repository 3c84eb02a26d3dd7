package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	bannerdomain "github.com/parityhq/paritybanner/internal/banner/domain"
	"go.uber.org/zap"
)

// BannerRateLimit buckets per product id so one hot product cannot starve
// the rest. The limiter fails open: losing redis degrades to unlimited
// serving, never to a broken banner.
func (s *Server) BannerRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.bannerLimiter == nil {
			c.Next()
			return
		}

		key := "ratelimit:banner:" + c.Param("id")
		result, err := s.bannerLimiter.Allow(c.Request.Context(), key, s.cfg.RateLimit.Rate, s.cfg.RateLimit.Burst)
		if err != nil {
			s.log.Warn("banner rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !result.Allowed {
			s.metrics.BannerOutcome("rate_limited")
			retryAfter := int(result.RetryAfter.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}
		c.Next()
	}
}

// ServeBanner responds with the embeddable script or an empty 404. Every
// failure is the same 404 so embedding pages cannot probe tier or discount
// configuration.
func (s *Server) ServeBanner(c *gin.Context) {
	referer := strings.TrimSpace(c.GetHeader("Referer"))
	if referer == "" {
		referer = strings.TrimSpace(c.GetHeader("Origin"))
	}

	script, err := s.bannerSvc.Serve(c.Request.Context(), bannerdomain.Request{
		ProductID:   c.Param("id"),
		RefererURL:  referer,
		CountryCode: s.requestCountryCode(c),
	})
	if err != nil {
		if !errors.Is(err, bannerdomain.ErrNotFound) {
			s.log.Error("banner serve failed", zap.String("product_id", c.Param("id")), zap.Error(err))
		}
		s.metrics.BannerOutcome("suppressed")
		c.Status(http.StatusNotFound)
		return
	}

	s.metrics.BannerOutcome("served")
	c.Data(http.StatusOK, "text/javascript", []byte(script))
}

// requestCountryCode reads the geo header stamped by the edge. The value is
// passed through untouched; resolution against stored codes is exact. Outside
// production a configured fallback code keeps local development working
// without an edge in front.
func (s *Server) requestCountryCode(c *gin.Context) string {
	if code := strings.TrimSpace(c.GetHeader(s.cfg.GeoHeader)); code != "" {
		return code
	}
	if !s.cfg.IsProduction() {
		return s.cfg.DevCountryCode
	}
	return ""
}
