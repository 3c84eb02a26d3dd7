package server

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const userIDContextKey = "user_id"

// UserHeader carries the authenticated user id, stamped by the identity
// gateway in front of the service. The service trusts its deployment
// perimeter; there is no session handling here.
const UserHeader = "X-User-ID"

func (s *Server) UserRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(UserHeader))
		if userID == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Set(userIDContextKey, userID)
		c.Next()
	}
}

func userID(c *gin.Context) string {
	return c.GetString(userIDContextKey)
}
