package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminOnly rejects non-admin principals. Must run after the auth
// middleware and before any response cache, so cached bodies are only ever
// produced for admins.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool("isAdmin") {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":     "Admin access required",
				"requestID": c.MustGet("requestID").(string),
			})
			return
		}

		c.Next()
	}
}
