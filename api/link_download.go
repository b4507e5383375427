package api

import (
	"cryptvault/file-api/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LinkDownload serves a file to anyone holding a valid share link token.
// No session is required, the token is the capability. Password-gated
// links read the password from the X-Share-Password header.
func (a *API) LinkDownload(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	token := c.Param("token")
	if token == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "No share token provided",
			"requestID": requestID,
		})
		return
	}

	file, decision, err := service.AuthorizeLink(a.DB, a.Argon, token, c.GetHeader("X-Share-Password"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":     "Share link not found",
				"requestID": requestID,
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to authorize link access", zap.Error(err))
		return
	}

	if !decision.Allowed {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":     decision.Reason,
			"requestID": requestID,
		})
		return
	}

	a.streamDecrypted(c, requestID, file)
}
