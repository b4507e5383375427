package api

import (
	"cryptvault/file-api/model"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ShareRevoke removes a grant the caller received. Only the grantee can
// give up their own access through this path, owners have no revoke
// endpoint.
func (a *API) ShareRevoke(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	grantID := c.Param("id")
	if grantID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "ID is missing",
			"requestID": requestID,
		})
		return
	}

	var grant model.SharedFile

	err := a.DB.Where("id = ? AND user_id = ?", grantID, userID).First(&grant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":     "Share not found",
				"requestID": requestID,
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch share grant", zap.Error(err))
		return
	}

	if err := a.DB.Delete(&grant).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to delete share grant", zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Access to the file has been removed successfully.",
	})
}
