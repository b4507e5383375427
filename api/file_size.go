package api

import (
	"cryptvault/file-api/model"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FileTotalSize sums the stored plaintext sizes of the caller's files.
// Zero when the user has no files.
func (a *API) FileTotalSize(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var total int64

	err := a.DB.
		Model(model.File{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(size), 0)").
		Scan(&total).
		Error
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to sum user file sizes", zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_size": total,
	})
}
