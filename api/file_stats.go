package api

import (
	"cryptvault/file-api/model"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type typeCount struct {
	Type  string
	Count int64
}

// FileTypeStats returns the five most common file types across all users.
// Gated by middleware.AdminOnly.
func (a *API) FileTypeStats(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var counts []typeCount

	err := a.DB.
		Model(model.File{}).
		Select("type, COUNT(type) AS count").
		Group("type").
		Order("count desc").
		Limit(5).
		Scan(&counts).
		Error
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to aggregate file types", zap.Error(err))
		return
	}

	result := make(map[string]int64, len(counts))
	for _, tc := range counts {
		result[tc.Type] = tc.Count
	}

	c.JSON(http.StatusOK, result)
}
