package api

import (
	"cryptvault/file-api/model"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type shareBody struct {
	FileID   uint   `json:"file_id"`
	Username string `json:"username"`
}

// ShareCreate grants another user access to a file the caller owns.
// Sharing the same file with the same user twice is idempotent and reports
// the existing grant instead of failing.
func (a *API) ShareCreate(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var data shareBody
	if err := c.ShouldBind(&data); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	if data.FileID == 0 || data.Username == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "file_id and username are required",
			"requestID": requestID,
		})
		return
	}

	// Scoped to the owner, so sharing someone else's file reads as not found
	var file model.File
	err := a.DB.Where("id = ? AND user_id = ?", data.FileID, userID).First(&file).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":     "File not found. It either doesn't exist or you don't own it",
				"requestID": requestID,
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch file record", zap.Error(err))
		return
	}

	var target model.User
	err = a.DB.Where("username = ?", data.Username).First(&target).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":     "User not found",
				"requestID": requestID,
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to look up share target", zap.Error(err))
		return
	}

	grant := model.SharedFile{FileID: file.ID, UserID: target.ID}

	// FirstOrCreate plus the composite unique index keeps concurrent
	// attempts converging on a single row
	res := a.DB.Where(model.SharedFile{FileID: file.ID, UserID: target.ID}).FirstOrCreate(&grant)
	if res.Error != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create share grant", zap.Error(res.Error))
		return
	}

	message := "File shared successfully."
	if res.RowsAffected == 0 {
		message = "File already shared with this user."
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":        message,
		"shared_file_id": grant.ID,
	})
}
