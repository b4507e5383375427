package api

import (
	"cryptvault/file-api/model"
	"cryptvault/file-api/security"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type linkShareBody struct {
	FileID         uint   `json:"file_id"`
	ExpirationDate string `json:"expiration_date"`
	Password       string `json:"password"`
}

// LinkShareCreate creates a bearer token for a file the caller owns,
// optionally expiring at a day-granularity date and optionally gated by a
// password.
func (a *API) LinkShareCreate(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var data linkShareBody
	if err := c.ShouldBind(&data); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	if data.FileID == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "file_id is required",
			"requestID": requestID,
		})
		return
	}

	var expiration *time.Time
	if data.ExpirationDate != "" {
		parsed, err := time.Parse("2006-01-02", data.ExpirationDate)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":     "Invalid date format. Use YYYY-MM-DD.",
				"requestID": requestID,
			})
			return
		}

		if !parsed.After(time.Now()) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":     "Expiration date must be in the future.",
				"requestID": requestID,
			})
			return
		}

		expiration = &parsed
	}

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

	link := model.LinkShare{
		FileID:    file.ID,
		Token:     security.NewShareToken(),
		ExpiresAt: expiration,
	}

	if data.Password != "" {
		hash, err := a.Argon.GenerateFromPassword(data.Password)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to hash share password", zap.Error(err))
			return
		}

		link.PasswordHash = hash
	}

	if err := a.DB.Create(&link).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create link share", zap.Error(err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":       "Link share created successfully.",
		"link_share_id": link.ID,
		"share_link":    link.Token,
	})
}
