package api

import (
	"cryptvault/file-api/model"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FileDelete removes a file. Only the owner may delete, and the sequencing
// is strict: confirm the remote blob exists, delete it remotely, then drop
// the local record together with its grants and link shares. A failure at
// the remote step leaves the record intact so the call can be retried.
func (a *API) FileDelete(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	fileID := c.Param("id")
	if fileID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "ID is missing",
			"requestID": requestID,
		})
		return
	}

	var file model.File

	err := a.DB.Where("id = ?", fileID).First(&file).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":     "File not found",
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

	if file.UserID != userID {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":     "You do not have permission to delete this file",
			"requestID": requestID,
		})
		return
	}

	exists, err := a.Store.Exists(c.Request.Context(), file.PublicID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to check if remote blob exists", zap.Error(err), zap.String("publicID", file.PublicID))
		return
	}

	if !exists {
		// The blob vanished out-of-band. Keep the local record and force
		// investigation instead of silently losing track of what happened
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"error":     "File not found in remote storage",
			"requestID": requestID,
		})

		zap.L().Warn("Remote blob missing for file record", zap.Uint("fileID", file.ID), zap.String("publicID", file.PublicID))
		return
	}

	err = a.Store.Delete(c.Request.Context(), file.PublicID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to delete remote blob", zap.Error(err), zap.String("publicID", file.PublicID))
		return
	}

	// Grants and link shares go away with the file, in one transaction
	err = a.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("file_id = ?", file.ID).Delete(model.SharedFile{}).Error; err != nil {
			return err
		}

		if err := tx.Where("file_id = ?", file.ID).Delete(model.LinkShare{}).Error; err != nil {
			return err
		}

		return tx.Delete(&file).Error
	})
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to delete file record", zap.Error(err), zap.Uint("fileID", file.ID))
		return
	}

	c.Status(http.StatusNoContent)
}
