package api

import (
	"cryptvault/file-api/model"
	"cryptvault/file-api/security"
	"cryptvault/file-api/service"
	"cryptvault/file-api/storage"
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FileDownload decrypts a file and streams the plaintext back as an
// attachment. The authorization gate runs before any ciphertext is fetched.
func (a *API) FileDownload(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	fileID := c.Param("id")
	if fileID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "No file ID provided",
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

	decision, err := service.AuthorizeFile(a.DB, &file, userID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to authorize file access", zap.Error(err))
		return
	}

	if !decision.Allowed {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":     decision.Reason,
			"requestID": requestID,
		})
		return
	}

	a.streamDecrypted(c, requestID, &file)
}

// streamDecrypted fetches the ciphertext, reconstructs the plaintext and
// writes it out. Callers must have authorized the request already.
func (a *API) streamDecrypted(c *gin.Context, requestID string, file *model.File) {
	ciphertext, err := a.Store.Fetch(c.Request.Context(), file.PublicID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":     "File data not found in remote storage",
				"requestID": requestID,
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch ciphertext", zap.Error(err), zap.String("publicID", file.PublicID))
		return
	}

	plaintext, err := decryptFile(file, ciphertext)
	if err != nil {
		if errors.Is(err, security.ErrIntegrity) {
			// Tampered or corrupted material, not a transient fault
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":     "Decryption failed, the stored data can't be trusted",
				"requestID": requestID,
			})

			zap.L().Warn("File failed integrity check", zap.Uint("fileID", file.ID))
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to decode encryption material", zap.Error(err), zap.Uint("fileID", file.ID))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	c.Data(http.StatusOK, mimeType(file.Type), plaintext)
}

func decryptFile(file *model.File, ciphertext []byte) ([]byte, error) {
	key, err := security.Decode(file.Key)
	if err != nil {
		return nil, err
	}

	nonce, err := security.Decode(file.Nonce)
	if err != nil {
		return nil, err
	}

	tag, err := security.Decode(file.Tag)
	if err != nil {
		return nil, err
	}

	return security.Decrypt(key, nonce, ciphertext, tag)
}

func mimeType(ext string) string {
	if t := mime.TypeByExtension("." + ext); t != "" {
		return t
	}

	return "application/octet-stream"
}
