package api

import (
	"cryptvault/file-api/model"
	"cryptvault/file-api/security"
	"cryptvault/file-api/validators"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FileUpload encrypts and stores one or more files from a multipart form.
// Files are processed independently: a failing file is skipped, its
// siblings still go through. The call only fails as a whole when nothing
// could be uploaded.
func (a *API) FileUpload(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	if !strings.HasPrefix(c.Request.Header.Get("Content-Type"), "multipart/form-data") {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request",
			"requestID": requestID,
		})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to parse multipart form", zap.Error(err))
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "No files provided",
			"requestID": requestID,
		})
		return
	}

	folder := "user_" + userID
	created := make([]model.File, 0, len(files))

	for _, fh := range files {
		code, f, err := validators.FileValidator(fh)
		if err != nil {
			if code == http.StatusInternalServerError {
				zap.L().Error("Failed to validate file", zap.Error(err), zap.String("requestID", requestID))
			} else {
				zap.L().Debug("Skipping invalid file", zap.String("name", fh.Filename), zap.Error(err))
			}
			continue
		}

		plaintext, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			zap.L().Error("Failed to read uploaded file", zap.Error(err), zap.String("requestID", requestID))
			continue
		}

		env, err := security.Encrypt(plaintext)
		if err != nil {
			zap.L().Error("Failed to encrypt file", zap.Error(err), zap.String("requestID", requestID))
			continue
		}

		// Only the ciphertext leaves the process. The tag stays in the
		// local record next to the key and nonce
		publicID, _, err := a.Store.Store(c.Request.Context(), env.Ciphertext, folder)
		if err != nil {
			zap.L().Error("Failed to store ciphertext", zap.Error(err), zap.String("requestID", requestID))
			continue
		}

		file := model.File{
			UserID:    userID,
			PublicID:  publicID,
			Name:      fh.Filename,
			Type:      extension(fh.Filename),
			Size:      fh.Size,
			Key:       security.Encode(env.Key),
			Nonce:     security.Encode(env.Nonce),
			Tag:       security.Encode(env.Tag),
			CreatedAt: time.Now().Unix(),
		}

		if err := a.DB.Create(&file).Error; err != nil {
			// The remote blob has no local record now, so it is simply
			// unreachable. Never the other way around
			zap.L().Error("Failed to save file record", zap.Error(err), zap.String("requestID", requestID))
			continue
		}

		created = append(created, file)
	}

	if len(created) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "No files could be uploaded",
			"requestID": requestID,
		})
		return
	}

	c.JSON(http.StatusCreated, created)
}

func extension(name string) string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(name)), ".")
	if ext == "" {
		return "unknown"
	}

	return ext
}
