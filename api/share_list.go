package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// sharedEntry is the joined view returned by the shared listings, not a
// raw model dump
type sharedEntry struct {
	ID         uint      `json:"id"`
	FileName   string    `json:"file_name"`
	FileType   string    `json:"file_type"`
	SharedDate time.Time `json:"shared_date"`
	FileID     uint      `json:"file_id"`
	Username   string    `json:"username"`
}

// SharedWithMe lists the grants the caller has received. Username is the
// file owner's.
func (a *API) SharedWithMe(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	entries := []sharedEntry{}

	err := a.DB.
		Table("shared_files").
		Select("shared_files.id, files.name AS file_name, files.type AS file_type, shared_files.created_at AS shared_date, files.id AS file_id, users.username AS username").
		Joins("JOIN files ON files.id = shared_files.file_id").
		Joins("JOIN users ON users.id = files.user_id").
		Where("shared_files.user_id = ?", userID).
		Order("shared_files.created_at desc").
		Scan(&entries).
		Error
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to list received shares", zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, entries)
}

// SharedByMe lists grants on the caller's own files. Username is the
// grantee's.
func (a *API) SharedByMe(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	entries := []sharedEntry{}

	err := a.DB.
		Table("shared_files").
		Select("shared_files.id, files.name AS file_name, files.type AS file_type, shared_files.created_at AS shared_date, files.id AS file_id, users.username AS username").
		Joins("JOIN files ON files.id = shared_files.file_id").
		Joins("JOIN users ON users.id = shared_files.user_id").
		Where("files.user_id = ?", userID).
		Order("shared_files.created_at desc").
		Scan(&entries).
		Error
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to list handed out shares", zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, entries)
}
