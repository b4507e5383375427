// Package service holds logic shared between endpoints
package service

import (
	"cryptvault/file-api/model"
	"cryptvault/file-api/security"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Decision is the result of an authorization check, evaluated before any
// decryption happens. A denied decision carries a user-presentable reason.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Reason: reason}
}

// AuthorizeFile decides whether userID may decrypt file. The owner is
// always allowed, everyone else needs an active grant.
func AuthorizeFile(db *gorm.DB, file *model.File, userID string) (Decision, error) {
	if file.UserID == userID {
		return allow(), nil
	}

	var count int64
	err := db.
		Model(model.SharedFile{}).
		Where("file_id = ? AND user_id = ?", file.ID, userID).
		Count(&count).
		Error
	if err != nil {
		return deny(""), fmt.Errorf("failed to look up share grant, %w", err)
	}

	if count > 0 {
		return allow(), nil
	}

	return deny("You do not have access to this file"), nil
}

// AuthorizeLink resolves a link share token to its file. Expired tokens are
// rejected here rather than deleted, the rows stay around. Returns
// gorm.ErrRecordNotFound when the token doesn't resolve at all.
func AuthorizeLink(db *gorm.DB, argon *security.ArgonHash, token, password string) (*model.File, Decision, error) {
	var link model.LinkShare

	err := db.Where("token = ?", token).First(&link).Error
	if err != nil {
		return nil, deny(""), err
	}

	if link.ExpiresAt != nil && time.Now().After(*link.ExpiresAt) {
		return nil, deny("This share link has expired"), nil
	}

	if link.PasswordHash != "" {
		if password == "" {
			return nil, deny("This share link requires a password"), nil
		}

		ok, err := argon.VerifyPasswd(password, link.PasswordHash)
		if err != nil {
			return nil, deny(""), fmt.Errorf("failed to verify share password, %w", err)
		}

		if !ok {
			return nil, deny("Invalid share link password"), nil
		}
	}

	var file model.File
	err = db.Where("id = ?", link.FileID).First(&file).Error
	if err != nil {
		return nil, deny(""), err
	}

	return &file, allow(), nil
}
