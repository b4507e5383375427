package model

import "time"

// SharedFile grants a single user access to a single file. The composite
// unique index keeps concurrent share attempts from producing duplicate
// grants for the same (file, grantee) pair.
type SharedFile struct {
	ID     uint `gorm:"primaryKey;autoIncrement" json:"id"`
	FileID uint `gorm:"not null;index;uniqueIndex:idx_file_grantee" json:"file_id"`
	// Grantee, not the file owner
	UserID    string    `gorm:"not null;index;uniqueIndex:idx_file_grantee" json:"-"`
	CreatedAt time.Time `json:"shared_date"`
}

// LinkShare is a bearer capability for a file. Anyone holding the token may
// download the file until ExpiresAt passes, optionally gated by a password.
// Expired rows are filtered at use time instead of being deleted.
type LinkShare struct {
	ID           uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	FileID       uint       `gorm:"not null;index" json:"file_id"`
	Token        string     `gorm:"uniqueIndex;not null" json:"token"`
	PasswordHash string     `json:"-"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
