// Package model defines database models
package model

import "time"

// User rows are created and maintained by the identity provider. This
// service only reads them to resolve principals and share targets.
type User struct {
	ID        string `gorm:"primaryKey"`
	Username  string `gorm:"uniqueIndex;not null"`
	Email     string `gorm:"unique;not null"`
	IsAdmin   bool   `gorm:"default:false"`
	CreatedAt time.Time

	Files       []File       `gorm:"foreignKey:UserID"`
	SharedFiles []SharedFile `gorm:"foreignKey:UserID"`
}
