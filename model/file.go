package model

// File is one encrypted object. The ciphertext itself lives in the remote
// blob store under PublicID; only the metadata and the encryption material
// needed to decrypt it are kept here.
//
// Rows are immutable once created. Key, nonce and tag are generated fresh
// for every file and never reused, since reusing a nonce under the same key
// would break the GCM security guarantees.
type File struct {
	ID     uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID string `gorm:"index;not null" json:"-"`

	// Opaque handle of the ciphertext in the remote blob store. Different
	// users may upload files with the same name so the remote object is
	// kept under a generated key instead
	PublicID string `gorm:"uniqueIndex;not null" json:"public_id"`

	// Original file name, used for the Content-Disposition header on download
	Name string `json:"name"`
	// File extension without the leading dot, "unknown" if the name had none
	Type string `gorm:"default:unknown" json:"type"`
	Size int64  `json:"size"`

	// Encryption material, base64 encoded
	Key   string `gorm:"not null" json:"-"`
	Nonce string `gorm:"not null" json:"-"`
	Tag   string `gorm:"not null" json:"-"`

	// Unix second timestamp
	CreatedAt int64 `gorm:"not null" json:"created_at"`
}
