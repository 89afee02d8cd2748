package models

import (
	"time"

	"gorm.io/datatypes"
)

// CollectionEntry represents a crystal instance owned by a user.
type CollectionEntry struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;index"` // Owning user ID.
	User   *User  `gorm:"foreignKey:UserID"`

	CrystalName string `gorm:"type:text;not null"` // Crystal display name.
	CrystalType string `gorm:"type:text"`          // Mineral group or variety.

	AcquiredAt *time.Time `gorm:"type:date"` // Acquisition date.
	Notes      string     `gorm:"type:text"` // Free-text notes.
	Intentions string     `gorm:"type:text"` // Free-text intentions.

	Chakras           datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"` // Associated chakra tags.
	MetaphysicalTags  datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"` // Metaphysical property tags.
	IdentificationRaw string         `gorm:"type:text"`                        // Raw backend response kept for audit.

	UsageCount int        `gorm:"not null;default:0"` // Times used in rituals or meditation.
	LastUsedAt *time.Time // Last usage timestamp.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
