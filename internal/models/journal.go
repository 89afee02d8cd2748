package models

import "time"

// JournalEntry represents a dated mood/reflection entry owned by a user.
type JournalEntry struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;index"` // Owning user ID.
	User   *User  `gorm:"foreignKey:UserID"`

	Mood      string `gorm:"type:text"` // Emotional-state tag.
	Content   string `gorm:"type:text"` // Free-text reflection.
	MoonPhase string `gorm:"type:text"` // Moon phase label at the time of writing.

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"`       // Last update timestamp.
}
