package models

import (
	"time"

	"gorm.io/datatypes"
)

// User represents an end-user account stored in the database.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name     string `gorm:"type:text"`                      // Display name.
	Email    string `gorm:"type:text;not null;uniqueIndex"` // Unique login email.
	Password string `gorm:"type:text;not null"`             // Hashed password.

	BirthDate     *time.Time `gorm:"type:date"` // Birth date for astrology.
	BirthTime     string     `gorm:"type:text"` // Birth time of day, free-form.
	BirthLocation string     `gorm:"type:text"` // Birth location, free-form.
	Latitude      *float64   // Birth latitude.
	Longitude     *float64   // Birth longitude.

	SubscriptionTier string `gorm:"type:text;not null;default:'free'"` // Active subscription tier.
	StripeCustomerID string `gorm:"type:text;index"`                   // Stripe customer reference.

	SpiritualPreferences datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'"` // Free-form preference map.

	TOTPSecret string `gorm:"type:text"` // TOTP secret for MFA.

	Active bool `gorm:"not null;default:true"` // Whether the user can sign in.

	CollectionEntries []CollectionEntry `gorm:"foreignKey:UserID"` // Owned crystals.
	JournalEntries    []JournalEntry    `gorm:"foreignKey:UserID"` // Journal entries.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
