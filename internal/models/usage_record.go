package models

import "time"

// UsageRecord stores a single metered feature call for audit and daily summaries.
type UsageRecord struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID  uint64 `gorm:"not null;index"`          // Calling user ID.
	Feature string `gorm:"type:text;not null;index"` // Feature key (e.g. crystal_identification).

	Provider string `gorm:"type:text"` // AI provider that served the call, if any.
	Model    string `gorm:"type:text"` // Model name used, if any.

	InputTokens  int `gorm:"not null;default:0"` // Prompt tokens.
	OutputTokens int `gorm:"not null;default:0"` // Completion tokens.

	Failed bool `gorm:"not null;default:false"` // Whether the call failed.

	RequestedAt time.Time `gorm:"not null;index"`          // When the call was made.
	CreatedAt   time.Time `gorm:"not null;autoCreateTime"` // Row creation timestamp.
}
