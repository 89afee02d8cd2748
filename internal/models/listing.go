package models

import "time"

// Listing represents a marketplace listing offered by a seller.
type Listing struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	SellerID uint64 `gorm:"not null;index"` // Selling user ID.
	Seller   *User  `gorm:"foreignKey:SellerID"`

	CrystalName string  `gorm:"type:text;not null"`                   // Listed crystal name.
	Description string  `gorm:"type:text"`                            // Listing description.
	Price       float64 `gorm:"type:decimal(10,2);not null;default:0"` // Price in USD.
	ImageURL    string  `gorm:"type:text"`                            // Listing image URL.

	InStock bool `gorm:"not null;default:true"` // Availability flag.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
