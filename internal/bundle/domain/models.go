package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// BundlePackage is a prepaid block of sessions sold at a bundled price.
// FinalPriceCents is derived from OriginalPriceCents and DiscountPercent
// and is rewritten on every mutation; it is never accepted from callers.
type BundlePackage struct {
	ID                 snowflake.ID `json:"id" gorm:"primaryKey"`
	Name               string       `json:"name" gorm:"type:text;not null"`
	SessionCount       int          `json:"session_count" gorm:"not null"`
	OriginalPriceCents int64        `json:"original_price_cents" gorm:"not null"`
	DiscountPercent    float64      `json:"discount_percent" gorm:"type:numeric;not null"`
	FinalPriceCents    int64        `json:"final_price_cents" gorm:"not null"`
	Active             bool         `json:"active" gorm:"not null;default:true;index"`
	CreatedAt          time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt          time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (BundlePackage) TableName() string { return "bundle_packages" }
