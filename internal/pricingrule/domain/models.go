package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// RuleCategory is the closed set of pricing rule categories. At most one
// rule per category is meaningfully active at a time.
type RuleCategory string

var (
	CategorySessionPricing   RuleCategory = "session_pricing"
	CategoryBundleDiscount   RuleCategory = "bundle_discount"
	CategoryMentorCommission RuleCategory = "mentor_commission"
	CategoryPlatformFee      RuleCategory = "platform_fee"
)

type PricingRule struct {
	ID                 snowflake.ID      `json:"id" gorm:"primaryKey"`
	Name               string            `json:"name" gorm:"type:text;not null"`
	Category           RuleCategory      `json:"category" gorm:"type:text;not null;index"`
	BasePriceCents     int64             `json:"base_price_cents" gorm:"not null;default:0"`
	MentorSharePercent float64           `json:"mentor_share_percent" gorm:"type:numeric;not null;default:0"`
	PlatformFeePercent float64           `json:"platform_fee_percent" gorm:"type:numeric;not null;default:0"`
	NewStudentDiscount *float64          `json:"new_student_discount,omitempty" gorm:"type:numeric"`
	LoyaltyDiscount    *float64          `json:"loyalty_discount,omitempty" gorm:"type:numeric"`
	ReferralDiscount   *float64          `json:"referral_discount,omitempty" gorm:"type:numeric"`
	Active             bool              `json:"active" gorm:"not null;default:false;index"`
	EffectiveDate      *time.Time        `json:"effective_date,omitempty" gorm:""`
	Metadata           datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt          time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt          time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (PricingRule) TableName() string { return "pricing_rules" }

// DiscountTier is a volume discount threshold attached to a pricing rule.
// Rows carry no ordering guarantee; readers sort by SessionCount.
type DiscountTier struct {
	ID              snowflake.ID `json:"id" gorm:"primaryKey"`
	RuleID          snowflake.ID `json:"rule_id" gorm:"column:rule_id;not null;index"`
	SessionCount    int          `json:"session_count" gorm:"not null"`
	DiscountPercent float64      `json:"discount_percent" gorm:"type:numeric;not null"`
	CreatedAt       time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (DiscountTier) TableName() string { return "pricing_rule_tiers" }
