package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// DiscountType is the closed set of promotional discount kinds.
type DiscountType string

var (
	TypePercentage  DiscountType = "percentage"
	TypeFixedAmount DiscountType = "fixed_amount"
)

// DiscountRule is an independent promotional rule. Many rules may be
// active at once; eligibility predicates are optional and conjunctive.
type DiscountRule struct {
	ID               snowflake.ID                 `json:"id" gorm:"primaryKey"`
	Name             string                       `json:"name" gorm:"type:text;not null"`
	Type             DiscountType                 `json:"type" gorm:"type:text;not null"`
	Value            float64                      `json:"value" gorm:"type:numeric;not null"`
	MaxDiscountCents *int64                       `json:"max_discount_cents,omitempty" gorm:""`
	MinSessions      *int                         `json:"min_sessions,omitempty" gorm:""`
	MaxSessions      *int                         `json:"max_sessions,omitempty" gorm:""`
	MinAmountCents   *int64                       `json:"min_amount_cents,omitempty" gorm:""`
	ApplicableRoles  datatypes.JSONSlice[string]  `json:"applicable_roles,omitempty" gorm:"type:jsonb"`
	ValidFrom        *time.Time                   `json:"valid_from,omitempty" gorm:""`
	ValidUntil       *time.Time                   `json:"valid_until,omitempty" gorm:""`
	Active           bool                         `json:"active" gorm:"not null;default:false;index"`
	CreatedAt        time.Time                    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time                    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (DiscountRule) TableName() string { return "discount_rules" }
