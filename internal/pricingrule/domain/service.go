package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Response, error)
	List(ctx context.Context) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	Delete(ctx context.Context, id string) error
}

type TierInput struct {
	SessionCount    int     `json:"session_count"`
	DiscountPercent float64 `json:"discount_percent"`
}

type SpecialRates struct {
	NewStudentDiscount *float64 `json:"new_student_discount,omitempty"`
	LoyaltyDiscount    *float64 `json:"loyalty_discount,omitempty"`
	ReferralDiscount   *float64 `json:"referral_discount,omitempty"`
}

type CreateRequest struct {
	Name               string         `json:"name"`
	Category           RuleCategory   `json:"category"`
	BasePriceCents     int64          `json:"base_price_cents"`
	MentorSharePercent float64        `json:"mentor_share_percent"`
	PlatformFeePercent float64        `json:"platform_fee_percent"`
	DiscountTiers      []TierInput    `json:"discount_tiers"`
	SpecialRates       *SpecialRates  `json:"special_rates"`
	Active             *bool          `json:"active"`
	EffectiveDate      *time.Time     `json:"effective_date"`
	Metadata           map[string]any `json:"metadata"`
}

type UpdateRequest struct {
	Name               *string       `json:"name"`
	BasePriceCents     *int64        `json:"base_price_cents"`
	MentorSharePercent *float64      `json:"mentor_share_percent"`
	PlatformFeePercent *float64      `json:"platform_fee_percent"`
	DiscountTiers      []TierInput   `json:"discount_tiers"`
	SpecialRates       *SpecialRates `json:"special_rates"`
	Active             *bool         `json:"active"`
	EffectiveDate      *time.Time    `json:"effective_date"`
}

type TierResponse struct {
	SessionCount    int     `json:"session_count"`
	DiscountPercent float64 `json:"discount_percent"`
}

type Response struct {
	ID                 snowflake.ID   `json:"id"`
	Name               string         `json:"name"`
	Category           RuleCategory   `json:"category"`
	BasePriceCents     int64          `json:"base_price_cents"`
	MentorSharePercent float64        `json:"mentor_share_percent"`
	PlatformFeePercent float64        `json:"platform_fee_percent"`
	DiscountTiers      []TierResponse `json:"discount_tiers"`
	SpecialRates       *SpecialRates  `json:"special_rates,omitempty"`
	Active             bool           `json:"active"`
	EffectiveDate      *time.Time     `json:"effective_date,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

var (
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidCategory    = errors.New("invalid_category")
	ErrInvalidBasePrice   = errors.New("invalid_base_price")
	ErrInvalidSharePct    = errors.New("invalid_share_percent")
	ErrInvalidSpecialRate = errors.New("invalid_special_rate")
	ErrInvalidTier        = errors.New("invalid_tier")
	ErrInvalidID          = errors.New("invalid_id")
	ErrNotFound           = errors.New("not_found")
)
