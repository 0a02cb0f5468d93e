package domain

import (
	"context"
	"errors"

	discountruledomain "github.com/mentorly/mentorly/internal/discountrule/domain"
	pricingruledomain "github.com/mentorly/mentorly/internal/pricingrule/domain"
)

type Service interface {
	// Calculate prices a block of sessions against the active
	// session_pricing rule. Absence of an active rule is a hard failure;
	// callers are never quoted a guessed price.
	Calculate(ctx context.Context, req CalculateRequest) (*CalculateResponse, error)

	// Quote combines a price calculation with the promotional rules the
	// request qualifies for, optionally applying one of them.
	Quote(ctx context.Context, req QuoteRequest) (*QuoteResponse, error)
}

type CalculateRequest struct {
	SessionCount    int  `json:"session_count"`
	IsNewStudent    bool `json:"is_new_student"`
	IsLoyalCustomer bool `json:"is_loyal_customer"`
	IsReferral      bool `json:"is_referral"`
}

type CalculateResponse struct {
	BasePriceCents      int64                           `json:"base_price_cents"`
	TotalPriceCents     int64                           `json:"total_price_cents"`
	DiscountApplied     float64                         `json:"discount_applied"`
	MentorEarningsCents int64                           `json:"mentor_earnings_cents"`
	PlatformFeeCents    int64                           `json:"platform_fee_cents"`
	TierUsed            *pricingruledomain.TierResponse `json:"tier_used,omitempty"`
}

type QuoteRequest struct {
	CalculateRequest
	UserRole       string `json:"user_role"`
	DiscountRuleID string `json:"discount_rule_id"`
}

type QuoteResponse struct {
	Pricing             CalculateResponse                  `json:"pricing"`
	ApplicableDiscounts []discountruledomain.Response      `json:"applicable_discounts"`
	Discount            *discountruledomain.DiscountResult `json:"discount,omitempty"`
	FinalAmountCents    int64                              `json:"final_amount_cents"`
}

var (
	ErrInvalidSessionCount = errors.New("invalid_session_count")
	ErrNoActiveRule        = errors.New("no_active_rule")
)
