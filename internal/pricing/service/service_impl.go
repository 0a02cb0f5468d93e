package service

import (
	"context"
	"math"
	"sort"

	discountruledomain "github.com/mentorly/mentorly/internal/discountrule/domain"
	"github.com/mentorly/mentorly/internal/observability/metrics"
	pricingdomain "github.com/mentorly/mentorly/internal/pricing/domain"
	pricingruledomain "github.com/mentorly/mentorly/internal/pricingrule/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	RuleRepo  pricingruledomain.Repository
	Discounts discountruledomain.Service
	Metrics   *metrics.Metrics `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	ruleRepo  pricingruledomain.Repository
	discounts discountruledomain.Service
	metrics   *metrics.Metrics
}

func New(p Params) pricingdomain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("pricing.service"),
		ruleRepo:  p.RuleRepo,
		discounts: p.Discounts,
		metrics:   p.Metrics,
	}
}

func (s *Service) Calculate(ctx context.Context, req pricingdomain.CalculateRequest) (*pricingdomain.CalculateResponse, error) {
	if req.SessionCount < 1 {
		s.metrics.RecordPriceCalculation(ctx, "invalid")
		return nil, pricingdomain.ErrInvalidSessionCount
	}

	rule, err := s.ruleRepo.FindActiveByCategory(ctx, s.db, pricingruledomain.CategorySessionPricing)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		s.metrics.RecordPriceCalculation(ctx, "no_rule")
		return nil, pricingdomain.ErrNoActiveRule
	}

	tiers, err := s.ruleRepo.ListTiersByRule(ctx, s.db, rule.ID)
	if err != nil {
		return nil, err
	}

	baseTotal := rule.BasePriceCents * int64(req.SessionCount)
	running := float64(baseTotal)

	var tierUsed *pricingruledomain.TierResponse
	var discountApplied float64
	if tier := selectTier(tiers, req.SessionCount); tier != nil {
		running *= 1 - tier.DiscountPercent/100
		discountApplied = tier.DiscountPercent
		tierUsed = &pricingruledomain.TierResponse{
			SessionCount:    tier.SessionCount,
			DiscountPercent: tier.DiscountPercent,
		}
	}

	// Special rates compound against the running total, each applied to
	// the amount left by the previous one.
	if req.IsNewStudent && rule.NewStudentDiscount != nil {
		running *= 1 - *rule.NewStudentDiscount/100
	}
	if req.IsLoyalCustomer && rule.LoyaltyDiscount != nil {
		running *= 1 - *rule.LoyaltyDiscount/100
	}
	if req.IsReferral && rule.ReferralDiscount != nil {
		running *= 1 - *rule.ReferralDiscount/100
	}

	total := roundMoney(running)

	// Each share rounds on its own; the two sides may not sum to the
	// total and no reconciliation is attempted.
	mentor := roundMoney(float64(total) * rule.MentorSharePercent / 100)
	platform := roundMoney(float64(total) * rule.PlatformFeePercent / 100)

	s.metrics.RecordPriceCalculation(ctx, "ok")

	return &pricingdomain.CalculateResponse{
		BasePriceCents:      rule.BasePriceCents,
		TotalPriceCents:     total,
		DiscountApplied:     discountApplied,
		MentorEarningsCents: mentor,
		PlatformFeeCents:    platform,
		TierUsed:            tierUsed,
	}, nil
}

func (s *Service) Quote(ctx context.Context, req pricingdomain.QuoteRequest) (*pricingdomain.QuoteResponse, error) {
	pricing, err := s.Calculate(ctx, req.CalculateRequest)
	if err != nil {
		return nil, err
	}

	applicable, err := s.discounts.FindApplicable(ctx, discountruledomain.ApplicabilityQuery{
		SessionCount: req.SessionCount,
		AmountCents:  &pricing.TotalPriceCents,
		UserRole:     req.UserRole,
	})
	if err != nil {
		return nil, err
	}

	resp := &pricingdomain.QuoteResponse{
		Pricing:             *pricing,
		ApplicableDiscounts: applicable,
		FinalAmountCents:    pricing.TotalPriceCents,
	}

	if req.DiscountRuleID != "" {
		result, err := s.discounts.ApplyDiscount(ctx, req.DiscountRuleID, pricing.TotalPriceCents, req.SessionCount)
		if err != nil {
			return nil, err
		}
		resp.Discount = result
		resp.FinalAmountCents = result.FinalAmountCents
	}

	return resp, nil
}

// selectTier picks the tier with the largest threshold not exceeding the
// session count. Stored tiers carry no ordering guarantee.
func selectTier(tiers []pricingruledomain.DiscountTier, sessionCount int) *pricingruledomain.DiscountTier {
	sorted := make([]pricingruledomain.DiscountTier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].SessionCount < sorted[j].SessionCount
	})

	var selected *pricingruledomain.DiscountTier
	for i := range sorted {
		if sorted[i].SessionCount <= sessionCount {
			selected = &sorted[i]
		}
	}
	return selected
}

func roundMoney(raw float64) int64 {
	return int64(math.Floor(raw + 0.5))
}
