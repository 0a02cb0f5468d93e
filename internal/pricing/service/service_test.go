package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/mentorly/mentorly/internal/clock"
	discountruledomain "github.com/mentorly/mentorly/internal/discountrule/domain"
	discountrulerepo "github.com/mentorly/mentorly/internal/discountrule/repository"
	discountruleservice "github.com/mentorly/mentorly/internal/discountrule/service"
	pricingdomain "github.com/mentorly/mentorly/internal/pricing/domain"
	pricingruledomain "github.com/mentorly/mentorly/internal/pricingrule/domain"
	pricingrulerepo "github.com/mentorly/mentorly/internal/pricingrule/repository"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc  pricingdomain.Service
	db   *gorm.DB
	node *snowflake.Node
}

func setup(t *testing.T, name string) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	assert.NoError(t, err)

	err = db.AutoMigrate(
		&pricingruledomain.PricingRule{},
		&pricingruledomain.DiscountTier{},
		&discountruledomain.DiscountRule{},
	)
	assert.NoError(t, err)

	node, _ := snowflake.NewNode(1)
	logger := zap.NewNop()

	discounts := discountruleservice.New(discountruleservice.Params{
		DB:    db,
		Log:   logger,
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
		Repo:  discountrulerepo.Provide(),
	})

	svc := New(Params{
		DB:        db,
		Log:       logger,
		RuleRepo:  pricingrulerepo.Provide(),
		Discounts: discounts,
	})

	return &fixture{svc: svc, db: db, node: node}
}

func ptrFloat64(v float64) *float64 { return &v }

func (f *fixture) seedRule(t *testing.T, rule *pricingruledomain.PricingRule, tiers ...pricingruledomain.DiscountTier) {
	t.Helper()

	rule.ID = f.node.Generate()
	rule.Category = pricingruledomain.CategorySessionPricing
	rule.Active = true
	assert.NoError(t, f.db.Create(rule).Error)

	for i := range tiers {
		tiers[i].ID = f.node.Generate()
		tiers[i].RuleID = rule.ID
		assert.NoError(t, f.db.Create(&tiers[i]).Error)
	}
}

func TestPricing_NoTierChargesFullPrice(t *testing.T) {
	f := setup(t, "pricing_plain")
	ctx := context.Background()

	f.seedRule(t, &pricingruledomain.PricingRule{
		Name:               "standard",
		BasePriceCents:     5_000,
		MentorSharePercent: 70,
		PlatformFeePercent: 30,
	})

	resp, err := f.svc.Calculate(ctx, pricingdomain.CalculateRequest{SessionCount: 2})
	assert.NoError(t, err)
	assert.Equal(t, int64(5_000), resp.BasePriceCents)
	assert.Equal(t, int64(10_000), resp.TotalPriceCents)
	assert.Equal(t, float64(0), resp.DiscountApplied)
	assert.Equal(t, int64(7_000), resp.MentorEarningsCents)
	assert.Equal(t, int64(3_000), resp.PlatformFeeCents)
	assert.Nil(t, resp.TierUsed)
}

func TestPricing_TierSelection(t *testing.T) {
	f := setup(t, "pricing_tiers")
	ctx := context.Background()

	// Stored out of order on purpose.
	f.seedRule(t, &pricingruledomain.PricingRule{
		Name:           "volume",
		BasePriceCents: 1_000,
	},
		pricingruledomain.DiscountTier{SessionCount: 10, DiscountPercent: 20},
		pricingruledomain.DiscountTier{SessionCount: 5, DiscountPercent: 10},
	)

	// Below every threshold.
	resp, err := f.svc.Calculate(ctx, pricingdomain.CalculateRequest{SessionCount: 4})
	assert.NoError(t, err)
	assert.Nil(t, resp.TierUsed)
	assert.Equal(t, int64(4_000), resp.TotalPriceCents)

	// Thresholds are inclusive.
	resp, err = f.svc.Calculate(ctx, pricingdomain.CalculateRequest{SessionCount: 5})
	assert.NoError(t, err)
	assert.NotNil(t, resp.TierUsed)
	assert.Equal(t, 5, resp.TierUsed.SessionCount)
	assert.Equal(t, float64(10), resp.DiscountApplied)
	assert.Equal(t, int64(4_500), resp.TotalPriceCents)

	// Between thresholds the lower one still applies.
	resp, err = f.svc.Calculate(ctx, pricingdomain.CalculateRequest{SessionCount: 7})
	assert.NoError(t, err)
	assert.Equal(t, 5, resp.TierUsed.SessionCount)
	assert.Equal(t, int64(6_300), resp.TotalPriceCents)

	// The largest threshold not exceeding the count wins.
	resp, err = f.svc.Calculate(ctx, pricingdomain.CalculateRequest{SessionCount: 12})
	assert.NoError(t, err)
	assert.Equal(t, 10, resp.TierUsed.SessionCount)
	assert.Equal(t, int64(9_600), resp.TotalPriceCents)
}

func TestPricing_SpecialRatesCompound(t *testing.T) {
	f := setup(t, "pricing_compound")
	ctx := context.Background()

	f.seedRule(t, &pricingruledomain.PricingRule{
		Name:               "promo heavy",
		BasePriceCents:     1_000,
		NewStudentDiscount: ptrFloat64(10),
		LoyaltyDiscount:    ptrFloat64(10),
	})

	// 1000 * 0.9 * 0.9 = 810, not 800.
	resp, err := f.svc.Calculate(ctx, pricingdomain.CalculateRequest{
		SessionCount:    1,
		IsNewStudent:    true,
		IsLoyalCustomer: true,
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(810), resp.TotalPriceCents)
	// discount_applied reports the tier percentage only; none here.
	assert.Equal(t, float64(0), resp.DiscountApplied)

	// A flag without a configured rate is a no-op.
	resp, err = f.svc.Calculate(ctx, pricingdomain.CalculateRequest{
		SessionCount: 1,
		IsReferral:   true,
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(1_000), resp.TotalPriceCents)
}

func TestPricing_SharesRoundIndependently(t *testing.T) {
	f := setup(t, "pricing_rounding")
	ctx := context.Background()

	f.seedRule(t, &pricingruledomain.PricingRule{
		Name:               "split down the middle",
		BasePriceCents:     101,
		MentorSharePercent: 50,
		PlatformFeePercent: 50,
	})

	resp, err := f.svc.Calculate(ctx, pricingdomain.CalculateRequest{SessionCount: 1})
	assert.NoError(t, err)
	assert.Equal(t, int64(101), resp.TotalPriceCents)
	// Each half of 50.5 rounds up on its own; 51+51 != 101.
	assert.Equal(t, int64(51), resp.MentorEarningsCents)
	assert.Equal(t, int64(51), resp.PlatformFeeCents)
}

func TestPricing_NoActiveRuleFails(t *testing.T) {
	f := setup(t, "pricing_norule")
	ctx := context.Background()

	_, err := f.svc.Calculate(ctx, pricingdomain.CalculateRequest{SessionCount: 1})
	assert.ErrorIs(t, err, pricingdomain.ErrNoActiveRule)
}

func TestPricing_InvalidSessionCount(t *testing.T) {
	f := setup(t, "pricing_invalid")
	ctx := context.Background()

	_, err := f.svc.Calculate(ctx, pricingdomain.CalculateRequest{SessionCount: 0})
	assert.ErrorIs(t, err, pricingdomain.ErrInvalidSessionCount)
}

func TestPricing_MostRecentlyUpdatedRuleWins(t *testing.T) {
	f := setup(t, "pricing_latest")
	ctx := context.Background()

	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	f.seedRule(t, &pricingruledomain.PricingRule{
		Name:           "stale",
		BasePriceCents: 1_000,
		UpdatedAt:      older,
	})
	f.seedRule(t, &pricingruledomain.PricingRule{
		Name:           "current",
		BasePriceCents: 2_000,
		UpdatedAt:      newer,
	})

	resp, err := f.svc.Calculate(ctx, pricingdomain.CalculateRequest{SessionCount: 1})
	assert.NoError(t, err)
	assert.Equal(t, int64(2_000), resp.TotalPriceCents)
}

func TestPricing_QuoteAppliesSelectedDiscount(t *testing.T) {
	f := setup(t, "pricing_quote")
	ctx := context.Background()

	f.seedRule(t, &pricingruledomain.PricingRule{
		Name:           "standard",
		BasePriceCents: 1_000,
	})

	promo := &discountruledomain.DiscountRule{
		ID:     f.node.Generate(),
		Name:   "open promo",
		Type:   discountruledomain.TypePercentage,
		Value:  10,
		Active: true,
	}
	assert.NoError(t, f.db.Create(promo).Error)

	// Without a selection the quote lists matches and keeps the price.
	quote, err := f.svc.Quote(ctx, pricingdomain.QuoteRequest{
		CalculateRequest: pricingdomain.CalculateRequest{SessionCount: 2},
	})
	assert.NoError(t, err)
	assert.Len(t, quote.ApplicableDiscounts, 1)
	assert.Nil(t, quote.Discount)
	assert.Equal(t, int64(2_000), quote.FinalAmountCents)

	// Selecting the promo reprices the final amount.
	quote, err = f.svc.Quote(ctx, pricingdomain.QuoteRequest{
		CalculateRequest: pricingdomain.CalculateRequest{SessionCount: 2},
		DiscountRuleID:   promo.ID.String(),
	})
	assert.NoError(t, err)
	assert.NotNil(t, quote.Discount)
	assert.Equal(t, int64(200), quote.Discount.DiscountAmountCents)
	assert.Equal(t, int64(1_800), quote.FinalAmountCents)
}
