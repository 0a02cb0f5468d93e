package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	pricingruledomain "github.com/mentorly/mentorly/internal/pricingrule/domain"
	"github.com/mentorly/mentorly/internal/pricingrule/repository"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupService(t *testing.T, name string) pricingruledomain.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	assert.NoError(t, err)

	err = db.AutoMigrate(
		&pricingruledomain.PricingRule{},
		&pricingruledomain.DiscountTier{},
	)
	assert.NoError(t, err)

	node, _ := snowflake.NewNode(1)

	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrInt64(v int64) *int64       { return &v }
func ptrBool(v bool) *bool          { return &v }

func TestPricingRule_CreateWithTiers(t *testing.T) {
	svc := setupService(t, "rule_create")
	ctx := context.Background()

	created, err := svc.Create(ctx, pricingruledomain.CreateRequest{
		Name:               "standard session",
		Category:           pricingruledomain.CategorySessionPricing,
		BasePriceCents:     5_000,
		MentorSharePercent: 70,
		PlatformFeePercent: 30,
		DiscountTiers: []pricingruledomain.TierInput{
			{SessionCount: 10, DiscountPercent: 20},
			{SessionCount: 5, DiscountPercent: 10},
		},
		SpecialRates: &pricingruledomain.SpecialRates{
			NewStudentDiscount: ptrFloat64(15),
		},
		Active: ptrBool(true),
	})
	assert.NoError(t, err)
	assert.Equal(t, "standard session", created.Name)
	assert.True(t, created.Active)

	// Tiers come back sorted by threshold regardless of input order.
	assert.Len(t, created.DiscountTiers, 2)
	assert.Equal(t, 5, created.DiscountTiers[0].SessionCount)
	assert.Equal(t, 10, created.DiscountTiers[1].SessionCount)

	assert.NotNil(t, created.SpecialRates)
	assert.Equal(t, float64(15), *created.SpecialRates.NewStudentDiscount)

	fetched, err := svc.Get(ctx, created.ID.String())
	assert.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Len(t, fetched.DiscountTiers, 2)
}

func TestPricingRule_CreateValidation(t *testing.T) {
	svc := setupService(t, "rule_validate")
	ctx := context.Background()

	_, err := svc.Create(ctx, pricingruledomain.CreateRequest{
		Name:     "",
		Category: pricingruledomain.CategorySessionPricing,
	})
	assert.ErrorIs(t, err, pricingruledomain.ErrInvalidName)

	_, err = svc.Create(ctx, pricingruledomain.CreateRequest{
		Name:     "bad category",
		Category: "surge_pricing",
	})
	assert.ErrorIs(t, err, pricingruledomain.ErrInvalidCategory)

	_, err = svc.Create(ctx, pricingruledomain.CreateRequest{
		Name:           "negative price",
		Category:       pricingruledomain.CategorySessionPricing,
		BasePriceCents: -100,
	})
	assert.ErrorIs(t, err, pricingruledomain.ErrInvalidBasePrice)

	_, err = svc.Create(ctx, pricingruledomain.CreateRequest{
		Name:               "bad share",
		Category:           pricingruledomain.CategorySessionPricing,
		MentorSharePercent: 120,
	})
	assert.ErrorIs(t, err, pricingruledomain.ErrInvalidSharePct)

	_, err = svc.Create(ctx, pricingruledomain.CreateRequest{
		Name:     "bad tier",
		Category: pricingruledomain.CategorySessionPricing,
		DiscountTiers: []pricingruledomain.TierInput{
			{SessionCount: 0, DiscountPercent: 10},
		},
	})
	assert.ErrorIs(t, err, pricingruledomain.ErrInvalidTier)

	_, err = svc.Create(ctx, pricingruledomain.CreateRequest{
		Name:     "bad rate",
		Category: pricingruledomain.CategorySessionPricing,
		SpecialRates: &pricingruledomain.SpecialRates{
			LoyaltyDiscount: ptrFloat64(150),
		},
	})
	assert.ErrorIs(t, err, pricingruledomain.ErrInvalidSpecialRate)
}

func TestPricingRule_SharesOver100Allowed(t *testing.T) {
	svc := setupService(t, "rule_over100")
	ctx := context.Background()

	// Shares summing past 100 are a configuration smell, not an error.
	created, err := svc.Create(ctx, pricingruledomain.CreateRequest{
		Name:               "generous split",
		Category:           pricingruledomain.CategorySessionPricing,
		BasePriceCents:     1_000,
		MentorSharePercent: 80,
		PlatformFeePercent: 40,
	})
	assert.NoError(t, err)
	assert.Equal(t, float64(80), created.MentorSharePercent)
}

func TestPricingRule_UpdateReplacesTiersOnlyWhenGiven(t *testing.T) {
	svc := setupService(t, "rule_update")
	ctx := context.Background()

	created, err := svc.Create(ctx, pricingruledomain.CreateRequest{
		Name:           "evolving",
		Category:       pricingruledomain.CategorySessionPricing,
		BasePriceCents: 1_000,
		DiscountTiers: []pricingruledomain.TierInput{
			{SessionCount: 5, DiscountPercent: 10},
		},
	})
	assert.NoError(t, err)

	// A patch without tiers keeps the stored ones.
	updated, err := svc.Update(ctx, created.ID.String(), pricingruledomain.UpdateRequest{
		BasePriceCents: ptrInt64(2_000),
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(2_000), updated.BasePriceCents)
	assert.Len(t, updated.DiscountTiers, 1)

	// A patch with tiers replaces the whole set.
	updated, err = svc.Update(ctx, created.ID.String(), pricingruledomain.UpdateRequest{
		DiscountTiers: []pricingruledomain.TierInput{
			{SessionCount: 3, DiscountPercent: 5},
			{SessionCount: 8, DiscountPercent: 12},
		},
	})
	assert.NoError(t, err)
	assert.Len(t, updated.DiscountTiers, 2)
	assert.Equal(t, 3, updated.DiscountTiers[0].SessionCount)
}

func TestPricingRule_DeleteRemovesTiers(t *testing.T) {
	svc := setupService(t, "rule_delete")
	ctx := context.Background()

	created, err := svc.Create(ctx, pricingruledomain.CreateRequest{
		Name:           "short lived",
		Category:       pricingruledomain.CategorySessionPricing,
		BasePriceCents: 1_000,
		DiscountTiers: []pricingruledomain.TierInput{
			{SessionCount: 5, DiscountPercent: 10},
		},
	})
	assert.NoError(t, err)

	assert.NoError(t, svc.Delete(ctx, created.ID.String()))

	_, err = svc.Get(ctx, created.ID.String())
	assert.ErrorIs(t, err, pricingruledomain.ErrNotFound)

	err = svc.Delete(ctx, created.ID.String())
	assert.ErrorIs(t, err, pricingruledomain.ErrNotFound)
}
