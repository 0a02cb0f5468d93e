package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	bundledomain "github.com/mentorly/mentorly/internal/bundle/domain"
	"github.com/mentorly/mentorly/internal/bundle/repository"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupService(t *testing.T, name string) bundledomain.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	assert.NoError(t, err)

	err = db.AutoMigrate(&bundledomain.BundlePackage{})
	assert.NoError(t, err)

	node, _ := snowflake.NewNode(1)

	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
}

func ptrInt64(v int64) *int64       { return &v }
func ptrFloat64(v float64) *float64 { return &v }

func TestBundle_CreateComputesFinalPrice(t *testing.T) {
	svc := setupService(t, "bundle_create")
	ctx := context.Background()

	created, err := svc.Create(ctx, bundledomain.CreateRequest{
		Name:               "ten pack",
		SessionCount:       10,
		OriginalPriceCents: 100_000,
		DiscountPercent:    15,
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(85_000), created.FinalPriceCents)
	assert.True(t, created.Active)
}

func TestBundle_UpdateRecomputesFromMergedFields(t *testing.T) {
	svc := setupService(t, "bundle_update")
	ctx := context.Background()

	created, err := svc.Create(ctx, bundledomain.CreateRequest{
		Name:               "ten pack",
		SessionCount:       10,
		OriginalPriceCents: 100_000,
		DiscountPercent:    15,
	})
	assert.NoError(t, err)

	// Patching only the discount reprices against the stored original.
	updated, err := svc.Update(ctx, created.ID.String(), bundledomain.UpdateRequest{
		DiscountPercent: ptrFloat64(20),
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(100_000), updated.OriginalPriceCents)
	assert.Equal(t, int64(80_000), updated.FinalPriceCents)

	// Patching only the original reprices against the stored discount.
	updated, err = svc.Update(ctx, created.ID.String(), bundledomain.UpdateRequest{
		OriginalPriceCents: ptrInt64(50_000),
	})
	assert.NoError(t, err)
	assert.Equal(t, float64(20), updated.DiscountPercent)
	assert.Equal(t, int64(40_000), updated.FinalPriceCents)
}

func TestBundle_FinalPriceRoundsHalfUp(t *testing.T) {
	svc := setupService(t, "bundle_round")
	ctx := context.Background()

	// 999 * 0.875 = 874.125 -> 874; 999 * 0.925 = 924.075 -> 924;
	// 101 * 0.5 = 50.5 -> 51.
	created, err := svc.Create(ctx, bundledomain.CreateRequest{
		Name:               "odd pack",
		SessionCount:       3,
		OriginalPriceCents: 101,
		DiscountPercent:    50,
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(51), created.FinalPriceCents)
}

func TestBundle_UpdateUnknownPackageFails(t *testing.T) {
	svc := setupService(t, "bundle_missing")
	ctx := context.Background()

	node, _ := snowflake.NewNode(2)

	_, err := svc.Update(ctx, node.Generate().String(), bundledomain.UpdateRequest{
		DiscountPercent: ptrFloat64(10),
	})
	assert.ErrorIs(t, err, bundledomain.ErrNotFound)
}

func TestBundle_CreateValidation(t *testing.T) {
	svc := setupService(t, "bundle_validate")
	ctx := context.Background()

	_, err := svc.Create(ctx, bundledomain.CreateRequest{
		Name:               "",
		SessionCount:       5,
		OriginalPriceCents: 1000,
	})
	assert.ErrorIs(t, err, bundledomain.ErrInvalidName)

	_, err = svc.Create(ctx, bundledomain.CreateRequest{
		Name:               "zero sessions",
		SessionCount:       0,
		OriginalPriceCents: 1000,
	})
	assert.ErrorIs(t, err, bundledomain.ErrInvalidSessions)

	_, err = svc.Create(ctx, bundledomain.CreateRequest{
		Name:               "bad percent",
		SessionCount:       5,
		OriginalPriceCents: 1000,
		DiscountPercent:    120,
	})
	assert.ErrorIs(t, err, bundledomain.ErrInvalidPercent)
}
