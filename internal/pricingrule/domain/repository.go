package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, rule *PricingRule) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*PricingRule, error)
	// FindActiveByCategory enforces the single-active-rule contract at the
	// store boundary: when several rules are active for one category, the
	// most recently updated wins.
	FindActiveByCategory(ctx context.Context, db *gorm.DB, category RuleCategory) (*PricingRule, error)
	List(ctx context.Context, db *gorm.DB) ([]PricingRule, error)
	Update(ctx context.Context, db *gorm.DB, rule *PricingRule) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	ListTiersByRule(ctx context.Context, db *gorm.DB, ruleID snowflake.ID) ([]DiscountTier, error)
	ReplaceTiers(ctx context.Context, db *gorm.DB, ruleID snowflake.ID, tiers []DiscountTier) error
}
