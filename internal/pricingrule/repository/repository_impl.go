package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	pricingruledomain "github.com/mentorly/mentorly/internal/pricingrule/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() pricingruledomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, rule *pricingruledomain.PricingRule) error {
	return db.WithContext(ctx).Create(rule).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*pricingruledomain.PricingRule, error) {
	var rule pricingruledomain.PricingRule
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

func (r *repo) FindActiveByCategory(ctx context.Context, db *gorm.DB, category pricingruledomain.RuleCategory) (*pricingruledomain.PricingRule, error) {
	var rule pricingruledomain.PricingRule
	err := db.WithContext(ctx).
		Where("category = ? AND active = ?", category, true).
		Order("updated_at DESC").
		First(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]pricingruledomain.PricingRule, error) {
	var items []pricingruledomain.PricingRule
	err := db.WithContext(ctx).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, rule *pricingruledomain.PricingRule) error {
	return db.WithContext(ctx).Save(rule).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&pricingruledomain.PricingRule{}).Error
}

func (r *repo) ListTiersByRule(ctx context.Context, db *gorm.DB, ruleID snowflake.ID) ([]pricingruledomain.DiscountTier, error) {
	var tiers []pricingruledomain.DiscountTier
	err := db.WithContext(ctx).
		Where("rule_id = ?", ruleID).
		Find(&tiers).Error
	if err != nil {
		return nil, err
	}
	return tiers, nil
}

func (r *repo) ReplaceTiers(ctx context.Context, db *gorm.DB, ruleID snowflake.ID, tiers []pricingruledomain.DiscountTier) error {
	if err := db.WithContext(ctx).
		Where("rule_id = ?", ruleID).
		Delete(&pricingruledomain.DiscountTier{}).Error; err != nil {
		return err
	}
	if len(tiers) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&tiers).Error
}
