package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	discountruledomain "github.com/mentorly/mentorly/internal/discountrule/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() discountruledomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, rule *discountruledomain.DiscountRule) error {
	return db.WithContext(ctx).Create(rule).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*discountruledomain.DiscountRule, error) {
	var rule discountruledomain.DiscountRule
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

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]discountruledomain.DiscountRule, error) {
	var items []discountruledomain.DiscountRule
	err := db.WithContext(ctx).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListActive(ctx context.Context, db *gorm.DB) ([]discountruledomain.DiscountRule, error) {
	var items []discountruledomain.DiscountRule
	err := db.WithContext(ctx).
		Where("active = ?", true).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, rule *discountruledomain.DiscountRule) error {
	return db.WithContext(ctx).Save(rule).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&discountruledomain.DiscountRule{}).Error
}
