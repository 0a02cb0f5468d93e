package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	bundledomain "github.com/mentorly/mentorly/internal/bundle/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() bundledomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, pkg *bundledomain.BundlePackage) error {
	return db.WithContext(ctx).Create(pkg).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*bundledomain.BundlePackage, error) {
	var pkg bundledomain.BundlePackage
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&pkg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pkg, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]bundledomain.BundlePackage, error) {
	var items []bundledomain.BundlePackage
	err := db.WithContext(ctx).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, pkg *bundledomain.BundlePackage) error {
	return db.WithContext(ctx).Save(pkg).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&bundledomain.BundlePackage{}).Error
}
