package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, pkg *BundlePackage) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*BundlePackage, error)
	List(ctx context.Context, db *gorm.DB) ([]BundlePackage, error)
	Update(ctx context.Context, db *gorm.DB, pkg *BundlePackage) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
