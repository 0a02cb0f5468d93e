package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, rule *DiscountRule) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*DiscountRule, error)
	List(ctx context.Context, db *gorm.DB) ([]DiscountRule, error)
	// ListActive returns active rules in stable store order (created_at ASC).
	ListActive(ctx context.Context, db *gorm.DB) ([]DiscountRule, error)
	Update(ctx context.Context, db *gorm.DB, rule *DiscountRule) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
