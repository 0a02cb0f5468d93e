package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	// Update merges the provided fields into the stored package and
	// recomputes the final price from the merged values. An unknown
	// package is a hard failure.
	Update(ctx context.Context, id string, req UpdateRequest) (*Response, error)
	List(ctx context.Context) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	Delete(ctx context.Context, id string) error
}

type CreateRequest struct {
	Name               string  `json:"name"`
	SessionCount       int     `json:"session_count"`
	OriginalPriceCents int64   `json:"original_price_cents"`
	DiscountPercent    float64 `json:"discount_percent"`
	Active             *bool   `json:"active"`
}

type UpdateRequest struct {
	Name               *string  `json:"name"`
	SessionCount       *int     `json:"session_count"`
	OriginalPriceCents *int64   `json:"original_price_cents"`
	DiscountPercent    *float64 `json:"discount_percent"`
	Active             *bool    `json:"active"`
}

type Response struct {
	ID                 snowflake.ID `json:"id"`
	Name               string       `json:"name"`
	SessionCount       int          `json:"session_count"`
	OriginalPriceCents int64        `json:"original_price_cents"`
	DiscountPercent    float64      `json:"discount_percent"`
	FinalPriceCents    int64        `json:"final_price_cents"`
	Active             bool         `json:"active"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

var (
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidSessions = errors.New("invalid_sessions")
	ErrInvalidPrice    = errors.New("invalid_price")
	ErrInvalidPercent  = errors.New("invalid_percent")
	ErrInvalidID       = errors.New("invalid_id")
	ErrNotFound        = errors.New("not_found")
)
