package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Response, error)
	List(ctx context.Context) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	Delete(ctx context.Context, id string) error

	// FindApplicable returns every active rule whose present predicates all
	// hold for the given request. Selection among matches stays with the
	// caller; results are recomputed on every call.
	FindApplicable(ctx context.Context, q ApplicabilityQuery) ([]Response, error)

	// ApplyDiscount computes the discount a rule yields for an amount.
	// A missing or inactive rule degrades to a zero discount, never an
	// error; discount application must not block a checkout.
	ApplyDiscount(ctx context.Context, ruleID string, originalAmountCents int64, sessionCount int) (*DiscountResult, error)
}

type ApplicabilityQuery struct {
	SessionCount int
	AmountCents  *int64
	UserRole     string
}

type CreateRequest struct {
	Name             string       `json:"name"`
	Type             DiscountType `json:"type"`
	Value            float64      `json:"value"`
	MaxDiscountCents *int64       `json:"max_discount_cents"`
	MinSessions      *int         `json:"min_sessions"`
	MaxSessions      *int         `json:"max_sessions"`
	MinAmountCents   *int64       `json:"min_amount_cents"`
	ApplicableRoles  []string     `json:"applicable_roles"`
	ValidFrom        *time.Time   `json:"valid_from"`
	ValidUntil       *time.Time   `json:"valid_until"`
	Active           *bool        `json:"active"`
}

type UpdateRequest struct {
	Name             *string       `json:"name"`
	Type             *DiscountType `json:"type"`
	Value            *float64      `json:"value"`
	MaxDiscountCents *int64        `json:"max_discount_cents"`
	MinSessions      *int          `json:"min_sessions"`
	MaxSessions      *int          `json:"max_sessions"`
	MinAmountCents   *int64        `json:"min_amount_cents"`
	ApplicableRoles  []string      `json:"applicable_roles"`
	ValidFrom        *time.Time    `json:"valid_from"`
	ValidUntil       *time.Time    `json:"valid_until"`
	Active           *bool         `json:"active"`
}

type Response struct {
	ID               snowflake.ID `json:"id"`
	Name             string       `json:"name"`
	Type             DiscountType `json:"type"`
	Value            float64      `json:"value"`
	MaxDiscountCents *int64       `json:"max_discount_cents,omitempty"`
	MinSessions      *int         `json:"min_sessions,omitempty"`
	MaxSessions      *int         `json:"max_sessions,omitempty"`
	MinAmountCents   *int64       `json:"min_amount_cents,omitempty"`
	ApplicableRoles  []string     `json:"applicable_roles,omitempty"`
	ValidFrom        *time.Time   `json:"valid_from,omitempty"`
	ValidUntil       *time.Time   `json:"valid_until,omitempty"`
	Active           bool         `json:"active"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

type DiscountResult struct {
	DiscountAmountCents int64        `json:"discount_amount_cents"`
	FinalAmountCents    int64        `json:"final_amount_cents"`
	RuleName            string       `json:"rule_name,omitempty"`
	RuleType            DiscountType `json:"rule_type,omitempty"`
}

var (
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidType     = errors.New("invalid_type")
	ErrInvalidValue    = errors.New("invalid_value")
	ErrInvalidBounds   = errors.New("invalid_bounds")
	ErrInvalidWindow   = errors.New("invalid_window")
	ErrInvalidSessions = errors.New("invalid_sessions")
	ErrInvalidID       = errors.New("invalid_id")
	ErrNotFound        = errors.New("not_found")
)
