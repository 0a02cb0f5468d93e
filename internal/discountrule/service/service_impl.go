package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/mentorly/mentorly/internal/clock"
	discountruledomain "github.com/mentorly/mentorly/internal/discountrule/domain"
	"github.com/mentorly/mentorly/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    discountruledomain.Repository
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    discountruledomain.Repository
	metrics *metrics.Metrics
}

func New(p Params) discountruledomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("discountrule.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		metrics: p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req discountruledomain.CreateRequest) (*discountruledomain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, discountruledomain.ErrInvalidName
	}

	ruleType, err := parseType(req.Type)
	if err != nil {
		return nil, err
	}
	if err := validateValue(ruleType, req.Value); err != nil {
		return nil, err
	}
	if err := validatePredicates(req.MinSessions, req.MaxSessions, req.MinAmountCents, req.MaxDiscountCents, req.ValidFrom, req.ValidUntil); err != nil {
		return nil, err
	}

	active := false
	if req.Active != nil {
		active = *req.Active
	}

	now := time.Now().UTC()
	entity := &discountruledomain.DiscountRule{
		ID:               s.genID.Generate(),
		Name:             name,
		Type:             ruleType,
		Value:            req.Value,
		MaxDiscountCents: req.MaxDiscountCents,
		MinSessions:      req.MinSessions,
		MaxSessions:      req.MaxSessions,
		MinAmountCents:   req.MinAmountCents,
		ValidFrom:        req.ValidFrom,
		ValidUntil:       req.ValidUntil,
		Active:           active,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if len(req.ApplicableRoles) > 0 {
		entity.ApplicableRoles = datatypes.NewJSONSlice(req.ApplicableRoles)
	}

	if err := s.repo.Insert(ctx, s.db, entity); err != nil {
		return nil, err
	}

	return toResponse(entity), nil
}

func (s *Service) Update(ctx context.Context, id string, req discountruledomain.UpdateRequest) (*discountruledomain.Response, error) {
	ruleID, err := parseID(id)
	if err != nil {
		return nil, discountruledomain.ErrInvalidID
	}

	entity, err := s.repo.FindByID(ctx, s.db, ruleID)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, discountruledomain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, discountruledomain.ErrInvalidName
		}
		entity.Name = name
	}
	if req.Type != nil {
		ruleType, err := parseType(*req.Type)
		if err != nil {
			return nil, err
		}
		entity.Type = ruleType
	}
	if req.Value != nil {
		entity.Value = *req.Value
	}
	if err := validateValue(entity.Type, entity.Value); err != nil {
		return nil, err
	}
	if req.MaxDiscountCents != nil {
		entity.MaxDiscountCents = req.MaxDiscountCents
	}
	if req.MinSessions != nil {
		entity.MinSessions = req.MinSessions
	}
	if req.MaxSessions != nil {
		entity.MaxSessions = req.MaxSessions
	}
	if req.MinAmountCents != nil {
		entity.MinAmountCents = req.MinAmountCents
	}
	if req.ApplicableRoles != nil {
		entity.ApplicableRoles = datatypes.NewJSONSlice(req.ApplicableRoles)
	}
	if req.ValidFrom != nil {
		entity.ValidFrom = req.ValidFrom
	}
	if req.ValidUntil != nil {
		entity.ValidUntil = req.ValidUntil
	}
	if req.Active != nil {
		entity.Active = *req.Active
	}

	if err := validatePredicates(entity.MinSessions, entity.MaxSessions, entity.MinAmountCents, entity.MaxDiscountCents, entity.ValidFrom, entity.ValidUntil); err != nil {
		return nil, err
	}

	entity.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, entity); err != nil {
		return nil, err
	}

	return toResponse(entity), nil
}

func (s *Service) List(ctx context.Context) ([]discountruledomain.Response, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}

	resp := make([]discountruledomain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, *toResponse(&items[i]))
	}

	return resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*discountruledomain.Response, error) {
	ruleID, err := parseID(id)
	if err != nil {
		return nil, discountruledomain.ErrInvalidID
	}

	entity, err := s.repo.FindByID(ctx, s.db, ruleID)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, discountruledomain.ErrNotFound
	}

	return toResponse(entity), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	ruleID, err := parseID(id)
	if err != nil {
		return discountruledomain.ErrInvalidID
	}

	entity, err := s.repo.FindByID(ctx, s.db, ruleID)
	if err != nil {
		return err
	}
	if entity == nil {
		return discountruledomain.ErrNotFound
	}

	return s.repo.Delete(ctx, s.db, ruleID)
}

func (s *Service) FindApplicable(ctx context.Context, q discountruledomain.ApplicabilityQuery) ([]discountruledomain.Response, error) {
	if q.SessionCount < 1 {
		return nil, discountruledomain.ErrInvalidSessions
	}

	items, err := s.repo.ListActive(ctx, s.db)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	resp := make([]discountruledomain.Response, 0, len(items))
	for i := range items {
		if Matches(&items[i], q, now) {
			resp = append(resp, *toResponse(&items[i]))
		}
	}

	return resp, nil
}

func (s *Service) ApplyDiscount(ctx context.Context, ruleID string, originalAmountCents int64, sessionCount int) (*discountruledomain.DiscountResult, error) {
	_ = sessionCount // reserved for session-scaled rules

	id, err := parseID(ruleID)
	if err != nil {
		return zeroDiscount(originalAmountCents), nil
	}

	rule, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if rule == nil || !rule.Active {
		// Soft failure: discount application never blocks a checkout.
		s.metrics.RecordDiscountApplication(ctx, "", false)
		return zeroDiscount(originalAmountCents), nil
	}

	result := Apply(rule, originalAmountCents)
	s.metrics.RecordDiscountApplication(ctx, string(rule.Type), true)
	return result, nil
}

// Matches reports whether every present predicate of the rule holds.
// Absent bounds never disqualify.
func Matches(rule *discountruledomain.DiscountRule, q discountruledomain.ApplicabilityQuery, now time.Time) bool {
	if !rule.Active {
		return false
	}
	if rule.MinSessions != nil && q.SessionCount < *rule.MinSessions {
		return false
	}
	if rule.MaxSessions != nil && q.SessionCount > *rule.MaxSessions {
		return false
	}
	if rule.MinAmountCents != nil && q.AmountCents != nil && *q.AmountCents < *rule.MinAmountCents {
		return false
	}
	if len(rule.ApplicableRoles) > 0 && q.UserRole != "" && !containsRole([]string(rule.ApplicableRoles), q.UserRole) {
		return false
	}
	if rule.ValidFrom != nil && now.Before(*rule.ValidFrom) {
		return false
	}
	if rule.ValidUntil != nil && now.After(*rule.ValidUntil) {
		return false
	}
	return true
}

// Apply computes the discount and clamped final amount for an active rule.
func Apply(rule *discountruledomain.DiscountRule, originalAmountCents int64) *discountruledomain.DiscountResult {
	var discount int64
	switch rule.Type {
	case discountruledomain.TypeFixedAmount:
		discount = roundMoney(rule.Value)
	default:
		discount = roundMoney(float64(originalAmountCents) * rule.Value / 100)
	}

	if rule.MaxDiscountCents != nil && discount > *rule.MaxDiscountCents {
		discount = *rule.MaxDiscountCents
	}

	final := originalAmountCents - discount
	if final < 0 {
		final = 0
	}

	return &discountruledomain.DiscountResult{
		DiscountAmountCents: discount,
		FinalAmountCents:    final,
		RuleName:            rule.Name,
		RuleType:            rule.Type,
	}
}

func zeroDiscount(originalAmountCents int64) *discountruledomain.DiscountResult {
	return &discountruledomain.DiscountResult{
		DiscountAmountCents: 0,
		FinalAmountCents:    originalAmountCents,
	}
}

func containsRole(roles []string, role string) bool {
	for _, r := range roles {
		if strings.EqualFold(strings.TrimSpace(r), role) {
			return true
		}
	}
	return false
}

func toResponse(rule *discountruledomain.DiscountRule) *discountruledomain.Response {
	return &discountruledomain.Response{
		ID:               rule.ID,
		Name:             rule.Name,
		Type:             rule.Type,
		Value:            rule.Value,
		MaxDiscountCents: rule.MaxDiscountCents,
		MinSessions:      rule.MinSessions,
		MaxSessions:      rule.MaxSessions,
		MinAmountCents:   rule.MinAmountCents,
		ApplicableRoles:  []string(rule.ApplicableRoles),
		ValidFrom:        rule.ValidFrom,
		ValidUntil:       rule.ValidUntil,
		Active:           rule.Active,
		CreatedAt:        rule.CreatedAt,
		UpdatedAt:        rule.UpdatedAt,
	}
}

func parseType(value discountruledomain.DiscountType) (discountruledomain.DiscountType, error) {
	switch strings.ToLower(strings.TrimSpace(string(value))) {
	case string(discountruledomain.TypePercentage):
		return discountruledomain.TypePercentage, nil
	case string(discountruledomain.TypeFixedAmount):
		return discountruledomain.TypeFixedAmount, nil
	default:
		return "", discountruledomain.ErrInvalidType
	}
}

func validateValue(ruleType discountruledomain.DiscountType, value float64) error {
	switch ruleType {
	case discountruledomain.TypePercentage:
		if value < 0 || value > 100 {
			return discountruledomain.ErrInvalidValue
		}
	case discountruledomain.TypeFixedAmount:
		if value < 0 {
			return discountruledomain.ErrInvalidValue
		}
	}
	return nil
}

func validatePredicates(minSessions, maxSessions *int, minAmount, maxDiscount *int64, validFrom, validUntil *time.Time) error {
	if minSessions != nil && *minSessions < 1 {
		return discountruledomain.ErrInvalidBounds
	}
	if maxSessions != nil && *maxSessions < 1 {
		return discountruledomain.ErrInvalidBounds
	}
	if minSessions != nil && maxSessions != nil && *minSessions > *maxSessions {
		return discountruledomain.ErrInvalidBounds
	}
	if minAmount != nil && *minAmount < 0 {
		return discountruledomain.ErrInvalidBounds
	}
	if maxDiscount != nil && *maxDiscount < 0 {
		return discountruledomain.ErrInvalidBounds
	}
	if validFrom != nil && validUntil != nil && validFrom.After(*validUntil) {
		return discountruledomain.ErrInvalidWindow
	}
	return nil
}

func roundMoney(raw float64) int64 {
	return int64(math.Floor(raw + 0.5))
}

func parseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(value))
}
