package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	pricingruledomain "github.com/mentorly/mentorly/internal/pricingrule/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  pricingruledomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  pricingruledomain.Repository
}

func New(p Params) pricingruledomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("pricingrule.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req pricingruledomain.CreateRequest) (*pricingruledomain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pricingruledomain.ErrInvalidName
	}

	category, err := parseCategory(req.Category)
	if err != nil {
		return nil, err
	}

	if req.BasePriceCents < 0 {
		return nil, pricingruledomain.ErrInvalidBasePrice
	}
	if !validPercent(req.MentorSharePercent) || !validPercent(req.PlatformFeePercent) {
		return nil, pricingruledomain.ErrInvalidSharePct
	}
	if err := validateSpecialRates(req.SpecialRates); err != nil {
		return nil, err
	}
	if err := validateTiers(req.DiscountTiers); err != nil {
		return nil, err
	}

	if req.MentorSharePercent+req.PlatformFeePercent > 100 {
		s.log.Warn("mentor and platform shares exceed 100 percent",
			zap.Float64("mentor_share_percent", req.MentorSharePercent),
			zap.Float64("platform_fee_percent", req.PlatformFeePercent),
		)
	}

	active := false
	if req.Active != nil {
		active = *req.Active
	}

	now := time.Now().UTC()
	entity := &pricingruledomain.PricingRule{
		ID:                 s.genID.Generate(),
		Name:               name,
		Category:           category,
		BasePriceCents:     req.BasePriceCents,
		MentorSharePercent: req.MentorSharePercent,
		PlatformFeePercent: req.PlatformFeePercent,
		Active:             active,
		EffectiveDate:      req.EffectiveDate,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	applySpecialRates(entity, req.SpecialRates)
	if req.Metadata != nil {
		entity.Metadata = datatypes.JSONMap(req.Metadata)
	}

	tiers := s.buildTiers(entity.ID, req.DiscountTiers, now)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, entity); err != nil {
			return err
		}
		return s.repo.ReplaceTiers(ctx, tx, entity.ID, tiers)
	})
	if err != nil {
		return nil, err
	}

	return s.toResponse(entity, tiers), nil
}

func (s *Service) Update(ctx context.Context, id string, req pricingruledomain.UpdateRequest) (*pricingruledomain.Response, error) {
	ruleID, err := parseID(id)
	if err != nil {
		return nil, pricingruledomain.ErrInvalidID
	}

	entity, err := s.repo.FindByID(ctx, s.db, ruleID)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, pricingruledomain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, pricingruledomain.ErrInvalidName
		}
		entity.Name = name
	}
	if req.BasePriceCents != nil {
		if *req.BasePriceCents < 0 {
			return nil, pricingruledomain.ErrInvalidBasePrice
		}
		entity.BasePriceCents = *req.BasePriceCents
	}
	if req.MentorSharePercent != nil {
		if !validPercent(*req.MentorSharePercent) {
			return nil, pricingruledomain.ErrInvalidSharePct
		}
		entity.MentorSharePercent = *req.MentorSharePercent
	}
	if req.PlatformFeePercent != nil {
		if !validPercent(*req.PlatformFeePercent) {
			return nil, pricingruledomain.ErrInvalidSharePct
		}
		entity.PlatformFeePercent = *req.PlatformFeePercent
	}
	if req.SpecialRates != nil {
		if err := validateSpecialRates(req.SpecialRates); err != nil {
			return nil, err
		}
		applySpecialRates(entity, req.SpecialRates)
	}
	if req.Active != nil {
		entity.Active = *req.Active
	}
	if req.EffectiveDate != nil {
		entity.EffectiveDate = req.EffectiveDate
	}

	if entity.MentorSharePercent+entity.PlatformFeePercent > 100 {
		s.log.Warn("mentor and platform shares exceed 100 percent",
			zap.String("rule_id", entity.ID.String()),
			zap.Float64("mentor_share_percent", entity.MentorSharePercent),
			zap.Float64("platform_fee_percent", entity.PlatformFeePercent),
		)
	}

	now := time.Now().UTC()
	entity.UpdatedAt = now

	var tiers []pricingruledomain.DiscountTier
	if req.DiscountTiers != nil {
		if err := validateTiers(req.DiscountTiers); err != nil {
			return nil, err
		}
		tiers = s.buildTiers(entity.ID, req.DiscountTiers, now)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Update(ctx, tx, entity); err != nil {
			return err
		}
		if req.DiscountTiers != nil {
			return s.repo.ReplaceTiers(ctx, tx, entity.ID, tiers)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if req.DiscountTiers == nil {
		tiers, err = s.repo.ListTiersByRule(ctx, s.db, entity.ID)
		if err != nil {
			return nil, err
		}
	}

	return s.toResponse(entity, tiers), nil
}

func (s *Service) List(ctx context.Context) ([]pricingruledomain.Response, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}

	resp := make([]pricingruledomain.Response, 0, len(items))
	for i := range items {
		tiers, err := s.repo.ListTiersByRule(ctx, s.db, items[i].ID)
		if err != nil {
			return nil, err
		}
		resp = append(resp, *s.toResponse(&items[i], tiers))
	}

	return resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*pricingruledomain.Response, error) {
	ruleID, err := parseID(id)
	if err != nil {
		return nil, pricingruledomain.ErrInvalidID
	}

	entity, err := s.repo.FindByID(ctx, s.db, ruleID)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, pricingruledomain.ErrNotFound
	}

	tiers, err := s.repo.ListTiersByRule(ctx, s.db, entity.ID)
	if err != nil {
		return nil, err
	}

	return s.toResponse(entity, tiers), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	ruleID, err := parseID(id)
	if err != nil {
		return pricingruledomain.ErrInvalidID
	}

	entity, err := s.repo.FindByID(ctx, s.db, ruleID)
	if err != nil {
		return err
	}
	if entity == nil {
		return pricingruledomain.ErrNotFound
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.ReplaceTiers(ctx, tx, ruleID, nil); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, ruleID)
	})
}

func (s *Service) buildTiers(ruleID snowflake.ID, inputs []pricingruledomain.TierInput, now time.Time) []pricingruledomain.DiscountTier {
	tiers := make([]pricingruledomain.DiscountTier, 0, len(inputs))
	for _, in := range inputs {
		tiers = append(tiers, pricingruledomain.DiscountTier{
			ID:              s.genID.Generate(),
			RuleID:          ruleID,
			SessionCount:    in.SessionCount,
			DiscountPercent: in.DiscountPercent,
			CreatedAt:       now,
		})
	}
	return tiers
}

func (s *Service) toResponse(rule *pricingruledomain.PricingRule, tiers []pricingruledomain.DiscountTier) *pricingruledomain.Response {
	tierResp := make([]pricingruledomain.TierResponse, 0, len(tiers))
	for _, t := range tiers {
		tierResp = append(tierResp, pricingruledomain.TierResponse{
			SessionCount:    t.SessionCount,
			DiscountPercent: t.DiscountPercent,
		})
	}
	sort.Slice(tierResp, func(i, j int) bool { return tierResp[i].SessionCount < tierResp[j].SessionCount })

	var rates *pricingruledomain.SpecialRates
	if rule.NewStudentDiscount != nil || rule.LoyaltyDiscount != nil || rule.ReferralDiscount != nil {
		rates = &pricingruledomain.SpecialRates{
			NewStudentDiscount: rule.NewStudentDiscount,
			LoyaltyDiscount:    rule.LoyaltyDiscount,
			ReferralDiscount:   rule.ReferralDiscount,
		}
	}

	return &pricingruledomain.Response{
		ID:                 rule.ID,
		Name:               rule.Name,
		Category:           rule.Category,
		BasePriceCents:     rule.BasePriceCents,
		MentorSharePercent: rule.MentorSharePercent,
		PlatformFeePercent: rule.PlatformFeePercent,
		DiscountTiers:      tierResp,
		SpecialRates:       rates,
		Active:             rule.Active,
		EffectiveDate:      rule.EffectiveDate,
		CreatedAt:          rule.CreatedAt,
		UpdatedAt:          rule.UpdatedAt,
	}
}

func applySpecialRates(rule *pricingruledomain.PricingRule, rates *pricingruledomain.SpecialRates) {
	if rates == nil {
		return
	}
	rule.NewStudentDiscount = rates.NewStudentDiscount
	rule.LoyaltyDiscount = rates.LoyaltyDiscount
	rule.ReferralDiscount = rates.ReferralDiscount
}

func validateSpecialRates(rates *pricingruledomain.SpecialRates) error {
	if rates == nil {
		return nil
	}
	for _, rate := range []*float64{rates.NewStudentDiscount, rates.LoyaltyDiscount, rates.ReferralDiscount} {
		if rate != nil && !validPercent(*rate) {
			return pricingruledomain.ErrInvalidSpecialRate
		}
	}
	return nil
}

func validateTiers(tiers []pricingruledomain.TierInput) error {
	for _, t := range tiers {
		if t.SessionCount < 1 {
			return pricingruledomain.ErrInvalidTier
		}
		if !validPercent(t.DiscountPercent) {
			return pricingruledomain.ErrInvalidTier
		}
	}
	return nil
}

func parseCategory(value pricingruledomain.RuleCategory) (pricingruledomain.RuleCategory, error) {
	switch strings.ToLower(strings.TrimSpace(string(value))) {
	case string(pricingruledomain.CategorySessionPricing):
		return pricingruledomain.CategorySessionPricing, nil
	case string(pricingruledomain.CategoryBundleDiscount):
		return pricingruledomain.CategoryBundleDiscount, nil
	case string(pricingruledomain.CategoryMentorCommission):
		return pricingruledomain.CategoryMentorCommission, nil
	case string(pricingruledomain.CategoryPlatformFee):
		return pricingruledomain.CategoryPlatformFee, nil
	default:
		return "", pricingruledomain.ErrInvalidCategory
	}
}

func validPercent(value float64) bool {
	return value >= 0 && value <= 100
}

func parseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(value))
}
