package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	bundledomain "github.com/mentorly/mentorly/internal/bundle/domain"
	"github.com/mentorly/mentorly/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    bundledomain.Repository
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    bundledomain.Repository
	metrics *metrics.Metrics
}

func New(p Params) bundledomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("bundle.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		metrics: p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req bundledomain.CreateRequest) (*bundledomain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, bundledomain.ErrInvalidName
	}
	if req.SessionCount < 1 {
		return nil, bundledomain.ErrInvalidSessions
	}
	if req.OriginalPriceCents < 0 {
		return nil, bundledomain.ErrInvalidPrice
	}
	if req.DiscountPercent < 0 || req.DiscountPercent > 100 {
		return nil, bundledomain.ErrInvalidPercent
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := time.Now().UTC()
	entity := &bundledomain.BundlePackage{
		ID:                 s.genID.Generate(),
		Name:               name,
		SessionCount:       req.SessionCount,
		OriginalPriceCents: req.OriginalPriceCents,
		DiscountPercent:    req.DiscountPercent,
		FinalPriceCents:    finalPrice(req.OriginalPriceCents, req.DiscountPercent),
		Active:             active,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Insert(ctx, s.db, entity); err != nil {
		return nil, err
	}

	s.metrics.RecordBundleRecompute(ctx, "create")
	return toResponse(entity), nil
}

func (s *Service) Update(ctx context.Context, id string, req bundledomain.UpdateRequest) (*bundledomain.Response, error) {
	pkgID, err := parseID(id)
	if err != nil {
		return nil, bundledomain.ErrInvalidID
	}

	entity, err := s.repo.FindByID(ctx, s.db, pkgID)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, bundledomain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, bundledomain.ErrInvalidName
		}
		entity.Name = name
	}
	if req.SessionCount != nil {
		if *req.SessionCount < 1 {
			return nil, bundledomain.ErrInvalidSessions
		}
		entity.SessionCount = *req.SessionCount
	}
	if req.OriginalPriceCents != nil {
		if *req.OriginalPriceCents < 0 {
			return nil, bundledomain.ErrInvalidPrice
		}
		entity.OriginalPriceCents = *req.OriginalPriceCents
	}
	if req.DiscountPercent != nil {
		if *req.DiscountPercent < 0 || *req.DiscountPercent > 100 {
			return nil, bundledomain.ErrInvalidPercent
		}
		entity.DiscountPercent = *req.DiscountPercent
	}
	if req.Active != nil {
		entity.Active = *req.Active
	}

	// Recompute from the merged values so the stored final price can
	// never drift from its inputs.
	entity.FinalPriceCents = finalPrice(entity.OriginalPriceCents, entity.DiscountPercent)
	entity.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, entity); err != nil {
		return nil, err
	}

	s.metrics.RecordBundleRecompute(ctx, "update")
	return toResponse(entity), nil
}

func (s *Service) List(ctx context.Context) ([]bundledomain.Response, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}

	resp := make([]bundledomain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, *toResponse(&items[i]))
	}

	return resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*bundledomain.Response, error) {
	pkgID, err := parseID(id)
	if err != nil {
		return nil, bundledomain.ErrInvalidID
	}

	entity, err := s.repo.FindByID(ctx, s.db, pkgID)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, bundledomain.ErrNotFound
	}

	return toResponse(entity), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	pkgID, err := parseID(id)
	if err != nil {
		return bundledomain.ErrInvalidID
	}

	entity, err := s.repo.FindByID(ctx, s.db, pkgID)
	if err != nil {
		return err
	}
	if entity == nil {
		return bundledomain.ErrNotFound
	}

	return s.repo.Delete(ctx, s.db, pkgID)
}

func finalPrice(originalCents int64, discountPercent float64) int64 {
	raw := float64(originalCents) * (1 - discountPercent/100)
	return int64(math.Floor(raw + 0.5))
}

func toResponse(pkg *bundledomain.BundlePackage) *bundledomain.Response {
	return &bundledomain.Response{
		ID:                 pkg.ID,
		Name:               pkg.Name,
		SessionCount:       pkg.SessionCount,
		OriginalPriceCents: pkg.OriginalPriceCents,
		DiscountPercent:    pkg.DiscountPercent,
		FinalPriceCents:    pkg.FinalPriceCents,
		Active:             pkg.Active,
		CreatedAt:          pkg.CreatedAt,
		UpdatedAt:          pkg.UpdatedAt,
	}
}

func parseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(value))
}
