package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/mentorly/mentorly/internal/bundle"
	bundledomain "github.com/mentorly/mentorly/internal/bundle/domain"
	"github.com/mentorly/mentorly/internal/config"
	"github.com/mentorly/mentorly/internal/discountrule"
	discountruledomain "github.com/mentorly/mentorly/internal/discountrule/domain"
	"github.com/mentorly/mentorly/internal/observability"
	obsmiddleware "github.com/mentorly/mentorly/internal/observability/logger"
	obsmetrics "github.com/mentorly/mentorly/internal/observability/metrics"
	obstracing "github.com/mentorly/mentorly/internal/observability/tracing"
	"github.com/mentorly/mentorly/internal/pricing"
	pricingdomain "github.com/mentorly/mentorly/internal/pricing/domain"
	"github.com/mentorly/mentorly/internal/pricingrule"
	pricingruledomain "github.com/mentorly/mentorly/internal/pricingrule/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	pricingrule.Module,
	discountrule.Module,
	bundle.Module,
	pricing.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	db     *gorm.DB
	genID  *snowflake.Node

	pricingRuleSvc  pricingruledomain.Service
	discountRuleSvc discountruledomain.Service
	bundleSvc       bundledomain.Service
	pricingSvc      pricingdomain.Service
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	GenID           *snowflake.Node
	PricingRuleSvc  pricingruledomain.Service
	DiscountRuleSvc discountruledomain.Service
	BundleSvc       bundledomain.Service
	PricingSvc      pricingdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		genID:           p.GenID,
		pricingRuleSvc:  p.PricingRuleSvc,
		discountRuleSvc: p.DiscountRuleSvc,
		bundleSvc:       p.BundleSvc,
		pricingSvc:      p.PricingSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1")

	rules := v1.Group("/pricing-rules")
	rules.POST("", s.CreatePricingRule)
	rules.GET("", s.ListPricingRules)
	rules.GET("/:id", s.GetPricingRule)
	rules.PATCH("/:id", s.UpdatePricingRule)
	rules.DELETE("/:id", s.DeletePricingRule)

	discounts := v1.Group("/discount-rules")
	discounts.POST("", s.CreateDiscountRule)
	discounts.GET("", s.ListDiscountRules)
	discounts.GET("/applicable", s.FindApplicableDiscounts)
	discounts.GET("/:id", s.GetDiscountRule)
	discounts.PATCH("/:id", s.UpdateDiscountRule)
	discounts.DELETE("/:id", s.DeleteDiscountRule)
	discounts.POST("/:id/apply", s.ApplyDiscountRule)

	bundles := v1.Group("/bundles")
	bundles.POST("", s.CreateBundle)
	bundles.GET("", s.ListBundles)
	bundles.GET("/:id", s.GetBundle)
	bundles.PATCH("/:id", s.UpdateBundle)
	bundles.DELETE("/:id", s.DeleteBundle)

	calc := v1.Group("/pricing")
	calc.POST("/calculate", s.CalculatePrice)
	calc.POST("/quote", s.QuotePrice)
}
