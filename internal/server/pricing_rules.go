package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	pricingruledomain "github.com/mentorly/mentorly/internal/pricingrule/domain"
)

type createPricingRuleRequest struct {
	Name               string                          `json:"name"`
	Category           pricingruledomain.RuleCategory  `json:"category"`
	BasePriceCents     int64                           `json:"base_price_cents"`
	MentorSharePercent float64                         `json:"mentor_share_percent"`
	PlatformFeePercent float64                         `json:"platform_fee_percent"`
	DiscountTiers      []pricingruledomain.TierInput   `json:"discount_tiers"`
	SpecialRates       *pricingruledomain.SpecialRates `json:"special_rates"`
	Active             *bool                           `json:"active"`
	EffectiveDate      *time.Time                      `json:"effective_date"`
	Metadata           map[string]any                  `json:"metadata"`
}

func (s *Server) CreatePricingRule(c *gin.Context) {
	var req createPricingRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.pricingRuleSvc.Create(c.Request.Context(), pricingruledomain.CreateRequest{
		Name:               req.Name,
		Category:           req.Category,
		BasePriceCents:     req.BasePriceCents,
		MentorSharePercent: req.MentorSharePercent,
		PlatformFeePercent: req.PlatformFeePercent,
		DiscountTiers:      req.DiscountTiers,
		SpecialRates:       req.SpecialRates,
		Active:             req.Active,
		EffectiveDate:      req.EffectiveDate,
		Metadata:           req.Metadata,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPricingRules(c *gin.Context) {
	resp, err := s.pricingRuleSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPricingRule(c *gin.Context) {
	resp, err := s.pricingRuleSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updatePricingRuleRequest struct {
	Name               *string                         `json:"name"`
	BasePriceCents     *int64                          `json:"base_price_cents"`
	MentorSharePercent *float64                        `json:"mentor_share_percent"`
	PlatformFeePercent *float64                        `json:"platform_fee_percent"`
	DiscountTiers      []pricingruledomain.TierInput   `json:"discount_tiers"`
	SpecialRates       *pricingruledomain.SpecialRates `json:"special_rates"`
	Active             *bool                           `json:"active"`
	EffectiveDate      *time.Time                      `json:"effective_date"`
}

func (s *Server) UpdatePricingRule(c *gin.Context) {
	var req updatePricingRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.pricingRuleSvc.Update(c.Request.Context(), c.Param("id"), pricingruledomain.UpdateRequest{
		Name:               req.Name,
		BasePriceCents:     req.BasePriceCents,
		MentorSharePercent: req.MentorSharePercent,
		PlatformFeePercent: req.PlatformFeePercent,
		DiscountTiers:      req.DiscountTiers,
		SpecialRates:       req.SpecialRates,
		Active:             req.Active,
		EffectiveDate:      req.EffectiveDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeletePricingRule(c *gin.Context) {
	if err := s.pricingRuleSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}
