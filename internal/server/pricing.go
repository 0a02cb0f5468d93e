package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	pricingdomain "github.com/mentorly/mentorly/internal/pricing/domain"
)

type calculatePriceRequest struct {
	SessionCount    int  `json:"session_count"`
	IsNewStudent    bool `json:"is_new_student"`
	IsLoyalCustomer bool `json:"is_loyal_customer"`
	IsReferral      bool `json:"is_referral"`
}

func (s *Server) CalculatePrice(c *gin.Context) {
	var req calculatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.pricingSvc.Calculate(c.Request.Context(), pricingdomain.CalculateRequest{
		SessionCount:    req.SessionCount,
		IsNewStudent:    req.IsNewStudent,
		IsLoyalCustomer: req.IsLoyalCustomer,
		IsReferral:      req.IsReferral,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type quotePriceRequest struct {
	SessionCount    int    `json:"session_count"`
	IsNewStudent    bool   `json:"is_new_student"`
	IsLoyalCustomer bool   `json:"is_loyal_customer"`
	IsReferral      bool   `json:"is_referral"`
	UserRole        string `json:"user_role"`
	DiscountRuleID  string `json:"discount_rule_id"`
}

func (s *Server) QuotePrice(c *gin.Context) {
	var req quotePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.pricingSvc.Quote(c.Request.Context(), pricingdomain.QuoteRequest{
		CalculateRequest: pricingdomain.CalculateRequest{
			SessionCount:    req.SessionCount,
			IsNewStudent:    req.IsNewStudent,
			IsLoyalCustomer: req.IsLoyalCustomer,
			IsReferral:      req.IsReferral,
		},
		UserRole:       strings.TrimSpace(req.UserRole),
		DiscountRuleID: strings.TrimSpace(req.DiscountRuleID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
