package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	discountruledomain "github.com/mentorly/mentorly/internal/discountrule/domain"
)

type createDiscountRuleRequest struct {
	Name             string                        `json:"name"`
	Type             discountruledomain.DiscountType `json:"type"`
	Value            float64                       `json:"value"`
	MaxDiscountCents *int64                        `json:"max_discount_cents"`
	MinSessions      *int                          `json:"min_sessions"`
	MaxSessions      *int                          `json:"max_sessions"`
	MinAmountCents   *int64                        `json:"min_amount_cents"`
	ApplicableRoles  []string                      `json:"applicable_roles"`
	ValidFrom        *time.Time                    `json:"valid_from"`
	ValidUntil       *time.Time                    `json:"valid_until"`
	Active           *bool                         `json:"active"`
}

func (s *Server) CreateDiscountRule(c *gin.Context) {
	var req createDiscountRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.discountRuleSvc.Create(c.Request.Context(), discountruledomain.CreateRequest{
		Name:             req.Name,
		Type:             req.Type,
		Value:            req.Value,
		MaxDiscountCents: req.MaxDiscountCents,
		MinSessions:      req.MinSessions,
		MaxSessions:      req.MaxSessions,
		MinAmountCents:   req.MinAmountCents,
		ApplicableRoles:  req.ApplicableRoles,
		ValidFrom:        req.ValidFrom,
		ValidUntil:       req.ValidUntil,
		Active:           req.Active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListDiscountRules(c *gin.Context) {
	resp, err := s.discountRuleSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetDiscountRule(c *gin.Context) {
	resp, err := s.discountRuleSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateDiscountRuleRequest struct {
	Name             *string                          `json:"name"`
	Type             *discountruledomain.DiscountType `json:"type"`
	Value            *float64                         `json:"value"`
	MaxDiscountCents *int64                           `json:"max_discount_cents"`
	MinSessions      *int                             `json:"min_sessions"`
	MaxSessions      *int                             `json:"max_sessions"`
	MinAmountCents   *int64                           `json:"min_amount_cents"`
	ApplicableRoles  []string                         `json:"applicable_roles"`
	ValidFrom        *time.Time                       `json:"valid_from"`
	ValidUntil       *time.Time                       `json:"valid_until"`
	Active           *bool                            `json:"active"`
}

func (s *Server) UpdateDiscountRule(c *gin.Context) {
	var req updateDiscountRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.discountRuleSvc.Update(c.Request.Context(), c.Param("id"), discountruledomain.UpdateRequest{
		Name:             req.Name,
		Type:             req.Type,
		Value:            req.Value,
		MaxDiscountCents: req.MaxDiscountCents,
		MinSessions:      req.MinSessions,
		MaxSessions:      req.MaxSessions,
		MinAmountCents:   req.MinAmountCents,
		ApplicableRoles:  req.ApplicableRoles,
		ValidFrom:        req.ValidFrom,
		ValidUntil:       req.ValidUntil,
		Active:           req.Active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteDiscountRule(c *gin.Context) {
	if err := s.discountRuleSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) FindApplicableDiscounts(c *gin.Context) {
	sessionCount, err := strconv.Atoi(strings.TrimSpace(c.Query("session_count")))
	if err != nil || sessionCount < 1 {
		AbortWithError(c, invalidRequestError())
		return
	}

	q := discountruledomain.ApplicabilityQuery{
		SessionCount: sessionCount,
		UserRole:     strings.TrimSpace(c.Query("user_role")),
	}
	if raw := strings.TrimSpace(c.Query("amount_cents")); raw != "" {
		amount, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
		q.AmountCents = &amount
	}

	resp, err := s.discountRuleSvc.FindApplicable(c.Request.Context(), q)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type applyDiscountRequest struct {
	OriginalAmountCents int64 `json:"original_amount_cents"`
	SessionCount        int   `json:"session_count"`
}

func (s *Server) ApplyDiscountRule(c *gin.Context) {
	var req applyDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.OriginalAmountCents < 0 {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.discountRuleSvc.ApplyDiscount(c.Request.Context(), c.Param("id"), req.OriginalAmountCents, req.SessionCount)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
