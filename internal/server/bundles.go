package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	bundledomain "github.com/mentorly/mentorly/internal/bundle/domain"
)

type createBundleRequest struct {
	Name               string  `json:"name"`
	SessionCount       int     `json:"session_count"`
	OriginalPriceCents int64   `json:"original_price_cents"`
	DiscountPercent    float64 `json:"discount_percent"`
	Active             *bool   `json:"active"`
}

func (s *Server) CreateBundle(c *gin.Context) {
	var req createBundleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.bundleSvc.Create(c.Request.Context(), bundledomain.CreateRequest{
		Name:               req.Name,
		SessionCount:       req.SessionCount,
		OriginalPriceCents: req.OriginalPriceCents,
		DiscountPercent:    req.DiscountPercent,
		Active:             req.Active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListBundles(c *gin.Context) {
	resp, err := s.bundleSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetBundle(c *gin.Context) {
	resp, err := s.bundleSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateBundleRequest struct {
	Name               *string  `json:"name"`
	SessionCount       *int     `json:"session_count"`
	OriginalPriceCents *int64   `json:"original_price_cents"`
	DiscountPercent    *float64 `json:"discount_percent"`
	Active             *bool    `json:"active"`
}

func (s *Server) UpdateBundle(c *gin.Context) {
	var req updateBundleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.bundleSvc.Update(c.Request.Context(), c.Param("id"), bundledomain.UpdateRequest{
		Name:               req.Name,
		SessionCount:       req.SessionCount,
		OriginalPriceCents: req.OriginalPriceCents,
		DiscountPercent:    req.DiscountPercent,
		Active:             req.Active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteBundle(c *gin.Context) {
	if err := s.bundleSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}
