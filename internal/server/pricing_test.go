package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	bundledomain "github.com/mentorly/mentorly/internal/bundle/domain"
	bundlerepo "github.com/mentorly/mentorly/internal/bundle/repository"
	bundleservice "github.com/mentorly/mentorly/internal/bundle/service"
	"github.com/mentorly/mentorly/internal/clock"
	"github.com/mentorly/mentorly/internal/config"
	discountruledomain "github.com/mentorly/mentorly/internal/discountrule/domain"
	discountrulerepo "github.com/mentorly/mentorly/internal/discountrule/repository"
	discountruleservice "github.com/mentorly/mentorly/internal/discountrule/service"
	pricingservice "github.com/mentorly/mentorly/internal/pricing/service"
	pricingruledomain "github.com/mentorly/mentorly/internal/pricingrule/domain"
	pricingrulerepo "github.com/mentorly/mentorly/internal/pricingrule/repository"
	pricingruleservice "github.com/mentorly/mentorly/internal/pricingrule/service"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupServer(t *testing.T, name string) *Server {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	assert.NoError(t, err)

	err = db.AutoMigrate(
		&pricingruledomain.PricingRule{},
		&pricingruledomain.DiscountTier{},
		&discountruledomain.DiscountRule{},
		&bundledomain.BundlePackage{},
	)
	assert.NoError(t, err)

	node, _ := snowflake.NewNode(1)
	logger := zap.NewNop()
	ruleRepo := pricingrulerepo.Provide()

	ruleSvc := pricingruleservice.New(pricingruleservice.Params{
		DB:    db,
		Log:   logger,
		GenID: node,
		Repo:  ruleRepo,
	})
	discountSvc := discountruleservice.New(discountruleservice.Params{
		DB:    db,
		Log:   logger,
		GenID: node,
		Clock: clock.NewSystemClock(),
		Repo:  discountrulerepo.Provide(),
	})
	bundleSvc := bundleservice.New(bundleservice.Params{
		DB:    db,
		Log:   logger,
		GenID: node,
		Repo:  bundlerepo.Provide(),
	})
	pricingSvc := pricingservice.New(pricingservice.Params{
		DB:        db,
		Log:       logger,
		RuleRepo:  ruleRepo,
		Discounts: discountSvc,
	})

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	return NewServer(ServerParams{
		Gin:             engine,
		Cfg:             config.Config{Environment: "test"},
		DB:              db,
		GenID:           node,
		PricingRuleSvc:  ruleSvc,
		DiscountRuleSvc: discountSvc,
		BundleSvc:       bundleSvc,
		PricingSvc:      pricingSvc,
	})
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		assert.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)
	return rec
}

func TestServer_CalculateEndToEnd(t *testing.T) {
	s := setupServer(t, "server_calculate")

	rec := doJSON(t, s, http.MethodPost, "/v1/pricing-rules", map[string]any{
		"name":                 "standard session",
		"category":             "session_pricing",
		"base_price_cents":     5000,
		"mentor_share_percent": 70,
		"platform_fee_percent": 30,
		"active":               true,
		"discount_tiers": []map[string]any{
			{"session_count": 5, "discount_percent": 10},
		},
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/v1/pricing/calculate", map[string]any{
		"session_count": 5,
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			TotalPriceCents     int64 `json:"total_price_cents"`
			MentorEarningsCents int64 `json:"mentor_earnings_cents"`
			PlatformFeeCents    int64 `json:"platform_fee_cents"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(22_500), resp.Data.TotalPriceCents)
	assert.Equal(t, int64(15_750), resp.Data.MentorEarningsCents)
	assert.Equal(t, int64(6_750), resp.Data.PlatformFeeCents)
}

func TestServer_CalculateWithoutRuleReturnsNotFound(t *testing.T) {
	s := setupServer(t, "server_norule")

	rec := doJSON(t, s, http.MethodPost, "/v1/pricing/calculate", map[string]any{
		"session_count": 1,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_ValidationErrorShape(t *testing.T) {
	s := setupServer(t, "server_validation")

	rec := doJSON(t, s, http.MethodPost, "/v1/pricing-rules", map[string]any{
		"name":     "bad",
		"category": "surge_pricing",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error struct {
			Type   string `json:"type"`
			Errors []struct {
				Code string `json:"code"`
			} `json:"errors"`
		} `json:"error"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "validation_error", resp.Error.Type)
	assert.Len(t, resp.Error.Errors, 1)
	assert.Equal(t, "invalid_category", resp.Error.Errors[0].Code)
}

func TestServer_ApplyDiscountRoute(t *testing.T) {
	s := setupServer(t, "server_apply")

	rec := doJSON(t, s, http.MethodPost, "/v1/discount-rules", map[string]any{
		"name":               "capped promo",
		"type":               "percentage",
		"value":              20,
		"max_discount_cents": 50,
		"active":             true,
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(t, s, http.MethodPost, "/v1/discount-rules/"+created.Data.ID+"/apply", map[string]any{
		"original_amount_cents": 1000,
		"session_count":         1,
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	var applied struct {
		Data struct {
			DiscountAmountCents int64 `json:"discount_amount_cents"`
			FinalAmountCents    int64 `json:"final_amount_cents"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &applied))
	assert.Equal(t, int64(50), applied.Data.DiscountAmountCents)
	assert.Equal(t, int64(950), applied.Data.FinalAmountCents)
}

func TestServer_BundleRoutes(t *testing.T) {
	s := setupServer(t, "server_bundles")

	rec := doJSON(t, s, http.MethodPost, "/v1/bundles", map[string]any{
		"name":                 "ten pack",
		"session_count":        10,
		"original_price_cents": 100000,
		"discount_percent":     15,
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	var created struct {
		Data struct {
			ID              string `json:"id"`
			FinalPriceCents int64  `json:"final_price_cents"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, int64(85_000), created.Data.FinalPriceCents)

	rec = doJSON(t, s, http.MethodPatch, "/v1/bundles/"+created.Data.ID, map[string]any{
		"discount_percent": 20,
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	var updated struct {
		Data struct {
			FinalPriceCents int64 `json:"final_price_cents"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, int64(80_000), updated.Data.FinalPriceCents)
}
