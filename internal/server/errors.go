package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	bundledomain "github.com/mentorly/mentorly/internal/bundle/domain"
	discountruledomain "github.com/mentorly/mentorly/internal/discountrule/domain"
	pricingdomain "github.com/mentorly/mentorly/internal/pricing/domain"
	pricingruledomain "github.com/mentorly/mentorly/internal/pricingrule/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   "request",
				Code:    "invalid_request",
				Message: "invalid request",
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: "invalid value",
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrConflict):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isPricingRuleValidationError(err),
		isDiscountRuleValidationError(err),
		isBundleValidationError(err),
		isPricingValidationError(err):
		return true
	default:
		return false
	}
}

func isPricingRuleValidationError(err error) bool {
	switch {
	case errors.Is(err, pricingruledomain.ErrInvalidName),
		errors.Is(err, pricingruledomain.ErrInvalidCategory),
		errors.Is(err, pricingruledomain.ErrInvalidBasePrice),
		errors.Is(err, pricingruledomain.ErrInvalidSharePct),
		errors.Is(err, pricingruledomain.ErrInvalidSpecialRate),
		errors.Is(err, pricingruledomain.ErrInvalidTier),
		errors.Is(err, pricingruledomain.ErrInvalidID):
		return true
	default:
		return false
	}
}

func isDiscountRuleValidationError(err error) bool {
	switch {
	case errors.Is(err, discountruledomain.ErrInvalidName),
		errors.Is(err, discountruledomain.ErrInvalidType),
		errors.Is(err, discountruledomain.ErrInvalidValue),
		errors.Is(err, discountruledomain.ErrInvalidBounds),
		errors.Is(err, discountruledomain.ErrInvalidWindow),
		errors.Is(err, discountruledomain.ErrInvalidSessions),
		errors.Is(err, discountruledomain.ErrInvalidID):
		return true
	default:
		return false
	}
}

func isBundleValidationError(err error) bool {
	switch {
	case errors.Is(err, bundledomain.ErrInvalidName),
		errors.Is(err, bundledomain.ErrInvalidSessions),
		errors.Is(err, bundledomain.ErrInvalidPrice),
		errors.Is(err, bundledomain.ErrInvalidPercent),
		errors.Is(err, bundledomain.ErrInvalidID):
		return true
	default:
		return false
	}
}

func isPricingValidationError(err error) bool {
	switch {
	case errors.Is(err, pricingdomain.ErrInvalidSessionCount):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, pricingruledomain.ErrNotFound),
		errors.Is(err, discountruledomain.ErrNotFound),
		errors.Is(err, bundledomain.ErrNotFound),
		errors.Is(err, pricingdomain.ErrNoActiveRule),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func classifyErrorForLog(err error) (string, string) {
	switch {
	case err == nil:
		return "", ""
	case asValidationErrors(err) != nil, isValidationError(err):
		return "validation_error", err.Error()
	case isNotFoundError(err):
		return "not_found", err.Error()
	default:
		return "internal_error", err.Error()
	}
}
