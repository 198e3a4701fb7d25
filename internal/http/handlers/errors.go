package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"hostel-backend/internal/domain"
	"hostel-backend/internal/http/middleware"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error     string        `json:"error"`
	Code      string        `json:"code"`
	Details   []FieldDetail `json:"details,omitempty"`
	RequestID string        `json:"request_id,omitempty"`
}

// FieldDetail names one rejected request field.
type FieldDetail struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details []FieldDetail) {
	if code == "" {
		code = strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     message,
		Code:      code,
		Details:   details,
		RequestID: middleware.GetRequestID(c),
	})
}

// RespondDomainError maps domain errors to HTTP responses.
func RespondDomainError(c *gin.Context, err error) {
	code := domain.CodeOf(err)
	switch {
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, code, err.Error(), nil)
	case domain.IsUnauthorized(err):
		respondError(c, http.StatusUnauthorized, code, err.Error(), nil)
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, code, err.Error(), nil)
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, code, err.Error(), nil)
	case domain.IsUnavailable(err):
		_ = c.Error(err)
		respondError(c, http.StatusServiceUnavailable, domain.CodeStoreUnavailable, "storage is unavailable, try again", nil)
	default:
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "internal_error", "internal error", nil)
	}
}

// respondBindError renders binding failures; validator errors become per-field details.
func respondBindError(c *gin.Context, err error) {
	var (
		verrs  validator.ValidationErrors
		syntax *json.SyntaxError
		typed  *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &verrs):
		details := make([]FieldDetail, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, FieldDetail{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()})
		}
		respondError(c, http.StatusBadRequest, "invalid_payload", "request has invalid fields", details)
	case errors.As(err, &syntax):
		respondError(c, http.StatusBadRequest, "invalid_payload", "malformed JSON", nil)
	case errors.As(err, &typed):
		respondError(c, http.StatusBadRequest, "invalid_payload", "field "+typed.Field+" has the wrong type", []FieldDetail{{Field: typed.Field, Rule: "type", Param: typed.Type.String()}})
	default:
		respondError(c, http.StatusBadRequest, "invalid_payload", "payload is not valid", nil)
	}
}
