package handlers

import (
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"hostel-backend/internal/domain"
	"hostel-backend/internal/utils"
)

var validatorOnce sync.Once

// SetupValidator makes validator report JSON field names instead of Go ones.
func SetupValidator() {
	validatorOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// bindJSON ensures body is present and parsable; it answers the request on failure.
func bindJSON[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		respondError(c, http.StatusBadRequest, "invalid_payload", "request body is empty", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		respondBindError(c, err)
		return false
	}
	return true
}

// parseDatePtr parses an optional YYYY-MM-DD field.
func parseDatePtr(field string, raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := utils.ParseDate(*raw)
	if err != nil {
		return nil, domain.ValidationError{Field: field, Code: domain.CodeInvalidDate, Msg: "must be a YYYY-MM-DD date"}
	}
	return &t, nil
}

func queryDate(c *gin.Context, key string) (*time.Time, error) {
	raw, ok := c.GetQuery(key)
	if !ok {
		return nil, nil
	}
	return parseDatePtr(key, &raw)
}

func queryHostlerStatus(c *gin.Context) (*domain.HostlerStatus, error) {
	raw := strings.TrimSpace(c.Query("status"))
	if raw == "" {
		return nil, nil
	}
	st, ok := domain.ParseHostlerStatus(raw)
	if !ok {
		return nil, domain.ValidationError{Field: "status", Code: domain.CodeInvalidStatus, Msg: "status must be Pending or Paid"}
	}
	return &st, nil
}

func queryPaymentStatus(c *gin.Context) (*domain.PaymentStatus, error) {
	raw := strings.TrimSpace(c.Query("status"))
	if raw == "" {
		return nil, nil
	}
	st, ok := domain.ParsePaymentStatus(raw)
	if !ok {
		return nil, domain.ValidationError{Field: "status", Code: domain.CodeInvalidStatus, Msg: "status must be Pending, Paid or Rejected"}
	}
	return &st, nil
}

func queryBedStatus(c *gin.Context) (*domain.BedStatus, error) {
	raw := strings.TrimSpace(c.Query("status"))
	if raw == "" {
		return nil, nil
	}
	st, ok := domain.ParseBedStatus(raw)
	if !ok {
		return nil, domain.ValidationError{Field: "status", Code: domain.CodeInvalidStatus, Msg: "status must be Vacant or Occupied"}
	}
	return &st, nil
}

func sendPDF(c *gin.Context, pdf []byte, filename string) {
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
