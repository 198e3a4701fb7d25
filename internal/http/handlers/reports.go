package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hostel-backend/internal/utils"
)

// GET /api/reports/payments?from=&to=
func (h *Handler) PaymentReport(c *gin.Context) {
	from, err := queryDate(c, "from")
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	to, err := queryDate(c, "to")
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	rep, err := h.paymentSvc(c).Report(c.Request.Context(), from, to)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, reportResponse{
		From:         utils.FormatDatePtr(rep.From),
		To:           utils.FormatDatePtr(rep.To),
		Count:        rep.Count,
		PaidCount:    rep.PaidCount,
		TotalRevenue: rep.TotalRevenue,
		Payments:     toPayments(rep.Payments),
	})
}

// GET /api/dashboard
func (h *Handler) Dashboard(c *gin.Context) {
	d, err := h.billingSvc(c).Dashboard(c.Request.Context(), h.now())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// GET /api/dues
func (h *Handler) PendingDues(c *gin.Context) {
	dues, err := h.billingSvc(c).PendingDues(c.Request.Context(), h.now())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	out := make([]dueResponse, 0, len(dues))
	for _, d := range dues {
		out = append(out, dueResponse{
			hostlerBillingResponse: toHostlerBilling(d.HostlerBilling),
			Message:                d.Message,
			WhatsAppLink:           d.WhatsAppLink,
		})
	}
	c.JSON(http.StatusOK, out)
}
