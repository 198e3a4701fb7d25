package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// POST /api/hostlers
func (h *Handler) CreateHostler(c *gin.Context) {
	var req hostlerRequest
	if !bindJSON(c, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	created, err := h.allocSvc(c).RegisterHostler(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toHostler(created))
}

// GET /api/hostlers?status=
// Filters on the live billing status, not the stored one.
func (h *Handler) ListHostlers(c *gin.Context) {
	status, err := queryHostlerStatus(c)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	rows, err := h.billingSvc(c).ListHostlers(c.Request.Context(), status, h.now())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	out := make([]hostlerBillingResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, toHostlerBilling(r))
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/hostlers/:id
func (h *Handler) GetHostler(c *gin.Context) {
	row, err := h.billingSvc(c).GetBillingSummary(c.Request.Context(), c.Param("id"), h.now())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toHostlerBilling(row))
}

// PUT /api/hostlers/:id
func (h *Handler) UpdateHostler(c *gin.Context) {
	var req hostlerRequest
	if !bindJSON(c, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	updated, err := h.allocSvc(c).EditHostler(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toHostler(updated))
}

// DELETE /api/hostlers/:id
func (h *Handler) DeleteHostler(c *gin.Context) {
	if err := h.allocSvc(c).DeleteHostler(c.Request.Context(), c.Param("id")); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "hostler deleted"})
}

// GET /api/hostlers/:id/billing
func (h *Handler) GetHostlerBilling(c *gin.Context) {
	row, err := h.billingSvc(c).GetBillingSummary(c.Request.Context(), c.Param("id"), h.now())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, billingResponse{DueDate: toHostlerBilling(row).Billing.DueDate, Summary: row.Billing})
}

// GET /api/hostlers/:id/payments
func (h *Handler) GetHostlerPayments(c *gin.Context) {
	payments, err := h.paymentSvc(c).ListByHostler(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPayments(payments))
}

// GET /api/hostlers/:id/statement
func (h *Handler) GetHostlerStatement(c *gin.Context) {
	pdf, filename, err := h.docsSvc(c).BillingStatement(c.Request.Context(), c.Param("id"), h.now())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	sendPDF(c, pdf, filename)
}
