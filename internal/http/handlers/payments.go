package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hostel-backend/internal/services"
)

// POST /api/payments
func (h *Handler) SubmitPayment(c *gin.Context) {
	var req submitPaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	date, err := parseDatePtr("payment_date", req.PaymentDate)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	p, err := h.paymentSvc(c).Submit(c.Request.Context(), services.SubmitPaymentInput{
		HostlerID:   req.HostlerID,
		Amount:      req.Amount,
		NumPayments: req.NumPayments,
		Proof:       req.Proof,
		PaymentDate: date,
	}, h.now())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toPayment(p))
}

// GET /api/payments?status=
func (h *Handler) ListPayments(c *gin.Context) {
	status, err := queryPaymentStatus(c)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	payments, err := h.paymentSvc(c).List(c.Request.Context(), status)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPayments(payments))
}

// GET /api/payments/:id
func (h *Handler) GetPayment(c *gin.Context) {
	p, err := h.paymentSvc(c).Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPayment(p))
}

// PUT /api/payments/:id/approve
// The body is optional; without one the cursor advances by the months paid.
func (h *Handler) ApprovePayment(c *gin.Context) {
	var req approvePaymentRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	next, err := parseDatePtr("next_payment_date", req.NextPaymentDate)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	p, hostler, err := h.paymentSvc(c).Approve(c.Request.Context(), c.Param("id"), services.ApprovePaymentInput{
		NextPaymentDate: next,
		Amount:          req.Amount,
		NumPayments:     req.NumPayments,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": toPayment(p), "hostler": toHostler(hostler)})
}

// PUT /api/payments/:id/reject
func (h *Handler) RejectPayment(c *gin.Context) {
	p, err := h.paymentSvc(c).Reject(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPayment(p))
}

// GET /api/payments/:id/receipt
func (h *Handler) GetPaymentReceipt(c *gin.Context) {
	pdf, filename, err := h.docsSvc(c).PaymentReceipt(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	sendPDF(c, pdf, filename)
}
