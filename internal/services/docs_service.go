package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"hostel-backend/internal/domain"
	"hostel-backend/internal/domain/models"
	"hostel-backend/internal/repositories"
	"hostel-backend/internal/utils"
)

// DocsService renders payment receipts and billing statements as PDF.
type DocsService struct {
	Payments  repositories.PaymentStore
	Hostlers  repositories.HostlerStore
	RequestID string
}

// PaymentReceipt renders one payment. Only approved payments get a receipt.
func (s DocsService) PaymentReceipt(ctx context.Context, paymentID string) ([]byte, string, error) {
	p, err := s.Payments.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, "", err
	}
	if p.Status != domain.PaymentPaid {
		return nil, "", domain.ConflictError{Resource: "payment", Code: domain.CodePaymentNotApproved, Msg: "receipt is only available for approved payments"}
	}
	h, err := s.Hostlers.GetHostler(ctx, p.HostlerID)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "docs", "receipt", "payment_id="+p.ID)
	return buildReceiptPDF(p, h)
}

// BillingStatement renders the hostler's dues as of now plus payment history.
func (s DocsService) BillingStatement(ctx context.Context, hostlerID string, now time.Time) ([]byte, string, error) {
	h, err := s.Hostlers.GetHostler(ctx, hostlerID)
	if err != nil {
		return nil, "", err
	}
	payments, err := s.Payments.ListPayments(ctx, repositories.PaymentFilter{HostlerID: h.ID})
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "docs", "statement", "hostler_id="+h.ID)
	return buildStatementPDF(summarize(h, payments, now), payments, now)
}

func buildReceiptPDF(p models.Payment, h models.Hostler) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Payment Receipt", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "PAYMENT RECEIPT")
	pdf.Ln(12)

	months := p.NumPayments
	if months < 1 {
		months = 1
	}
	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Receipt No   : RCP-%s", shortID(p.ID)),
		fmt.Sprintf("Payment Date : %s", utils.FormatDate(p.PaymentDate)),
		fmt.Sprintf("Hostler      : %s", safe(h.Name, "-")),
		fmt.Sprintf("Phone        : %s", safe(h.Phone, "-")),
		fmt.Sprintf("Room / Bed   : %s / %s", safe(h.RoomNumber, "-"), safe(h.BedNo, "-")),
		fmt.Sprintf("Months       : %d", months),
		fmt.Sprintf("Amount       : %s", utils.FormatRs(p.Amount)),
		fmt.Sprintf("Next Due     : %s", safe(utils.FormatDatePtr(h.NextPaymentDate), "-")),
	}
	for _, l := range lines {
		pdf.Cell(0, 7, l)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "This receipt confirms an approved payment. Keep it for your records.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("RECEIPT_%s_%s.pdf", shortID(p.ID), safeFilenamePart(h.Name))
	return buf.Bytes(), filename, nil
}

func buildStatementPDF(row HostlerBilling, payments []models.Payment, now time.Time) ([]byte, string, error) {
	h, b := row.Hostler, row.Billing

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Billing Statement", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "BILLING STATEMENT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	for _, l := range []string{
		fmt.Sprintf("As of          : %s", utils.FormatDate(now)),
		fmt.Sprintf("Hostler        : %s", safe(h.Name, "-")),
		fmt.Sprintf("Room / Bed     : %s / %s", safe(h.RoomNumber, "-"), safe(h.BedNo, "-")),
		fmt.Sprintf("Joined         : %s", utils.FormatDate(h.JoiningDate)),
		fmt.Sprintf("Due Date       : %s", utils.FormatDate(b.DueDate)),
		fmt.Sprintf("Months Pending : %d", b.MonthsPending),
		fmt.Sprintf("Monthly Amount : %s", utils.FormatRs(b.MonthlyAmount)),
		fmt.Sprintf("Pending Amount : %s", utils.FormatRs(b.PendingAmount)),
		fmt.Sprintf("Status         : %s", b.Status),
	} {
		pdf.Cell(0, 7, l)
		pdf.Ln(7)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Payment History")
	pdf.Ln(9)

	pdf.SetFont("Helvetica", "B", 10)
	widths := []float64{35, 40, 25, 40}
	for i, hdr := range []string{"Date", "Amount", "Months", "Status"} {
		pdf.CellFormat(widths[i], 7, hdr, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	if len(payments) == 0 {
		pdf.CellFormat(140, 7, "No payments recorded", "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}
	for _, p := range payments {
		months := p.NumPayments
		if months < 1 {
			months = 1
		}
		pdf.CellFormat(widths[0], 7, utils.FormatDate(p.PaymentDate), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, utils.FormatRs(p.Amount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, fmt.Sprintf("%d", months), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[3], 7, string(p.Status), "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("STATEMENT_%s_%s.pdf", safeFilenamePart(h.Name), now.Format("20060102"))
	return buf.Bytes(), filename, nil
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func shortID(id string) string {
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.ToUpper(id)
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
