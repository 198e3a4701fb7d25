package services

import (
	"context"
	"strings"
	"time"

	"hostel-backend/internal/billing"
	"hostel-backend/internal/domain"
	"hostel-backend/internal/domain/models"
	"hostel-backend/internal/repositories"
	"hostel-backend/internal/utils"
)

// PaymentService is the append-only payment ledger. A payment changes state
// once, from Pending to Paid or Rejected.
type PaymentService struct {
	Payments  repositories.PaymentStore
	Hostlers  repositories.HostlerStore
	RequestID string
}

type SubmitPaymentInput struct {
	HostlerID   string
	Amount      int64
	NumPayments int
	Proof       string
	PaymentDate *time.Time
}

// ApprovePaymentInput overrides the submitted values when set. A nil
// NextPaymentDate advances the cursor by the months the payment covers.
type ApprovePaymentInput struct {
	NextPaymentDate *time.Time
	Amount          *int64
	NumPayments     *int
}

// PaymentReport lists payments in a date range with the revenue of the Paid ones.
type PaymentReport struct {
	From         *time.Time
	To           *time.Time
	Payments     []models.Payment
	Count        int
	PaidCount    int
	TotalRevenue int64
}

func invalidAmount() error {
	return domain.ValidationError{Field: "amount", Code: domain.CodeInvalidAmount, Msg: "amount must be positive"}
}

func invalidNumPayments() error {
	return domain.ValidationError{Field: "num_payments", Code: domain.CodeInvalidAmount, Msg: "num_payments must be at least 1"}
}

func (s PaymentService) Submit(ctx context.Context, in SubmitPaymentInput, now time.Time) (models.Payment, error) {
	if strings.TrimSpace(in.HostlerID) == "" {
		return models.Payment{}, required("hostler_id")
	}
	if in.Amount <= 0 {
		return models.Payment{}, invalidAmount()
	}
	if in.NumPayments == 0 {
		in.NumPayments = 1
	}
	if in.NumPayments < 1 {
		return models.Payment{}, invalidNumPayments()
	}
	h, err := s.Hostlers.GetHostler(ctx, in.HostlerID)
	if err != nil {
		return models.Payment{}, err
	}

	date := utils.DateOf(now)
	if in.PaymentDate != nil && !in.PaymentDate.IsZero() {
		date = utils.DateOf(*in.PaymentDate)
	}
	p := models.Payment{
		HostlerID:   h.ID,
		HostlerName: h.Name,
		Amount:      in.Amount,
		NumPayments: in.NumPayments,
		PaymentDate: date,
		Status:      domain.PaymentPending,
		Proof:       strings.TrimSpace(in.Proof),
	}
	if err := s.Payments.CreatePayment(ctx, &p); err != nil {
		return models.Payment{}, err
	}
	utils.LogEventf(s.RequestID, "payment", "submit", "payment_id=%s hostler_id=%s amount=%d months=%d", p.ID, h.ID, p.Amount, p.NumPayments)
	return p, nil
}

func (s PaymentService) pending(ctx context.Context, id string) (models.Payment, error) {
	p, err := s.Payments.GetPayment(ctx, id)
	if err != nil {
		return p, err
	}
	if p.Status != domain.PaymentPending {
		return p, domain.ConflictError{Resource: "payment", Code: domain.CodePaymentNotPending, Msg: "payment is already " + strings.ToLower(string(p.Status))}
	}
	return p, nil
}

// Approve marks the payment Paid and moves the hostler's due-date cursor.
func (s PaymentService) Approve(ctx context.Context, id string, in ApprovePaymentInput) (models.Payment, models.Hostler, error) {
	p, err := s.pending(ctx, id)
	if err != nil {
		return models.Payment{}, models.Hostler{}, err
	}
	if in.Amount != nil {
		if *in.Amount <= 0 {
			return models.Payment{}, models.Hostler{}, invalidAmount()
		}
		p.Amount = *in.Amount
	}
	if in.NumPayments != nil {
		if *in.NumPayments < 1 {
			return models.Payment{}, models.Hostler{}, invalidNumPayments()
		}
		p.NumPayments = *in.NumPayments
	}

	h, err := s.Hostlers.GetHostler(ctx, p.HostlerID)
	if err != nil {
		return models.Payment{}, models.Hostler{}, err
	}

	var next time.Time
	if in.NextPaymentDate != nil && !in.NextPaymentDate.IsZero() {
		next = utils.DateOf(*in.NextPaymentDate)
	} else {
		history, err := s.Payments.ListPayments(ctx, repositories.PaymentFilter{HostlerID: h.ID})
		if err != nil {
			return models.Payment{}, models.Hostler{}, err
		}
		due := billing.ResolveDueDate(h.JoiningDate, h.NextPaymentDate, history)
		next = billing.AdvanceCursor(due, p.NumPayments)
	}

	prev := p
	p.Status = domain.PaymentPaid
	if err := s.Payments.UpdatePayment(ctx, p); err != nil {
		return models.Payment{}, models.Hostler{}, err
	}

	h.NextPaymentDate = &next
	h.Status = domain.HostlerPaid
	if err := s.Hostlers.UpdateHostler(ctx, h); err != nil {
		if rbErr := s.Payments.UpdatePayment(ctx, prev); rbErr != nil {
			utils.LogEventf(s.RequestID, "payment", "approve", "payment_id=%s revert failed: %v", p.ID, rbErr)
		}
		return models.Payment{}, models.Hostler{}, err
	}

	utils.LogEventf(s.RequestID, "payment", "approve", "payment_id=%s hostler_id=%s next_due=%s", p.ID, h.ID, utils.FormatDate(next))
	return p, h, nil
}

func (s PaymentService) Reject(ctx context.Context, id string) (models.Payment, error) {
	p, err := s.pending(ctx, id)
	if err != nil {
		return models.Payment{}, err
	}
	p.Status = domain.PaymentRejected
	if err := s.Payments.UpdatePayment(ctx, p); err != nil {
		return models.Payment{}, err
	}
	utils.LogEventf(s.RequestID, "payment", "reject", "payment_id=%s hostler_id=%s", p.ID, p.HostlerID)
	return p, nil
}

func (s PaymentService) Get(ctx context.Context, id string) (models.Payment, error) {
	return s.Payments.GetPayment(ctx, id)
}

func (s PaymentService) List(ctx context.Context, status *domain.PaymentStatus) ([]models.Payment, error) {
	return s.Payments.ListPayments(ctx, repositories.PaymentFilter{Status: status})
}

// ListByHostler is the payment history of one hostler, newest first.
func (s PaymentService) ListByHostler(ctx context.Context, hostlerID string) ([]models.Payment, error) {
	if _, err := s.Hostlers.GetHostler(ctx, hostlerID); err != nil {
		return nil, err
	}
	return s.Payments.ListPayments(ctx, repositories.PaymentFilter{HostlerID: hostlerID})
}

// Report returns payments whose date falls in [from, to], both inclusive
// calendar days.
func (s PaymentService) Report(ctx context.Context, from, to *time.Time) (PaymentReport, error) {
	f := repositories.PaymentFilter{}
	rep := PaymentReport{}
	if from != nil {
		start := utils.DateOf(*from)
		f.From, rep.From = &start, &start
	}
	if to != nil {
		day := utils.DateOf(*to)
		end := day.AddDate(0, 0, 1).Add(-time.Second)
		f.To, rep.To = &end, &day
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return rep, domain.ValidationError{Field: "from", Code: domain.CodeInvalidDate, Msg: "from must not be after to"}
	}

	payments, err := s.Payments.ListPayments(ctx, f)
	if err != nil {
		return rep, err
	}
	rep.Payments = payments
	rep.Count = len(payments)
	for _, p := range payments {
		if p.Status == domain.PaymentPaid {
			rep.PaidCount++
			rep.TotalRevenue += p.Amount
		}
	}
	return rep, nil
}
