package billing

import (
	"testing"
	"time"

	"hostel-backend/internal/domain"
	"hostel-backend/internal/domain/models"
	"hostel-backend/internal/utils"
)

func d(y int, m time.Month, day int) time.Time { return utils.Date(y, m, day) }

func TestResolveDueDatePrefersCursor(t *testing.T) {
	cursor := d(2025, 5, 10)
	payments := []models.Payment{{PaymentDate: d(2025, 7, 1), Status: domain.PaymentPaid}}

	got := ResolveDueDate(d(2025, 1, 1), &cursor, payments)
	if !got.Equal(cursor) {
		t.Fatalf("expected cursor %v, got %v", cursor, got)
	}
}

func TestResolveDueDateFallsBackToLatestPayment(t *testing.T) {
	payments := []models.Payment{
		{PaymentDate: d(2025, 2, 3), Status: domain.PaymentPaid},
		{PaymentDate: d(2025, 3, 31), Status: domain.PaymentPending},
		{PaymentDate: d(2025, 6, 1), Status: domain.PaymentRejected},
	}

	got := ResolveDueDate(d(2025, 1, 1), nil, payments)
	if want := d(2025, 7, 1); !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	// month-end clamp from the latest payment
	got = ResolveDueDate(d(2025, 1, 1), nil, payments[:2])
	if want := d(2025, 4, 30); !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestResolveDueDateFallsBackToJoiningDate(t *testing.T) {
	got := ResolveDueDate(d(2024, 1, 31), nil, nil)
	if want := d(2024, 2, 29); !got.Equal(want) {
		t.Fatalf("expected leap-year clamp %v, got %v", want, got)
	}
}

func TestResolveDueDateIdempotent(t *testing.T) {
	payments := []models.Payment{{PaymentDate: d(2025, 8, 31), Status: domain.PaymentPaid}}
	first := ResolveDueDate(d(2025, 1, 1), nil, payments)
	second := ResolveDueDate(d(2025, 1, 1), nil, payments)
	if !first.Equal(second) {
		t.Fatalf("resolve not idempotent: %v vs %v", first, second)
	}
}

func TestMonthsPending(t *testing.T) {
	cases := []struct {
		name    string
		due     time.Time
		now     time.Time
		elapsed int
		pending int
	}{
		{"same day", d(2025, 6, 15), d(2025, 6, 15), 0, 0},
		{"before due", d(2025, 6, 15), d(2025, 6, 10), 0, 0},
		{"current month due", d(2025, 6, 15), d(2025, 6, 20), 0, 1},
		{"one day after due", d(2025, 6, 15), d(2025, 6, 16), 0, 1},
		{"boundary not crossed", d(2025, 6, 15), d(2025, 7, 14), 0, 1},
		{"one month and a day", d(2025, 6, 15), d(2025, 7, 16), 1, 2},
		{"month end clamp", d(2025, 1, 31), d(2025, 3, 1), 1, 2},
		{"across year", d(2024, 11, 5), d(2025, 2, 5), 3, 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ElapsedMonths(tc.due, tc.now); got != tc.elapsed {
				t.Fatalf("ElapsedMonths = %d, want %d", got, tc.elapsed)
			}
			if got := MonthsPending(tc.due, tc.now); got != tc.pending {
				t.Fatalf("MonthsPending = %d, want %d", got, tc.pending)
			}
		})
	}
}

func TestMonthsPendingIgnoresTimeOfDay(t *testing.T) {
	due := d(2025, 6, 15)
	now := time.Date(2025, 6, 15, 23, 59, 0, 0, time.UTC)
	if got := MonthsPending(due, now); got != 0 {
		t.Fatalf("expected 0 on the due date itself, got %d", got)
	}
}

func TestLastKnownAmount(t *testing.T) {
	if got := LastKnownAmount(nil, 5000); got != 5000 {
		t.Fatalf("expected price fallback, got %d", got)
	}
	payments := []models.Payment{
		{Amount: 4000, PaymentDate: d(2025, 1, 1), Status: domain.PaymentPaid},
		{Amount: 15000, NumPayments: 3, PaymentDate: d(2025, 3, 1), Status: domain.PaymentPaid},
	}
	if got := LastKnownAmount(payments, 4000); got != 15000 {
		t.Fatalf("expected the latest amount as recorded, got %d", got)
	}
	payments = append(payments, models.Payment{Amount: 3500, PaymentDate: d(2025, 4, 1), Status: domain.PaymentRejected})
	if got := LastKnownAmount(payments, 4000); got != 3500 {
		t.Fatalf("expected the latest payment whatever its status, got %d", got)
	}
}

func TestSummarize(t *testing.T) {
	cursor := d(2025, 6, 15)
	in := Input{JoiningDate: d(2025, 5, 15), NextPaymentDate: &cursor, Price: 6000}

	paid := Summarize(in, d(2025, 6, 10))
	if paid.Status != domain.HostlerPaid || paid.MonthsPending != 0 || paid.PendingAmount != 0 {
		t.Fatalf("unexpected summary before due: %+v", paid)
	}

	late := Summarize(in, d(2025, 8, 20))
	if late.MonthsPending != 3 {
		t.Fatalf("expected 3 months pending, got %d", late.MonthsPending)
	}
	if late.PendingAmount != 18000 || late.Status != domain.HostlerPending {
		t.Fatalf("unexpected summary: %+v", late)
	}
	if !late.DueDate.Equal(cursor) {
		t.Fatalf("due date should be the cursor, got %v", late.DueDate)
	}
}

func TestAdvanceCursor(t *testing.T) {
	if got := AdvanceCursor(d(2025, 1, 31), 1); !got.Equal(d(2025, 2, 28)) {
		t.Fatalf("unexpected advance: %v", got)
	}
	if got := AdvanceCursor(d(2025, 11, 30), 3); !got.Equal(d(2026, 2, 28)) {
		t.Fatalf("unexpected multi-month advance: %v", got)
	}
	if got := AdvanceCursor(d(2025, 3, 10), 0); !got.Equal(d(2025, 4, 10)) {
		t.Fatalf("zero months should advance one month, got %v", got)
	}
}
