package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"hostel-backend/internal/domain"
)

var paymentCols = []string{"id", "hostler_id", "hostler_name", "amount", "num_payments", "payment_date", "status", "proof", "created_at"}

func TestListPaymentsBuildsFilter(t *testing.T) {
	mock, _, _, payments := newMock(t)
	status := domain.PaymentPaid
	paid := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM payments WHERE hostler_id=? AND status=? ORDER BY payment_date DESC")).
		WithArgs("h1", "Paid").
		WillReturnRows(sqlmock.NewRows(paymentCols).
			AddRow("p1", "h1", "Asha", 12000, 2, paid, "Paid", "", paid))

	out, err := payments.ListPayments(context.Background(), PaymentFilter{HostlerID: "h1", Status: &status})
	if err != nil {
		t.Fatalf("ListPayments returned error: %v", err)
	}
	if len(out) != 1 || out[0].Amount != 12000 || out[0].NumPayments != 2 {
		t.Fatalf("unexpected payments %+v", out)
	}
}

func TestDeleteByHostlerCountsRows(t *testing.T) {
	mock, _, _, payments := newMock(t)
	mock.ExpectExec("DELETE FROM payments WHERE hostler_id").WithArgs("h1").WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := payments.DeleteByHostler(context.Background(), "h1")
	if err != nil || n != 2 {
		t.Fatalf("expected 2 deleted, got %d (%v)", n, err)
	}
}
