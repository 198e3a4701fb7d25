// Package billing computes recurring monthly obligations for a hostler.
// Everything here is pure: no I/O, and "now" is always an argument.
package billing

import (
	"time"

	"hostel-backend/internal/domain"
	"hostel-backend/internal/domain/models"
	"hostel-backend/internal/utils"
)

// Input is the data the calculator needs about one hostler.
type Input struct {
	JoiningDate     time.Time
	NextPaymentDate *time.Time
	Payments        []models.Payment
	Price           int64
}

// Summary is the billing view of one hostler at a given instant.
type Summary struct {
	DueDate       time.Time            `json:"-"`
	MonthsPending int                  `json:"months_pending"`
	PendingAmount int64                `json:"pending_amount"`
	MonthlyAmount int64                `json:"monthly_amount"`
	Status        domain.HostlerStatus `json:"status"`
}

// ResolveDueDate picks the due-date cursor by data completeness: the stored
// cursor, else the latest payment date + 1 month, else joining date + 1 month.
// Every payment counts as history whatever its status.
func ResolveDueDate(joiningDate time.Time, nextPaymentDate *time.Time, payments []models.Payment) time.Time {
	if nextPaymentDate != nil && !nextPaymentDate.IsZero() {
		return utils.DateOf(*nextPaymentDate)
	}
	if latest, ok := latestPayment(payments); ok {
		return utils.AddMonths(utils.DateOf(latest.PaymentDate), 1)
	}
	return utils.AddMonths(utils.DateOf(joiningDate), 1)
}

// ElapsedMonths counts whole months from due to now. A month only counts once
// now's day of month reaches due's day of month.
func ElapsedMonths(due, now time.Time) int {
	due, now = utils.DateOf(due), utils.DateOf(now)
	months := (now.Year()-due.Year())*12 + int(now.Month()) - int(due.Month())
	if now.Day() < due.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// MonthsPending is 0 while now <= due, otherwise the elapsed whole months plus
// the currently due month.
func MonthsPending(due, now time.Time) int {
	due, now = utils.DateOf(due), utils.DateOf(now)
	if !now.After(due) {
		return 0
	}
	return ElapsedMonths(due, now) + 1
}

// LastKnownAmount is the amount of the most recent payment as recorded, or
// price when there is no history. A multi-month payment is not divided.
func LastKnownAmount(payments []models.Payment, price int64) int64 {
	if latest, ok := latestPayment(payments); ok {
		return latest.Amount
	}
	return price
}

func PendingAmount(monthsPending int, lastKnownAmount int64) int64 {
	return int64(monthsPending) * lastKnownAmount
}

func StatusFor(monthsPending int) domain.HostlerStatus {
	if monthsPending > 0 {
		return domain.HostlerPending
	}
	return domain.HostlerPaid
}

// Summarize runs the full calculation for one hostler.
func Summarize(in Input, now time.Time) Summary {
	due := ResolveDueDate(in.JoiningDate, in.NextPaymentDate, in.Payments)
	pending := MonthsPending(due, now)
	monthly := LastKnownAmount(in.Payments, in.Price)
	return Summary{
		DueDate:       due,
		MonthsPending: pending,
		PendingAmount: PendingAmount(pending, monthly),
		MonthlyAmount: monthly,
		Status:        StatusFor(pending),
	}
}

// AdvanceCursor moves a due date forward by the number of months a payment covers.
func AdvanceCursor(due time.Time, months int) time.Time {
	if months < 1 {
		months = 1
	}
	return utils.AddMonths(utils.DateOf(due), months)
}

func latestPayment(payments []models.Payment) (models.Payment, bool) {
	var (
		out   models.Payment
		found bool
	)
	for _, p := range payments {
		if !found || p.PaymentDate.After(out.PaymentDate) ||
			(p.PaymentDate.Equal(out.PaymentDate) && p.CreatedAt.After(out.CreatedAt)) {
			out = p
			found = true
		}
	}
	return out, found
}
