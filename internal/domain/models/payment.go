package models

import (
	"time"

	"hostel-backend/internal/domain"
)

// Payment is one submission in the append-only ledger.
type Payment struct {
	ID          string
	HostlerID   string
	HostlerName string
	Amount      int64
	NumPayments int
	PaymentDate time.Time
	Status      domain.PaymentStatus
	Proof       string
	CreatedAt   time.Time
}
