package models

import (
	"time"

	"hostel-backend/internal/domain"
)

// Hostler is a resident assigned to exactly one bed.
type Hostler struct {
	ID              string
	Name            string
	Phone           string
	Aadhar          string
	Image           string
	RoomID          string
	RoomNumber      string
	BedNo           string
	Price           int64
	JoiningDate     time.Time
	NextPaymentDate *time.Time
	Status          domain.HostlerStatus
	CreatedAt       time.Time
}

func (h Hostler) BedRef() BedRef {
	return BedRef{RoomID: h.RoomID, BedNumber: h.BedNo}
}

// HostlerInput carries create/update fields. Nil pointers mean "keep".
type HostlerInput struct {
	Name            *string
	Phone           *string
	Aadhar          *string
	Image           *string
	RoomID          *string
	BedNo           *string
	Price           *int64
	JoiningDate     *time.Time
	NextPaymentDate *time.Time
}
