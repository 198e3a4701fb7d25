package domain

import "strings"

// BedStatus is the occupancy flag of a single bed.
type BedStatus string

const (
	BedVacant   BedStatus = "Vacant"
	BedOccupied BedStatus = "Occupied"
)

// RoomStatus is derived from bed state: Full iff every bed is occupied.
type RoomStatus string

const (
	RoomAvailable RoomStatus = "Available"
	RoomFull      RoomStatus = "Full"
)

// HostlerStatus is a cached billing status; the billing calculator is authoritative.
type HostlerStatus string

const (
	HostlerPending HostlerStatus = "Pending"
	HostlerPaid    HostlerStatus = "Paid"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "Pending"
	PaymentPaid     PaymentStatus = "Paid"
	PaymentRejected PaymentStatus = "Rejected"
)

// Toilet is a yes/no flag stored as an enum.
type Toilet string

const (
	ToiletYes Toilet = "Yes"
	ToiletNo  Toilet = "No"
)

// ParseBedStatus accepts the canonical values case-insensitively.
func ParseBedStatus(s string) (BedStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vacant":
		return BedVacant, true
	case "occupied":
		return BedOccupied, true
	}
	return "", false
}

func ParseHostlerStatus(s string) (HostlerStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return HostlerPending, true
	case "paid":
		return HostlerPaid, true
	}
	return "", false
}

func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return PaymentPending, true
	case "paid", "approved":
		return PaymentPaid, true
	case "rejected":
		return PaymentRejected, true
	}
	return "", false
}

func ParseToilet(s string) (Toilet, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true":
		return ToiletYes, true
	case "no", "n", "false":
		return ToiletNo, true
	}
	return "", false
}

// DeriveRoomStatus returns Full iff every bed is occupied.
func DeriveRoomStatus(statuses []BedStatus) RoomStatus {
	if len(statuses) == 0 {
		return RoomAvailable
	}
	for _, s := range statuses {
		if s != BedOccupied {
			return RoomAvailable
		}
	}
	return RoomFull
}
