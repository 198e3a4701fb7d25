package models

import (
	"time"

	"hostel-backend/internal/domain"
)

// Room groups beds under one room number and monthly price.
type Room struct {
	ID         string
	RoomNumber string
	Beds       []Bed
	Price      int64
	Toilet     domain.Toilet
	Status     domain.RoomStatus
	CreatedAt  time.Time
}

// Bed is addressed by the stable key (RoomID, Number). Version is bumped on
// every write and guards conditional updates.
type Bed struct {
	ID           string
	RoomID       string
	Number       string
	Position     int
	Status       domain.BedStatus
	HostlerID    string
	OccupantName string
	Version      int64
}

// BedRef is the stable address of a bed.
type BedRef struct {
	RoomID    string
	BedNumber string
}

func (b Bed) Ref() BedRef {
	return BedRef{RoomID: b.RoomID, BedNumber: b.Number}
}

// FindBed returns the bed with the given number.
func (r Room) FindBed(number string) (Bed, bool) {
	for _, b := range r.Beds {
		if b.Number == number {
			return b, true
		}
	}
	return Bed{}, false
}

// DerivedStatus recomputes the room status from its beds.
func (r Room) DerivedStatus() domain.RoomStatus {
	statuses := make([]domain.BedStatus, 0, len(r.Beds))
	for _, b := range r.Beds {
		statuses = append(statuses, b.Status)
	}
	return domain.DeriveRoomStatus(statuses)
}

// BedView is one row of the flattened occupancy snapshot.
type BedView struct {
	RoomID       string           `json:"room_id"`
	RoomNumber   string           `json:"room_number"`
	BedNumber    string           `json:"bed_number"`
	Status       domain.BedStatus `json:"status"`
	OccupantName string           `json:"occupant_name,omitempty"`
	HostlerID    string           `json:"hostler_id,omitempty"`
}
