package services

import (
	"context"
	"errors"
	"fmt"

	"hostel-backend/internal/domain"
	"hostel-backend/internal/domain/models"
	"hostel-backend/internal/repositories"
	"hostel-backend/internal/utils"
)

// Finding kinds reported by the reconciler.
const (
	FindingMissingRoom = "missing_room"
	FindingMissingBed  = "missing_bed"
	FindingBedVacant   = "bed_vacant"
	FindingBedUnlinked = "bed_unlinked"
	FindingBedTaken    = "bed_taken"
	FindingOrphanBed   = "orphan_bed"
	FindingStatusDrift = "status_drift"
)

type Finding struct {
	Kind      string `json:"kind"`
	RoomID    string `json:"room_id,omitempty"`
	BedNumber string `json:"bed_number,omitempty"`
	HostlerID string `json:"hostler_id,omitempty"`
	Detail    string `json:"detail"`
	Repaired  bool   `json:"repaired"`
}

type ReconcileReport struct {
	RoomsChecked    int       `json:"rooms_checked"`
	HostlersChecked int       `json:"hostlers_checked"`
	Findings        []Finding `json:"findings"`
	Repaired        int       `json:"repaired"`
}

// Reconciler finds records left inconsistent by an interrupted multi-record
// write and, when asked, repairs the unambiguous cases.
type Reconciler struct {
	Rooms     repositories.RoomStore
	Hostlers  repositories.HostlerStore
	RequestID string
}

func (s Reconciler) Reconcile(ctx context.Context, repair bool) (ReconcileReport, error) {
	rep := ReconcileReport{Findings: []Finding{}}

	rooms, err := s.Rooms.ListRooms(ctx)
	if err != nil {
		return rep, err
	}
	hostlers, err := s.Hostlers.ListHostlers(ctx, nil)
	if err != nil {
		return rep, err
	}
	rep.RoomsChecked, rep.HostlersChecked = len(rooms), len(hostlers)

	roomByID := make(map[string]models.Room, len(rooms))
	for _, r := range rooms {
		roomByID[r.ID] = r
	}
	hostlerByID := make(map[string]models.Hostler, len(hostlers))
	for _, h := range hostlers {
		hostlerByID[h.ID] = h
	}

	add := func(f Finding) {
		if f.Repaired {
			rep.Repaired++
		}
		rep.Findings = append(rep.Findings, f)
	}

	// hostler -> bed
	for _, h := range hostlers {
		room, ok := roomByID[h.RoomID]
		if !ok {
			add(Finding{Kind: FindingMissingRoom, RoomID: h.RoomID, HostlerID: h.ID, Detail: fmt.Sprintf("room %s no longer exists", h.RoomNumber)})
			continue
		}
		bed, ok := room.FindBed(h.BedNo)
		if !ok {
			add(Finding{Kind: FindingMissingBed, RoomID: room.ID, BedNumber: h.BedNo, HostlerID: h.ID, Detail: "bed no longer exists in room " + room.RoomNumber})
			continue
		}
		switch {
		case bed.Status == domain.BedVacant:
			f := Finding{Kind: FindingBedVacant, RoomID: room.ID, BedNumber: bed.Number, HostlerID: h.ID, Detail: "assigned bed is vacant"}
			if repair {
				f.Repaired, f.Detail = s.apply(ctx, f.Detail, occupy(bed, h))
			}
			add(f)
		case bed.HostlerID == "":
			f := Finding{Kind: FindingBedUnlinked, RoomID: room.ID, BedNumber: bed.Number, HostlerID: h.ID, Detail: "occupied bed has no hostler reference"}
			if repair {
				f.Repaired, f.Detail = s.apply(ctx, f.Detail, occupy(bed, h))
			}
			add(f)
		case bed.HostlerID != h.ID:
			add(Finding{Kind: FindingBedTaken, RoomID: room.ID, BedNumber: bed.Number, HostlerID: h.ID, Detail: "bed is held by hostler " + bed.HostlerID})
		}
	}

	// bed -> hostler
	for _, room := range rooms {
		for _, bed := range room.Beds {
			if bed.Status != domain.BedOccupied {
				continue
			}
			if bed.HostlerID == "" {
				// Walk-in occupants are set by hand, so only report them.
				if !claimedByOther(hostlers, room.ID, bed.Number) {
					add(Finding{Kind: FindingOrphanBed, RoomID: room.ID, BedNumber: bed.Number, Detail: fmt.Sprintf("occupied bed has no hostler (occupant %q)", bed.OccupantName)})
				}
				continue
			}
			h, ok := hostlerByID[bed.HostlerID]
			if ok && h.RoomID == room.ID && h.BedNo == bed.Number {
				continue
			}
			f := Finding{Kind: FindingOrphanBed, RoomID: room.ID, BedNumber: bed.Number, HostlerID: bed.HostlerID, Detail: "occupied bed is not referenced by its hostler"}
			if repair && !claimedByOther(hostlers, room.ID, bed.Number) {
				release := repositories.BedChange{Ref: bed.Ref(), ExpectedVersion: bed.Version, Status: domain.BedVacant}
				f.Repaired, f.Detail = s.apply(ctx, f.Detail, release)
			}
			add(f)
		}
	}

	// derived room status
	for _, room := range rooms {
		if derived := room.DerivedStatus(); room.Status != derived {
			f := Finding{Kind: FindingStatusDrift, RoomID: room.ID, Detail: fmt.Sprintf("stored %s, derived %s", room.Status, derived)}
			if repair {
				if err := s.Rooms.RecomputeRoomStatus(ctx, room.ID); err != nil {
					return rep, err
				}
				f.Repaired = true
			}
			add(f)
		}
	}

	utils.LogEventf(s.RequestID, "reconcile", "run", "rooms=%d hostlers=%d findings=%d repaired=%d", rep.RoomsChecked, rep.HostlersChecked, len(rep.Findings), rep.Repaired)
	return rep, nil
}

func occupy(bed models.Bed, h models.Hostler) repositories.BedChange {
	return repositories.BedChange{Ref: bed.Ref(), ExpectedVersion: bed.Version, Status: domain.BedOccupied, HostlerID: h.ID, OccupantName: h.Name}
}

// claimedByOther reports whether some hostler still points at the bed, in
// which case releasing it would strand that hostler.
func claimedByOther(hostlers []models.Hostler, roomID, bedNumber string) bool {
	for _, h := range hostlers {
		if h.RoomID == roomID && h.BedNo == bedNumber {
			return true
		}
	}
	return false
}

// apply writes one repair. A version conflict means the bed moved since the
// scan; the finding stays unrepaired for the next run.
func (s Reconciler) apply(ctx context.Context, detail string, ch repositories.BedChange) (bool, string) {
	err := s.Rooms.ApplyBedChanges(ctx, []repositories.BedChange{ch})
	switch {
	case err == nil:
		return true, detail
	case errors.Is(err, repositories.ErrStaleBed):
		return false, detail + " (bed changed during reconcile)"
	default:
		utils.LogEventf(s.RequestID, "reconcile", "repair", "bed %s/%s: %v", ch.Ref.RoomID, ch.Ref.BedNumber, err)
		return false, detail + ": " + err.Error()
	}
}
