package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"hostel-backend/internal/domain"
	"hostel-backend/internal/domain/models"
	"hostel-backend/internal/repositories"
	"hostel-backend/internal/utils"
)

// maxAllocationAttempts bounds the optimistic retry loop on bed versions.
const maxAllocationAttempts = 3

// AllocationService performs every mutation that touches a hostler and a bed
// together. Bed writes are version checked; writes that follow a successful
// bed batch are compensated with the inverse batch when they fail.
type AllocationService struct {
	Rooms     repositories.RoomStore
	Hostlers  repositories.HostlerStore
	Payments  repositories.PaymentStore
	RequestID string
}

func (s AllocationService) directory() HostlerService {
	return HostlerService{Hostlers: s.Hostlers, RequestID: s.RequestID}
}

// RegisterHostler occupies the requested bed, writes the hostler and its
// first Pending payment stub dated at the joining date.
func (s AllocationService) RegisterHostler(ctx context.Context, in models.HostlerInput) (models.Hostler, error) {
	h, err := s.directory().PrepareNew(ctx, in)
	if err != nil {
		return models.Hostler{}, err
	}
	room, err := s.Rooms.GetRoom(ctx, h.RoomID)
	if err != nil {
		return models.Hostler{}, err
	}
	h.RoomNumber = room.RoomNumber
	if h.Price == 0 {
		h.Price = room.Price
	}
	h.ID = uuid.NewString()

	target := h.BedRef()
	undo, err := s.moveBed(ctx, nil, &target, h)
	if err != nil {
		return models.Hostler{}, err
	}

	if err := s.Hostlers.CreateHostler(ctx, &h); err != nil {
		s.compensate(ctx, "register", undo)
		return models.Hostler{}, err
	}

	stub := models.Payment{
		HostlerID:   h.ID,
		HostlerName: h.Name,
		Amount:      h.Price,
		NumPayments: 1,
		PaymentDate: h.JoiningDate,
		Status:      domain.PaymentPending,
	}
	if err := s.Payments.CreatePayment(ctx, &stub); err != nil {
		if delErr := s.Hostlers.DeleteHostler(ctx, h.ID); delErr != nil {
			utils.LogEventf(s.RequestID, "allocation", "register", "rollback hostler_id=%s failed: %v", h.ID, delErr)
		}
		s.compensate(ctx, "register", undo)
		return models.Hostler{}, err
	}

	utils.LogEventf(s.RequestID, "allocation", "register", "hostler_id=%s room=%s bed=%s", h.ID, h.RoomNumber, h.BedNo)
	return h, nil
}

// EditHostler applies a partial update. When the bed changes the old bed is
// released and the new one occupied in a single batch.
func (s AllocationService) EditHostler(ctx context.Context, id string, in models.HostlerInput) (models.Hostler, error) {
	old, h, err := s.directory().PrepareUpdate(ctx, id, in)
	if err != nil {
		return models.Hostler{}, err
	}

	var undo []repositories.BedChange
	from, to := old.BedRef(), h.BedRef()
	switch {
	case from != to:
		room, err := s.Rooms.GetRoom(ctx, h.RoomID)
		if err != nil {
			return models.Hostler{}, err
		}
		h.RoomNumber = room.RoomNumber
		if in.Price == nil && h.RoomID != old.RoomID {
			h.Price = room.Price
		}
		if undo, err = s.moveBed(ctx, &from, &to, h); err != nil {
			return models.Hostler{}, err
		}
	case h.Name != old.Name:
		// same bed, refresh the occupant display name
		if undo, err = s.moveBed(ctx, nil, &to, h); err != nil {
			return models.Hostler{}, err
		}
	}

	if err := s.Hostlers.UpdateHostler(ctx, h); err != nil {
		s.compensate(ctx, "edit", undo)
		return models.Hostler{}, err
	}
	if from != to {
		utils.LogEventf(s.RequestID, "allocation", "edit", "hostler_id=%s moved %s/%s -> %s/%s", h.ID, old.RoomNumber, from.BedNumber, h.RoomNumber, to.BedNumber)
	}
	return h, nil
}

// DeleteHostler releases the hostler's bed, removes the record and purges
// exactly its payments.
func (s AllocationService) DeleteHostler(ctx context.Context, id string) error {
	h, err := s.Hostlers.GetHostler(ctx, id)
	if err != nil {
		return err
	}
	from := h.BedRef()
	undo, err := s.moveBed(ctx, &from, nil, h)
	if err != nil {
		return err
	}
	if err := s.Hostlers.DeleteHostler(ctx, id); err != nil {
		s.compensate(ctx, "delete", undo)
		return err
	}
	n, err := s.Payments.DeleteByHostler(ctx, id)
	if err != nil {
		utils.LogEventf(s.RequestID, "allocation", "delete", "hostler_id=%s payments purge failed: %v", id, err)
		return err
	}
	utils.LogEventf(s.RequestID, "allocation", "delete", "hostler_id=%s payments_purged=%d", id, n)
	return nil
}

// moveBed releases from (when set and different from to) and occupies to
// (when set) for h, retrying on version conflicts. It returns the batch that
// undoes what was applied.
func (s AllocationService) moveBed(ctx context.Context, from, to *models.BedRef, h models.Hostler) ([]repositories.BedChange, error) {
	for attempt := 1; attempt <= maxAllocationAttempts; attempt++ {
		changes, undo, err := s.planMove(ctx, from, to, h)
		if err != nil {
			return nil, err
		}
		if len(changes) == 0 {
			return nil, nil
		}
		err = s.Rooms.ApplyBedChanges(ctx, changes)
		if err == nil {
			return undo, nil
		}
		if !errors.Is(err, repositories.ErrStaleBed) {
			return nil, err
		}
		utils.LogEventf(s.RequestID, "allocation", "bed_conflict", "hostler_id=%s attempt=%d", h.ID, attempt)
	}
	return nil, domain.ErrAllocationConflict()
}

// planMove reads current bed state and builds the version-checked batch.
// Release comes first so moves inside one room never show two occupants.
func (s AllocationService) planMove(ctx context.Context, from, to *models.BedRef, h models.Hostler) (changes, undo []repositories.BedChange, err error) {
	if from != nil && (to == nil || *from != *to) {
		room, err := s.Rooms.GetRoom(ctx, from.RoomID)
		switch {
		case domain.IsNotFound(err):
			utils.LogEventf(s.RequestID, "allocation", "release", "hostler_id=%s room %s missing, nothing to release", h.ID, from.RoomID)
		case err != nil:
			return nil, nil, err
		default:
			bed, ok := room.FindBed(from.BedNumber)
			if ok && bed.Status == domain.BedOccupied && (bed.HostlerID == h.ID || bed.HostlerID == "") {
				changes = append(changes, repositories.BedChange{Ref: bed.Ref(), ExpectedVersion: bed.Version, Status: domain.BedVacant})
				undo = append(undo, inverse(bed))
			} else {
				utils.LogEventf(s.RequestID, "allocation", "release", "hostler_id=%s bed %s/%s not held, skipped", h.ID, room.RoomNumber, from.BedNumber)
			}
		}
	}

	if to != nil {
		room, err := s.Rooms.GetRoom(ctx, to.RoomID)
		if err != nil {
			return nil, nil, err
		}
		bed, ok := room.FindBed(to.BedNumber)
		if !ok {
			return nil, nil, domain.ErrBedNotFound(to.BedNumber)
		}
		if bed.Status == domain.BedOccupied && bed.HostlerID != h.ID {
			return nil, nil, domain.ErrBedUnavailable(fmt.Sprintf("%s/%s", room.RoomNumber, bed.Number))
		}
		changes = append(changes, repositories.BedChange{
			Ref:             bed.Ref(),
			ExpectedVersion: bed.Version,
			Status:          domain.BedOccupied,
			HostlerID:       h.ID,
			OccupantName:    h.Name,
		})
		undo = append([]repositories.BedChange{inverse(bed)}, undo...)
	}
	return changes, undo, nil
}

// inverse restores bed to its current state after one successful write.
func inverse(bed models.Bed) repositories.BedChange {
	return repositories.BedChange{
		Ref:             bed.Ref(),
		ExpectedVersion: bed.Version + 1,
		Status:          bed.Status,
		HostlerID:       bed.HostlerID,
		OccupantName:    bed.OccupantName,
	}
}

// compensate applies an undo batch. Failure leaves the inconsistency to the
// reconciler and is only logged.
func (s AllocationService) compensate(ctx context.Context, action string, undo []repositories.BedChange) {
	if len(undo) == 0 {
		return
	}
	if err := s.Rooms.ApplyBedChanges(ctx, undo); err != nil {
		utils.LogEventf(s.RequestID, "allocation", action, "compensation failed, run reconcile: %v", err)
		return
	}
	utils.LogEvent(s.RequestID, "allocation", action, "bed changes compensated")
}
