package services

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"hostel-backend/internal/domain"
	"hostel-backend/internal/domain/models"
	"hostel-backend/internal/repositories"
	"hostel-backend/internal/utils"
)

// RoomService owns rooms and their beds.
type RoomService struct {
	Rooms     repositories.RoomStore
	Hostlers  repositories.HostlerStore
	RequestID string
}

// RoomInput is the create/edit payload. BedNumbers wins over BedCount when
// both are given; an empty list defaults to "1".."BedCount".
type RoomInput struct {
	RoomNumber string
	BedCount   int
	BedNumbers []string
	Price      int64
	Toilet     string
}

type validRoom struct {
	number string
	beds   []string
	price  int64
	toilet domain.Toilet
}

func (in RoomInput) validate() (validRoom, error) {
	var out validRoom
	if out.number = strings.TrimSpace(in.RoomNumber); out.number == "" {
		return out, required("room_number")
	}
	if in.Price <= 0 {
		return out, domain.ValidationError{Field: "price", Code: domain.CodeInvalidPrice, Msg: "price must be positive"}
	}
	out.price = in.Price

	toilet, ok := domain.ParseToilet(in.Toilet)
	if !ok {
		return out, domain.ValidationError{Field: "toilet", Code: domain.CodeRequired, Msg: "toilet must be Yes or No"}
	}
	out.toilet = toilet

	beds, err := bedNumbers(in.BedCount, in.BedNumbers)
	if err != nil {
		return out, err
	}
	out.beds = beds
	return out, nil
}

func bedNumbers(count int, numbers []string) ([]string, error) {
	invalid := func(msg string) error {
		return domain.ValidationError{Field: "bed_numbers", Code: domain.CodeInvalidBeds, Msg: msg}
	}
	if len(numbers) == 0 {
		if count < 1 {
			return nil, invalid("a room needs at least one bed")
		}
		out := make([]string, count)
		for i := range out {
			out[i] = strconv.Itoa(i + 1)
		}
		return out, nil
	}
	if count != 0 && count != len(numbers) {
		return nil, invalid("bed count does not match the number of bed numbers")
	}
	out := make([]string, 0, len(numbers))
	seen := map[string]bool{}
	for _, n := range numbers {
		n = strings.TrimSpace(n)
		if n == "" {
			return nil, invalid("bed numbers must not be empty")
		}
		if seen[n] {
			return nil, invalid("bed number " + n + " is repeated")
		}
		seen[n] = true
		out = append(out, n)
	}
	return out, nil
}

func (s RoomService) CreateRoom(ctx context.Context, in RoomInput) (models.Room, error) {
	v, err := in.validate()
	if err != nil {
		return models.Room{}, err
	}
	if _, exists, err := s.Rooms.FindRoomByNumber(ctx, v.number); err != nil {
		return models.Room{}, err
	} else if exists {
		return models.Room{}, domain.ConflictError{Resource: "room", Code: domain.CodeDuplicateRoomNumber, Msg: "room number " + v.number + " already exists"}
	}

	room := models.Room{RoomNumber: v.number, Price: v.price, Toilet: v.toilet}
	for _, n := range v.beds {
		room.Beds = append(room.Beds, models.Bed{Number: n, Status: domain.BedVacant})
	}
	if err := s.Rooms.CreateRoom(ctx, &room); err != nil {
		return models.Room{}, err
	}
	utils.LogEventf(s.RequestID, "room", "create", "room_id=%s number=%s beds=%d", room.ID, room.RoomNumber, len(room.Beds))
	return room, nil
}

// EditRoomBeds rewrites the bed list position by position. Positions that
// survive keep their state; occupied beds can be neither dropped nor renamed.
func (s RoomService) EditRoomBeds(ctx context.Context, roomID string, in RoomInput) (models.Room, error) {
	current, err := s.Rooms.GetRoom(ctx, roomID)
	if err != nil {
		return models.Room{}, err
	}
	if len(in.BedNumbers) == 0 {
		in.BedNumbers = resizeBeds(current.Beds, in.BedCount)
	}
	v, err := in.validate()
	if err != nil {
		return models.Room{}, err
	}

	for attempt := 1; attempt <= maxAllocationAttempts; attempt++ {
		layout, err := planLayout(current, v)
		if err != nil {
			return models.Room{}, err
		}
		err = s.Rooms.UpdateLayout(ctx, layout)
		if err == nil {
			break
		}
		if !errors.Is(err, repositories.ErrStaleBed) {
			return models.Room{}, err
		}
		if attempt == maxAllocationAttempts {
			return models.Room{}, domain.ErrAllocationConflict()
		}
		utils.LogEventf(s.RequestID, "room", "edit", "room_id=%s bed conflict attempt=%d", roomID, attempt)
		if current, err = s.Rooms.GetRoom(ctx, roomID); err != nil {
			return models.Room{}, err
		}
	}

	if v.number != current.RoomNumber {
		if err := s.Hostlers.SetRoomNumber(ctx, roomID, v.number); err != nil {
			return models.Room{}, err
		}
	}
	utils.LogEventf(s.RequestID, "room", "edit", "room_id=%s number=%s beds=%d", roomID, v.number, len(v.beds))
	return s.Rooms.GetRoom(ctx, roomID)
}

// resizeBeds keeps the existing numbers for surviving positions and labels
// new slots with the next free integers. count 0 keeps the current size.
func resizeBeds(beds []models.Bed, count int) []string {
	if count < 0 {
		return nil
	}
	if count == 0 {
		count = len(beds)
	}
	out := make([]string, 0, count)
	used := map[string]bool{}
	for i := 0; i < count && i < len(beds); i++ {
		out = append(out, beds[i].Number)
		used[beds[i].Number] = true
	}
	for next := 1; len(out) < count; next++ {
		if n := strconv.Itoa(next); !used[n] {
			out = append(out, n)
			used[n] = true
		}
	}
	return out
}

func planLayout(current models.Room, v validRoom) (repositories.RoomLayout, error) {
	layout := repositories.RoomLayout{
		RoomID:     current.ID,
		RoomNumber: v.number,
		Price:      v.price,
		Toilet:     v.toilet,
	}
	for i, bed := range current.Beds {
		if i >= len(v.beds) {
			if bed.Status == domain.BedOccupied {
				return layout, domain.ConflictError{Resource: "bed", Code: domain.CodeBedOccupied, Msg: "bed " + bed.Number + " is occupied and cannot be removed"}
			}
			layout.Removed = append(layout.Removed, repositories.BedChange{Ref: bed.Ref(), ExpectedVersion: bed.Version, Status: domain.BedVacant})
			continue
		}
		if v.beds[i] == bed.Number {
			continue
		}
		if bed.Status == domain.BedOccupied {
			return layout, domain.ConflictError{Resource: "bed", Code: domain.CodeBedOccupied, Msg: "bed " + bed.Number + " is occupied and cannot be renamed"}
		}
		layout.Renamed = append(layout.Renamed, repositories.BedRename{Ref: bed.Ref(), ExpectedVersion: bed.Version, NewNumber: v.beds[i]})
	}
	for i := len(current.Beds); i < len(v.beds); i++ {
		layout.Added = append(layout.Added, models.Bed{Number: v.beds[i], Position: i, Status: domain.BedVacant})
	}
	return layout, nil
}

// DeleteRoom removes the room and its beds. Hostlers still pointing at it are
// left in place and reported by the reconciler.
func (s RoomService) DeleteRoom(ctx context.Context, roomID string) error {
	if _, err := s.Rooms.GetRoom(ctx, roomID); err != nil {
		return err
	}
	orphans, err := s.Hostlers.ListByRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if err := s.Rooms.DeleteRoom(ctx, roomID); err != nil {
		return err
	}
	if len(orphans) > 0 {
		utils.LogEventf(s.RequestID, "room", "delete", "room_id=%s orphaned_hostlers=%d", roomID, len(orphans))
	}
	return nil
}

// SetBedStatus writes one bed and the derived room status together. A nil
// occupantName keeps the current one; vacating always clears it. Beds held by
// a hostler only change through registration, reassignment or deletion.
func (s RoomService) SetBedStatus(ctx context.Context, roomID, bedNumber, status string, occupantName *string) (models.Room, error) {
	st, ok := domain.ParseBedStatus(status)
	if !ok {
		return models.Room{}, domain.ValidationError{Field: "status", Code: domain.CodeInvalidStatus, Msg: "status must be Vacant or Occupied"}
	}
	for attempt := 1; attempt <= maxAllocationAttempts; attempt++ {
		room, err := s.Rooms.GetRoom(ctx, roomID)
		if err != nil {
			return models.Room{}, err
		}
		bed, ok := room.FindBed(bedNumber)
		if !ok {
			return models.Room{}, domain.ErrBedNotFound(bedNumber)
		}
		if bed.HostlerID != "" {
			renamed := occupantName != nil && utils.NormalizeSpace(*occupantName) != bed.OccupantName
			if st == domain.BedVacant || renamed {
				return models.Room{}, domain.ConflictError{
					Resource: "bed",
					Code:     domain.CodeBedOccupied,
					Msg:      "bed " + bedNumber + " is held by a hostler; reassign or delete the hostler instead",
				}
			}
		}
		change := repositories.BedChange{
			Ref:             bed.Ref(),
			ExpectedVersion: bed.Version,
			Status:          st,
			HostlerID:       bed.HostlerID,
			OccupantName:    bed.OccupantName,
		}
		if occupantName != nil {
			change.OccupantName = utils.NormalizeSpace(*occupantName)
		}
		err = s.Rooms.ApplyBedChanges(ctx, []repositories.BedChange{change})
		if err == nil {
			return s.Rooms.GetRoom(ctx, roomID)
		}
		if !errors.Is(err, repositories.ErrStaleBed) {
			return models.Room{}, err
		}
	}
	return models.Room{}, domain.ErrAllocationConflict()
}

func (s RoomService) Get(ctx context.Context, roomID string) (models.Room, error) {
	return s.Rooms.GetRoom(ctx, roomID)
}

func (s RoomService) List(ctx context.Context) ([]models.Room, error) {
	return s.Rooms.ListRooms(ctx)
}

// ListBeds returns the beds of a room, optionally filtered by status.
func (s RoomService) ListBeds(ctx context.Context, roomID string, status *domain.BedStatus) ([]models.Bed, error) {
	room, err := s.Rooms.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	out := []models.Bed{}
	for _, b := range room.Beds {
		if status == nil || b.Status == *status {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s RoomService) ListVacantBeds(ctx context.Context, roomID string) ([]models.Bed, error) {
	vacant := domain.BedVacant
	return s.ListBeds(ctx, roomID, &vacant)
}

// OccupancySnapshot flattens every bed of every room.
func (s RoomService) OccupancySnapshot(ctx context.Context) ([]models.BedView, error) {
	rooms, err := s.Rooms.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	out := []models.BedView{}
	for _, r := range rooms {
		for _, b := range r.Beds {
			out = append(out, models.BedView{
				RoomID:       r.ID,
				RoomNumber:   r.RoomNumber,
				BedNumber:    b.Number,
				Status:       b.Status,
				OccupantName: b.OccupantName,
				HostlerID:    b.HostlerID,
			})
		}
	}
	return out, nil
}
