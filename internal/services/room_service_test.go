package services

import (
	"context"
	"testing"

	"hostel-backend/internal/domain"
)

func TestCreateRoomDefaultsBedNumbers(t *testing.T) {
	f := newFixture()
	room, err := f.rooms.CreateRoom(context.Background(), RoomInput{RoomNumber: " 101 ", BedCount: 3, Price: 5000, Toilet: "no"})
	if err != nil {
		t.Fatalf("CreateRoom returned error: %v", err)
	}
	if room.RoomNumber != "101" || room.Toilet != domain.ToiletNo || room.Status != domain.RoomAvailable {
		t.Fatalf("unexpected room %+v", room)
	}
	for i, want := range []string{"1", "2", "3"} {
		if room.Beds[i].Number != want || room.Beds[i].Status != domain.BedVacant {
			t.Fatalf("bed %d = %+v, want %s vacant", i, room.Beds[i], want)
		}
	}
}

func TestCreateRoomValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.room(t, "101", 5000, "A")

	cases := []struct {
		name string
		in   RoomInput
		code string
	}{
		{"duplicate", RoomInput{RoomNumber: "101", BedCount: 1, Price: 5000, Toilet: "Yes"}, domain.CodeDuplicateRoomNumber},
		{"no beds", RoomInput{RoomNumber: "102", Price: 5000, Toilet: "Yes"}, domain.CodeInvalidBeds},
		{"count mismatch", RoomInput{RoomNumber: "102", BedCount: 3, BedNumbers: []string{"A", "B"}, Price: 5000, Toilet: "Yes"}, domain.CodeInvalidBeds},
		{"repeated bed", RoomInput{RoomNumber: "102", BedNumbers: []string{"A", "A"}, Price: 5000, Toilet: "Yes"}, domain.CodeInvalidBeds},
		{"zero price", RoomInput{RoomNumber: "102", BedCount: 1, Price: 0, Toilet: "Yes"}, domain.CodeInvalidPrice},
		{"missing number", RoomInput{BedCount: 1, Price: 5000, Toilet: "Yes"}, domain.CodeRequired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.rooms.CreateRoom(ctx, tc.in)
			expectCode(t, err, tc.code)
		})
	}
}

func TestEditRoomBedsKeepsSurvivingState(t *testing.T) {
	f := newFixture()
	room := f.room(t, "101", 5000, "1")
	h := f.register(t, "Asha", "9876543210", "123412341234", room, "1", day(2025, 1, 1))
	if f.roomStatus(t, room.ID) != domain.RoomFull {
		t.Fatalf("precondition: room should be Full")
	}

	got, err := f.rooms.EditRoomBeds(context.Background(), room.ID, RoomInput{RoomNumber: "101", BedCount: 3, Price: 5500, Toilet: "Yes"})
	if err != nil {
		t.Fatalf("EditRoomBeds returned error: %v", err)
	}
	if len(got.Beds) != 3 || got.Beds[0].HostlerID != h.ID || got.Beds[1].Status != domain.BedVacant || got.Beds[2].Number != "3" {
		t.Fatalf("unexpected beds %+v", got.Beds)
	}
	if got.Status != domain.RoomAvailable || got.Price != 5500 {
		t.Fatalf("unexpected room %+v", got)
	}
	stored, _ := f.store.GetHostler(context.Background(), h.ID)
	if stored.Price != 5000 {
		t.Fatalf("room price edit must not touch hostler price, got %d", stored.Price)
	}
}

func TestEditRoomBedsRefusesOccupiedChanges(t *testing.T) {
	f := newFixture()
	room := f.room(t, "101", 5000, "A", "B")
	f.register(t, "Asha", "9876543210", "123412341234", room, "B", day(2025, 1, 1))
	ctx := context.Background()

	_, err := f.rooms.EditRoomBeds(ctx, room.ID, RoomInput{RoomNumber: "101", BedNumbers: []string{"A"}, Price: 5000, Toilet: "Yes"})
	expectCode(t, err, domain.CodeBedOccupied)

	_, err = f.rooms.EditRoomBeds(ctx, room.ID, RoomInput{RoomNumber: "101", BedNumbers: []string{"A", "C"}, Price: 5000, Toilet: "Yes"})
	expectCode(t, err, domain.CodeBedOccupied)

	current, _ := f.store.GetRoom(ctx, room.ID)
	if len(current.Beds) != 2 || current.Beds[1].Number != "B" {
		t.Fatalf("refused edit changed beds: %+v", current.Beds)
	}

	got, err := f.rooms.EditRoomBeds(ctx, room.ID, RoomInput{RoomNumber: "101", BedNumbers: []string{"A1", "B"}, Price: 5000, Toilet: "Yes"})
	if err != nil {
		t.Fatalf("renaming a vacant bed should work: %v", err)
	}
	if got.Beds[0].Number != "A1" || got.Beds[1].Status != domain.BedOccupied {
		t.Fatalf("unexpected beds %+v", got.Beds)
	}
}

func TestEditRoomNumberPropagatesToHostlers(t *testing.T) {
	f := newFixture()
	room := f.room(t, "101", 5000, "1", "2")
	f.room(t, "102", 5000, "1")
	h := f.register(t, "Asha", "9876543210", "123412341234", room, "1", day(2025, 1, 1))
	ctx := context.Background()

	_, err := f.rooms.EditRoomBeds(ctx, room.ID, RoomInput{RoomNumber: "102", Price: 5000, Toilet: "Yes"})
	expectCode(t, err, domain.CodeDuplicateRoomNumber)

	if _, err := f.rooms.EditRoomBeds(ctx, room.ID, RoomInput{RoomNumber: "201", Price: 5000, Toilet: "Yes"}); err != nil {
		t.Fatalf("EditRoomBeds returned error: %v", err)
	}
	stored, _ := f.store.GetHostler(ctx, h.ID)
	if stored.RoomNumber != "201" {
		t.Fatalf("room number not propagated: %s", stored.RoomNumber)
	}
}

func TestSetBedStatusRecomputesRoom(t *testing.T) {
	f := newFixture()
	room := f.room(t, "101", 5000, "1", "2")
	ctx := context.Background()

	name := "Walk-in"
	if _, err := f.rooms.SetBedStatus(ctx, room.ID, "1", "occupied", &name); err != nil {
		t.Fatalf("SetBedStatus: %v", err)
	}
	got, err := f.rooms.SetBedStatus(ctx, room.ID, "2", "Occupied", nil)
	if err != nil {
		t.Fatalf("SetBedStatus: %v", err)
	}
	if got.Status != domain.RoomFull || got.Beds[0].OccupantName != "Walk-in" {
		t.Fatalf("unexpected room %+v", got)
	}

	got, err = f.rooms.SetBedStatus(ctx, room.ID, "1", "Vacant", nil)
	if err != nil {
		t.Fatalf("SetBedStatus: %v", err)
	}
	if got.Status != domain.RoomAvailable || got.Beds[0].OccupantName != "" {
		t.Fatalf("unexpected room %+v", got)
	}

	_, err = f.rooms.SetBedStatus(ctx, room.ID, "9", "Vacant", nil)
	expectCode(t, err, domain.CodeBedNotFound)
	_, err = f.rooms.SetBedStatus(ctx, "missing", "1", "Vacant", nil)
	expectCode(t, err, domain.CodeRoomNotFound)
	_, err = f.rooms.SetBedStatus(ctx, room.ID, "1", "broken", nil)
	expectCode(t, err, domain.CodeInvalidStatus)
}

func TestSetBedStatusRefusesHeldBed(t *testing.T) {
	f := newFixture()
	room := f.room(t, "101", 5000, "1", "2")
	ctx := context.Background()
	asha := f.register(t, "Asha", "9876543210", "123412341234", room, "1", day(2025, 3, 10))

	_, err := f.rooms.SetBedStatus(ctx, room.ID, "1", "Vacant", nil)
	expectCode(t, err, domain.CodeBedOccupied)
	other := "Ravi"
	_, err = f.rooms.SetBedStatus(ctx, room.ID, "1", "Occupied", &other)
	expectCode(t, err, domain.CodeBedOccupied)

	if b := f.bed(t, room.ID, "1"); b.Status != domain.BedOccupied || b.HostlerID != asha.ID || b.OccupantName != "Asha" {
		t.Fatalf("held bed changed: %+v", b)
	}
	_, err = f.alloc.RegisterHostler(ctx, hostlerInput("Ravi", "9123456780", "432143214321", room.ID, "1", day(2025, 4, 1)))
	expectCode(t, err, domain.CodeBedUnavailable)

	// same holder, no rename: a no-op write
	if _, err := f.rooms.SetBedStatus(ctx, room.ID, "1", "Occupied", nil); err != nil {
		t.Fatalf("SetBedStatus on held bed without changes: %v", err)
	}
	if b := f.bed(t, room.ID, "1"); b.HostlerID != asha.ID {
		t.Fatalf("holder lost: %+v", b)
	}
}

func TestListBedsAndSnapshot(t *testing.T) {
	f := newFixture()
	room := f.room(t, "101", 5000, "1", "2", "3")
	f.room(t, "102", 5000, "1")
	f.register(t, "Asha", "9876543210", "123412341234", room, "2", day(2025, 1, 1))
	ctx := context.Background()

	vacant, err := f.rooms.ListVacantBeds(ctx, room.ID)
	if err != nil || len(vacant) != 2 {
		t.Fatalf("expected 2 vacant beds, got %d (%v)", len(vacant), err)
	}
	occupied := domain.BedOccupied
	beds, _ := f.rooms.ListBeds(ctx, room.ID, &occupied)
	if len(beds) != 1 || beds[0].Number != "2" {
		t.Fatalf("unexpected occupied beds %+v", beds)
	}

	snap, err := f.rooms.OccupancySnapshot(ctx)
	if err != nil {
		t.Fatalf("OccupancySnapshot: %v", err)
	}
	if len(snap) != 4 || snap[1].OccupantName != "Asha" || snap[3].RoomNumber != "102" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestDeleteRoomLeavesOrphansForReconcile(t *testing.T) {
	f := newFixture()
	room := f.room(t, "101", 5000, "1")
	h := f.register(t, "Asha", "9876543210", "123412341234", room, "1", day(2025, 1, 1))
	ctx := context.Background()

	if err := f.rooms.DeleteRoom(ctx, room.ID); err != nil {
		t.Fatalf("DeleteRoom: %v", err)
	}
	if _, err := f.store.GetHostler(ctx, h.ID); err != nil {
		t.Fatalf("hostler should survive room deletion: %v", err)
	}
	expectCode(t, f.rooms.DeleteRoom(ctx, room.ID), domain.CodeRoomNotFound)
}
