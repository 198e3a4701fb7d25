package services

import (
	"context"
	"testing"
	"time"

	"hostel-backend/internal/domain"
	"hostel-backend/internal/domain/models"
	"hostel-backend/internal/repositories"
	"hostel-backend/internal/repositories/memory"
	"hostel-backend/internal/utils"
)

type fixture struct {
	store    *memory.Store
	rooms    RoomService
	alloc    AllocationService
	payments PaymentService
	billing  BillingService
}

func newFixture() fixture {
	st := memory.New()
	return fixture{
		store:    st,
		rooms:    RoomService{Rooms: st, Hostlers: st},
		alloc:    AllocationService{Rooms: st, Hostlers: st, Payments: st},
		payments: PaymentService{Payments: st, Hostlers: st},
		billing:  BillingService{Rooms: st, Hostlers: st, Payments: st, PaymentLink: "https://pay.example.com"},
	}
}

func day(y int, m time.Month, d int) time.Time { return utils.Date(y, m, d) }

func (f fixture) room(t *testing.T, number string, price int64, beds ...string) models.Room {
	t.Helper()
	room, err := f.rooms.CreateRoom(context.Background(), RoomInput{RoomNumber: number, BedNumbers: beds, Price: price, Toilet: "Yes"})
	if err != nil {
		t.Fatalf("create room %s: %v", number, err)
	}
	return room
}

func hostlerInput(name, phone, aadhar, roomID, bed string, joined time.Time) models.HostlerInput {
	return models.HostlerInput{
		Name:        &name,
		Phone:       &phone,
		Aadhar:      &aadhar,
		RoomID:      &roomID,
		BedNo:       &bed,
		JoiningDate: &joined,
	}
}

func (f fixture) register(t *testing.T, name, phone, aadhar string, room models.Room, bed string, joined time.Time) models.Hostler {
	t.Helper()
	h, err := f.alloc.RegisterHostler(context.Background(), hostlerInput(name, phone, aadhar, room.ID, bed, joined))
	if err != nil {
		t.Fatalf("register %s: %v", name, err)
	}
	return h
}

func (f fixture) bed(t *testing.T, roomID, number string) models.Bed {
	t.Helper()
	room, err := f.store.GetRoom(context.Background(), roomID)
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	b, ok := room.FindBed(number)
	if !ok {
		t.Fatalf("bed %s missing", number)
	}
	return b
}

func (f fixture) roomStatus(t *testing.T, roomID string) domain.RoomStatus {
	t.Helper()
	room, err := f.store.GetRoom(context.Background(), roomID)
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	if room.Status != room.DerivedStatus() {
		t.Fatalf("room %s stored status %s differs from derived %s", room.RoomNumber, room.Status, room.DerivedStatus())
	}
	return room.Status
}

func expectCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error %s, got nil", code)
	}
	if got := domain.CodeOf(err); got != code {
		t.Fatalf("expected code %s, got %q (%v)", code, got, err)
	}
}

type failingPayments struct {
	repositories.PaymentStore
	err error
}

func (f failingPayments) CreatePayment(context.Context, *models.Payment) error { return f.err }

type failingHostlers struct {
	repositories.HostlerStore
	err error
}

func (f failingHostlers) UpdateHostler(context.Context, models.Hostler) error { return f.err }

type staleRooms struct {
	repositories.RoomStore
	calls *int
}

func (s staleRooms) ApplyBedChanges(context.Context, []repositories.BedChange) error {
	*s.calls++
	return repositories.ErrStaleBed
}
