package repositories

import (
	"context"
	"errors"
	"time"

	"hostel-backend/internal/domain"
	"hostel-backend/internal/domain/models"
)

// ErrStaleBed is returned by conditional bed writes when a bed's version no
// longer matches the expected one. Nothing in the batch was applied.
var ErrStaleBed = errors.New("bed version conflict")

// BedChange is one version-checked bed write.
type BedChange struct {
	Ref             models.BedRef
	ExpectedVersion int64
	Status          domain.BedStatus
	HostlerID       string
	OccupantName    string
}

// BedRename moves a bed to a new number within its room, keeping its state.
type BedRename struct {
	Ref             models.BedRef
	ExpectedVersion int64
	NewNumber       string
}

// RoomLayout describes an atomic edit of a room and its bed set.
type RoomLayout struct {
	RoomID     string
	RoomNumber string
	Price      int64
	Toilet     domain.Toilet
	Renamed    []BedRename
	Removed    []BedChange
	Added      []models.Bed
}

type RoomStore interface {
	CreateRoom(ctx context.Context, room *models.Room) error
	GetRoom(ctx context.Context, id string) (models.Room, error)
	FindRoomByNumber(ctx context.Context, roomNumber string) (models.Room, bool, error)
	ListRooms(ctx context.Context) ([]models.Room, error)
	DeleteRoom(ctx context.Context, id string) error

	// ApplyBedChanges writes every change in order if and only if every bed
	// still has its expected version, then recomputes the status of each
	// touched room. The batch commits atomically or returns ErrStaleBed.
	ApplyBedChanges(ctx context.Context, changes []BedChange) error
	// UpdateLayout applies a room edit under the same version rules.
	UpdateLayout(ctx context.Context, layout RoomLayout) error
	// RecomputeRoomStatus rewrites the stored status from current bed state.
	RecomputeRoomStatus(ctx context.Context, roomID string) error
}

type HostlerStore interface {
	CreateHostler(ctx context.Context, h *models.Hostler) error
	GetHostler(ctx context.Context, id string) (models.Hostler, error)
	UpdateHostler(ctx context.Context, h models.Hostler) error
	DeleteHostler(ctx context.Context, id string) error
	ListHostlers(ctx context.Context, status *domain.HostlerStatus) ([]models.Hostler, error)
	FindByPhone(ctx context.Context, phone string) ([]models.Hostler, error)
	FindByAadhar(ctx context.Context, aadhar string) ([]models.Hostler, error)
	ListByRoom(ctx context.Context, roomID string) ([]models.Hostler, error)
	SetRoomNumber(ctx context.Context, roomID, roomNumber string) error
	// MarkOverdue flips cached status Paid -> Pending where the cursor is on
	// or before asOf, returning the number of rows changed.
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)
}

// PaymentFilter narrows payment queries. Zero values mean "any".
type PaymentFilter struct {
	HostlerID string
	Status    *domain.PaymentStatus
	From      *time.Time
	To        *time.Time
}

type PaymentStore interface {
	CreatePayment(ctx context.Context, p *models.Payment) error
	GetPayment(ctx context.Context, id string) (models.Payment, error)
	UpdatePayment(ctx context.Context, p models.Payment) error
	// ListPayments returns matches ordered by payment date, newest first.
	ListPayments(ctx context.Context, f PaymentFilter) ([]models.Payment, error)
	DeleteByHostler(ctx context.Context, hostlerID string) (int64, error)
}

type UserStore interface {
	FindUserByPhone(ctx context.Context, phone string) (models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
}
