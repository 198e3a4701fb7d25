// Package memory provides an in-memory implementation of the hostel stores
// used for tests and ephemeral environments.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"hostel-backend/internal/domain"
	"hostel-backend/internal/domain/models"
	"hostel-backend/internal/repositories"
)

var (
	_ repositories.RoomStore    = (*Store)(nil)
	_ repositories.HostlerStore = (*Store)(nil)
	_ repositories.PaymentStore = (*Store)(nil)
	_ repositories.UserStore    = (*Store)(nil)
)

// Store keeps every collection behind one mutex so multi-record batches are
// atomic, matching what the SQL store gets from a transaction.
type Store struct {
	mu       sync.RWMutex
	rooms    map[string]models.Room
	hostlers map[string]models.Hostler
	payments map[string]models.Payment
	users    map[string]models.User
	now      func() time.Time
}

func New() *Store {
	return &Store{
		rooms:    map[string]models.Room{},
		hostlers: map[string]models.Hostler{},
		payments: map[string]models.Payment{},
		users:    map[string]models.User{},
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func cloneRoom(r models.Room) models.Room {
	out := r
	out.Beds = append([]models.Bed(nil), r.Beds...)
	return out
}

func cloneHostler(h models.Hostler) models.Hostler {
	out := h
	if h.NextPaymentDate != nil {
		t := *h.NextPaymentDate
		out.NextPaymentDate = &t
	}
	return out
}

// ---- rooms ----

func (s *Store) CreateRoom(_ context.Context, room *models.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.rooms {
		if r.RoomNumber == room.RoomNumber {
			return domain.ConflictError{Resource: "room", Code: domain.CodeDuplicateRoomNumber, Msg: "room number " + room.RoomNumber + " already exists"}
		}
	}
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	room.CreatedAt = s.now()
	for i := range room.Beds {
		b := &room.Beds[i]
		if b.ID == "" {
			b.ID = uuid.NewString()
		}
		b.RoomID = room.ID
		b.Position = i
		if b.Status == "" {
			b.Status = domain.BedVacant
		}
	}
	room.Status = room.DerivedStatus()
	s.rooms[room.ID] = cloneRoom(*room)
	return nil
}

func (s *Store) GetRoom(_ context.Context, id string) (models.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[id]
	if !ok {
		return models.Room{}, domain.ErrRoomNotFound()
	}
	return cloneRoom(r), nil
}

func (s *Store) FindRoomByNumber(_ context.Context, roomNumber string) (models.Room, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.rooms {
		if r.RoomNumber == roomNumber {
			return cloneRoom(r), true, nil
		}
	}
	return models.Room{}, false, nil
}

func (s *Store) ListRooms(_ context.Context) ([]models.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		out = append(out, cloneRoom(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoomNumber < out[j].RoomNumber })
	return out, nil
}

func (s *Store) DeleteRoom(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[id]; !ok {
		return domain.ErrRoomNotFound()
	}
	delete(s.rooms, id)
	return nil
}

func bedIndex(r models.Room, number string) int {
	for i, b := range r.Beds {
		if b.Number == number {
			return i
		}
	}
	return -1
}

func (s *Store) ApplyBedChanges(_ context.Context, changes []repositories.BedChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Work on copies so a stale change leaves every room untouched.
	staged := map[string]models.Room{}
	for _, ch := range changes {
		room, ok := staged[ch.Ref.RoomID]
		if !ok {
			orig, exists := s.rooms[ch.Ref.RoomID]
			if !exists {
				return domain.ErrRoomNotFound()
			}
			room = cloneRoom(orig)
		}
		i := bedIndex(room, ch.Ref.BedNumber)
		if i < 0 {
			return domain.ErrBedNotFound(ch.Ref.BedNumber)
		}
		bed := &room.Beds[i]
		if bed.Version != ch.ExpectedVersion {
			return repositories.ErrStaleBed
		}
		bed.Status = ch.Status
		bed.HostlerID = ch.HostlerID
		bed.OccupantName = ch.OccupantName
		if ch.Status == domain.BedVacant {
			bed.HostlerID, bed.OccupantName = "", ""
		}
		bed.Version++
		staged[room.ID] = room
	}
	for id, room := range staged {
		room.Status = room.DerivedStatus()
		s.rooms[id] = room
	}
	return nil
}

func (s *Store) UpdateLayout(_ context.Context, layout repositories.RoomLayout) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	orig, ok := s.rooms[layout.RoomID]
	if !ok {
		return domain.ErrRoomNotFound()
	}
	for id, r := range s.rooms {
		if id != layout.RoomID && r.RoomNumber == layout.RoomNumber {
			return domain.ConflictError{Resource: "room", Code: domain.CodeDuplicateRoomNumber, Msg: "room number " + layout.RoomNumber + " already exists"}
		}
	}
	room := cloneRoom(orig)

	removed := map[string]bool{}
	for _, ch := range layout.Removed {
		i := bedIndex(room, ch.Ref.BedNumber)
		if i < 0 {
			return domain.ErrBedNotFound(ch.Ref.BedNumber)
		}
		if room.Beds[i].Version != ch.ExpectedVersion || room.Beds[i].Status == domain.BedOccupied {
			return repositories.ErrStaleBed
		}
		removed[room.Beds[i].ID] = true
	}
	for _, rn := range layout.Renamed {
		i := bedIndex(room, rn.Ref.BedNumber)
		if i < 0 {
			return domain.ErrBedNotFound(rn.Ref.BedNumber)
		}
		if room.Beds[i].Version != rn.ExpectedVersion || room.Beds[i].Status == domain.BedOccupied {
			return repositories.ErrStaleBed
		}
	}
	// Renames resolve against the pre-edit numbers, so swaps are safe.
	targets := map[string]string{}
	for _, rn := range layout.Renamed {
		targets[rn.Ref.BedNumber] = rn.NewNumber
	}
	kept := make([]models.Bed, 0, len(room.Beds)+len(layout.Added))
	for _, b := range room.Beds {
		if removed[b.ID] {
			continue
		}
		if n, ok := targets[b.Number]; ok {
			b.Number = n
			b.Version++
		}
		kept = append(kept, b)
	}
	for _, b := range layout.Added {
		if b.ID == "" {
			b.ID = uuid.NewString()
		}
		b.RoomID = room.ID
		b.Status = domain.BedVacant
		kept = append(kept, b)
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Position < kept[j].Position })
	seen := map[string]bool{}
	for i := range kept {
		if seen[kept[i].Number] {
			return domain.ValidationError{Field: "bed_numbers", Code: domain.CodeInvalidBeds, Msg: "bed numbers must be unique"}
		}
		seen[kept[i].Number] = true
		kept[i].Position = i
	}
	room.Beds = kept
	room.RoomNumber = layout.RoomNumber
	room.Price = layout.Price
	room.Toilet = layout.Toilet
	room.Status = room.DerivedStatus()
	s.rooms[room.ID] = room
	return nil
}

func (s *Store) RecomputeRoomStatus(_ context.Context, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[roomID]
	if !ok {
		return domain.ErrRoomNotFound()
	}
	r.Status = r.DerivedStatus()
	s.rooms[roomID] = r
	return nil
}

// SetRoomStatusUnsafe overwrites the cached room status without derivation.
// Tests use it to simulate drift left by an interrupted write.
func (s *Store) SetRoomStatusUnsafe(roomID string, status domain.RoomStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rooms[roomID]; ok {
		r.Status = status
		s.rooms[roomID] = r
	}
}

// ---- hostlers ----

func (s *Store) uniqueHostler(h models.Hostler) error {
	for id, other := range s.hostlers {
		if id == h.ID {
			continue
		}
		if other.Phone == h.Phone {
			return domain.ConflictError{Resource: "hostler", Code: domain.CodeDuplicatePhone, Msg: "phone already exists"}
		}
		if other.Aadhar == h.Aadhar {
			return domain.ConflictError{Resource: "hostler", Code: domain.CodeDuplicateAadhar, Msg: "aadhar already exists"}
		}
	}
	return nil
}

func (s *Store) CreateHostler(_ context.Context, h *models.Hostler) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.uniqueHostler(*h); err != nil {
		return err
	}
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	h.CreatedAt = s.now()
	s.hostlers[h.ID] = cloneHostler(*h)
	return nil
}

func (s *Store) GetHostler(_ context.Context, id string) (models.Hostler, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.hostlers[id]
	if !ok {
		return models.Hostler{}, domain.ErrHostlerNotFound()
	}
	return cloneHostler(h), nil
}

func (s *Store) UpdateHostler(_ context.Context, h models.Hostler) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.hostlers[h.ID]
	if !ok {
		return domain.ErrHostlerNotFound()
	}
	if err := s.uniqueHostler(h); err != nil {
		return err
	}
	h.CreatedAt = old.CreatedAt
	s.hostlers[h.ID] = cloneHostler(h)
	return nil
}

func (s *Store) DeleteHostler(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hostlers[id]; !ok {
		return domain.ErrHostlerNotFound()
	}
	delete(s.hostlers, id)
	return nil
}

func (s *Store) filterHostlers(keep func(models.Hostler) bool) []models.Hostler {
	out := []models.Hostler{}
	for _, h := range s.hostlers {
		if keep(h) {
			out = append(out, cloneHostler(h))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (s *Store) ListHostlers(_ context.Context, status *domain.HostlerStatus) ([]models.Hostler, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterHostlers(func(h models.Hostler) bool {
		return status == nil || h.Status == *status
	}), nil
}

func (s *Store) FindByPhone(_ context.Context, phone string) ([]models.Hostler, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterHostlers(func(h models.Hostler) bool { return h.Phone == phone }), nil
}

func (s *Store) FindByAadhar(_ context.Context, aadhar string) ([]models.Hostler, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterHostlers(func(h models.Hostler) bool { return h.Aadhar == aadhar }), nil
}

func (s *Store) ListByRoom(_ context.Context, roomID string) ([]models.Hostler, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterHostlers(func(h models.Hostler) bool { return h.RoomID == roomID }), nil
}

func (s *Store) SetRoomNumber(_ context.Context, roomID, roomNumber string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, h := range s.hostlers {
		if h.RoomID == roomID {
			h.RoomNumber = roomNumber
			s.hostlers[id] = h
		}
	}
	return nil
}

func (s *Store) MarkOverdue(_ context.Context, asOf time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, h := range s.hostlers {
		if h.Status != domain.HostlerPaid || h.NextPaymentDate == nil {
			continue
		}
		if !h.NextPaymentDate.After(asOf) {
			h.Status = domain.HostlerPending
			s.hostlers[id] = h
			n++
		}
	}
	return n, nil
}

// ---- payments ----

func (s *Store) CreatePayment(_ context.Context, p *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = s.now()
	s.payments[p.ID] = *p
	return nil
}

func (s *Store) GetPayment(_ context.Context, id string) (models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.payments[id]
	if !ok {
		return models.Payment{}, domain.ErrPaymentNotFound()
	}
	return p, nil
}

func (s *Store) UpdatePayment(_ context.Context, p models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.payments[p.ID]
	if !ok {
		return domain.ErrPaymentNotFound()
	}
	p.CreatedAt = old.CreatedAt
	s.payments[p.ID] = p
	return nil
}

func (s *Store) ListPayments(_ context.Context, f repositories.PaymentFilter) ([]models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Payment{}
	for _, p := range s.payments {
		if f.HostlerID != "" && p.HostlerID != f.HostlerID {
			continue
		}
		if f.Status != nil && p.Status != *f.Status {
			continue
		}
		if f.From != nil && p.PaymentDate.Before(*f.From) {
			continue
		}
		if f.To != nil && p.PaymentDate.After(*f.To) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PaymentDate.Equal(out[j].PaymentDate) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].PaymentDate.After(out[j].PaymentDate)
	})
	return out, nil
}

func (s *Store) DeleteByHostler(_ context.Context, hostlerID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, p := range s.payments {
		if p.HostlerID == hostlerID {
			delete(s.payments, id)
			n++
		}
	}
	return n, nil
}

// ---- users ----

func (s *Store) FindUserByPhone(_ context.Context, phone string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Phone == phone {
			return u, nil
		}
	}
	return models.User{}, domain.NotFoundError{Resource: "user", Code: domain.CodeUserNotFound}
}

func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.users {
		if strings.EqualFold(other.Phone, u.Phone) {
			return domain.ConflictError{Resource: "user", Code: domain.CodeDuplicatePhone, Msg: "phone already registered"}
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	s.users[u.ID] = *u
	return nil
}
