package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	intconfig "hostel-backend/internal/config"
	intdb "hostel-backend/internal/db"
	"hostel-backend/internal/domain"
	"hostel-backend/internal/domain/models"
)

var _ RoomStore = RoomRepository{}

// RoomRepository stores rooms and their beds. Beds are separate rows keyed by
// (room_id, bed_number) and carry a version column for conditional writes.
type RoomRepository struct {
	DB *sql.DB
}

func (r RoomRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const (
	roomColumns = `id, room_number, price, toilet, status, created_at`
	bedColumns  = `id, room_id, bed_number, position, status, COALESCE(hostler_id,''), COALESCE(occupant_name,''), version`

	recomputeRoomStatusSQL = `UPDATE rooms SET status = IF(EXISTS(SELECT 1 FROM beds WHERE beds.room_id = ? AND beds.status <> 'Occupied'), 'Available', 'Full') WHERE id = ?`
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(s rowScanner) (models.Room, error) {
	var (
		room   models.Room
		toilet string
		status string
	)
	if err := s.Scan(&room.ID, &room.RoomNumber, &room.Price, &toilet, &status, &room.CreatedAt); err != nil {
		return models.Room{}, err
	}
	room.Toilet = domain.Toilet(toilet)
	room.Status = domain.RoomStatus(status)
	return room, nil
}

func scanBed(s rowScanner) (models.Bed, error) {
	var (
		b      models.Bed
		status string
	)
	if err := s.Scan(&b.ID, &b.RoomID, &b.Number, &b.Position, &status, &b.HostlerID, &b.OccupantName, &b.Version); err != nil {
		return models.Bed{}, err
	}
	b.Status = domain.BedStatus(status)
	return b, nil
}

func (r RoomRepository) CreateRoom(ctx context.Context, room *models.Room) error {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	room.CreatedAt = nowUTC()
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

	err := intdb.WithTx(ctx, r.db(), func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO rooms (`+roomColumns+`) VALUES (?,?,?,?,?,?)`,
			room.ID, room.RoomNumber, room.Price, string(room.Toilet), string(room.Status), room.CreatedAt,
		); err != nil {
			return err
		}
		for _, b := range room.Beds {
			if err := insertBed(ctx, tx, b); err != nil {
				return err
			}
		}
		return nil
	})
	return storeErr("room", err)
}

func insertBed(ctx context.Context, ex intdb.Executor, b models.Bed) error {
	_, err := ex.ExecContext(ctx,
		`INSERT INTO beds (id, room_id, bed_number, position, status, hostler_id, occupant_name, version) VALUES (?,?,?,?,?,?,?,0)`,
		b.ID, b.RoomID, b.Number, b.Position, string(b.Status), intdb.NullIfEmpty(b.HostlerID), intdb.NullIfEmpty(b.OccupantName),
	)
	return err
}

func (r RoomRepository) GetRoom(ctx context.Context, id string) (models.Room, error) {
	if strings.TrimSpace(id) == "" {
		return models.Room{}, domain.ErrRoomNotFound()
	}
	room, err := scanRoom(r.db().QueryRowContext(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id=? LIMIT 1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Room{}, domain.ErrRoomNotFound()
	}
	if err != nil {
		return models.Room{}, storeErr("room", err)
	}
	beds, err := r.loadBeds(ctx, `WHERE room_id=?`, id)
	if err != nil {
		return models.Room{}, err
	}
	room.Beds = beds[id]
	return room, nil
}

func (r RoomRepository) FindRoomByNumber(ctx context.Context, roomNumber string) (models.Room, bool, error) {
	var id string
	err := r.db().QueryRowContext(ctx, `SELECT id FROM rooms WHERE room_number=? LIMIT 1`, roomNumber).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Room{}, false, nil
	}
	if err != nil {
		return models.Room{}, false, storeErr("room", err)
	}
	room, err := r.GetRoom(ctx, id)
	if err != nil {
		return models.Room{}, false, err
	}
	return room, true, nil
}

func (r RoomRepository) ListRooms(ctx context.Context) ([]models.Room, error) {
	rows, err := r.db().QueryContext(ctx, `SELECT `+roomColumns+` FROM rooms ORDER BY room_number ASC`)
	if err != nil {
		return nil, storeErr("room", err)
	}
	defer rows.Close()

	out := []models.Room{}
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, storeErr("room", err)
		}
		out = append(out, room)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("room", err)
	}

	beds, err := r.loadBeds(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Beds = beds[out[i].ID]
	}
	return out, nil
}

// loadBeds returns beds grouped by room id, ordered by position.
func (r RoomRepository) loadBeds(ctx context.Context, where string, args ...any) (map[string][]models.Bed, error) {
	rows, err := r.db().QueryContext(ctx, `SELECT `+bedColumns+` FROM beds `+where+` ORDER BY room_id ASC, position ASC`, args...)
	if err != nil {
		return nil, storeErr("bed", err)
	}
	defer rows.Close()

	out := map[string][]models.Bed{}
	for rows.Next() {
		b, err := scanBed(rows)
		if err != nil {
			return nil, storeErr("bed", err)
		}
		out[b.RoomID] = append(out[b.RoomID], b)
	}
	return out, storeErr("bed", rows.Err())
}

func (r RoomRepository) DeleteRoom(ctx context.Context, id string) error {
	err := intdb.WithTx(ctx, r.db(), func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM beds WHERE room_id=?`, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM rooms WHERE id=?`, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.ErrRoomNotFound()
		}
		return nil
	})
	return storeErr("room", err)
}

func (r RoomRepository) ApplyBedChanges(ctx context.Context, changes []BedChange) error {
	if len(changes) == 0 {
		return nil
	}
	err := intdb.WithTx(ctx, r.db(), func(tx *sql.Tx) error {
		touched := []string{}
		seen := map[string]bool{}
		for _, ch := range changes {
			hostlerID, occupant := ch.HostlerID, ch.OccupantName
			if ch.Status == domain.BedVacant {
				hostlerID, occupant = "", ""
			}
			res, err := tx.ExecContext(ctx,
				`UPDATE beds SET status=?, hostler_id=?, occupant_name=?, version=version+1 WHERE room_id=? AND bed_number=? AND version=?`,
				string(ch.Status), intdb.NullIfEmpty(hostlerID), intdb.NullIfEmpty(occupant),
				ch.Ref.RoomID, ch.Ref.BedNumber, ch.ExpectedVersion,
			)
			if err != nil {
				return err
			}
			if n, err := res.RowsAffected(); err != nil {
				return err
			} else if n == 0 {
				return ErrStaleBed
			}
			if !seen[ch.Ref.RoomID] {
				seen[ch.Ref.RoomID] = true
				touched = append(touched, ch.Ref.RoomID)
			}
		}
		for _, roomID := range touched {
			if _, err := tx.ExecContext(ctx, recomputeRoomStatusSQL, roomID, roomID); err != nil {
				return err
			}
		}
		return nil
	})
	return bedWriteErr("bed", err)
}

func (r RoomRepository) UpdateLayout(ctx context.Context, layout RoomLayout) error {
	err := intdb.WithTx(ctx, r.db(), func(tx *sql.Tx) error {
		var dup int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM rooms WHERE room_number=? AND id<>?`, layout.RoomNumber, layout.RoomID,
		).Scan(&dup); err != nil {
			return err
		}
		if dup > 0 {
			return domain.ConflictError{Resource: "room", Code: domain.CodeDuplicateRoomNumber, Msg: "room number " + layout.RoomNumber + " already exists"}
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE rooms SET room_number=?, price=?, toilet=? WHERE id=?`,
			layout.RoomNumber, layout.Price, string(layout.Toilet), layout.RoomID,
		)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			var exists int
			if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM rooms WHERE id=?`, layout.RoomID).Scan(&exists); err != nil {
				return err
			}
			if exists == 0 {
				return domain.ErrRoomNotFound()
			}
		}

		for _, ch := range layout.Removed {
			res, err := tx.ExecContext(ctx,
				`DELETE FROM beds WHERE room_id=? AND bed_number=? AND version=? AND status='Vacant'`,
				ch.Ref.RoomID, ch.Ref.BedNumber, ch.ExpectedVersion,
			)
			if err != nil {
				return err
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return ErrStaleBed
			}
		}

		// Two passes so swapped numbers never collide on uq_beds_room_bed.
		for _, rn := range layout.Renamed {
			res, err := tx.ExecContext(ctx,
				`UPDATE beds SET bed_number=?, version=version+1 WHERE room_id=? AND bed_number=? AND version=? AND status='Vacant'`,
				"~"+rn.Ref.BedNumber, rn.Ref.RoomID, rn.Ref.BedNumber, rn.ExpectedVersion,
			)
			if err != nil {
				return err
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return ErrStaleBed
			}
		}
		for _, rn := range layout.Renamed {
			if _, err := tx.ExecContext(ctx,
				`UPDATE beds SET bed_number=? WHERE room_id=? AND bed_number=?`,
				rn.NewNumber, rn.Ref.RoomID, "~"+rn.Ref.BedNumber,
			); err != nil {
				return err
			}
		}

		for _, b := range layout.Added {
			if b.ID == "" {
				b.ID = uuid.NewString()
			}
			b.RoomID = layout.RoomID
			b.Status = domain.BedVacant
			if err := insertBed(ctx, tx, b); err != nil {
				return err
			}
		}

		_, err = tx.ExecContext(ctx, recomputeRoomStatusSQL, layout.RoomID, layout.RoomID)
		return err
	})
	return bedWriteErr("room", err)
}

func (r RoomRepository) RecomputeRoomStatus(ctx context.Context, roomID string) error {
	_, err := r.db().ExecContext(ctx, recomputeRoomStatusSQL, roomID, roomID)
	return storeErr("room", err)
}
