package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	intconfig "hostel-backend/internal/config"
	intdb "hostel-backend/internal/db"
	"hostel-backend/internal/domain"
	"hostel-backend/internal/domain/models"
)

var _ HostlerStore = HostlerRepository{}

type HostlerRepository struct {
	DB *sql.DB
}

func (r HostlerRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const hostlerColumns = `id, name, phone, aadhar, COALESCE(image,''), room_id, room_number, bed_no, price, joining_date, next_payment_date, status, created_at`

func nowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

func scanHostler(s rowScanner) (models.Hostler, error) {
	var (
		h      models.Hostler
		next   sql.NullTime
		status string
	)
	if err := s.Scan(
		&h.ID, &h.Name, &h.Phone, &h.Aadhar, &h.Image,
		&h.RoomID, &h.RoomNumber, &h.BedNo, &h.Price,
		&h.JoiningDate, &next, &status, &h.CreatedAt,
	); err != nil {
		return models.Hostler{}, err
	}
	h.JoiningDate = h.JoiningDate.UTC()
	h.NextPaymentDate = intdb.TimePtr(next)
	h.Status = domain.HostlerStatus(status)
	return h, nil
}

func (r HostlerRepository) query(ctx context.Context, where string, args ...any) ([]models.Hostler, error) {
	rows, err := r.db().QueryContext(ctx, `SELECT `+hostlerColumns+` FROM hostlers `+where+` ORDER BY name ASC, id ASC`, args...)
	if err != nil {
		return nil, storeErr("hostler", err)
	}
	defer rows.Close()

	out := []models.Hostler{}
	for rows.Next() {
		h, err := scanHostler(rows)
		if err != nil {
			return nil, storeErr("hostler", err)
		}
		out = append(out, h)
	}
	return out, storeErr("hostler", rows.Err())
}

func (r HostlerRepository) CreateHostler(ctx context.Context, h *models.Hostler) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	h.CreatedAt = nowUTC()
	_, err := r.db().ExecContext(ctx, `
		INSERT INTO hostlers (id, name, phone, aadhar, image, room_id, room_number, bed_no, price, joining_date, next_payment_date, status, created_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		h.ID, h.Name, h.Phone, h.Aadhar, intdb.NullIfEmpty(h.Image),
		h.RoomID, h.RoomNumber, h.BedNo, h.Price,
		h.JoiningDate, intdb.NullTime(h.NextPaymentDate), string(h.Status), h.CreatedAt,
	)
	return storeErr("hostler", err)
}

func (r HostlerRepository) GetHostler(ctx context.Context, id string) (models.Hostler, error) {
	h, err := scanHostler(r.db().QueryRowContext(ctx, `SELECT `+hostlerColumns+` FROM hostlers WHERE id=? LIMIT 1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Hostler{}, domain.ErrHostlerNotFound()
	}
	return h, storeErr("hostler", err)
}

// UpdateHostler replaces every mutable column. MySQL reports zero affected
// rows for an unchanged row, so existence is checked separately.
func (r HostlerRepository) UpdateHostler(ctx context.Context, h models.Hostler) error {
	res, err := r.db().ExecContext(ctx, `
		UPDATE hostlers SET name=?, phone=?, aadhar=?, image=?, room_id=?, room_number=?, bed_no=?, price=?,
		       joining_date=?, next_payment_date=?, status=?
		WHERE id=?`,
		h.Name, h.Phone, h.Aadhar, intdb.NullIfEmpty(h.Image), h.RoomID, h.RoomNumber, h.BedNo, h.Price,
		h.JoiningDate, intdb.NullTime(h.NextPaymentDate), string(h.Status), h.ID,
	)
	if err != nil {
		return storeErr("hostler", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetHostler(ctx, h.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r HostlerRepository) DeleteHostler(ctx context.Context, id string) error {
	res, err := r.db().ExecContext(ctx, `DELETE FROM hostlers WHERE id=?`, id)
	if err != nil {
		return storeErr("hostler", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrHostlerNotFound()
	}
	return nil
}

func (r HostlerRepository) ListHostlers(ctx context.Context, status *domain.HostlerStatus) ([]models.Hostler, error) {
	if status != nil {
		return r.query(ctx, `WHERE status=?`, string(*status))
	}
	return r.query(ctx, "")
}

func (r HostlerRepository) FindByPhone(ctx context.Context, phone string) ([]models.Hostler, error) {
	return r.query(ctx, `WHERE phone=?`, phone)
}

func (r HostlerRepository) FindByAadhar(ctx context.Context, aadhar string) ([]models.Hostler, error) {
	return r.query(ctx, `WHERE aadhar=?`, aadhar)
}

func (r HostlerRepository) ListByRoom(ctx context.Context, roomID string) ([]models.Hostler, error) {
	return r.query(ctx, `WHERE room_id=?`, roomID)
}

func (r HostlerRepository) SetRoomNumber(ctx context.Context, roomID, roomNumber string) error {
	_, err := r.db().ExecContext(ctx, `UPDATE hostlers SET room_number=? WHERE room_id=?`, roomNumber, roomID)
	return storeErr("hostler", err)
}

func (r HostlerRepository) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	res, err := r.db().ExecContext(ctx,
		`UPDATE hostlers SET status='Pending' WHERE status='Paid' AND next_payment_date IS NOT NULL AND next_payment_date <= ?`,
		asOf,
	)
	if err != nil {
		return 0, storeErr("hostler", err)
	}
	n, err := res.RowsAffected()
	return n, storeErr("hostler", err)
}
