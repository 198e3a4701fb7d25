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

var _ PaymentStore = PaymentRepository{}

type PaymentRepository struct {
	DB *sql.DB
}

func (r PaymentRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const paymentColumns = `id, hostler_id, COALESCE(hostler_name,''), amount, COALESCE(num_payments,0), payment_date, status, COALESCE(proof,''), created_at`

func scanPayment(s rowScanner) (models.Payment, error) {
	var (
		p      models.Payment
		status string
	)
	if err := s.Scan(&p.ID, &p.HostlerID, &p.HostlerName, &p.Amount, &p.NumPayments, &p.PaymentDate, &status, &p.Proof, &p.CreatedAt); err != nil {
		return models.Payment{}, err
	}
	p.PaymentDate = p.PaymentDate.UTC()
	p.Status = domain.PaymentStatus(status)
	return p, nil
}

func (r PaymentRepository) CreatePayment(ctx context.Context, p *models.Payment) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = nowUTC()
	var numPayments any
	if p.NumPayments > 0 {
		numPayments = p.NumPayments
	}
	_, err := r.db().ExecContext(ctx, `
		INSERT INTO payments (id, hostler_id, hostler_name, amount, num_payments, payment_date, status, proof, created_at)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		p.ID, p.HostlerID, intdb.NullIfEmpty(p.HostlerName), p.Amount, numPayments,
		p.PaymentDate, string(p.Status), intdb.NullIfEmpty(p.Proof), p.CreatedAt,
	)
	return storeErr("payment", err)
}

func (r PaymentRepository) GetPayment(ctx context.Context, id string) (models.Payment, error) {
	p, err := scanPayment(r.db().QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id=? LIMIT 1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Payment{}, domain.ErrPaymentNotFound()
	}
	return p, storeErr("payment", err)
}

func (r PaymentRepository) UpdatePayment(ctx context.Context, p models.Payment) error {
	var numPayments any
	if p.NumPayments > 0 {
		numPayments = p.NumPayments
	}
	res, err := r.db().ExecContext(ctx,
		`UPDATE payments SET amount=?, num_payments=?, payment_date=?, status=?, proof=? WHERE id=?`,
		p.Amount, numPayments, p.PaymentDate, string(p.Status), intdb.NullIfEmpty(p.Proof), p.ID,
	)
	if err != nil {
		return storeErr("payment", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetPayment(ctx, p.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r PaymentRepository) ListPayments(ctx context.Context, f PaymentFilter) ([]models.Payment, error) {
	conds := []string{}
	args := []any{}
	if f.HostlerID != "" {
		conds = append(conds, "hostler_id=?")
		args = append(args, f.HostlerID)
	}
	if f.Status != nil {
		conds = append(conds, "status=?")
		args = append(args, string(*f.Status))
	}
	if f.From != nil {
		conds = append(conds, "payment_date>=?")
		args = append(args, *f.From)
	}
	if f.To != nil {
		conds = append(conds, "payment_date<=?")
		args = append(args, *f.To)
	}
	query := `SELECT ` + paymentColumns + ` FROM payments`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY payment_date DESC, created_at DESC`

	rows, err := r.db().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("payment", err)
	}
	defer rows.Close()

	out := []models.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, storeErr("payment", err)
		}
		out = append(out, p)
	}
	return out, storeErr("payment", rows.Err())
}

func (r PaymentRepository) DeleteByHostler(ctx context.Context, hostlerID string) (int64, error) {
	res, err := r.db().ExecContext(ctx, `DELETE FROM payments WHERE hostler_id=?`, hostlerID)
	if err != nil {
		return 0, storeErr("payment", err)
	}
	n, err := res.RowsAffected()
	return n, storeErr("payment", err)
}
