package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	intconfig "hostel-backend/internal/config"
	"hostel-backend/internal/domain"
	"hostel-backend/internal/domain/models"
)

var _ UserStore = UserRepository{}

type UserRepository struct {
	DB *sql.DB
}

func (r UserRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r UserRepository) FindUserByPhone(ctx context.Context, phone string) (models.User, error) {
	var u models.User
	err := r.db().QueryRowContext(ctx,
		`SELECT id, name, phone, password_hash, role FROM users WHERE phone=? LIMIT 1`, phone,
	).Scan(&u.ID, &u.Name, &u.Phone, &u.PasswordHash, &u.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, domain.NotFoundError{Resource: "user", Code: domain.CodeUserNotFound}
	}
	return u, storeErr("user", err)
}

func (r UserRepository) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	_, err := r.db().ExecContext(ctx,
		`INSERT INTO users (id, name, phone, password_hash, role) VALUES (?,?,?,?,?)`,
		u.ID, u.Name, u.Phone, u.PasswordHash, u.Role,
	)
	return storeErr("user", err)
}
