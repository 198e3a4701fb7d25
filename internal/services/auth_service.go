package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"hostel-backend/internal/domain"
	"hostel-backend/internal/domain/models"
	"hostel-backend/internal/repositories"
	"hostel-backend/internal/utils"
)

const (
	RoleAdmin   = "admin"
	RoleHostler = "hostler"
)

// Claims is the JWT payload issued on login.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService struct {
	Users     repositories.UserStore
	Secret    []byte
	TTL       time.Duration
	RequestID string
}

var errBadCredentials = domain.UnauthorizedError{Msg: "phone or password is incorrect"}

// Login checks the password with bcrypt and issues an HS256 token.
func (s AuthService) Login(ctx context.Context, phone, password string, now time.Time) (string, models.User, error) {
	if normalized, err := NormalizePhone(phone); err == nil {
		phone = normalized
	}
	u, err := s.Users.FindUserByPhone(ctx, strings.TrimSpace(phone))
	if domain.IsNotFound(err) {
		return "", models.User{}, errBadCredentials
	}
	if err != nil {
		return "", models.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		utils.LogEvent(s.RequestID, "auth", "login", "rejected user_id="+u.ID)
		return "", models.User{}, errBadCredentials
	}

	ttl := s.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: u.ID,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	signed, err := token.SignedString(s.Secret)
	if err != nil {
		return "", models.User{}, domain.InternalError{Msg: "could not sign token", Err: err}
	}
	utils.LogEvent(s.RequestID, "auth", "login", "user_id="+u.ID)
	return signed, u, nil
}

// ParseToken validates signature and expiry.
func (s AuthService) ParseToken(raw string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return s.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Claims{}, domain.UnauthorizedError{Msg: "invalid or expired token"}
	}
	return claims, nil
}

// EnsureAdmin creates the console account when no user with that phone exists.
func (s AuthService) EnsureAdmin(ctx context.Context, name, phone, password string) error {
	normalized, err := NormalizePhone(phone)
	if err != nil {
		return err
	}
	if _, err := s.Users.FindUserByPhone(ctx, normalized); err == nil {
		return nil
	} else if !domain.IsNotFound(err) {
		return err
	}
	if len(password) < 8 {
		return errors.New("admin password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u := models.User{Name: name, Phone: normalized, PasswordHash: string(hash), Role: RoleAdmin}
	if err := s.Users.CreateUser(ctx, &u); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "auth", "seed_admin", "user_id="+u.ID)
	return nil
}
