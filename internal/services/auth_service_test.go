package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"hostel-backend/internal/domain"
	"hostel-backend/internal/repositories/memory"
)

func newAuth() AuthService {
	return AuthService{Users: memory.New(), Secret: []byte("test-secret"), TTL: time.Hour}
}

func TestEnsureAdminAndLogin(t *testing.T) {
	ctx := context.Background()
	auth := newAuth()

	if err := auth.EnsureAdmin(ctx, "Warden", "9876543210", "correct-horse"); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	// second call is a no-op even with another password
	if err := auth.EnsureAdmin(ctx, "Warden", "+919876543210", "other-password"); err != nil {
		t.Fatalf("EnsureAdmin repeat: %v", err)
	}

	token, user, err := auth.Login(ctx, "98765 43210", "correct-horse", time.Now())
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.Role != RoleAdmin || user.Phone != "+919876543210" {
		t.Fatalf("unexpected user %+v", user)
	}
	if user.PasswordHash == "correct-horse" {
		t.Fatalf("password must be stored hashed")
	}

	claims, err := auth.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != RoleAdmin {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	auth := newAuth()
	if err := auth.EnsureAdmin(ctx, "Warden", "9876543210", "correct-horse"); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}

	for _, tc := range []struct{ phone, password string }{
		{"9876543210", "wrong-password"},
		{"9000000000", "correct-horse"},
	} {
		_, _, err := auth.Login(ctx, tc.phone, tc.password, time.Now())
		if !domain.IsUnauthorized(err) {
			t.Fatalf("%s: expected unauthorized, got %v", tc.phone, err)
		}
		expectCode(t, err, domain.CodeInvalidCredentials)
	}
}

func TestEnsureAdminShortPassword(t *testing.T) {
	if err := newAuth().EnsureAdmin(context.Background(), "Warden", "9876543210", "short"); err == nil {
		t.Fatalf("expected short password to be refused")
	}
}

func TestParseTokenRejects(t *testing.T) {
	ctx := context.Background()
	auth := newAuth()
	if err := auth.EnsureAdmin(ctx, "Warden", "9876543210", "correct-horse"); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}

	expired, _, err := auth.Login(ctx, "9876543210", "correct-horse", time.Now().Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := auth.ParseToken(expired); !domain.IsUnauthorized(err) {
		t.Fatalf("expected expired token to be rejected, got %v", err)
	}

	other := AuthService{Users: auth.Users, Secret: []byte("another-secret"), TTL: time.Hour}
	forged, _, err := other.Login(ctx, "9876543210", "correct-horse", time.Now())
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := auth.ParseToken(forged); !domain.IsUnauthorized(err) {
		t.Fatalf("expected foreign signature to be rejected, got %v", err)
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "x", Role: RoleAdmin})
	raw, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := auth.ParseToken(raw); !domain.IsUnauthorized(err) {
		t.Fatalf("expected alg=none to be rejected, got %v", err)
	}
}
