package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"chatiip-backend/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func newAuth(t *testing.T, opts ...AuthServiceOption) (*AuthService, *memUsers) {
	t.Helper()
	users := newMemUsers()
	opts = append([]AuthServiceOption{WithUserRepository(users), WithJWTSecret("test-secret")}, opts...)
	return NewAuthService(opts...), users
}

func TestEnsureAdminAndLogin(t *testing.T) {
	auth, users := newAuth(t)
	ctx := context.Background()

	created, err := auth.EnsureAdmin(ctx, "Admin@ChatIIP.com ", "s3cret")
	if err != nil || !created {
		t.Fatalf("EnsureAdmin = %v, %v", created, err)
	}
	created, err = auth.EnsureAdmin(ctx, "admin@chatiip.com", "other")
	if err != nil || created {
		t.Fatalf("second EnsureAdmin = %v, %v", created, err)
	}
	if len(users.users) != 1 {
		t.Fatalf("users = %d", len(users.users))
	}

	res, err := auth.Login(ctx, "ADMIN@chatiip.com", "s3cret")
	if err != nil {
		t.Fatal(err)
	}
	if res.User.Role != models.RoleAdmin || res.User.Name != "Admin" {
		t.Errorf("user = %+v", res.User)
	}

	claims, err := auth.ParseToken(res.Token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != res.User.ID.String() || claims.Email != "admin@chatiip.com" || !claims.IsAdmin() {
		t.Errorf("claims = %+v", claims)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	auth, _ := newAuth(t)
	ctx := context.Background()
	if _, err := auth.CreateUser(ctx, "user@example.com", "right", "U", ""); err != nil {
		t.Fatal(err)
	}
	for _, tc := range []struct{ email, password string }{
		{"user@example.com", "wrong"},
		{"nobody@example.com", "right"},
		{"", ""},
	} {
		if _, err := auth.Login(ctx, tc.email, tc.password); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Login(%q) err = %v", tc.email, err)
		}
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	auth, _ := newAuth(t)
	ctx := context.Background()
	u, err := auth.CreateUser(ctx, "a@b.c", "pw", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if u.Role != models.RoleUser || u.PasswordHash == "pw" {
		t.Errorf("user = %+v", u)
	}
	if _, err := auth.CreateUser(ctx, "A@B.C", "pw", "", ""); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate err = %v", err)
	}
}

func TestParseTokenRejects(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	auth, _ := newAuth(t, WithTokenTTL(time.Hour), WithAuthClock(func() time.Time { return now }))
	user := &models.User{Email: "x@y.z", Role: models.RoleUser}

	token, err := auth.IssueToken(user)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := auth.ParseToken(token); err != nil {
		t.Fatalf("fresh token rejected: %v", err)
	}

	now = now.Add(2 * time.Hour)
	if _, err := auth.ParseToken(token); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expired token err = %v", err)
	}

	other := NewAuthService(WithJWTSecret("another"))
	forged, _ := other.IssueToken(user)
	if _, err := auth.ParseToken(forged); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("wrong key err = %v", err)
	}

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"role": "admin"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if _, err := auth.ParseToken(none); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("alg none err = %v", err)
	}
	if _, err := auth.ParseToken(""); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("empty token err = %v", err)
	}
}

func TestListAndGetUsers(t *testing.T) {
	auth, _ := newAuth(t)
	ctx := context.Background()
	u, _ := auth.CreateUser(ctx, "lan@example.com", "pw", "Lan", "")
	auth.CreateUser(ctx, "minh@example.com", "pw", "Minh", "")

	res, err := auth.ListUsers(ctx, "lan", 0, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 1 || res.Limit != maxPageLimit || res.Page != 1 {
		t.Errorf("list = %+v", res)
	}

	got, err := auth.GetUser(ctx, u.ID)
	if err != nil || got.Email != "lan@example.com" {
		t.Errorf("GetUser = %+v, %v", got, err)
	}
	if _, err := auth.GetUser(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing user err = %v", err)
	}
}
