package user

import (
	"context"
	"testing"

	"review-service/internal/domain"
	"review-service/internal/shared/db/dbtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	store := dbtest.Open(t, &User{})
	return NewService(NewRepository(store), WithHashCost(bcrypt.MinCost))
}

func register(t *testing.T, svc Service, name string) *User {
	t.Helper()
	u, err := svc.Register(context.Background(), RegisterReq{
		Username: name, Password: "password1", PasswordConfirm: "password1",
	})
	require.NoError(t, err)
	return u
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	u := register(t, svc, "alice")
	assert.NotZero(t, u.ID)
	assert.NotEqual(t, "password1", u.PassHash)

	got, err := svc.Login(ctx, LoginReq{Username: "alice", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestService(t)
	register(t, svc, "alice")

	_, err := svc.Login(context.Background(), LoginReq{Username: "alice", Password: "nope-nope"})
	assert.ErrorIs(t, err, domain.ErrBadCredentials)

	_, err = svc.Login(context.Background(), LoginReq{Username: "ghost", Password: "password1"})
	assert.ErrorIs(t, err, domain.ErrBadCredentials)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newTestService(t)
	register(t, svc, "alice")

	_, err := svc.Register(context.Background(), RegisterReq{
		Username: "alice", Password: "password2", PasswordConfirm: "password2",
	})
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t)
	tests := []struct {
		name  string
		in    RegisterReq
		field string
	}{
		{"mismatch", RegisterReq{Username: "bob", Password: "password1", PasswordConfirm: "password2"}, "password_confirm"},
		{"short password", RegisterReq{Username: "bob", Password: "short", PasswordConfirm: "short"}, "password"},
		{"bad chars", RegisterReq{Username: "bob smith", Password: "password1", PasswordConfirm: "password1"}, "username"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.in)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestUsernamesByID(t *testing.T) {
	svc := newTestService(t)
	a := register(t, svc, "alice")
	b := register(t, svc, "bob")

	names, err := svc.UsernamesByID(context.Background(), []uint{a.ID, b.ID, 999})
	require.NoError(t, err)
	assert.Equal(t, map[uint]string{a.ID: "alice", b.ID: "bob"}, names)
}
