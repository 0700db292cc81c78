// service/auth/auth_service_test.go
package authsvc

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"libms/model"
	userrepo "libms/repository/user"
	"libms/util/database"
	jwtutil "libms/util/jwt"
)

const testSecret = "test-secret"

func newTestService(t *testing.T) (Service, *sql.DB) {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(userrepo.New(db), testSecret), db
}

func registerReq(email, role string) model.RegisterReq {
	return model.RegisterReq{
		Name:     "Ravi Kumar",
		Email:    email,
		Password: "supersecret",
		Role:     role,
		StreamID: "eng",
		CourseID: "cse",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, registerReq("Ravi@Example.COM", "student"))
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	require.Equal(t, "ravi@example.com", u.Email)
	require.NotEqual(t, "supersecret", u.PasswordHash)

	got, tok, err := svc.Login(ctx, model.LoginReq{
		Email:    "ravi@example.com",
		Password: "supersecret",
		Role:     "student",
	})
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.NotEmpty(t, tok)

	id, err := jwtutil.ParseAuth("Bearer "+tok, testSecret)
	require.NoError(t, err)
	require.Equal(t, u.ID, id.UserID)
	require.Equal(t, "student", id.Role)
}

func TestRegisterEmailTaken(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerReq("dup@example.com", "student"))
	require.NoError(t, err)

	_, err = svc.Register(ctx, registerReq("DUP@example.com", "faculty"))
	require.Error(t, err)
	require.Equal(t, ErrEmailTaken, Code(err))
}

func TestRegisterBadInput(t *testing.T) {
	svc, _ := newTestService(t)

	req := registerReq("short@example.com", "student")
	req.Password = "123"
	_, err := svc.Register(context.Background(), req)
	require.Equal(t, ErrBadInput, Code(err))

	req = registerReq("  ", "student")
	_, err = svc.Register(context.Background(), req)
	require.Equal(t, ErrBadInput, Code(err))
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerReq("ravi@example.com", "student"))
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, model.LoginReq{
		Email:    "ravi@example.com",
		Password: "wrong-password",
		Role:     "student",
	})
	require.Equal(t, ErrInvalidCreds, Code(err))
}

func TestLoginWrongRole(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerReq("ravi@example.com", "student"))
	require.NoError(t, err)

	// same credentials, wrong portal
	_, _, err = svc.Login(ctx, model.LoginReq{
		Email:    "ravi@example.com",
		Password: "supersecret",
		Role:     "admin",
	})
	require.Equal(t, ErrInvalidCreds, Code(err))
}

func TestProfileNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Profile(context.Background(), uuid.NewString())
	require.Equal(t, ErrUserNotFound, Code(err))
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, registerReq("ravi@example.com", "student"))
	require.NoError(t, err)

	require.NoError(t, svc.UpdateProfile(ctx, u.ID, model.UpdateProfileReq{
		Name:  "Ravi K",
		Email: "ravi.k@example.com",
	}))
	got, err := svc.Profile(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "Ravi K", got.Name)
	require.Equal(t, "ravi.k@example.com", got.Email)

	err = svc.UpdateProfile(ctx, u.ID, model.UpdateProfileReq{
		CurrentPassword: "not-the-password",
		NewPassword:     "newsecret",
	})
	require.Equal(t, ErrWrongCurrent, Code(err))

	require.NoError(t, svc.UpdateProfile(ctx, u.ID, model.UpdateProfileReq{
		CurrentPassword: "supersecret",
		NewPassword:     "newsecret",
	}))
	_, _, err = svc.Login(ctx, model.LoginReq{
		Email:    "ravi.k@example.com",
		Password: "newsecret",
		Role:     "student",
	})
	require.NoError(t, err)
}

func TestUpdateProfileEmailTaken(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerReq("first@example.com", "student"))
	require.NoError(t, err)
	u2, err := svc.Register(ctx, registerReq("second@example.com", "student"))
	require.NoError(t, err)

	err = svc.UpdateProfile(ctx, u2.ID, model.UpdateProfileReq{Email: "first@example.com"})
	require.Equal(t, ErrEmailTaken, Code(err))
}
