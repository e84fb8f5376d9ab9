package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/foodlinkhq/foodlink/internal/auth"
	"github.com/foodlinkhq/foodlink/internal/models"
	apperrors "github.com/foodlinkhq/foodlink/pkg/errors"
)

func TestSignupCreatesAccountAndSession(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.profiles.Signup(context.Background(), SignupInput{
		Name:     "Asha",
		Email:    " Asha@Example.com ",
		Password: "s3cret-pass",
		Location: "Koregaon Park, Pune",
		Role:     models.RoleDonor,
	}, auth.SessionMetadata{IPAddress: "127.0.0.1"})
	require.NoError(t, err)
	require.Equal(t, "asha@example.com", result.User.Email)
	require.NotEqual(t, "s3cret-pass", result.User.Password)
	require.NotEmpty(t, result.Tokens.AccessToken)
	require.NotEmpty(t, result.Tokens.RefreshToken)

	var sessions int64
	require.NoError(t, env.db.Model(&models.Session{}).Where("user_id = ?", result.User.ID).Count(&sessions).Error)
	require.EqualValues(t, 1, sessions)
}

func TestCreateAccountRejectsDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	input := SignupInput{Name: "Ravi", Email: "ravi@example.com", Password: "pw", Role: models.RoleNGO}
	_, err := env.profiles.CreateAccount(ctx, input)
	require.NoError(t, err)

	input.Email = "RAVI@example.com"
	_, err = env.profiles.CreateAccount(ctx, input)
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestCreateAccountRejectsUnknownRole(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.profiles.CreateAccount(context.Background(), SignupInput{Name: "X", Email: "x@example.com", Password: "pw", Role: "admin"})
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "BAD_REQUEST", appErr.Code)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.profiles.CreateAccount(ctx, SignupInput{Name: "Meera", Email: "meera@example.com", Password: "right", Role: models.RoleDonor})
	require.NoError(t, err)

	result, err := env.profiles.Login(ctx, "meera@example.com", "right", auth.SessionMetadata{})
	require.NoError(t, err)
	require.Equal(t, models.RoleDonor, result.User.Role)

	_, err = env.profiles.Login(ctx, "meera@example.com", "wrong", auth.SessionMetadata{})
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = env.profiles.Login(ctx, "nobody@example.com", "right", auth.SessionMetadata{})
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestRefreshAndLogout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	result, err := env.profiles.Signup(ctx, SignupInput{Name: "Kiran", Email: "kiran@example.com", Password: "pw", Role: models.RoleNGO}, auth.SessionMetadata{})
	require.NoError(t, err)

	rotated, err := env.profiles.Refresh(ctx, result.Tokens.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, result.Tokens.RefreshToken, rotated.RefreshToken)

	_, err = env.profiles.Refresh(ctx, result.Tokens.RefreshToken)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "UNAUTHORIZED", appErr.Code)

	var session models.Session
	require.NoError(t, env.db.Take(&session, "refresh_token = ?", rotated.RefreshToken).Error)
	require.NoError(t, env.profiles.Logout(ctx, session.ID))
	require.NoError(t, env.profiles.Logout(ctx, session.ID))

	_, err = env.profiles.Refresh(ctx, rotated.RefreshToken)
	require.Error(t, err)
}

func TestUpdateProfileKeepsRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "donor", models.RoleDonor, "Chennai")

	name := "Donor Two"
	loc := "Anna Nagar, Chennai"
	updated, err := env.profiles.UpdateProfile(ctx, user.ID, UpdateProfileInput{Name: &name, Location: &loc})
	require.NoError(t, err)
	require.Equal(t, name, updated.Name)
	require.Equal(t, loc, updated.Location)
	require.Equal(t, models.RoleDonor, updated.Role)

	blank := "  "
	_, err = env.profiles.UpdateProfile(ctx, user.ID, UpdateProfileInput{Name: &blank})
	require.Error(t, err)

	_, err = env.profiles.UpdateProfile(ctx, "missing", UpdateProfileInput{Name: &name})
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestNGOProfileLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ngo := env.createUser(t, "ngo", models.RoleNGO, "Pune")

	profile, err := env.profiles.GetNGOProfile(ctx, ngo.ID)
	require.NoError(t, err)
	require.Nil(t, profile)

	profile, err = env.profiles.SaveNGOProfile(ctx, ngo.ID, NGOProfileInput{NGOName: "Feed Pune", NGOAddress: "Baner, Pune"})
	require.NoError(t, err)
	require.False(t, profile.IsVerified)

	profile, err = env.profiles.SaveNGOProfile(ctx, ngo.ID, NGOProfileInput{NGOName: "Feed Pune Trust", NGOAddress: "Aundh, Pune"})
	require.NoError(t, err)
	require.Equal(t, "Feed Pune Trust", profile.NGOName)
	require.False(t, profile.IsVerified)

	require.NoError(t, env.profiles.VerifyNGO(ctx, ngo.ID, true))
	profile, err = env.profiles.GetNGOProfile(ctx, ngo.ID)
	require.NoError(t, err)
	require.True(t, profile.IsVerified)

	_, err = env.profiles.SaveNGOProfile(ctx, ngo.ID, NGOProfileInput{})
	require.Error(t, err)
}

func TestSaveNGOProfileRequiresNGO(t *testing.T) {
	env := newTestEnv(t)
	donor := env.createUser(t, "donor", models.RoleDonor, "Pune")

	_, err := env.profiles.SaveNGOProfile(context.Background(), donor.ID, NGOProfileInput{NGOName: "Nope"})
	require.ErrorIs(t, err, ErrRoleNotPermitted)
}
