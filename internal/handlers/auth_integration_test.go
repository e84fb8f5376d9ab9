package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/foodlinkhq/foodlink/internal/handlers/testutil"
)

func TestAuthHandler_SignupLoginRefreshLogout(t *testing.T) {
	env := testutil.NewEnv(t)
	signup := env.Signup("annapurna", "donor", "12 MG Road, Bengaluru")
	token := signup.Tokens.AccessToken

	me := env.Request(http.MethodGet, "/api/auth/me", nil, token)
	require.Equal(t, http.StatusOK, me.Code)
	var meData testutil.UserPayload
	testutil.DecodeInto(t, testutil.DecodeResponse(t, me).Data, &meData)
	require.Equal(t, signup.User.ID, meData.ID)
	require.Equal(t, "donor", meData.Role)
	require.NotContains(t, me.Body.String(), "password")

	login := env.Request(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    signup.User.Email,
		"password": "Passw0rd!",
	}, "")
	require.Equal(t, http.StatusOK, login.Code, login.Body.String())

	refresh := env.Request(http.MethodPost, "/api/auth/refresh", map[string]string{
		"refresh_token": signup.Tokens.RefreshToken,
	}, "")
	require.Equal(t, http.StatusOK, refresh.Code, refresh.Body.String())
	var rotated testutil.TokenPair
	testutil.DecodeInto(t, testutil.DecodeResponse(t, refresh).Data, &rotated)
	require.NotEqual(t, signup.Tokens.RefreshToken, rotated.RefreshToken)

	logout := env.Request(http.MethodPost, "/api/auth/logout", nil, rotated.AccessToken)
	require.Equal(t, http.StatusOK, logout.Code, logout.Body.String())

	again := env.Request(http.MethodPost, "/api/auth/refresh", map[string]string{
		"refresh_token": rotated.RefreshToken,
	}, "")
	require.Equal(t, http.StatusUnauthorized, again.Code)
}

func TestAuthHandler_Rejections(t *testing.T) {
	env := testutil.NewEnv(t)
	signup := env.Signup("helping-hands", "ngo", "Pune")

	dup := env.Request(http.MethodPost, "/api/auth/signup", map[string]string{
		"name":     "Someone",
		"email":    signup.User.Email,
		"password": "Passw0rd!",
		"role":     "donor",
	}, "")
	require.Equal(t, http.StatusConflict, dup.Code)
	require.Equal(t, "EMAIL_TAKEN", testutil.DecodeResponse(t, dup).Error.Code)

	badRole := env.Request(http.MethodPost, "/api/auth/signup", map[string]string{
		"name":     "Someone",
		"email":    "admin@example.com",
		"password": "Passw0rd!",
		"role":     "admin",
	}, "")
	require.Equal(t, http.StatusBadRequest, badRole.Code)
	require.Contains(t, testutil.DecodeResponse(t, badRole).Error.Message, "role must be one of")

	wrong := env.Request(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    signup.User.Email,
		"password": "nope",
	}, "")
	require.Equal(t, http.StatusUnauthorized, wrong.Code)
	require.Equal(t, "INVALID_CREDENTIALS", testutil.DecodeResponse(t, wrong).Error.Code)

	anon := env.Request(http.MethodGet, "/api/auth/me", nil, "")
	require.Equal(t, http.StatusUnauthorized, anon.Code)
}
