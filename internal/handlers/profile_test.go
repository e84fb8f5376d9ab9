package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/foodlinkhq/foodlink/internal/handlers/testutil"
)

func TestProfileHandler_UpdateKeepsRole(t *testing.T) {
	env := testutil.NewEnv(t)
	donor := env.Signup("meera", "donor", "Chennai")

	w := env.Request(http.MethodPatch, "/api/profile", map[string]any{
		"location": "Anna Nagar, Chennai",
		"role":     "ngo",
	}, donor.Tokens.AccessToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated testutil.UserPayload
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &updated)
	require.Equal(t, "Anna Nagar, Chennai", updated.Location)
	require.Equal(t, "meera", updated.Name)
	require.Equal(t, "donor", updated.Role)

	blank := env.Request(http.MethodPatch, "/api/profile", map[string]any{"name": "   "}, donor.Tokens.AccessToken)
	require.Equal(t, http.StatusBadRequest, blank.Code)
}

func TestProfileHandler_NGOProfile(t *testing.T) {
	env := testutil.NewEnv(t)
	ngo := env.Signup("seva", "ngo", "Hyderabad")
	donor := env.Signup("ravi", "donor", "Hyderabad")

	empty := env.Request(http.MethodGet, "/api/profile/ngo", nil, ngo.Tokens.AccessToken)
	require.Equal(t, http.StatusOK, empty.Code)
	require.Contains(t, empty.Body.String(), `"data":null`)

	payload := map[string]string{"ngo_name": "Seva Trust", "ngo_address": "Banjara Hills, Hyderabad"}
	saved := env.Request(http.MethodPut, "/api/profile/ngo", payload, ngo.Tokens.AccessToken)
	require.Equal(t, http.StatusOK, saved.Code, saved.Body.String())

	var profile map[string]any
	testutil.DecodeInto(t, testutil.DecodeResponse(t, saved).Data, &profile)
	require.Equal(t, "Seva Trust", profile["ngo_name"])
	require.Equal(t, false, profile["is_verified"])

	forbidden := env.Request(http.MethodPut, "/api/profile/ngo", payload, donor.Tokens.AccessToken)
	require.Equal(t, http.StatusForbidden, forbidden.Code)

	missing := env.Request(http.MethodPut, "/api/profile/ngo", map[string]string{"ngo_name": "Seva"}, ngo.Tokens.AccessToken)
	require.Equal(t, http.StatusBadRequest, missing.Code)
}
