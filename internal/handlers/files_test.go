package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/foodlinkhq/foodlink/internal/handlers/testutil"
)

func TestFileHandler_UploadAndServe(t *testing.T) {
	env := testutil.NewEnv(t)
	donor := env.Signup("karims", "donor", "Delhi")

	w := env.Upload("/api/files/food-photos", "kebab.jpg", "image/jpeg", []byte("jpeg-bytes"), donor.Tokens.AccessToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var uploaded struct {
		ID     string `json:"id"`
		Bucket string `json:"bucket"`
		URL    string `json:"url"`
		Size   int64  `json:"size"`
	}
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &uploaded)
	require.Equal(t, "food-photos", uploaded.Bucket)
	require.EqualValues(t, 10, uploaded.Size)
	require.Equal(t, "http://localhost:8000/files/food-photos/"+uploaded.ID, uploaded.URL)

	serve := env.Do(httptest.NewRequest(http.MethodGet, "/files/food-photos/"+uploaded.ID, nil), "")
	require.Equal(t, http.StatusOK, serve.Code)
	require.Equal(t, "image/jpeg", serve.Header().Get("Content-Type"))
	require.Equal(t, "jpeg-bytes", serve.Body.String())
}

func TestFileHandler_Rejections(t *testing.T) {
	env := testutil.NewEnv(t)
	donor := env.Signup("paradise", "donor", "Hyderabad")

	anon := env.Upload("/api/files/food-photos", "a.jpg", "image/jpeg", []byte("x"), "")
	require.Equal(t, http.StatusUnauthorized, anon.Code)

	bucket := env.Upload("/api/files/avatars", "a.jpg", "image/jpeg", []byte("x"), donor.Tokens.AccessToken)
	require.Equal(t, http.StatusBadRequest, bucket.Code)
	require.Equal(t, "INVALID_BUCKET", testutil.DecodeResponse(t, bucket).Error.Code)

	noFile := env.Request(http.MethodPost, "/api/files/food-photos", map[string]string{}, donor.Tokens.AccessToken)
	require.Equal(t, http.StatusBadRequest, noFile.Code)

	missing := env.Do(httptest.NewRequest(http.MethodGet, "/files/food-photos/unknown", nil), "")
	require.Equal(t, http.StatusNotFound, missing.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	env := testutil.NewEnv(t)

	health := env.Request(http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, health.Code)

	metrics := env.Request(http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, metrics.Code)
	require.Contains(t, metrics.Body.String(), "foodlink_")

	unknown := env.Request(http.MethodGet, "/api/nope", nil, "")
	require.Equal(t, http.StatusNotFound, unknown.Code)
}
