package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/foodlinkhq/foodlink/internal/api"
	iauth "github.com/foodlinkhq/foodlink/internal/auth"
	sharedtestutil "github.com/foodlinkhq/foodlink/internal/database/testutil"
	"github.com/foodlinkhq/foodlink/internal/repository"
	"github.com/foodlinkhq/foodlink/internal/services"
	"github.com/foodlinkhq/foodlink/internal/storage"
	"github.com/foodlinkhq/foodlink/pkg/response"
)

// Env encapsulates a fully-wired API instance backed by an in-memory database for handler tests.
type Env struct {
	T      *testing.T
	DB     *gorm.DB
	Repo   repository.Repository
	Router *gin.Engine
	JWT    *iauth.JWTService
	FS     afero.Fs
}

// NewEnv provisions a fresh handler test environment with migrations applied.
func NewEnv(t *testing.T) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db := sharedtestutil.MustOpenTestDB(t, sharedtestutil.WithAutoMigrate())
	repo, err := repository.New(db)
	require.NoError(t, err)

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{
		Secret:         "test-suite-super-secret-key-32-bytes!!",
		Issuer:         "test-suite",
		AccessTokenTTL: time.Hour,
	})
	require.NoError(t, err)

	sessions, err := iauth.NewSessionService(db, jwtSvc, iauth.SessionConfig{
		RefreshTokenTTL: 24 * time.Hour,
		RefreshLength:   48,
	})
	require.NoError(t, err)

	profiles, err := services.NewProfileService(repo, sessions)
	require.NoError(t, err)
	donations, err := services.NewDonationService(repo, services.DonationConfig{})
	require.NoError(t, err)
	stats, err := services.NewStatsService(repo, donations, services.StatsConfig{})
	require.NoError(t, err)

	fs := afero.NewMemMapFs()
	blobs, err := storage.NewBlobStore(fs, storage.Config{
		Root:          "/files",
		PublicBaseURL: "http://localhost:8000",
		MaxUploadSize: 1 << 20,
		Buckets:       []string{"food-photos", "ngo-docs"},
	})
	require.NoError(t, err)
	files, err := services.NewFileService(repo, blobs)
	require.NoError(t, err)

	router, err := api.NewRouter(api.Deps{
		DB:        db,
		JWT:       jwtSvc,
		Profiles:  profiles,
		Donations: donations,
		Stats:     stats,
		Files:     files,
	})
	require.NoError(t, err)

	return &Env{
		T:      t,
		DB:     db,
		Repo:   repo,
		Router: router,
		JWT:    jwtSvc,
		FS:     fs,
	}
}

// UserPayload captures the user fields returned from auth endpoints.
type UserPayload struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	MobileNo string `json:"mobile_no"`
	Location string `json:"location"`
	Role     string `json:"role"`
}

// TokenPair mirrors the token payload issued on signup, login and refresh.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AuthResult bundles the JSON response from signup and login.
type AuthResult struct {
	User   UserPayload `json:"user"`
	Tokens TokenPair   `json:"tokens"`
}

// Signup registers a new account with a unique email and returns the issued tokens.
func (e *Env) Signup(name, role, location string) AuthResult {
	e.T.Helper()

	payload := map[string]string{
		"name":     name,
		"email":    fmt.Sprintf("%s-%s@example.com", name, uuid.NewString()[:8]),
		"password": "Passw0rd!",
		"location": location,
		"role":     role,
	}

	w := e.Request(http.MethodPost, "/api/auth/signup", payload, "")
	require.Equal(e.T, http.StatusCreated, w.Code, w.Body.String())

	resp := DecodeResponse(e.T, w)
	require.True(e.T, resp.Success, w.Body.String())

	var result AuthResult
	DecodeInto(e.T, resp.Data, &result)
	require.NotEmpty(e.T, result.Tokens.AccessToken)
	require.NotEmpty(e.T, result.Tokens.RefreshToken)
	require.Equal(e.T, role, result.User.Role)
	return result
}

// APIResponse represents the canonical API envelope returned by handlers.
type APIResponse struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
	Meta    *response.Meta      `json:"meta"`
}

// DecodeResponse parses the standard API response object from a recorder.
func DecodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// DecodeInto unmarshals the data payload into the provided destination.
func DecodeInto[T any](t *testing.T, raw json.RawMessage, dest *T) {
	t.Helper()
	if dest == nil {
		t.Fatal("destination must not be nil")
	}
	require.NoError(t, json.Unmarshal(raw, dest))
}

// Request executes an HTTP request against the test router, applying JSON encoding and auth headers automatically.
func (e *Env) Request(method, path string, body any, token string) *httptest.ResponseRecorder {
	e.T.Helper()

	var buf io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.T, err)
		buf = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, path, buf)
	require.NoError(e.T, err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.Do(req, token)
}

// Upload posts content as the multipart "file" field.
func (e *Env) Upload(path, filename, contentType string, content []byte, token string) *httptest.ResponseRecorder {
	e.T.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(map[string][]string)
	header["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name="file"; filename=%q`, filename)}
	header["Content-Type"] = []string{contentType}
	part, err := writer.CreatePart(header)
	require.NoError(e.T, err)
	_, err = part.Write(content)
	require.NoError(e.T, err)
	require.NoError(e.T, writer.Close())

	req, err := http.NewRequest(http.MethodPost, path, &body)
	require.NoError(e.T, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return e.Do(req, token)
}

// Do serves req with an optional bearer token.
func (e *Env) Do(req *http.Request, token string) *httptest.ResponseRecorder {
	e.T.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}
