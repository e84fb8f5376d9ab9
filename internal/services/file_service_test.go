package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/foodlinkhq/foodlink/internal/models"
	"github.com/foodlinkhq/foodlink/internal/repository"
	"github.com/foodlinkhq/foodlink/internal/storage"
	apperrors "github.com/foodlinkhq/foodlink/pkg/errors"
)

func newFileService(t *testing.T, env *testEnv, maxSize int64) (*FileService, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	blobs, err := storage.NewBlobStore(fs, storage.Config{
		Root:          "/files",
		PublicBaseURL: "http://localhost:8000",
		MaxUploadSize: maxSize,
		Buckets:       []string{"food-photos", "ngo-docs"},
	})
	require.NoError(t, err)
	svc, err := NewFileService(env.repo, blobs)
	require.NoError(t, err)
	return svc, fs
}

func TestFileServiceUploadAndOpen(t *testing.T) {
	env := newTestEnv(t)
	svc, _ := newFileService(t, env, 1024)
	donor := env.createUser(t, "asha", models.RoleDonor, "Pune")

	uploaded, err := svc.Upload(context.Background(), donor.ID, "food-photos", FileUpload{
		Name:        "biryani.jpg",
		ContentType: "image/jpeg",
		Body:        strings.NewReader("jpeg"),
	})
	require.NoError(t, err)
	require.EqualValues(t, 4, uploaded.Size)
	require.Equal(t, "http://localhost:8000/files/food-photos/"+uploaded.ID, uploaded.URL)

	record, file, err := svc.Open(context.Background(), "food-photos", uploaded.ID)
	require.NoError(t, err)
	defer file.Close()
	require.Equal(t, "image/jpeg", record.ContentType)
	require.Equal(t, donor.ID, record.OwnerID)
	body, err := io.ReadAll(file)
	require.NoError(t, err)
	require.Equal(t, "jpeg", string(body))
}

func TestFileServiceRejects(t *testing.T) {
	env := newTestEnv(t)
	svc, _ := newFileService(t, env, 4)
	donor := env.createUser(t, "ravi", models.RoleDonor, "Pune")

	_, err := svc.Upload(context.Background(), donor.ID, "avatars", FileUpload{Body: strings.NewReader("x")})
	require.ErrorIs(t, err, ErrInvalidBucket)

	_, err = svc.Upload(context.Background(), donor.ID, "food-photos", FileUpload{Body: strings.NewReader("too large")})
	require.ErrorIs(t, err, ErrFileTooLarge)

	_, _, err = svc.Open(context.Background(), "food-photos", "missing")
	require.ErrorIs(t, err, ErrFileNotFound)
}

type failingFileRepo struct {
	repository.Repository
}

func (failingFileRepo) CreateFile(context.Context, *models.StoredFile) error {
	return fmt.Errorf("repository: create file: %w: disk full", repository.ErrUnavailable)
}

func TestFileServiceRemovesBlobWhenRecordFails(t *testing.T) {
	env := newTestEnv(t)
	fs := afero.NewMemMapFs()
	blobs, err := storage.NewBlobStore(fs, storage.Config{Root: "/files"})
	require.NoError(t, err)
	svc, err := NewFileService(failingFileRepo{Repository: env.repo}, blobs)
	require.NoError(t, err)

	_, err = svc.Upload(context.Background(), "owner", "food-photos", FileUpload{Body: strings.NewReader("x")})
	require.ErrorIs(t, err, apperrors.ErrRepositoryUnavailable)

	entries, err := afero.ReadDir(fs, "/files/food-photos")
	require.NoError(t, err)
	require.Empty(t, entries)
}
