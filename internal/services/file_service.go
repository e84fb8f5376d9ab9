package services

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/foodlinkhq/foodlink/internal/models"
	"github.com/foodlinkhq/foodlink/internal/repository"
	"github.com/foodlinkhq/foodlink/internal/storage"
	apperrors "github.com/foodlinkhq/foodlink/pkg/errors"
	"github.com/foodlinkhq/foodlink/pkg/logger"
)

// FileUpload is a single uploaded part.
type FileUpload struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// UploadedFile is the stored record plus the URL it is served from.
type UploadedFile struct {
	*models.StoredFile
	URL string `json:"url"`
}

// FileService stores donation photos and NGO documents. Bytes go to the blob store and
// metadata to the repository.
type FileService struct {
	repo  repository.Repository
	blobs *storage.BlobStore
	log   *zap.Logger
}

// NewFileService constructs a FileService.
func NewFileService(repo repository.Repository, blobs *storage.BlobStore) (*FileService, error) {
	if repo == nil {
		return nil, errors.New("file service: repository is required")
	}
	if blobs == nil {
		return nil, errors.New("file service: blob store is required")
	}
	return &FileService{repo: repo, blobs: blobs, log: logger.WithModule("files")}, nil
}

// Upload writes the blob and records its metadata. The blob is removed again when the
// metadata cannot be saved.
func (s *FileService) Upload(ctx context.Context, ownerID, bucket string, upload FileUpload) (*UploadedFile, error) {
	ctx = ensuredContext(ctx)
	if upload.Body == nil {
		return nil, apperrors.NewBadRequest("file is required")
	}

	bucket = strings.TrimSpace(bucket)
	id := uuid.NewString()
	size, err := s.blobs.Put(bucket, id, upload.Body)
	if err != nil {
		return nil, blobError(err)
	}

	record := &models.StoredFile{
		BaseModel:   models.BaseModel{ID: id},
		Bucket:      bucket,
		OwnerID:     ownerID,
		Name:        strings.TrimSpace(upload.Name),
		ContentType: strings.TrimSpace(upload.ContentType),
		Size:        size,
	}
	if err := s.repo.CreateFile(ctx, record); err != nil {
		if rmErr := s.blobs.Delete(bucket, id); rmErr != nil {
			s.log.Warn("orphaned blob", zap.String("bucket", bucket), zap.String("id", id), zap.Error(rmErr))
		}
		return nil, storageError(err, nil)
	}

	s.log.Debug("file stored", zap.String("bucket", bucket), zap.String("id", id), zap.Int64("size", size))
	return &UploadedFile{StoredFile: record, URL: s.blobs.PublicURL(bucket, id)}, nil
}

// Open returns the metadata and a reader for a stored file. Callers close the reader.
func (s *FileService) Open(ctx context.Context, bucket, id string) (*models.StoredFile, afero.File, error) {
	ctx = ensuredContext(ctx)
	record, err := s.repo.GetFile(ctx, bucket, id)
	if err != nil {
		return nil, nil, storageError(err, ErrFileNotFound)
	}
	file, err := s.blobs.Open(bucket, id)
	if err != nil {
		return nil, nil, blobError(err)
	}
	return record, file, nil
}

func blobError(err error) error {
	switch {
	case errors.Is(err, storage.ErrInvalidBucket):
		return ErrInvalidBucket
	case errors.Is(err, storage.ErrInvalidID), errors.Is(err, storage.ErrNotFound):
		return ErrFileNotFound
	case errors.Is(err, storage.ErrTooLarge):
		return ErrFileTooLarge
	default:
		return apperrors.ErrInternalServer.WithInternal(err)
	}
}
