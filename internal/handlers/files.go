package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foodlinkhq/foodlink/internal/middleware"
	"github.com/foodlinkhq/foodlink/internal/services"
	"github.com/foodlinkhq/foodlink/pkg/errors"
	"github.com/foodlinkhq/foodlink/pkg/response"
)

const uploadField = "file"

// FileHandler accepts multipart uploads and serves stored files.
type FileHandler struct {
	files *services.FileService
}

func NewFileHandler(files *services.FileService) *FileHandler {
	return &FileHandler{files: files}
}

// POST /api/files/:bucket
func (h *FileHandler) Upload(c *gin.Context) {
	header, err := c.FormFile(uploadField)
	if err != nil {
		response.Error(c, errors.NewBadRequest("multipart field \"file\" is required"))
		return
	}
	src, err := header.Open()
	if err != nil {
		response.Error(c, errors.NewBadRequest("unable to read uploaded file"))
		return
	}
	defer src.Close()

	uploaded, err := h.files.Upload(requestContext(c), c.GetString(middleware.CtxUserIDKey), c.Param("bucket"), services.FileUpload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        src,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, uploaded)
}

// GET /files/:bucket/:id
func (h *FileHandler) Serve(c *gin.Context) {
	record, file, err := h.files.Open(requestContext(c), c.Param("bucket"), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	contentType := record.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.DataFromReader(http.StatusOK, record.Size, contentType, file, nil)
}
