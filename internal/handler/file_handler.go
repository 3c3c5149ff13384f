package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/campushq/studentdesk/internal/middleware"
	"github.com/campushq/studentdesk/internal/models"
	"github.com/campushq/studentdesk/internal/service"
	appErrors "github.com/campushq/studentdesk/pkg/errors"
	"github.com/campushq/studentdesk/pkg/response"
	"github.com/campushq/studentdesk/pkg/storage"
)

type documentFinder interface {
	FindByFilename(ctx context.Context, filename string) (*models.Document, error)
}

// FileHandler streams stored documents and QR images.
type FileHandler struct {
	uploads   *storage.LocalStorage
	qrFiles   *storage.LocalStorage
	documents documentFinder
	qr        *service.QRService
	logger    *zap.Logger
}

// NewFileHandler creates a new handler.
func NewFileHandler(uploads, qrFiles *storage.LocalStorage, documents documentFinder, qr *service.QRService, logger *zap.Logger) *FileHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileHandler{uploads: uploads, qrFiles: qrFiles, documents: documents, qr: qr, logger: logger}
}

// ServeUpload streams a stored document. A student may only fetch files
// backing their own documents; the admin may fetch any. Guessing a
// filename is not enough. Unauthenticated requests go to the login page
// like every other session-gated route.
func (h *FileHandler) ServeUpload(c *gin.Context) {
	student, ok := middleware.Current(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	filename := c.Param("filename")

	doc, err := h.documents.FindByFilename(c.Request.Context(), filename)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "file not found"))
			return
		}
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up document"))
		return
	}
	if !student.IsAdmin() && doc.StudentPK != student.ID {
		response.Error(c, appErrors.ErrForbidden)
		return
	}

	path, err := h.uploads.Path(filename)
	if err != nil || !h.uploads.Exists(filename) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "file not found"))
		return
	}
	c.File(path)
}

// ServeQR streams a student's QR login image.
func (h *FileHandler) ServeQR(c *gin.Context) {
	filename := h.qr.Filename(c.Param("student_id"))
	path, err := h.qrFiles.Path(filename)
	if err != nil || !h.qrFiles.Exists(filename) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "qr image not found"))
		return
	}
	c.File(path)
}
