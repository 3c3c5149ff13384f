package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/campushq/studentdesk/internal/models"
	"github.com/campushq/studentdesk/internal/service"
	appErrors "github.com/campushq/studentdesk/pkg/errors"
	"github.com/campushq/studentdesk/pkg/response"
)

// Caps one admin submission; profile fields are small, the weight is in
// the document uploads.
const maxUploadBytes = 32 << 20

type adminStudentService interface {
	List(ctx context.Context) ([]models.StudentDetail, error)
	CreateOrUpdate(ctx context.Context, req service.UpsertStudentRequest) (*models.Student, bool, error)
	ResetPassword(ctx context.Context, studentPK, newPassword string) error
	Delete(ctx context.Context, id string) error
	DeleteDocument(ctx context.Context, id string) error
}

// AdminHandler serves the management panel and its form submissions.
type AdminHandler struct {
	students adminStudentService
	logger   *zap.Logger
}

// NewAdminHandler creates a new handler.
func NewAdminHandler(students adminStudentService, logger *zap.Logger) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{students: students, logger: logger}
}

// Panel renders the management UI with all non-admin students and the
// department enumeration. An `edit` query parameter selects a row whose
// values prefill the form for an in-place update.
func (h *AdminHandler) Panel(c *gin.Context) {
	students, err := h.students.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	var editing *models.StudentDetail
	if id := c.Query("edit"); id != "" {
		for i := range students {
			if students[i].ID == id {
				editing = &students[i]
				break
			}
		}
	}

	c.HTML(http.StatusOK, "admin.html", gin.H{
		"students":    students,
		"departments": models.Departments,
		"editing":     editing,
	})
}

// Submit handles the panel's POST. A submission carrying student_pk and
// new_password is a password reset; anything else is a full create/update
// with document ingestion.
func (h *AdminHandler) Submit(c *gin.Context) {
	studentPK := c.PostForm("student_pk")
	newPassword := c.PostForm("new_password")

	if studentPK != "" && newPassword != "" {
		if err := h.students.ResetPassword(c.Request.Context(), studentPK, newPassword); err != nil {
			response.Error(c, err)
			return
		}
		c.Redirect(http.StatusFound, "/admin")
		return
	}

	req := service.UpsertStudentRequest{
		StudentPK:  studentPK,
		StudentID:  c.PostForm("student_id"),
		Username:   c.PostForm("username"),
		Department: c.PostForm("department"),
		YearStart:  c.PostForm("year_start"),
		YearEnd:    c.PostForm("year_end"),
		Address:    c.PostForm("address"),
		FatherName: c.PostForm("father_name"),
		MotherName: c.PostForm("mother_name"),
		Phone:      c.PostForm("phone"),
		AltPhone:   c.PostForm("alt_phone"),
		BloodGroup: c.PostForm("blood_grp"),
		Password:   c.PostForm("password"),
	}

	files, err := h.readUploads(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	req.Documents = files

	if _, _, err := h.students.CreateOrUpdate(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/admin")
}

// DeleteStudent removes a student and all owned artifacts.
func (h *AdminHandler) DeleteStudent(c *gin.Context) {
	if err := h.students.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/admin")
}

// DeleteDocument removes a single document.
func (h *AdminHandler) DeleteDocument(c *gin.Context) {
	if err := h.students.DeleteDocument(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/admin")
}

func (h *AdminHandler) readUploads(c *gin.Context) ([]service.UploadFile, error) {
	if c.Request.ContentLength > maxUploadBytes {
		return nil, appErrors.Clone(appErrors.ErrValidation, "upload too large")
	}

	form, err := c.MultipartForm()
	if err != nil {
		if err == http.ErrNotMultipart {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid multipart form")
	}

	headers := form.File["documents"]
	files := make([]service.UploadFile, 0, len(headers))
	for _, fh := range headers {
		if fh.Filename == "" {
			continue
		}
		f, err := fh.Open()
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to open uploaded file")
		}
		data, err := io.ReadAll(f)
		f.Close() //nolint:errcheck
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read uploaded file")
		}
		files = append(files, service.UploadFile{OriginalName: fh.Filename, Data: data})
	}
	return files, nil
}
