package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushq/studentdesk/internal/middleware"
	"github.com/campushq/studentdesk/internal/models"
	"github.com/campushq/studentdesk/pkg/response"
)

type portalStudentService interface {
	GetDetail(ctx context.Context, id string) (*models.StudentDetail, error)
}

// PortalHandler serves the student's self-service view.
type PortalHandler struct {
	students portalStudentService
}

// NewPortalHandler creates a new handler.
func NewPortalHandler(students portalStudentService) *PortalHandler {
	return &PortalHandler{students: students}
}

// View renders the current student's own record. An admin landing here is
// sent back to the panel.
func (h *PortalHandler) View(c *gin.Context) {
	student, ok := middleware.Current(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	if student.IsAdmin() {
		c.Redirect(http.StatusFound, "/admin")
		return
	}

	detail, err := h.students.GetDetail(c.Request.Context(), student.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.HTML(http.StatusOK, "viewer.html", gin.H{"student": detail})
}
