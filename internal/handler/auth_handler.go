package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/campushq/studentdesk/internal/middleware"
	"github.com/campushq/studentdesk/internal/models"
	"github.com/campushq/studentdesk/internal/service"
)

// AuthHandler serves the login page and manages session lifecycle.
type AuthHandler struct {
	auth   *service.AuthService
	logger *zap.Logger
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(auth *service.AuthService, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{auth: auth, logger: logger}
}

// Index routes an authenticated visitor to their home page by role.
func (h *AuthHandler) Index(c *gin.Context) {
	student, ok := middleware.Current(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	if student.IsAdmin() {
		c.Redirect(http.StatusFound, "/admin")
		return
	}
	c.Redirect(http.StatusFound, "/portal")
}

// LoginForm renders the login page. A student identifier arriving via the
// QR deep link is prefilled.
func (h *AuthHandler) LoginForm(c *gin.Context) {
	if student, ok := middleware.Current(c); ok {
		if student.IsAdmin() {
			c.Redirect(http.StatusFound, "/admin")
		} else {
			c.Redirect(http.StatusFound, "/portal")
		}
		return
	}
	c.HTML(http.StatusOK, "login.html", gin.H{"prefill": c.Query("id")})
}

// Login authenticates the submitted credentials and starts a session.
// Any failure renders the same generic rejection.
func (h *AuthHandler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	student, err := h.auth.Authenticate(c.Request.Context(), username, password)
	if err != nil {
		c.HTML(http.StatusOK, "login.html", gin.H{"error": "Invalid Credentials", "prefill": username})
		return
	}

	if err := middleware.SetIdentity(c, student.ID); err != nil {
		h.logger.Error("failed to save session", zap.Error(err))
		c.HTML(http.StatusOK, "login.html", gin.H{"error": "Login failed, try again", "prefill": username})
		return
	}

	if student.StudentID == models.AdminStudentID {
		c.Redirect(http.StatusFound, "/admin")
		return
	}
	c.Redirect(http.StatusFound, "/portal")
}

// Logout ends the current session.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := middleware.ClearIdentity(c); err != nil {
		h.logger.Warn("failed to clear session", zap.Error(err))
	}
	c.Redirect(http.StatusFound, "/login")
}
