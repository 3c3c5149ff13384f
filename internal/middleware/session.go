package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/campushq/studentdesk/internal/models"
	"github.com/campushq/studentdesk/internal/service"
	appErrors "github.com/campushq/studentdesk/pkg/errors"
	"github.com/campushq/studentdesk/pkg/response"
)

// ContextStudentKey is the gin context key storing the resolved student.
const ContextStudentKey = "currentStudent"

const sessionIdentityKey = "student_pk"

// SetIdentity binds the session to the given student row and persists the
// cookie.
func SetIdentity(c *gin.Context, studentRowID string) error {
	sess := sessions.Default(c)
	sess.Set(sessionIdentityKey, studentRowID)
	return sess.Save()
}

// ClearIdentity invalidates the current session.
func ClearIdentity(c *gin.Context) error {
	sess := sessions.Default(c)
	sess.Clear()
	sess.Options(sessions.Options{Path: "/", MaxAge: -1})
	return sess.Save()
}

// Session resolves the persisted session reference to the current student
// record on every request. A reference to a student that no longer exists
// is treated as unauthenticated.
func Session(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		if id, ok := sess.Get(sessionIdentityKey).(string); ok && id != "" {
			if student, err := authService.Resolve(c.Request.Context(), id); err == nil {
				c.Set(ContextStudentKey, student)
			}
		}
		c.Next()
	}
}

// Current returns the student resolved for this request, if any.
func Current(c *gin.Context) (*models.Student, bool) {
	if v, exists := c.Get(ContextStudentKey); exists {
		if student, ok := v.(*models.Student); ok {
			return student, true
		}
	}
	return nil, false
}

// RequireSession sends unauthenticated page requests to the login form.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := Current(c); !ok {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin guards admin-only routes. Both unauthenticated and
// non-admin access yield an explicit forbidden response, never a redirect.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		student, ok := Current(c)
		if !ok || !student.IsAdmin() {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "Access Denied"))
			c.Abort()
			return
		}
		c.Next()
	}
}
