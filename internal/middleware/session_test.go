package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushq/studentdesk/internal/models"
	"github.com/campushq/studentdesk/internal/service"
)

type sessionRepoMock struct {
	students map[string]*models.Student
}

func (m *sessionRepoMock) FindByStudentID(ctx context.Context, studentID string) (*models.Student, error) {
	for _, st := range m.students {
		if st.StudentID == studentID {
			copy := *st
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *sessionRepoMock) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if st, ok := m.students[id]; ok {
		copy := *st
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func newSessionRouter(repo *sessionRepoMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions("studentdesk", cookie.NewStore([]byte("test-secret"))))
	r.Use(Session(service.NewAuthService(repo, zap.NewNop())))
	r.GET("/set/:id", func(c *gin.Context) {
		if err := SetIdentity(c, c.Param("id")); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	})
	r.GET("/admin", RequireAdmin(), func(c *gin.Context) { c.String(http.StatusOK, "panel") })
	r.GET("/portal", RequireSession(), func(c *gin.Context) { c.String(http.StatusOK, "portal") })
	return r
}

func loginAs(t *testing.T, r *gin.Engine, rowID string) []*http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/set/"+rowID, nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return w.Result().Cookies()
}

func get(r *gin.Engine, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAdminRouteRejectsUnauthenticated(t *testing.T) {
	r := newSessionRouter(&sessionRepoMock{})
	w := get(r, "/admin", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Access Denied")
}

func TestAdminRouteRejectsStudent(t *testing.T) {
	repo := &sessionRepoMock{students: map[string]*models.Student{
		"pk-1": {ID: "pk-1", StudentID: "CS101"},
	}}
	r := newSessionRouter(repo)

	cookies := loginAs(t, r, "pk-1")
	w := get(r, "/admin", cookies)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminRouteAllowsAdmin(t *testing.T) {
	repo := &sessionRepoMock{students: map[string]*models.Student{
		"pk-0": {ID: "pk-0", StudentID: models.AdminStudentID},
	}}
	r := newSessionRouter(repo)

	cookies := loginAs(t, r, "pk-0")
	w := get(r, "/admin", cookies)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "panel", w.Body.String())
}

func TestPortalRedirectsUnauthenticated(t *testing.T) {
	r := newSessionRouter(&sessionRepoMock{})
	w := get(r, "/portal", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestDanglingSessionTreatedAsUnauthenticated(t *testing.T) {
	repo := &sessionRepoMock{students: map[string]*models.Student{
		"pk-1": {ID: "pk-1", StudentID: "CS101"},
	}}
	r := newSessionRouter(repo)

	cookies := loginAs(t, r, "pk-1")
	delete(repo.students, "pk-1")

	w := get(r, "/portal", cookies)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}
