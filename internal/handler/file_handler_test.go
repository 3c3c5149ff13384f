package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushq/studentdesk/internal/middleware"
	"github.com/campushq/studentdesk/internal/models"
	"github.com/campushq/studentdesk/internal/service"
	"github.com/campushq/studentdesk/pkg/storage"
)

type docFinderMock struct {
	docs map[string]*models.Document
}

func (m *docFinderMock) FindByFilename(ctx context.Context, filename string) (*models.Document, error) {
	if doc, ok := m.docs[filename]; ok {
		copy := *doc
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

type fileFixture struct {
	handler *FileHandler
	uploads *storage.LocalStorage
	qr      *service.QRService
	docs    *docFinderMock
}

func newFileFixture(t *testing.T) *fileFixture {
	t.Helper()
	dir := t.TempDir()
	uploads, err := storage.NewLocalStorage(filepath.Join(dir, "uploads"))
	require.NoError(t, err)
	qrFiles, err := storage.NewLocalStorage(filepath.Join(dir, "static"))
	require.NoError(t, err)

	docs := &docFinderMock{docs: make(map[string]*models.Document)}
	qr := service.NewQRService(qrFiles, "localhost", 5000, zap.NewNop())
	return &fileFixture{
		handler: NewFileHandler(uploads, qrFiles, docs, qr, zap.NewNop()),
		uploads: uploads,
		qr:      qr,
		docs:    docs,
	}
}

func (f *fileFixture) serveUpload(t *testing.T, filename string, student *models.Student) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/uploads/:filename", func(c *gin.Context) {
		if student != nil {
			c.Set(middleware.ContextStudentKey, student)
		}
		f.handler.ServeUpload(c)
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/uploads/"+filename, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestServeUploadOwner(t *testing.T) {
	f := newFileFixture(t)
	_, err := f.uploads.Save("CS101_1_ab.pdf", []byte("%PDF-stub"))
	require.NoError(t, err)
	f.docs.docs["CS101_1_ab.pdf"] = &models.Document{ID: "doc-1", StudentPK: "pk-1", Filename: "CS101_1_ab.pdf"}

	w := f.serveUpload(t, "CS101_1_ab.pdf", &models.Student{ID: "pk-1", StudentID: "CS101"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "%PDF-stub", w.Body.String())
}

func TestServeUploadDeniesOtherStudent(t *testing.T) {
	f := newFileFixture(t)
	_, err := f.uploads.Save("CS101_1_ab.pdf", []byte("%PDF-stub"))
	require.NoError(t, err)
	f.docs.docs["CS101_1_ab.pdf"] = &models.Document{ID: "doc-1", StudentPK: "pk-1", Filename: "CS101_1_ab.pdf"}

	w := f.serveUpload(t, "CS101_1_ab.pdf", &models.Student{ID: "pk-2", StudentID: "CS102"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestServeUploadAllowsAdmin(t *testing.T) {
	f := newFileFixture(t)
	_, err := f.uploads.Save("CS101_1_ab.pdf", []byte("%PDF-stub"))
	require.NoError(t, err)
	f.docs.docs["CS101_1_ab.pdf"] = &models.Document{ID: "doc-1", StudentPK: "pk-1", Filename: "CS101_1_ab.pdf"}

	w := f.serveUpload(t, "CS101_1_ab.pdf", &models.Student{ID: "pk-0", StudentID: models.AdminStudentID})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServeUploadUnauthenticatedRedirects(t *testing.T) {
	f := newFileFixture(t)
	w := f.serveUpload(t, "CS101_1_ab.pdf", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestServeUploadUnknownFilename(t *testing.T) {
	f := newFileFixture(t)
	w := f.serveUpload(t, "guessed.pdf", &models.Student{ID: "pk-1", StudentID: "CS101"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServeUploadRowWithoutFile(t *testing.T) {
	f := newFileFixture(t)
	f.docs.docs["CS101_1_ab.pdf"] = &models.Document{ID: "doc-1", StudentPK: "pk-1", Filename: "CS101_1_ab.pdf"}

	w := f.serveUpload(t, "CS101_1_ab.pdf", &models.Student{ID: "pk-1", StudentID: "CS101"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServeQR(t *testing.T) {
	f := newFileFixture(t)
	require.NoError(t, f.qr.Issue("CS101"))

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/qr/:student_id", f.handler.ServeQR)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/qr/CS101", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, byte(0x89), w.Body.Bytes()[0])

	missing := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/qr/CS999", nil)
	r.ServeHTTP(missing, req)
	assert.Equal(t, http.StatusNotFound, missing.Code)
}
