package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushq/studentdesk/internal/models"
)

func TestCreateDocument(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db, nil)

	mock.ExpectExec("INSERT INTO documents").WillReturnResult(sqlmock.NewResult(1, 1))

	doc := &models.Document{StudentPK: "u1", Filename: "CS001_1700000000_ab12.pdf"}
	err := repo.Create(context.Background(), doc)
	require.NoError(t, err)
	assert.NotEmpty(t, doc.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindDocumentByFilename(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db, nil)

	rows := sqlmock.NewRows([]string{"id", "student_pk", "filename", "created_at"}).
		AddRow("d1", "u1", "CS001_1700000000_ab12.pdf", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_pk, filename, created_at FROM documents WHERE filename = $1")).
		WithArgs("CS001_1700000000_ab12.pdf").
		WillReturnRows(rows)

	doc, err := repo.FindByFilename(context.Background(), "CS001_1700000000_ab12.pdf")
	require.NoError(t, err)
	assert.Equal(t, "u1", doc.StudentPK)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListDocumentsByStudent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db, nil)

	rows := sqlmock.NewRows([]string{"id", "student_pk", "filename", "created_at"}).
		AddRow("d1", "u1", "a.pdf", time.Now()).
		AddRow("d2", "u1", "b.pdf", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM documents WHERE student_pk = $1 ORDER BY created_at ASC")).
		WithArgs("u1").
		WillReturnRows(rows)

	docs, err := repo.ListByStudent(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, docs, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteDocument(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db, nil)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM documents WHERE id = $1")).
		WithArgs("d1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "d1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
