package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campushq/studentdesk/internal/models"
)

// DocumentRepository manages persistence for document metadata rows.
type DocumentRepository struct {
	db      *sqlx.DB
	metrics QueryObserver
}

// NewDocumentRepository constructs a DocumentRepository.
func NewDocumentRepository(db *sqlx.DB, metrics QueryObserver) *DocumentRepository {
	return &DocumentRepository{db: db, metrics: metrics}
}

func (r *DocumentRepository) observe(label string, start time.Time) {
	if r.metrics != nil {
		r.metrics.ObserveDBQuery(label, time.Since(start))
	}
}

// Create inserts a document row. The caller must have written the backing
// file before committing the row.
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	defer r.observe("documents_create", time.Now())
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO documents (id, student_pk, filename, created_at)
        VALUES (:id, :student_pk, :filename, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, doc); err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

// FindByID fetches a document by primary key.
func (r *DocumentRepository) FindByID(ctx context.Context, id string) (*models.Document, error) {
	defer r.observe("documents_find_by_id", time.Now())
	const query = `SELECT id, student_pk, filename, created_at FROM documents WHERE id = $1`
	var doc models.Document
	if err := r.db.GetContext(ctx, &doc, query, id); err != nil {
		return nil, err
	}
	return &doc, nil
}

// FindByFilename fetches a document by its stored filename.
func (r *DocumentRepository) FindByFilename(ctx context.Context, filename string) (*models.Document, error) {
	defer r.observe("documents_find_by_filename", time.Now())
	const query = `SELECT id, student_pk, filename, created_at FROM documents WHERE filename = $1`
	var doc models.Document
	if err := r.db.GetContext(ctx, &doc, query, filename); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListByStudent returns all documents owned by the given student row.
func (r *DocumentRepository) ListByStudent(ctx context.Context, studentPK string) ([]models.Document, error) {
	defer r.observe("documents_list_by_student", time.Now())
	const query = `SELECT id, student_pk, filename, created_at FROM documents WHERE student_pk = $1 ORDER BY created_at ASC`
	var docs []models.Document
	if err := r.db.SelectContext(ctx, &docs, query, studentPK); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// Delete removes a document row.
func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	defer r.observe("documents_delete", time.Now())
	const query = `DELETE FROM documents WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}
