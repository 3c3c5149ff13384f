package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/campushq/studentdesk/internal/models"
)

// ErrDuplicateStudentID is returned when an insert violates the student_id
// uniqueness constraint.
var ErrDuplicateStudentID = errors.New("student_id already exists")

const uniqueViolation = "23505"

// QueryObserver records per-query timings. A nil observer disables
// instrumentation.
type QueryObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
}

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db      *sqlx.DB
	metrics QueryObserver
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB, metrics QueryObserver) *StudentRepository {
	return &StudentRepository{db: db, metrics: metrics}
}

func (r *StudentRepository) observe(label string, start time.Time) {
	if r.metrics != nil {
		r.metrics.ObserveDBQuery(label, time.Since(start))
	}
}

const studentColumns = "id, student_id, username, department, year_start, year_end, address, father_name, mother_name, phone, alt_phone, blood_grp, password_hash, created_at, updated_at"

// List returns all students excluding the reserved admin identity.
func (r *StudentRepository) List(ctx context.Context) ([]models.Student, error) {
	defer r.observe("students_list", time.Now())
	query := fmt.Sprintf("SELECT %s FROM students WHERE student_id <> $1 ORDER BY student_id ASC", studentColumns)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, models.AdminStudentID); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// FindByID fetches a student by primary key.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	defer r.observe("students_find_by_id", time.Now())
	query := fmt.Sprintf("SELECT %s FROM students WHERE id = $1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByStudentID fetches a student by the human-assigned login identifier.
func (r *StudentRepository) FindByStudentID(ctx context.Context, studentID string) (*models.Student, error) {
	defer r.observe("students_find_by_student_id", time.Now())
	query := fmt.Sprintf("SELECT %s FROM students WHERE student_id = $1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, studentID); err != nil {
		return nil, err
	}
	return &student, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	defer r.observe("students_create", time.Now())
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, student_id, username, department, year_start, year_end, address, father_name, mother_name, phone, alt_phone, blood_grp, password_hash, created_at, updated_at)
        VALUES (:id, :student_id, :username, :department, :year_start, :year_end, :address, :father_name, :mother_name, :phone, :alt_phone, :blood_grp, :password_hash, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicateStudentID
		}
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update modifies an existing student's profile fields.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	defer r.observe("students_update", time.Now())
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET username = :username, department = :department, year_start = :year_start, year_end = :year_end, address = :address, father_name = :father_name, mother_name = :mother_name, phone = :phone, alt_phone = :alt_phone, blood_grp = :blood_grp, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// UpdatePassword replaces the stored password hash.
func (r *StudentRepository) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	defer r.observe("students_update_password", time.Now())
	const query = `UPDATE students SET password_hash = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, passwordHash, updatedAt); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// Delete removes the student row. Document rows cascade via the foreign key.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	defer r.observe("students_delete", time.Now())
	const query = `DELETE FROM students WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}
