package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushq/studentdesk/internal/models"
	"github.com/campushq/studentdesk/internal/repository"
	appErrors "github.com/campushq/studentdesk/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context) ([]models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindByStudentID(ctx context.Context, studentID string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
}

type documentRepository interface {
	Create(ctx context.Context, doc *models.Document) error
	FindByID(ctx context.Context, id string) (*models.Document, error)
	ListByStudent(ctx context.Context, studentPK string) ([]models.Document, error)
	Delete(ctx context.Context, id string) error
}

type documentIngester interface {
	Ingest(files []UploadFile, studentID string) ([]string, error)
}

type qrIssuer interface {
	Issue(studentID string) error
	Remove(studentID string) error
}

type fileRemover interface {
	Delete(filename string) error
}

// StudentService implements the admin-facing management operations.
type StudentService struct {
	students        studentRepository
	documents       documentRepository
	intake          documentIngester
	qr              qrIssuer
	uploads         fileRemover
	validator       *validator.Validate
	logger          *zap.Logger
	defaultPassword string
}

// NewStudentService constructs a StudentService.
func NewStudentService(students studentRepository, documents documentRepository, intake documentIngester, qr qrIssuer, uploads fileRemover, validate *validator.Validate, logger *zap.Logger, defaultPassword string) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{
		students:        students,
		documents:       documents,
		intake:          intake,
		qr:              qr,
		uploads:         uploads,
		validator:       validate,
		logger:          logger,
		defaultPassword: defaultPassword,
	}
}

// UpsertStudentRequest captures the admin panel's create/update submission.
type UpsertStudentRequest struct {
	StudentPK  string
	StudentID  string `validate:"required_without=StudentPK,max=20"`
	Username   string `validate:"required,max=50"`
	Department string
	YearStart  string
	YearEnd    string
	Address    string
	FatherName string
	MotherName string
	Phone      string `validate:"max=15"`
	AltPhone   string `validate:"max=15"`
	BloodGroup string `validate:"max=5"`
	Password   string
	Documents  []UploadFile
}

// List returns all non-admin students with their documents.
func (s *StudentService) List(ctx context.Context) ([]models.StudentDetail, error) {
	students, err := s.students.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}

	details := make([]models.StudentDetail, 0, len(students))
	for _, st := range students {
		docs, err := s.documents.ListByStudent(ctx, st.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
		}
		details = append(details, models.StudentDetail{Student: st, Documents: docs})
	}
	return details, nil
}

// GetDetail returns one student with their documents.
func (s *StudentService) GetDetail(ctx context.Context, id string) (*models.StudentDetail, error) {
	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	docs, err := s.documents.ListByStudent(ctx, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
	}
	return &models.StudentDetail{Student: *student, Documents: docs}, nil
}

// CreateOrUpdate inserts a new student or updates an existing one in
// place, ingests any submitted documents, and issues a QR code on first
// creation. Returns the record and whether it was newly created.
func (s *StudentService) CreateOrUpdate(ctx context.Context, req UpsertStudentRequest) (*models.Student, bool, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	if !models.ValidDepartment(req.Department) {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "unknown department")
	}

	var student *models.Student
	created := false

	if req.StudentPK != "" {
		existing, err := s.students.FindByID(ctx, req.StudentPK)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, false, appErrors.Clone(appErrors.ErrNotFound, "student not found")
			}
			return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
		}
		applyProfile(existing, req)
		if err := s.students.Update(ctx, existing); err != nil {
			return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
		}
		student = existing
	} else {
		password := req.Password
		if password == "" {
			password = s.defaultPassword
			s.logger.Warn("student created with the default fallback password", zap.String("student_id", req.StudentID))
		}
		hash, err := HashPassword(password)
		if err != nil {
			return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
		}
		student = &models.Student{StudentID: req.StudentID, PasswordHash: hash}
		applyProfile(student, req)
		if err := s.students.Create(ctx, student); err != nil {
			if errors.Is(err, repository.ErrDuplicateStudentID) {
				return nil, false, appErrors.Clone(appErrors.ErrConflict, "student_id already exists")
			}
			return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
		}
		created = true
	}

	if err := s.attachDocuments(ctx, student, req.Documents); err != nil {
		return student, created, err
	}

	if created && !student.IsAdmin() && s.qr != nil {
		if err := s.qr.Issue(student.StudentID); err != nil {
			s.logger.Warn("qr issuance failed", zap.String("student_id", student.StudentID), zap.Error(err))
		}
	}

	return student, created, nil
}

func applyProfile(student *models.Student, req UpsertStudentRequest) {
	student.Username = req.Username
	student.Department = req.Department
	student.YearStart = req.YearStart
	student.YearEnd = req.YearEnd
	student.Address = req.Address
	student.FatherName = req.FatherName
	student.MotherName = req.MotherName
	student.Phone = req.Phone
	student.AltPhone = req.AltPhone
	student.BloodGroup = req.BloodGroup
}

// attachDocuments runs the intake pipeline and commits one metadata row
// per stored file. Files hit disk before their rows so a crash cannot
// leave a row without a backing file.
func (s *StudentService) attachDocuments(ctx context.Context, student *models.Student, files []UploadFile) error {
	if len(files) == 0 {
		return nil
	}

	stored, err := s.intake.Ingest(files, student.StudentID)
	if err != nil {
		return err
	}

	for _, filename := range stored {
		doc := &models.Document{StudentPK: student.ID, Filename: filename}
		if err := s.documents.Create(ctx, doc); err != nil {
			if delErr := s.uploads.Delete(filename); delErr != nil {
				s.logger.Warn("cleanup of stored file failed", zap.String("filename", filename), zap.Error(delErr))
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record document")
		}
	}
	return nil
}

// ResetPassword rehashes and stores a new password for the student.
func (s *StudentService) ResetPassword(ctx context.Context, studentPK, newPassword string) error {
	if newPassword == "" {
		return appErrors.Clone(appErrors.ErrValidation, "new password required")
	}
	student, err := s.students.FindByID(ctx, studentPK)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	if err := s.students.UpdatePassword(ctx, student.ID, hash, time.Now().UTC()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update password")
	}
	return nil
}

// Delete removes a student and everything they own: the QR artifact, each
// document's backing file, then the row (document rows cascade). File
// removals are best effort; a missing file never blocks the row deletion.
// Deleting an unknown id is a no-op.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if student.IsAdmin() {
		return appErrors.Clone(appErrors.ErrForbidden, "the admin account cannot be deleted")
	}

	if s.qr != nil {
		if err := s.qr.Remove(student.StudentID); err != nil {
			s.logger.Warn("qr removal failed", zap.String("student_id", student.StudentID), zap.Error(err))
		}
	}

	docs, err := s.documents.ListByStudent(ctx, student.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
	}
	for _, doc := range docs {
		if err := s.uploads.Delete(doc.Filename); err != nil {
			s.logger.Warn("document file removal failed", zap.String("filename", doc.Filename), zap.Error(err))
		}
	}

	if err := s.students.Delete(ctx, student.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	return nil
}

// DeleteDocument removes one document's backing file and metadata row,
// independent of any student-level operation. Unknown ids are no-ops.
func (s *StudentService) DeleteDocument(ctx context.Context, id string) error {
	doc, err := s.documents.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}

	if err := s.uploads.Delete(doc.Filename); err != nil {
		s.logger.Warn("document file removal failed", zap.String("filename", doc.Filename), zap.Error(err))
	}

	if err := s.documents.Delete(ctx, doc.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete document")
	}
	return nil
}

// EnsureAdmin creates the reserved admin record on first startup.
func (s *StudentService) EnsureAdmin(ctx context.Context, defaultPassword string) error {
	_, err := s.students.FindByStudentID(ctx, models.AdminStudentID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check admin account")
	}

	hash, err := HashPassword(defaultPassword)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	admin := &models.Student{StudentID: models.AdminStudentID, Username: "Super Admin", PasswordHash: hash}
	if err := s.students.Create(ctx, admin); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create admin account")
	}
	s.logger.Info("bootstrap admin account created")
	return nil
}
