package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/campushq/studentdesk/internal/models"
	appErrors "github.com/campushq/studentdesk/pkg/errors"
)

type authStudentRepository interface {
	FindByStudentID(ctx context.Context, studentID string) (*models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// AuthService verifies credentials and resolves session identities.
type AuthService struct {
	repo   authStudentRepository
	logger *zap.Logger
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authStudentRepository, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{repo: repo, logger: logger}
}

// Authenticate looks up the student by login identifier and compares the
// password. Failures are indistinguishable to the caller: an unknown
// identifier and a wrong password both yield the same rejection.
func (s *AuthService) Authenticate(ctx context.Context, studentID, password string) (*models.Student, error) {
	if studentID == "" || password == "" {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "Invalid Credentials")
	}

	student, err := s.repo.FindByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "Invalid Credentials")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(student.PasswordHash), []byte(password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "Invalid Credentials")
	}

	return student, nil
}

// Resolve maps a persisted session reference back to the current student
// record. A reference to a deleted student counts as unauthenticated.
func (s *AuthService) Resolve(ctx context.Context, id string) (*models.Student, error) {
	if id == "" {
		return nil, appErrors.ErrUnauthorized
	}
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session no longer valid")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve session")
	}
	return student, nil
}

// HashPassword produces a salted one-way hash for storage.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
