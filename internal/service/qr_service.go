package service

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	appErrors "github.com/campushq/studentdesk/pkg/errors"
)

type qrStorage interface {
	Save(filename string, data []byte) (string, error)
	Delete(filename string) error
	Exists(filename string) bool
}

// QRService issues and removes per-student login QR images. The encoded
// payload is a direct link to the login page with the student identifier
// prefilled.
type QRService struct {
	store  qrStorage
	host   string
	port   int
	logger *zap.Logger
}

// NewQRService constructs a QRService. Host is the address embedded in the
// QR payload, typically the machine's LAN IP.
func NewQRService(store qrStorage, host string, port int, logger *zap.Logger) *QRService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QRService{store: store, host: host, port: port, logger: logger}
}

// Filename returns the artifact name for the given student identifier.
func (s *QRService) Filename(studentID string) string {
	return studentID + "_qr.png"
}

// LoginURL returns the URL the QR code encodes.
func (s *QRService) LoginURL(studentID string) string {
	return fmt.Sprintf("http://%s:%d/login?id=%s", s.host, s.port, studentID)
}

// Issue generates the QR image for a newly created student and persists it
// keyed by student identifier. Updates never regenerate the artifact.
func (s *QRService) Issue(studentID string) error {
	png, err := qrcode.Encode(s.LoginURL(studentID), qrcode.Medium, 256)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode qr code")
	}
	if _, err := s.store.Save(s.Filename(studentID), png); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store qr image")
	}
	return nil
}

// Remove deletes the QR artifact. A missing file is not an error.
func (s *QRService) Remove(studentID string) error {
	return s.store.Delete(s.Filename(studentID))
}

// Exists reports whether the artifact is present.
func (s *QRService) Exists(studentID string) bool {
	return s.store.Exists(s.Filename(studentID))
}
