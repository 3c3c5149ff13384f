package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/campushq/studentdesk/pkg/errors"
	"github.com/campushq/studentdesk/pkg/pdfconv"
)

type intakeStorage interface {
	Save(filename string, data []byte) (string, error)
	Delete(filename string) error
}

type imageConverter interface {
	Convert(data []byte, ext string) ([]byte, error)
}

// UploadFile carries one multipart upload through the intake pipeline.
type UploadFile struct {
	OriginalName string
	Data         []byte
}

// IntakeService normalizes uploaded files and writes them to storage.
// Raster images become single-page PDFs; everything else is stored
// verbatim under a sanitized name.
type IntakeService struct {
	storage   intakeStorage
	converter imageConverter
	logger    *zap.Logger
}

// NewIntakeService constructs an IntakeService.
func NewIntakeService(storage intakeStorage, converter imageConverter, logger *zap.Logger) *IntakeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if converter == nil {
		converter = pdfconv.NewConverter()
	}
	return &IntakeService{storage: storage, converter: converter, logger: logger}
}

type stagedFile struct {
	name string
	data []byte
}

// Ingest processes a batch of uploads for one student and returns the
// stored filenames in input order. The batch is all-or-nothing: every file
// is staged in memory first, and nothing reaches disk unless the whole
// batch converts cleanly.
func (s *IntakeService) Ingest(files []UploadFile, studentID string) ([]string, error) {
	if len(files) == 0 {
		return nil, nil
	}

	staged := make([]stagedFile, 0, len(files))
	var failed []string
	for _, f := range files {
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(f.OriginalName)), ".")
		base := fmt.Sprintf("%s_%d_%s", studentID, time.Now().Unix(), randomHex(2))

		if pdfconv.SupportedExtension(ext) {
			converted, err := s.converter.Convert(f.Data, ext)
			if err != nil {
				s.logger.Warn("image conversion failed",
					zap.String("student_id", studentID),
					zap.String("filename", f.OriginalName),
					zap.Error(err))
				failed = append(failed, f.OriginalName)
				continue
			}
			staged = append(staged, stagedFile{name: base + ".pdf", data: converted})
			continue
		}

		staged = append(staged, stagedFile{name: base + "_" + sanitizeFilename(f.OriginalName), data: f.Data})
	}

	if len(failed) > 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("could not process: %s", strings.Join(failed, ", ")))
	}

	stored := make([]string, 0, len(staged))
	for _, sf := range staged {
		if _, err := s.storage.Save(sf.name, sf.data); err != nil {
			for _, name := range stored {
				if delErr := s.storage.Delete(name); delErr != nil {
					s.logger.Warn("rollback of staged file failed", zap.String("filename", name), zap.Error(delErr))
				}
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store uploaded file")
		}
		stored = append(stored, sf.name)
	}

	return stored, nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// sanitizeFilename strips any path components and replaces characters that
// are unsafe in a stored filename.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		name = "file"
	}
	return name
}

// randomHex returns 2n hex characters. The clock fallback keeps the
// same width so stored names stay uniform.
func randomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%0*x", n*2, time.Now().UnixNano()&0xffff)
	}
	return hex.EncodeToString(buf)
}
