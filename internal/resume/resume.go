// ABOUTME: Resume input validation before upload
// ABOUTME: Checks file type, sniffed content, size limits and empty text

package resume

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"

	"github.com/ParthhMahajann/Nextstep-AI/internal/client"
)

// DefaultMaxBytes is the upload limit when none is configured
const DefaultMaxBytes = 5 * 1024 * 1024

// Content types sent with the upload
const (
	ContentTypePDF  = "application/pdf"
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// ErrInvalidResume matches every *ValidationError
var ErrInvalidResume = errors.New("invalid resume")

// ValidationError describes why a resume was rejected locally
type ValidationError struct {
	Name   string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Name == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Name, e.Reason)
}

// Is lets errors.Is match ErrInvalidResume
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidResume
}

func invalid(name, format string, args ...any) error {
	return &ValidationError{Name: name, Reason: fmt.Sprintf(format, args...)}
}

// ContentTypeFor returns the upload content type for a supported file name
func ContentTypeFor(name string) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return ContentTypePDF, nil
	case ".docx":
		return ContentTypeDOCX, nil
	case ".doc":
		return "", invalid(filepath.Base(name), "legacy .doc format is not supported, please use .docx")
	}
	return "", invalid(filepath.Base(name), "unsupported file type, please upload a PDF or DOCX file")
}

// Validate checks an in-memory resume and returns it ready for upload.
// maxBytes <= 0 uses DefaultMaxBytes.
func Validate(name string, data []byte, maxBytes int64) (*client.ResumeFile, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	base := filepath.Base(name)

	contentType, err := ContentTypeFor(name)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, invalid(base, "file is empty")
	}
	if int64(len(data)) > maxBytes {
		return nil, tooLarge(base, int64(len(data)), maxBytes)
	}

	sniffed := http.DetectContentType(data)
	switch contentType {
	case ContentTypePDF:
		if sniffed != ContentTypePDF {
			return nil, invalid(base, "file does not look like a PDF (detected %s)", sniffed)
		}
	case ContentTypeDOCX:
		if sniffed != "application/zip" {
			return nil, invalid(base, "file does not look like a DOCX document (detected %s)", sniffed)
		}
	}

	return &client.ResumeFile{Name: base, ContentType: contentType, Data: data}, nil
}

// ReadFile loads and validates a resume from disk. The size is checked
// before the file is read.
func ReadFile(path string, maxBytes int64) (*client.ResumeFile, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if _, err := ContentTypeFor(path); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read resume")
	}
	if info.IsDir() {
		return nil, invalid(filepath.Base(path), "is a directory")
	}
	if info.Size() > maxBytes {
		return nil, tooLarge(filepath.Base(path), info.Size(), maxBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read resume")
	}
	return Validate(path, data, maxBytes)
}

// ValidateText rejects empty resume text and returns it trimmed
func ValidateText(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", invalid("", "resume text is empty")
	}
	return trimmed, nil
}

func tooLarge(name string, size, limit int64) error {
	return invalid(name, "file is %s, the limit is %s",
		humanize.IBytes(uint64(size)), humanize.IBytes(uint64(limit)))
}
