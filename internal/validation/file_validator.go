package validation

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	apperrors "marketcli/internal/errors"
)

// FileValidator checks uploaded dataset files before they reach the
// pipeline: size bounds, extension allow-list, and a cheap content sniff.
type FileValidator struct {
	maxSize  int64
	suffixes []string
	logger   *slog.Logger
}

// NewFileValidator creates a file validator
func NewFileValidator(maxSize int64, allowedSuffixes []string, logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	if len(allowedSuffixes) == 0 {
		allowedSuffixes = []string{".csv"}
	}
	return &FileValidator{
		maxSize:  maxSize,
		suffixes: allowedSuffixes,
		logger:   logger.With(slog.String("component", "file_validator")),
	}
}

// ValidateUpload checks an uploaded file's name, size and leading bytes
func (v *FileValidator) ValidateUpload(filename string, size int64, head []byte) error {
	if size <= 0 {
		return apperrors.NewAppError(apperrors.ErrTypeValidation, "uploaded file is empty", nil)
	}
	if v.maxSize > 0 && size > v.maxSize {
		return apperrors.NewAppError(apperrors.ErrTypeValidation,
			fmt.Sprintf("uploaded file exceeds maximum size of %d bytes", v.maxSize), nil).
			WithContext("size", size)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	allowed := false
	for _, suffix := range v.suffixes {
		if ext == strings.ToLower(suffix) {
			allowed = true
			break
		}
	}
	if !allowed {
		return apperrors.NewAppError(apperrors.ErrTypeValidation,
			fmt.Sprintf("unsupported file extension %q, expected one of %s",
				ext, strings.Join(v.suffixes, ", ")), nil)
	}

	// CSV is text; reject obviously binary payloads regardless of name.
	for _, b := range head {
		if b == 0 {
			return apperrors.NewAppError(apperrors.ErrTypeValidation,
				"uploaded file does not look like text CSV", nil)
		}
	}

	v.logger.Debug("upload validated",
		slog.String("filename", filename),
		slog.Int64("size", size))
	return nil
}
