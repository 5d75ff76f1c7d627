package upload

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/clinicore/records-api/pkg/errors"
)

// DefaultMaxBytes caps uploads at 25 MB unless configured otherwise.
const DefaultMaxBytes = 25 << 20

// allowedTypes is the MIME allow-list for media uploads: images, PDF,
// audio, video and common office documents.
var allowedTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"image/gif":       {},
	"image/webp":      {},
	"application/pdf": {},
	"audio/mpeg":      {},
	"audio/ogg":       {},
	"audio/wav":       {},
	"audio/webm":      {},
	"video/mp4":       {},
	"video/mpeg":      {},
	"video/webm":      {},
	"video/quicktime": {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"application/vnd.ms-excel": {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       {},
	"application/vnd.ms-powerpoint":                                           {},
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": {},
	"text/plain": {},
}

// Validator checks uploaded files against the allow-list and size cap.
type Validator struct {
	maxBytes int64
}

func NewValidator(maxBytes int64) *Validator {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Validator{maxBytes: maxBytes}
}

func (v *Validator) MaxBytes() int64 {
	return v.maxBytes
}

// Validate rejects oversized files and disallowed content types.
func (v *Validator) Validate(header *multipart.FileHeader) error {
	if header.Size > v.maxBytes {
		return errors.TooLarge(fmt.Sprintf("file exceeds maximum size of %d bytes", v.maxBytes))
	}

	contentType := header.Header.Get("Content-Type")
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = contentType[:idx]
	}
	contentType = strings.TrimSpace(strings.ToLower(contentType))

	if _, ok := allowedTypes[contentType]; !ok {
		return errors.Validation(fmt.Sprintf("file type %q is not allowed", contentType))
	}
	return nil
}

// StoredName generates a collision-resistant name for the file on disk,
// preserving the original extension.
func StoredName(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	return uuid.New().String() + ext
}
