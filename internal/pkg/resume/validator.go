// Package resume validates uploaded resume documents before they reach object storage.
package resume

import (
	"strings"

	"github.com/cmis/studentportal/internal/pkg/apperrors"
	"github.com/gabriel-vasile/mimetype"
)

// Allowed resume content types
const (
	MIMEPDF  = "application/pdf"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// DefaultMaxBytes is the resume size ceiling (10 MiB)
const DefaultMaxBytes int64 = 10 * 1024 * 1024

// Client-facing rejection messages
var (
	ErrInvalidType = apperrors.NewCustomError(apperrors.ErrValidation, "Invalid file type. Only PDF and DOCX files are allowed.")
	ErrTooLarge    = apperrors.NewCustomError(apperrors.ErrValidation, "File size exceeds 10MB limit.")
	ErrUnreadable  = apperrors.NewCustomError(apperrors.ErrValidation, "Resume file could not be read.")
)

var allowedTypes = map[string]bool{
	MIMEPDF:  true,
	MIMEDOCX: true,
}

// Upload is a resume file received from a client
type Upload struct {
	Filename    string
	ContentType string // as declared by the client; empty means PDF
	Size        int64  // declared size
	Data        []byte
}

// Empty reports whether no usable file was sent
func (u *Upload) Empty() bool {
	return u == nil || (u.Size == 0 && len(u.Data) == 0)
}

// Validator checks declared type, size, sniffed content and, optionally, that
// the document opens.
type Validator struct {
	MaxBytes       int64
	VerifyDocument bool
}

// NewValidator creates a validator; a non-positive maxBytes uses DefaultMaxBytes
func NewValidator(maxBytes int64, verifyDocument bool) *Validator {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Validator{MaxBytes: maxBytes, VerifyDocument: verifyDocument}
}

// DeclaredType returns the media type the client declared, defaulting to PDF
func DeclaredType(contentType string) string {
	mediaType, _, _ := strings.Cut(contentType, ";")
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	if mediaType == "" {
		return MIMEPDF
	}
	return mediaType
}

// Validate returns the content type to store the resume under or a validation
// error. The stored type is the sniffed one, so a DOCX declared as PDF is kept
// as DOCX. It performs no network I/O.
func (v *Validator) Validate(u *Upload) (string, *Document, error) {
	if !allowedTypes[DeclaredType(u.ContentType)] {
		return "", nil, ErrInvalidType
	}

	if u.Size > v.MaxBytes || int64(len(u.Data)) > v.MaxBytes {
		return "", nil, ErrTooLarge
	}

	detected := mimetype.Detect(u.Data)
	var contentType string
	switch {
	case detected.Is(MIMEPDF):
		contentType = MIMEPDF
	case detected.Is(MIMEDOCX):
		contentType = MIMEDOCX
	default:
		return "", nil, ErrInvalidType
	}

	if !v.VerifyDocument {
		return contentType, nil, nil
	}

	doc, err := Inspect(u.Data, contentType)
	if err != nil {
		return "", nil, ErrUnreadable.WithCause(err)
	}
	return contentType, doc, nil
}
