package model

import (
	"github.com/google/uuid"
)

// MediaFile records an uploaded file; the bytes live on disk under the
// configured upload directory as StoredName.
type MediaFile struct {
	Base
	Archivable
	UploadedBy uuid.UUID  `json:"uploaded_by" db:"uploaded_by"`
	PatientID  *uuid.UUID `json:"patient_id,omitempty" db:"patient_id"`
	FileName   string     `json:"file_name" db:"file_name"`
	StoredName string     `json:"stored_name" db:"stored_name"`
	MimeType   string     `json:"mime_type" db:"mime_type"`
	SizeBytes  int64      `json:"size_bytes" db:"size_bytes"`
}

// MediaFilter represents media list parameters.
type MediaFilter struct {
	Pagination
	PatientID       *uuid.UUID `json:"patient_id" form:"patient_id"`
	IncludeArchived bool       `json:"-" form:"-"`
}
