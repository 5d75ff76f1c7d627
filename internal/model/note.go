package model

import (
	"github.com/google/uuid"
)

// OwnershipScope selects which actors may see and mutate a note after
// creation. Two deployments of the same note service exist: doctor notes
// are private to their creator, surgical notes are shared by the
// surgeon/moderator cohort within a patient's chart.
type OwnershipScope string

const (
	// ScopeOwnerOnly restricts reads and writes to the single creator.
	ScopeOwnerOnly OwnershipScope = "owner"
	// ScopeCohort shares reads and writes across a role cohort, scoped
	// to the note's patient.
	ScopeCohort OwnershipScope = "cohort"
)

// PrivateNote is a clinical note. CreatorID and CreatorRole are immutable
// after creation.
type PrivateNote struct {
	Base
	Archivable
	CreatorID     uuid.UUID  `json:"creator_id" db:"creator_id"`
	CreatorRole   Role       `json:"creator_role" db:"creator_role"`
	PatientID     *uuid.UUID `json:"patient_id,omitempty" db:"patient_id"`
	Title         string     `json:"title" db:"title"`
	Content       string     `json:"content" db:"content"`
	Transcription string     `json:"transcription,omitempty" db:"transcription"`
}

type CreateNoteRequest struct {
	Title         string `json:"title" binding:"required"`
	Content       string `json:"content" binding:"required"`
	Transcription string `json:"transcription"`
}

type UpdateNoteRequest struct {
	Title         *string `json:"title"`
	Content       *string `json:"content"`
	Transcription *string `json:"transcription"`
}

// NoteFilter represents note list/search parameters.
type NoteFilter struct {
	Pagination
	Search          string `json:"search" form:"search"`
	IncludeArchived bool   `json:"-" form:"-"`
}
