package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	SurgeryStatusScheduled = "scheduled"
	SurgeryStatusCompleted = "completed"
	SurgeryStatusCancelled = "cancelled"
)

// Surgery is owned by the surgeon who created it; SurgeonID is immutable.
type Surgery struct {
	Base
	Archivable
	PatientID   uuid.UUID `json:"patient_id" db:"patient_id"`
	SurgeonID   uuid.UUID `json:"surgeon_id" db:"surgeon_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	ScheduledAt time.Time `json:"scheduled_at" db:"scheduled_at"`
	Status      string    `json:"status" db:"status"`
}

// FollowUp is a post-surgery check scheduled against a surgery.
type FollowUp struct {
	Base
	SurgeryID   uuid.UUID  `json:"surgery_id" db:"surgery_id"`
	Notes       string     `json:"notes" db:"notes"`
	DueAt       time.Time  `json:"due_at" db:"due_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

type CreateSurgeryRequest struct {
	PatientID   uuid.UUID `json:"patient_id" binding:"required"`
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
}

type UpdateSurgeryRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	Status      *string    `json:"status" binding:"omitempty,oneof=scheduled completed cancelled"`
}

type CreateFollowUpRequest struct {
	Notes string    `json:"notes" binding:"required"`
	DueAt time.Time `json:"due_at" binding:"required"`
}

// SurgeryFilter represents surgery list parameters.
type SurgeryFilter struct {
	Pagination
	PatientID       *uuid.UUID `json:"patient_id" form:"patient_id"`
	Status          string     `json:"status" form:"status"`
	IncludeArchived bool       `json:"-" form:"-"`
}
