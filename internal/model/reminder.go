package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ReminderStatusPending = "pending"
	ReminderStatusSent    = "sent"
	ReminderStatusFailed  = "failed"
)

// Reminder is a WhatsApp message scheduled for a patient. Each reminder
// is dispatched and marked independently; one failure never aborts a batch.
type Reminder struct {
	Base
	PatientID     uuid.UUID  `json:"patient_id" db:"patient_id"`
	SurgeryID     *uuid.UUID `json:"surgery_id,omitempty" db:"surgery_id"`
	CreatedBy     uuid.UUID  `json:"created_by" db:"created_by"`
	Message       string     `json:"message" db:"message"`
	DueAt         time.Time  `json:"due_at" db:"due_at"`
	Status        string     `json:"status" db:"status"`
	FailureReason string     `json:"failure_reason,omitempty" db:"failure_reason"`
	SentAt        *time.Time `json:"sent_at,omitempty" db:"sent_at"`
}

type CreateReminderRequest struct {
	PatientID uuid.UUID  `json:"patient_id" binding:"required"`
	SurgeryID *uuid.UUID `json:"surgery_id"`
	Message   string     `json:"message" binding:"required"`
	DueAt     time.Time  `json:"due_at" binding:"required"`
}

// ReminderFilter represents reminder list parameters.
type ReminderFilter struct {
	Pagination
	PatientID *uuid.UUID `json:"patient_id" form:"patient_id"`
	Status    string     `json:"status" form:"status"`
}

// DispatchSummary reports the outcome of one batch run.
type DispatchSummary struct {
	Processed int `json:"processed"`
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
}

const (
	DocumentRequestStatusPending   = "pending"
	DocumentRequestStatusFulfilled = "fulfilled"
)

// DocumentRequest asks a patient to provide a document; creating one
// triggers a fire-and-forget notification.
type DocumentRequest struct {
	Base
	PatientID    uuid.UUID  `json:"patient_id" db:"patient_id"`
	RequestedBy  uuid.UUID  `json:"requested_by" db:"requested_by"`
	DocumentType string     `json:"document_type" db:"document_type"`
	Message      string     `json:"message" db:"message"`
	Status       string     `json:"status" db:"status"`
	FulfilledAt  *time.Time `json:"fulfilled_at,omitempty" db:"fulfilled_at"`
}

type CreateDocumentRequestRequest struct {
	PatientID    uuid.UUID `json:"patient_id" binding:"required"`
	DocumentType string    `json:"document_type" binding:"required"`
	Message      string    `json:"message"`
}
