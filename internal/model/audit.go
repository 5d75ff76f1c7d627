package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	AuditActionCreate  = "create"
	AuditActionRead    = "read"
	AuditActionUpdate  = "update"
	AuditActionArchive = "archive"
	AuditActionSearch  = "search"
	AuditActionLogin   = "login"
	AuditActionSend    = "send"
	AuditActionUpload  = "upload"
)

// AuditLog entries are append-only; no update path exists.
type AuditLog struct {
	ID         uuid.UUID `json:"id" db:"id"`
	ActorID    uuid.UUID `json:"actor_id" db:"actor_id"`
	ActorRole  Role      `json:"actor_role" db:"actor_role"`
	Action     string    `json:"action" db:"action"`
	EntityType string    `json:"entity_type" db:"entity_type"`
	EntityID   uuid.UUID `json:"entity_id" db:"entity_id"`
	Success    bool      `json:"success" db:"success"`
	Detail     string    `json:"detail" db:"detail"`
	IPAddress  string    `json:"ip_address" db:"ip_address"`
	UserAgent  string    `json:"user_agent" db:"user_agent"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// AuditFilter represents audit listing parameters.
type AuditFilter struct {
	Pagination
	ActorID    *uuid.UUID `json:"actor_id" form:"actor_id"`
	Action     string     `json:"action" form:"action"`
	EntityType string     `json:"entity_type" form:"entity_type"`
	EntityID   *uuid.UUID `json:"entity_id" form:"entity_id"`
	StartDate  *time.Time `json:"start_date" form:"start_date" time_format:"2006-01-02"`
	EndDate    *time.Time `json:"end_date" form:"end_date" time_format:"2006-01-02"`
	Search     string     `json:"search" form:"search"`
}

// AuditStats aggregates activity over a filtered window.
type AuditStats struct {
	TotalEntries int64            `json:"total_entries"`
	ActionCounts map[string]int64 `json:"action_counts"`
	EntityCounts map[string]int64 `json:"entity_counts"`
	FailureCount int64            `json:"failure_count"`
}

// CleanupRequest is the retention-cleanup input. Days below the enforced
// minimum are rejected before any deletion happens.
type CleanupRequest struct {
	Days int `json:"days" binding:"required"`
}

type CleanupResult struct {
	Deleted int64     `json:"deleted"`
	Cutoff  time.Time `json:"cutoff"`
}
