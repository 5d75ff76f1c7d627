package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/records-api/internal/model"
)

// ErrNotFound is returned when a row does not exist or an ownership
// condition did not match. Callers cannot tell the two apart.
var ErrNotFound = errors.New("record not found")

// SearchLimit caps full-text search results across all repositories.
const SearchLimit = 50

// NoteScope narrows note queries to the rows an actor may touch. Exactly
// one of CreatorID or CreatorRoles is set, per ownership variant.
type NoteScope struct {
	CreatorID    *uuid.UUID
	CreatorRoles []model.Role
	PatientID    *uuid.UUID
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type PatientRepository interface {
	Create(ctx context.Context, patient *model.Patient) error
	Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	Update(ctx context.Context, patient *model.Patient, ownedBy *uuid.UUID) error
	Archive(ctx context.Context, id uuid.UUID, ownedBy *uuid.UUID) (*model.Patient, error)
	List(ctx context.Context, filter *model.PatientFilter) ([]*model.Patient, int64, error)
	Search(ctx context.Context, query string, limit int) ([]*model.Patient, error)
}

type SurgeryRepository interface {
	Create(ctx context.Context, surgery *model.Surgery) error
	Get(ctx context.Context, id uuid.UUID) (*model.Surgery, error)
	Update(ctx context.Context, surgery *model.Surgery, ownedBy *uuid.UUID) error
	Archive(ctx context.Context, id uuid.UUID, ownedBy *uuid.UUID) (*model.Surgery, error)
	List(ctx context.Context, filter *model.SurgeryFilter) ([]*model.Surgery, int64, error)
	CreateFollowUp(ctx context.Context, followUp *model.FollowUp) error
	ListFollowUps(ctx context.Context, surgeryID uuid.UUID) ([]*model.FollowUp, error)
	CompleteFollowUp(ctx context.Context, surgeryID, followUpID uuid.UUID, at time.Time) error
}

type NoteRepository interface {
	Create(ctx context.Context, note *model.PrivateNote) error
	Get(ctx context.Context, id uuid.UUID, scope NoteScope) (*model.PrivateNote, error)
	Update(ctx context.Context, note *model.PrivateNote, scope NoteScope) error
	Archive(ctx context.Context, id uuid.UUID, scope NoteScope) (*model.PrivateNote, error)
	List(ctx context.Context, scope NoteScope, filter *model.NoteFilter) ([]*model.PrivateNote, int64, error)
	Search(ctx context.Context, query string, caseInsensitive bool, scope NoteScope, limit int) ([]*model.PrivateNote, error)
}

type AuditRepository interface {
	Create(ctx context.Context, entry *model.AuditLog) error
	List(ctx context.Context, filter *model.AuditFilter) ([]*model.AuditLog, int64, error)
	Stats(ctx context.Context, filter *model.AuditFilter) (*model.AuditStats, error)
	Export(ctx context.Context, filter *model.AuditFilter) ([]*model.AuditLog, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type ReminderRepository interface {
	Create(ctx context.Context, reminder *model.Reminder) error
	Get(ctx context.Context, id uuid.UUID) (*model.Reminder, error)
	List(ctx context.Context, filter *model.ReminderFilter) ([]*model.Reminder, int64, error)
	ListDue(ctx context.Context, now time.Time, limit int) ([]*model.Reminder, error)
	MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}

type DocumentRequestRepository interface {
	Create(ctx context.Context, request *model.DocumentRequest) error
	List(ctx context.Context, patientID *uuid.UUID, p *model.Pagination) ([]*model.DocumentRequest, int64, error)
}

type MediaRepository interface {
	Create(ctx context.Context, file *model.MediaFile) error
	Get(ctx context.Context, id uuid.UUID) (*model.MediaFile, error)
	Archive(ctx context.Context, id uuid.UUID) (*model.MediaFile, error)
	List(ctx context.Context, filter *model.MediaFilter) ([]*model.MediaFile, int64, error)
}
