package note

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/records-api/internal/model"
	"github.com/clinicore/records-api/internal/repository"
	"github.com/clinicore/records-api/internal/service/audit"
	apperrors "github.com/clinicore/records-api/pkg/errors"
)

const defaultListLimit = 20

// ScopeConfig parameterizes one deployment of the note service. Doctor
// notes and surgical notes run on the same code path and differ only in
// how their ownership scope is built.
type ScopeConfig struct {
	Variant model.OwnershipScope
	// CohortRoles is the set of creator roles whose notes are mutually
	// visible. Used only with ScopeCohort.
	CohortRoles []model.Role
	// PatientScoped notes belong to a patient's chart; creation requires
	// a patient id and listing is per patient.
	PatientScoped bool
	// CaseInsensitiveSearch selects ILIKE over LIKE for content search.
	CaseInsensitiveSearch bool
	// EntityName labels audit entries for this deployment.
	EntityName string
}

// DoctorNotes is the configuration for creator-private notes.
func DoctorNotes() ScopeConfig {
	return ScopeConfig{
		Variant:    model.ScopeOwnerOnly,
		EntityName: "doctor_note",
	}
}

// SurgicalNotes is the configuration for cohort-shared, patient-scoped
// notes.
func SurgicalNotes() ScopeConfig {
	return ScopeConfig{
		Variant:               model.ScopeCohort,
		CohortRoles:           []model.Role{model.RoleSurgeon, model.RoleModerator, model.RoleAdmin},
		PatientScoped:         true,
		CaseInsensitiveSearch: true,
		EntityName:            "surgical_note",
	}
}

type Service interface {
	Create(ctx context.Context, actor *model.Actor, patientID *uuid.UUID, req *model.CreateNoteRequest) (*model.PrivateNote, error)
	Get(ctx context.Context, actor *model.Actor, id uuid.UUID) (*model.PrivateNote, error)
	Update(ctx context.Context, actor *model.Actor, id uuid.UUID, req *model.UpdateNoteRequest) (*model.PrivateNote, error)
	Archive(ctx context.Context, actor *model.Actor, id uuid.UUID) (*model.PrivateNote, error)
	List(ctx context.Context, actor *model.Actor, patientID *uuid.UUID, filter *model.NoteFilter) ([]*model.PrivateNote, int64, error)
	Search(ctx context.Context, actor *model.Actor, patientID *uuid.UUID, query string) ([]*model.PrivateNote, error)
}

type service struct {
	repo    repository.NoteRepository
	cfg     ScopeConfig
	auditor *audit.Service
}

func NewService(repo repository.NoteRepository, cfg ScopeConfig, auditor *audit.Service) Service {
	return &service{repo: repo, cfg: cfg, auditor: auditor}
}

// scope builds the row filter every read and write runs under. The same
// scope guards both, so a note outside it is invisible rather than
// forbidden.
func (s *service) scope(actor *model.Actor, patientID *uuid.UUID) repository.NoteScope {
	if s.cfg.Variant == model.ScopeCohort {
		return repository.NoteScope{
			CreatorRoles: s.cfg.CohortRoles,
			PatientID:    patientID,
		}
	}
	id := actor.ID
	return repository.NoteScope{CreatorID: &id}
}

func (s *service) Create(ctx context.Context, actor *model.Actor, patientID *uuid.UUID, req *model.CreateNoteRequest) (*model.PrivateNote, error) {
	if s.cfg.PatientScoped && patientID == nil {
		return nil, apperrors.Validation("patient id is required")
	}
	if !s.cfg.PatientScoped {
		patientID = nil
	}

	now := time.Now()
	note := &model.PrivateNote{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		CreatorID:     actor.ID,
		CreatorRole:   actor.Role,
		PatientID:     patientID,
		Title:         req.Title,
		Content:       req.Content,
		Transcription: req.Transcription,
	}

	if err := s.repo.Create(ctx, note); err != nil {
		s.auditor.Log(ctx, actor, model.AuditActionCreate, s.cfg.EntityName, note.ID, false, err.Error())
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	s.auditor.Log(ctx, actor, model.AuditActionCreate, s.cfg.EntityName, note.ID, true, "")
	return note, nil
}

func (s *service) Get(ctx context.Context, actor *model.Actor, id uuid.UUID) (*model.PrivateNote, error) {
	note, err := s.repo.Get(ctx, id, s.scope(actor, nil))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("note")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}

	s.auditor.Log(ctx, actor, model.AuditActionRead, s.cfg.EntityName, id, true, "")
	return note, nil
}

func (s *service) Update(ctx context.Context, actor *model.Actor, id uuid.UUID, req *model.UpdateNoteRequest) (*model.PrivateNote, error) {
	scope := s.scope(actor, nil)

	current, err := s.repo.Get(ctx, id, scope)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("note")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}

	if req.Title != nil {
		current.Title = *req.Title
	}
	if req.Content != nil {
		current.Content = *req.Content
	}
	if req.Transcription != nil {
		current.Transcription = *req.Transcription
	}

	if err := s.repo.Update(ctx, current, scope); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("note")
		}
		s.auditor.Log(ctx, actor, model.AuditActionUpdate, s.cfg.EntityName, id, false, err.Error())
		return nil, fmt.Errorf("failed to update note: %w", err)
	}

	s.auditor.Log(ctx, actor, model.AuditActionUpdate, s.cfg.EntityName, id, true, "")
	return current, nil
}

func (s *service) Archive(ctx context.Context, actor *model.Actor, id uuid.UUID) (*model.PrivateNote, error) {
	note, err := s.repo.Archive(ctx, id, s.scope(actor, nil))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("note")
	}
	if err != nil {
		s.auditor.Log(ctx, actor, model.AuditActionArchive, s.cfg.EntityName, id, false, err.Error())
		return nil, fmt.Errorf("failed to archive note: %w", err)
	}

	s.auditor.Log(ctx, actor, model.AuditActionArchive, s.cfg.EntityName, id, true, "")
	return note, nil
}

func (s *service) List(ctx context.Context, actor *model.Actor, patientID *uuid.UUID, filter *model.NoteFilter) ([]*model.PrivateNote, int64, error) {
	if s.cfg.PatientScoped && patientID == nil {
		return nil, 0, apperrors.Validation("patient id is required")
	}
	filter.Normalize(defaultListLimit)
	filter.IncludeArchived = false

	notes, total, err := s.repo.List(ctx, s.scope(actor, patientID), filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, total, nil
}

func (s *service) Search(ctx context.Context, actor *model.Actor, patientID *uuid.UUID, query string) ([]*model.PrivateNote, error) {
	if query == "" {
		return nil, apperrors.Validation("search query is required")
	}
	if s.cfg.PatientScoped && patientID == nil {
		return nil, apperrors.Validation("patient id is required")
	}

	notes, err := s.repo.Search(ctx, query, s.cfg.CaseInsensitiveSearch, s.scope(actor, patientID), repository.SearchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search notes: %w", err)
	}

	s.auditor.Log(ctx, actor, model.AuditActionSearch, s.cfg.EntityName, uuid.Nil, true, query)
	return notes, nil
}
