package patient

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

type Service interface {
	Create(ctx context.Context, actor *model.Actor, req *model.CreatePatientRequest) (*model.Patient, error)
	Get(ctx context.Context, actor *model.Actor, id uuid.UUID) (*model.Patient, error)
	Update(ctx context.Context, actor *model.Actor, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error)
	Archive(ctx context.Context, actor *model.Actor, id uuid.UUID) (*model.Patient, error)
	List(ctx context.Context, actor *model.Actor, filter *model.PatientFilter) ([]*model.Patient, int64, error)
	Search(ctx context.Context, actor *model.Actor, query string) ([]*model.Patient, error)
}

type service struct {
	repo    repository.PatientRepository
	auditor *audit.Service
}

func NewService(repo repository.PatientRepository, auditor *audit.Service) Service {
	return &service{repo: repo, auditor: auditor}
}

// ownerConstraint returns the creator condition for conditional writes.
// Doctors may only touch their own patients; moderators and admins are
// unconstrained (role checks already happened at the policy gate).
func ownerConstraint(actor *model.Actor) *uuid.UUID {
	if actor.Role == model.RoleDoctor {
		id := actor.ID
		return &id
	}
	return nil
}

func (s *service) Create(ctx context.Context, actor *model.Actor, req *model.CreatePatientRequest) (*model.Patient, error) {
	now := time.Now()
	patient := &model.Patient{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		CreatedBy:   actor.ID,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		DateOfBirth: req.DateOfBirth,
		History:     req.History,
	}

	if err := s.repo.Create(ctx, patient); err != nil {
		s.auditor.Log(ctx, actor, model.AuditActionCreate, "patient", patient.ID, false, err.Error())
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}

	s.auditor.Log(ctx, actor, model.AuditActionCreate, "patient", patient.ID, true, "")
	return patient, nil
}

func (s *service) Get(ctx context.Context, actor *model.Actor, id uuid.UUID) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("patient")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	// Archived profiles stay retrievable by direct id, but only for the
	// creating doctor or an admin; everyone else sees not-found.
	if patient.IsArchived && patient.CreatedBy != actor.ID && !actor.Role.AdminEquivalent() {
		return nil, apperrors.NotFound("patient")
	}

	s.auditor.Log(ctx, actor, model.AuditActionRead, "patient", id, true, "")
	return patient, nil
}

func (s *service) Update(ctx context.Context, actor *model.Actor, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error) {
	owner := ownerConstraint(actor)

	current, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("patient")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	if req.FirstName != nil {
		current.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		current.LastName = *req.LastName
	}
	if req.Email != nil {
		current.Email = *req.Email
	}
	if req.Phone != nil {
		current.Phone = *req.Phone
	}
	if req.DateOfBirth != nil {
		current.DateOfBirth = *req.DateOfBirth
	}
	if req.History != nil {
		current.History = *req.History
	}

	if err := s.repo.Update(ctx, current, owner); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient")
		}
		s.auditor.Log(ctx, actor, model.AuditActionUpdate, "patient", id, false, err.Error())
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}

	s.auditor.Log(ctx, actor, model.AuditActionUpdate, "patient", id, true, "")
	return current, nil
}

func (s *service) Archive(ctx context.Context, actor *model.Actor, id uuid.UUID) (*model.Patient, error) {
	patient, err := s.repo.Archive(ctx, id, ownerConstraint(actor))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("patient")
	}
	if err != nil {
		s.auditor.Log(ctx, actor, model.AuditActionArchive, "patient", id, false, err.Error())
		return nil, fmt.Errorf("failed to archive patient: %w", err)
	}

	s.auditor.Log(ctx, actor, model.AuditActionArchive, "patient", id, true, "")
	return patient, nil
}

func (s *service) List(ctx context.Context, actor *model.Actor, filter *model.PatientFilter) ([]*model.Patient, int64, error) {
	filter.Normalize(defaultListLimit)
	filter.IncludeArchived = false

	patients, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, total, nil
}

func (s *service) Search(ctx context.Context, actor *model.Actor, query string) ([]*model.Patient, error) {
	if query == "" {
		return nil, apperrors.Validation("search query is required")
	}

	patients, err := s.repo.Search(ctx, query, repository.SearchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search patients: %w", err)
	}

	s.auditor.Log(ctx, actor, model.AuditActionSearch, "patient", uuid.Nil, true, query)
	return patients, nil
}
