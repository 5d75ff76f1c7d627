package surgery

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
	Create(ctx context.Context, actor *model.Actor, req *model.CreateSurgeryRequest) (*model.Surgery, error)
	Get(ctx context.Context, actor *model.Actor, id uuid.UUID) (*model.Surgery, error)
	Update(ctx context.Context, actor *model.Actor, id uuid.UUID, req *model.UpdateSurgeryRequest) (*model.Surgery, error)
	Archive(ctx context.Context, actor *model.Actor, id uuid.UUID) (*model.Surgery, error)
	List(ctx context.Context, actor *model.Actor, filter *model.SurgeryFilter) ([]*model.Surgery, int64, error)
	CreateFollowUp(ctx context.Context, actor *model.Actor, surgeryID uuid.UUID, req *model.CreateFollowUpRequest) (*model.FollowUp, error)
	ListFollowUps(ctx context.Context, actor *model.Actor, surgeryID uuid.UUID) ([]*model.FollowUp, error)
	CompleteFollowUp(ctx context.Context, actor *model.Actor, surgeryID, followUpID uuid.UUID) error
}

type service struct {
	repo        repository.SurgeryRepository
	patientRepo repository.PatientRepository
	auditor     *audit.Service
}

func NewService(repo repository.SurgeryRepository, patientRepo repository.PatientRepository, auditor *audit.Service) Service {
	return &service{repo: repo, patientRepo: patientRepo, auditor: auditor}
}

// ownerConstraint limits surgeons to surgeries they scheduled; admins
// operate unconstrained.
func ownerConstraint(actor *model.Actor) *uuid.UUID {
	if actor.Role == model.RoleSurgeon {
		id := actor.ID
		return &id
	}
	return nil
}

func (s *service) Create(ctx context.Context, actor *model.Actor, req *model.CreateSurgeryRequest) (*model.Surgery, error) {
	if _, err := s.patientRepo.Get(ctx, req.PatientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Validation("patient does not exist")
		}
		return nil, fmt.Errorf("failed to verify patient: %w", err)
	}

	now := time.Now()
	surgery := &model.Surgery{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		PatientID:   req.PatientID,
		SurgeonID:   actor.ID,
		Title:       req.Title,
		Description: req.Description,
		ScheduledAt: req.ScheduledAt,
		Status:      model.SurgeryStatusScheduled,
	}

	if err := s.repo.Create(ctx, surgery); err != nil {
		s.auditor.Log(ctx, actor, model.AuditActionCreate, "surgery", surgery.ID, false, err.Error())
		return nil, fmt.Errorf("failed to create surgery: %w", err)
	}

	s.auditor.Log(ctx, actor, model.AuditActionCreate, "surgery", surgery.ID, true, "")
	return surgery, nil
}

func (s *service) Get(ctx context.Context, actor *model.Actor, id uuid.UUID) (*model.Surgery, error) {
	surgery, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("surgery")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get surgery: %w", err)
	}

	// Archived surgeries stay retrievable by direct id, but only for the
	// owning surgeon or an admin; everyone else sees not-found.
	if surgery.IsArchived && surgery.SurgeonID != actor.ID && !actor.Role.AdminEquivalent() {
		return nil, apperrors.NotFound("surgery")
	}

	s.auditor.Log(ctx, actor, model.AuditActionRead, "surgery", id, true, "")
	return surgery, nil
}

func (s *service) Update(ctx context.Context, actor *model.Actor, id uuid.UUID, req *model.UpdateSurgeryRequest) (*model.Surgery, error) {
	current, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("surgery")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get surgery: %w", err)
	}

	if req.Title != nil {
		current.Title = *req.Title
	}
	if req.Description != nil {
		current.Description = *req.Description
	}
	if req.ScheduledAt != nil {
		current.ScheduledAt = *req.ScheduledAt
	}
	if req.Status != nil {
		current.Status = *req.Status
	}

	if err := s.repo.Update(ctx, current, ownerConstraint(actor)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("surgery")
		}
		s.auditor.Log(ctx, actor, model.AuditActionUpdate, "surgery", id, false, err.Error())
		return nil, fmt.Errorf("failed to update surgery: %w", err)
	}

	s.auditor.Log(ctx, actor, model.AuditActionUpdate, "surgery", id, true, "")
	return current, nil
}

func (s *service) Archive(ctx context.Context, actor *model.Actor, id uuid.UUID) (*model.Surgery, error) {
	surgery, err := s.repo.Archive(ctx, id, ownerConstraint(actor))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("surgery")
	}
	if err != nil {
		s.auditor.Log(ctx, actor, model.AuditActionArchive, "surgery", id, false, err.Error())
		return nil, fmt.Errorf("failed to archive surgery: %w", err)
	}

	s.auditor.Log(ctx, actor, model.AuditActionArchive, "surgery", id, true, "")
	return surgery, nil
}

func (s *service) List(ctx context.Context, actor *model.Actor, filter *model.SurgeryFilter) ([]*model.Surgery, int64, error) {
	filter.Normalize(defaultListLimit)
	filter.IncludeArchived = false

	surgeries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list surgeries: %w", err)
	}
	return surgeries, total, nil
}

func (s *service) CreateFollowUp(ctx context.Context, actor *model.Actor, surgeryID uuid.UUID, req *model.CreateFollowUpRequest) (*model.FollowUp, error) {
	if _, err := s.requireSurgery(ctx, actor, surgeryID); err != nil {
		return nil, err
	}

	now := time.Now()
	followUp := &model.FollowUp{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		SurgeryID: surgeryID,
		Notes:     req.Notes,
		DueAt:     req.DueAt,
	}

	if err := s.repo.CreateFollowUp(ctx, followUp); err != nil {
		s.auditor.Log(ctx, actor, model.AuditActionCreate, "follow_up", followUp.ID, false, err.Error())
		return nil, fmt.Errorf("failed to create follow-up: %w", err)
	}

	s.auditor.Log(ctx, actor, model.AuditActionCreate, "follow_up", followUp.ID, true, "")
	return followUp, nil
}

func (s *service) ListFollowUps(ctx context.Context, actor *model.Actor, surgeryID uuid.UUID) ([]*model.FollowUp, error) {
	if _, err := s.requireSurgery(ctx, actor, surgeryID); err != nil {
		return nil, err
	}

	followUps, err := s.repo.ListFollowUps(ctx, surgeryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list follow-ups: %w", err)
	}
	return followUps, nil
}

func (s *service) CompleteFollowUp(ctx context.Context, actor *model.Actor, surgeryID, followUpID uuid.UUID) error {
	if _, err := s.requireSurgery(ctx, actor, surgeryID); err != nil {
		return err
	}

	if err := s.repo.CompleteFollowUp(ctx, surgeryID, followUpID, time.Now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("follow-up")
		}
		return fmt.Errorf("failed to complete follow-up: %w", err)
	}

	s.auditor.Log(ctx, actor, model.AuditActionUpdate, "follow_up", followUpID, true, "")
	return nil
}

// requireSurgery resolves the surgery a follow-up operation targets and
// applies the same ownership mask as direct surgery writes.
func (s *service) requireSurgery(ctx context.Context, actor *model.Actor, surgeryID uuid.UUID) (*model.Surgery, error) {
	surgery, err := s.repo.Get(ctx, surgeryID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("surgery")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get surgery: %w", err)
	}
	if owner := ownerConstraint(actor); owner != nil && surgery.SurgeonID != *owner {
		return nil, apperrors.NotFound("surgery")
	}
	return surgery, nil
}
