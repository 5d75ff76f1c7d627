package surgery

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/records-api/internal/model"
	"github.com/clinicore/records-api/internal/repository"
	"github.com/clinicore/records-api/internal/service/audit"
	apperrors "github.com/clinicore/records-api/pkg/errors"
)

type fakeSurgeryRepo struct {
	surgeries map[uuid.UUID]*model.Surgery
	followUps map[uuid.UUID]*model.FollowUp
}

func newFakeSurgeryRepo() *fakeSurgeryRepo {
	return &fakeSurgeryRepo{
		surgeries: make(map[uuid.UUID]*model.Surgery),
		followUps: make(map[uuid.UUID]*model.FollowUp),
	}
}

func (r *fakeSurgeryRepo) Create(_ context.Context, s *model.Surgery) error {
	r.surgeries[s.ID] = s
	return nil
}

func (r *fakeSurgeryRepo) Get(_ context.Context, id uuid.UUID) (*model.Surgery, error) {
	s, ok := r.surgeries[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s, nil
}

func (r *fakeSurgeryRepo) Update(_ context.Context, s *model.Surgery, ownedBy *uuid.UUID) error {
	current, ok := r.surgeries[s.ID]
	if !ok || current.IsArchived {
		return repository.ErrNotFound
	}
	if ownedBy != nil && current.SurgeonID != *ownedBy {
		return repository.ErrNotFound
	}
	r.surgeries[s.ID] = s
	return nil
}

func (r *fakeSurgeryRepo) Archive(_ context.Context, id uuid.UUID, ownedBy *uuid.UUID) (*model.Surgery, error) {
	s, ok := r.surgeries[id]
	if !ok || s.IsArchived {
		return nil, repository.ErrNotFound
	}
	if ownedBy != nil && s.SurgeonID != *ownedBy {
		return nil, repository.ErrNotFound
	}
	now := time.Now()
	s.IsArchived = true
	s.ArchivedAt = &now
	return s, nil
}

func (r *fakeSurgeryRepo) List(_ context.Context, _ *model.SurgeryFilter) ([]*model.Surgery, int64, error) {
	return nil, 0, nil
}

func (r *fakeSurgeryRepo) CreateFollowUp(_ context.Context, f *model.FollowUp) error {
	r.followUps[f.ID] = f
	return nil
}

func (r *fakeSurgeryRepo) ListFollowUps(_ context.Context, surgeryID uuid.UUID) ([]*model.FollowUp, error) {
	var out []*model.FollowUp
	for _, f := range r.followUps {
		if f.SurgeryID == surgeryID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *fakeSurgeryRepo) CompleteFollowUp(_ context.Context, surgeryID, followUpID uuid.UUID, at time.Time) error {
	f, ok := r.followUps[followUpID]
	if !ok || f.SurgeryID != surgeryID || f.CompletedAt != nil {
		return repository.ErrNotFound
	}
	f.CompletedAt = &at
	return nil
}

type fakePatientRepo struct {
	known map[uuid.UUID]bool
}

func (r *fakePatientRepo) Create(_ context.Context, _ *model.Patient) error { return nil }
func (r *fakePatientRepo) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	if !r.known[id] {
		return nil, repository.ErrNotFound
	}
	return &model.Patient{Base: model.Base{ID: id}}, nil
}
func (r *fakePatientRepo) Update(_ context.Context, _ *model.Patient, _ *uuid.UUID) error {
	return nil
}
func (r *fakePatientRepo) Archive(_ context.Context, _ uuid.UUID, _ *uuid.UUID) (*model.Patient, error) {
	return nil, nil
}
func (r *fakePatientRepo) List(_ context.Context, _ *model.PatientFilter) ([]*model.Patient, int64, error) {
	return nil, 0, nil
}
func (r *fakePatientRepo) Search(_ context.Context, _ string, _ int) ([]*model.Patient, error) {
	return nil, nil
}

type noopAuditRepo struct{}

func (noopAuditRepo) Create(_ context.Context, _ *model.AuditLog) error { return nil }
func (noopAuditRepo) List(_ context.Context, _ *model.AuditFilter) ([]*model.AuditLog, int64, error) {
	return nil, 0, nil
}
func (noopAuditRepo) Stats(_ context.Context, _ *model.AuditFilter) (*model.AuditStats, error) {
	return &model.AuditStats{}, nil
}
func (noopAuditRepo) Export(_ context.Context, _ *model.AuditFilter) ([]*model.AuditLog, error) {
	return nil, nil
}
func (noopAuditRepo) DeleteBefore(_ context.Context, _ time.Time) (int64, error) { return 0, nil }

func setup() (Service, *fakeSurgeryRepo, *fakePatientRepo) {
	surgeryRepo := newFakeSurgeryRepo()
	patientRepo := &fakePatientRepo{known: make(map[uuid.UUID]bool)}
	svc := NewService(surgeryRepo, patientRepo, audit.NewService(noopAuditRepo{}))
	return svc, surgeryRepo, patientRepo
}

func surgeon() *model.Actor {
	return &model.Actor{ID: uuid.New(), Role: model.RoleSurgeon}
}

func TestCreateRejectsUnknownPatient(t *testing.T) {
	svc, _, _ := setup()

	_, err := svc.Create(context.Background(), surgeon(), &model.CreateSurgeryRequest{
		PatientID:   uuid.New(),
		Title:       "Appendectomy",
		ScheduledAt: time.Now().Add(24 * time.Hour),
	})
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.StatusCode())
}

func TestCreateAssignsSurgeonAndStatus(t *testing.T) {
	svc, _, patientRepo := setup()
	actor := surgeon()
	patientID := uuid.New()
	patientRepo.known[patientID] = true

	s, err := svc.Create(context.Background(), actor, &model.CreateSurgeryRequest{
		PatientID:   patientID,
		Title:       "Appendectomy",
		ScheduledAt: time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, actor.ID, s.SurgeonID)
	assert.Equal(t, model.SurgeryStatusScheduled, s.Status)
}

func TestUpdateMasksForeignSurgery(t *testing.T) {
	svc, repo, _ := setup()
	owner := surgeon()

	s := &model.Surgery{
		Base:      model.Base{ID: uuid.New()},
		SurgeonID: owner.ID,
		Title:     "Appendectomy",
		Status:    model.SurgeryStatusScheduled,
	}
	repo.surgeries[s.ID] = s

	title := "Revised"
	_, err := svc.Update(context.Background(), surgeon(), s.ID, &model.UpdateSurgeryRequest{Title: &title})
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.StatusCode())

	// Admin is unconstrained.
	admin := &model.Actor{ID: uuid.New(), Role: model.RoleAdmin}
	_, err = svc.Update(context.Background(), admin, s.ID, &model.UpdateSurgeryRequest{Title: &title})
	require.NoError(t, err)
}

func TestFollowUpLifecycle(t *testing.T) {
	svc, repo, _ := setup()
	owner := surgeon()

	s := &model.Surgery{
		Base:      model.Base{ID: uuid.New()},
		SurgeonID: owner.ID,
		Status:    model.SurgeryStatusCompleted,
	}
	repo.surgeries[s.ID] = s

	f, err := svc.CreateFollowUp(context.Background(), owner, s.ID, &model.CreateFollowUpRequest{
		Notes: "two week check",
		DueAt: time.Now().Add(14 * 24 * time.Hour),
	})
	require.NoError(t, err)
	assert.Nil(t, f.CompletedAt)

	listed, err := svc.ListFollowUps(context.Background(), owner, s.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	require.NoError(t, svc.CompleteFollowUp(context.Background(), owner, s.ID, f.ID))

	// Completing twice fails.
	err = svc.CompleteFollowUp(context.Background(), owner, s.ID, f.ID)
	require.Error(t, err)
}

func TestFollowUpMaskedForNonOwner(t *testing.T) {
	svc, repo, _ := setup()
	owner := surgeon()

	s := &model.Surgery{
		Base:      model.Base{ID: uuid.New()},
		SurgeonID: owner.ID,
	}
	repo.surgeries[s.ID] = s

	_, err := svc.CreateFollowUp(context.Background(), surgeon(), s.ID, &model.CreateFollowUpRequest{
		Notes: "check",
		DueAt: time.Now(),
	})
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.StatusCode())
}

func TestArchivedSurgeryGetVisibility(t *testing.T) {
	svc, repo, _ := setup()
	owner := surgeon()

	now := time.Now()
	s := &model.Surgery{
		Base:       model.Base{ID: uuid.New()},
		Archivable: model.Archivable{IsArchived: true, ArchivedAt: &now},
		SurgeonID:  owner.ID,
		Title:      "Appendectomy",
		Status:     model.SurgeryStatusScheduled,
	}
	repo.surgeries[s.ID] = s

	// Owning surgeon and admin still see the record by direct id.
	got, err := svc.Get(context.Background(), owner, s.ID)
	require.NoError(t, err)
	assert.True(t, got.IsArchived)

	admin := &model.Actor{ID: uuid.New(), Role: model.RoleAdmin}
	_, err = svc.Get(context.Background(), admin, s.ID)
	require.NoError(t, err)

	// Anyone else gets the same not-found as a missing id.
	_, err = svc.Get(context.Background(), surgeon(), s.ID)
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.StatusCode())
}
