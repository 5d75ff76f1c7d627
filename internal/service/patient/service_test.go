package patient

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

type fakePatientRepo struct {
	patients map[uuid.UUID]*model.Patient
}

func newFakePatientRepo() *fakePatientRepo {
	return &fakePatientRepo{patients: make(map[uuid.UUID]*model.Patient)}
}

func (r *fakePatientRepo) Create(_ context.Context, p *model.Patient) error {
	r.patients[p.ID] = p
	return nil
}

func (r *fakePatientRepo) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	p, ok := r.patients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func (r *fakePatientRepo) Update(_ context.Context, p *model.Patient, ownedBy *uuid.UUID) error {
	current, ok := r.patients[p.ID]
	if !ok || current.IsArchived {
		return repository.ErrNotFound
	}
	if ownedBy != nil && current.CreatedBy != *ownedBy {
		return repository.ErrNotFound
	}
	r.patients[p.ID] = p
	return nil
}

func (r *fakePatientRepo) Archive(_ context.Context, id uuid.UUID, ownedBy *uuid.UUID) (*model.Patient, error) {
	p, ok := r.patients[id]
	if !ok || p.IsArchived {
		return nil, repository.ErrNotFound
	}
	if ownedBy != nil && p.CreatedBy != *ownedBy {
		return nil, repository.ErrNotFound
	}
	now := time.Now()
	p.IsArchived = true
	p.ArchivedAt = &now
	return p, nil
}

func (r *fakePatientRepo) List(_ context.Context, filter *model.PatientFilter) ([]*model.Patient, int64, error) {
	var out []*model.Patient
	for _, p := range r.patients {
		if p.IsArchived && !filter.IncludeArchived {
			continue
		}
		out = append(out, p)
	}
	return out, int64(len(out)), nil
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

func newService(repo repository.PatientRepository) Service {
	return NewService(repo, audit.NewService(noopAuditRepo{}))
}

func doctor() *model.Actor {
	return &model.Actor{ID: uuid.New(), Role: model.RoleDoctor}
}

func seedPatient(repo *fakePatientRepo, createdBy uuid.UUID) *model.Patient {
	p := &model.Patient{
		Base:      model.Base{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
		CreatedBy: createdBy,
		FirstName: "Ana",
		LastName:  "Lopez",
		Email:     "ana@example.com",
	}
	repo.patients[p.ID] = p
	return p
}

func TestUpdateByNonOwnerLooksLikeMissing(t *testing.T) {
	repo := newFakePatientRepo()
	owner := doctor()
	other := doctor()
	p := seedPatient(repo, owner.ID)

	svc := newService(repo)
	name := "Maria"

	_, err := svc.Update(context.Background(), other, p.ID, &model.UpdatePatientRequest{FirstName: &name})
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.StatusCode())

	_, err = svc.Update(context.Background(), other, uuid.New(), &model.UpdatePatientRequest{FirstName: &name})
	require.Error(t, err)
	missingErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)

	// A record owned by someone else and a record that does not exist
	// must be indistinguishable to the caller.
	assert.Equal(t, missingErr.StatusCode(), appErr.StatusCode())
}

func TestUpdateByOwnerSucceeds(t *testing.T) {
	repo := newFakePatientRepo()
	owner := doctor()
	p := seedPatient(repo, owner.ID)

	svc := newService(repo)
	name := "Maria"

	updated, err := svc.Update(context.Background(), owner, p.ID, &model.UpdatePatientRequest{FirstName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Maria", updated.FirstName)
	assert.Equal(t, "Lopez", updated.LastName)
}

func TestModeratorUpdatesUnowned(t *testing.T) {
	repo := newFakePatientRepo()
	p := seedPatient(repo, uuid.New())

	svc := newService(repo)
	moderator := &model.Actor{ID: uuid.New(), Role: model.RoleModerator}
	name := "Clara"

	_, err := svc.Update(context.Background(), moderator, p.ID, &model.UpdatePatientRequest{FirstName: &name})
	require.NoError(t, err)
}

func TestArchiveIsOneWay(t *testing.T) {
	repo := newFakePatientRepo()
	owner := doctor()
	p := seedPatient(repo, owner.ID)

	svc := newService(repo)

	archived, err := svc.Archive(context.Background(), owner, p.ID)
	require.NoError(t, err)
	assert.True(t, archived.IsArchived)
	require.NotNil(t, archived.ArchivedAt)

	// Archiving again, and updating, both fail in the same masked way.
	_, err = svc.Archive(context.Background(), owner, p.ID)
	require.Error(t, err)

	name := "Maria"
	_, err = svc.Update(context.Background(), owner, p.ID, &model.UpdatePatientRequest{FirstName: &name})
	require.Error(t, err)
}

func TestArchivedHiddenFromLists(t *testing.T) {
	repo := newFakePatientRepo()
	owner := doctor()
	p := seedPatient(repo, owner.ID)
	seedPatient(repo, owner.ID)

	svc := newService(repo)

	_, err := svc.Archive(context.Background(), owner, p.ID)
	require.NoError(t, err)

	patients, total, err := svc.List(context.Background(), owner, &model.PatientFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, patients, 1)
	assert.NotEqual(t, p.ID, patients[0].ID)
}

func TestArchivedGetVisibility(t *testing.T) {
	repo := newFakePatientRepo()
	owner := doctor()
	p := seedPatient(repo, owner.ID)

	svc := newService(repo)

	_, err := svc.Archive(context.Background(), owner, p.ID)
	require.NoError(t, err)

	// Creator still sees the archived profile by direct id.
	got, err := svc.Get(context.Background(), owner, p.ID)
	require.NoError(t, err)
	assert.True(t, got.IsArchived)

	// Admin sees it too.
	admin := &model.Actor{ID: uuid.New(), Role: model.RoleAdmin}
	_, err = svc.Get(context.Background(), admin, p.ID)
	require.NoError(t, err)

	// Another doctor does not.
	_, err = svc.Get(context.Background(), doctor(), p.ID)
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.StatusCode())
}

func TestSearchRequiresQuery(t *testing.T) {
	svc := newService(newFakePatientRepo())

	_, err := svc.Search(context.Background(), doctor(), "")
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.StatusCode())
}
