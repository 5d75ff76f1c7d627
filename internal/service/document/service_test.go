package document

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/records-api/internal/model"
	"github.com/clinicore/records-api/internal/notifier"
	"github.com/clinicore/records-api/internal/repository"
	"github.com/clinicore/records-api/internal/service/audit"
	apperrors "github.com/clinicore/records-api/pkg/errors"
)

type fakeDocumentRepo struct {
	requests []*model.DocumentRequest
}

func (r *fakeDocumentRepo) Create(_ context.Context, req *model.DocumentRequest) error {
	r.requests = append(r.requests, req)
	return nil
}

func (r *fakeDocumentRepo) List(_ context.Context, patientID *uuid.UUID, _ *model.Pagination) ([]*model.DocumentRequest, int64, error) {
	var out []*model.DocumentRequest
	for _, req := range r.requests {
		if patientID != nil && req.PatientID != *patientID {
			continue
		}
		out = append(out, req)
	}
	return out, int64(len(out)), nil
}

type fakePatientRepo struct {
	patients map[uuid.UUID]*model.Patient
}

func (r *fakePatientRepo) Create(_ context.Context, _ *model.Patient) error { return nil }
func (r *fakePatientRepo) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	p, ok := r.patients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p, nil
}
func (r *fakePatientRepo) Update(_ context.Context, _ *model.Patient, _ *uuid.UUID) error { return nil }
func (r *fakePatientRepo) Archive(_ context.Context, _ uuid.UUID, _ *uuid.UUID) (*model.Patient, error) {
	return nil, nil
}
func (r *fakePatientRepo) List(_ context.Context, _ *model.PatientFilter) ([]*model.Patient, int64, error) {
	return nil, 0, nil
}
func (r *fakePatientRepo) Search(_ context.Context, _ string, _ int) ([]*model.Patient, error) {
	return nil, nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	channel string
	sent    []string
	err     error
}

func (n *recordingNotifier) Send(_ context.Context, to, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, to)
	return nil
}

func (n *recordingNotifier) Status() notifier.Status {
	return notifier.Status{Channel: n.channel, Configured: n.err == nil}
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
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

func seedPatient(repo *fakePatientRepo, phone, email string) uuid.UUID {
	id := uuid.New()
	repo.patients[id] = &model.Patient{
		Base:  model.Base{ID: id},
		Phone: phone,
		Email: email,
	}
	return id
}

func TestCreateNotifiesViaWhatsApp(t *testing.T) {
	patientRepo := &fakePatientRepo{patients: make(map[uuid.UUID]*model.Patient)}
	patientID := seedPatient(patientRepo, "5551112222", "ana@example.com")

	wa := &recordingNotifier{channel: "whatsapp"}
	mail := &recordingNotifier{channel: "email"}
	svc := NewService(&fakeDocumentRepo{}, patientRepo, wa, mail, nil, audit.NewService(noopAuditRepo{}))

	actor := &model.Actor{ID: uuid.New(), Role: model.RoleDoctor}
	created, err := svc.Create(context.Background(), actor, &model.CreateDocumentRequestRequest{
		PatientID:    patientID,
		DocumentType: "lab results",
	})
	require.NoError(t, err)
	assert.Equal(t, model.DocumentRequestStatusPending, created.Status)

	assert.Eventually(t, func() bool { return wa.count() == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, mail.count())
}

func TestCreateFallsBackToEmail(t *testing.T) {
	patientRepo := &fakePatientRepo{patients: make(map[uuid.UUID]*model.Patient)}
	patientID := seedPatient(patientRepo, "5551112222", "ana@example.com")

	wa := &recordingNotifier{channel: "whatsapp", err: notifier.ErrNotConfigured}
	mail := &recordingNotifier{channel: "email"}
	svc := NewService(&fakeDocumentRepo{}, patientRepo, wa, mail, nil, audit.NewService(noopAuditRepo{}))

	actor := &model.Actor{ID: uuid.New(), Role: model.RoleDoctor}
	_, err := svc.Create(context.Background(), actor, &model.CreateDocumentRequestRequest{
		PatientID:    patientID,
		DocumentType: "insurance card",
	})
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return mail.count() == 1 }, time.Second, 10*time.Millisecond)
}

func TestCreateSucceedsWhenNothingIsConfigured(t *testing.T) {
	patientRepo := &fakePatientRepo{patients: make(map[uuid.UUID]*model.Patient)}
	patientID := seedPatient(patientRepo, "", "")

	wa := &recordingNotifier{channel: "whatsapp", err: notifier.ErrNotConfigured}
	mail := &recordingNotifier{channel: "email", err: notifier.ErrNotConfigured}
	repo := &fakeDocumentRepo{}
	svc := NewService(repo, patientRepo, wa, mail, nil, audit.NewService(noopAuditRepo{}))

	actor := &model.Actor{ID: uuid.New(), Role: model.RoleDoctor}
	_, err := svc.Create(context.Background(), actor, &model.CreateDocumentRequestRequest{
		PatientID:    patientID,
		DocumentType: "id",
	})
	require.NoError(t, err)
	assert.Len(t, repo.requests, 1)
}

func TestCreateRejectsUnknownPatient(t *testing.T) {
	patientRepo := &fakePatientRepo{patients: make(map[uuid.UUID]*model.Patient)}
	svc := NewService(&fakeDocumentRepo{}, patientRepo, &recordingNotifier{}, &recordingNotifier{}, nil, audit.NewService(noopAuditRepo{}))

	actor := &model.Actor{ID: uuid.New(), Role: model.RoleDoctor}
	_, err := svc.Create(context.Background(), actor, &model.CreateDocumentRequestRequest{
		PatientID:    uuid.New(),
		DocumentType: "id",
	})
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.StatusCode())
}
