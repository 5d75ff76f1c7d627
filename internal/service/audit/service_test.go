package audit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/records-api/internal/model"
	"github.com/clinicore/records-api/pkg/errors"
)

type fakeAuditRepo struct {
	mu           sync.Mutex
	entries      []*model.AuditLog
	deleteBefore time.Time
	deleted      int64
}

func (f *fakeAuditRepo) Create(_ context.Context, entry *model.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeAuditRepo) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

func (f *fakeAuditRepo) List(_ context.Context, _ *model.AuditFilter) ([]*model.AuditLog, int64, error) {
	return f.entries, int64(len(f.entries)), nil
}

func (f *fakeAuditRepo) Stats(_ context.Context, _ *model.AuditFilter) (*model.AuditStats, error) {
	return &model.AuditStats{TotalEntries: int64(len(f.entries))}, nil
}

func (f *fakeAuditRepo) Export(_ context.Context, _ *model.AuditFilter) ([]*model.AuditLog, error) {
	return f.entries, nil
}

func (f *fakeAuditRepo) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.deleteBefore = cutoff
	return f.deleted, nil
}

func TestCleanupRejectsBelowFloor(t *testing.T) {
	repo := &fakeAuditRepo{}
	svc := NewService(repo)

	_, err := svc.Cleanup(context.Background(), 10)
	require.Error(t, err)

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.KindValidation, appErr.Kind)
	assert.True(t, repo.deleteBefore.IsZero(), "nothing should be deleted on rejected requests")
}

func TestCleanupDeletesPastCutoff(t *testing.T) {
	repo := &fakeAuditRepo{deleted: 42}
	svc := NewService(repo)

	result, err := svc.Cleanup(context.Background(), 90)
	require.NoError(t, err)

	assert.Equal(t, int64(42), result.Deleted)
	wantCutoff := time.Now().AddDate(0, 0, -90)
	assert.WithinDuration(t, wantCutoff, result.Cutoff, time.Minute)
	assert.WithinDuration(t, wantCutoff, repo.deleteBefore, time.Minute)
}

func TestCleanupAcceptsFloorExactly(t *testing.T) {
	svc := NewService(&fakeAuditRepo{})

	_, err := svc.Cleanup(context.Background(), MinRetentionDays)
	assert.NoError(t, err)
}

func TestLogIsBestEffort(t *testing.T) {
	repo := &fakeAuditRepo{}
	svc := NewService(repo)
	actor := &model.Actor{Role: model.RoleDoctor}

	ctx := WithRequestMeta(context.Background(), RequestMeta{IPAddress: "10.0.0.1", UserAgent: "test"})
	svc.Log(ctx, actor, model.AuditActionCreate, "patient", actor.ID, true, "")

	// The write is async; give it a moment.
	assert.Eventually(t, func() bool {
		return repo.len() == 1
	}, time.Second, 10*time.Millisecond)

	repo.mu.Lock()
	entry := repo.entries[0]
	repo.mu.Unlock()
	assert.Equal(t, "10.0.0.1", entry.IPAddress)
	assert.True(t, entry.Success)
}
