package auth

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
	"github.com/clinicore/records-api/pkg/auth"
	apperrors "github.com/clinicore/records-api/pkg/errors"
)

type fakeUserRepo struct {
	byEmail map[string]*model.User
	byID    map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byEmail: make(map[string]*model.User),
		byID:    make(map[uuid.UUID]*model.User),
	}
}

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	r.byEmail[u.Email] = u
	r.byID[u.ID] = u
	return nil
}

func (r *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	if u, ok := r.byID[id]; ok {
		u.LastLoginAt = &at
	}
	return nil
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

func setup() (Service, *fakeUserRepo, auth.JWTService) {
	users := newFakeUserRepo()
	tokens := auth.NewJWTService("test-secret", time.Hour, "records-api")
	svc := NewService(users, tokens, audit.NewService(noopAuditRepo{}))
	return svc, users, tokens
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, tokens := setup()

	user, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:     "Doc@Example.com",
		Password:  "correct-horse",
		FirstName: "Ana",
		LastName:  "Lopez",
		Role:      model.RoleDoctor,
	})
	require.NoError(t, err)
	assert.Equal(t, "doc@example.com", user.Email)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)

	resp, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "doc@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	assert.Greater(t, resp.ExpiresIn, int64(0))

	claims, err := tokens.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, model.RoleDoctor, claims.Role)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := setup()

	req := &model.RegisterRequest{
		Email:     "doc@example.com",
		Password:  "correct-horse",
		FirstName: "Ana",
		LastName:  "Lopez",
		Role:      model.RoleDoctor,
	}
	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), req)
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 409, appErr.StatusCode())
}

func TestLoginDoesNotRevealWhichPartFailed(t *testing.T) {
	svc, _, _ := setup()

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:     "doc@example.com",
		Password:  "correct-horse",
		FirstName: "Ana",
		LastName:  "Lopez",
		Role:      model.RoleDoctor,
	})
	require.NoError(t, err)

	_, wrongPassword := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "doc@example.com",
		Password: "wrong-password",
	})
	_, unknownEmail := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "nobody@example.com",
		Password: "correct-horse",
	})

	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}
