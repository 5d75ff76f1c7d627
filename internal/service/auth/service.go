package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinicore/records-api/internal/model"
	"github.com/clinicore/records-api/internal/repository"
	"github.com/clinicore/records-api/internal/service/audit"
	"github.com/clinicore/records-api/pkg/auth"
	apperrors "github.com/clinicore/records-api/pkg/errors"
)

type Service interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error)
	Me(ctx context.Context, actor *model.Actor) (*model.User, error)
}

type service struct {
	users   repository.UserRepository
	tokens  auth.JWTService
	auditor *audit.Service
}

func NewService(users repository.UserRepository, tokens auth.JWTService, auditor *audit.Service) Service {
	return &service{users: users, tokens: tokens, auditor: auditor}
}

func (s *service) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.Conflict("email is already registered")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Role:         req.Role,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		// Same error as a wrong password: never confirm which emails exist.
		return nil, apperrors.Unauthorized("invalid credentials")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		actor := &model.Actor{ID: user.ID, Role: user.Role, Email: user.Email}
		s.auditor.Log(ctx, actor, model.AuditActionLogin, "user", user.ID, false, "wrong password")
		return nil, apperrors.Unauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID, time.Now()); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("failed to record last login")
	}

	actor := &model.Actor{ID: user.ID, Role: user.Role, Email: user.Email}
	s.auditor.Log(ctx, actor, model.AuditActionLogin, "user", user.ID, true, "")

	return &model.TokenResponse{
		AccessToken: token,
		ExpiresIn:   int64(time.Until(expiresAt).Seconds()),
	}, nil
}

func (s *service) Me(ctx context.Context, actor *model.Actor) (*model.User, error) {
	user, err := s.users.Get(ctx, actor.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("user")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
