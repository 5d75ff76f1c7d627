package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/clinicore/records-api/internal/model"
	"github.com/clinicore/records-api/internal/repository"
	"github.com/clinicore/records-api/pkg/errors"
)

// MinRetentionDays is the floor for retention cleanup. Requests below it
// are rejected before anything is deleted.
const MinRetentionDays = 30

const defaultListLimit = 50

type requestMetaKey struct{}

// RequestMeta carries client network details from the HTTP layer into
// audit entries.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

func metaFromContext(ctx context.Context) RequestMeta {
	if meta, ok := ctx.Value(requestMetaKey{}).(RequestMeta); ok {
		return meta
	}
	return RequestMeta{}
}

type Service struct {
	repo repository.AuditRepository
}

func NewService(repo repository.AuditRepository) *Service {
	return &Service{repo: repo}
}

// Log appends an entry asynchronously. Audit failures are logged and
// swallowed: they must never fail the operation being audited.
func (s *Service) Log(ctx context.Context, actor *model.Actor, action, entityType string, entityID uuid.UUID, success bool, detail string) {
	meta := metaFromContext(ctx)
	entry := &model.AuditLog{
		ID:         uuid.New(),
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Success:    success,
		Detail:     detail,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
		CreatedAt:  time.Now(),
	}

	go func() {
		writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.repo.Create(writeCtx, entry); err != nil {
			log.Error().Err(err).
				Str("action", action).
				Str("entity_type", entityType).
				Msg("failed to write audit log")
		}
	}()
}

func (s *Service) List(ctx context.Context, filter *model.AuditFilter) ([]*model.AuditLog, int64, error) {
	filter.Normalize(defaultListLimit)
	logs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, total, nil
}

func (s *Service) Stats(ctx context.Context, filter *model.AuditFilter) (*model.AuditStats, error) {
	stats, err := s.repo.Stats(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate audit logs: %w", err)
	}
	return stats, nil
}

func (s *Service) Export(ctx context.Context, filter *model.AuditFilter) ([]*model.AuditLog, error) {
	logs, err := s.repo.Export(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to export audit logs: %w", err)
	}
	return logs, nil
}

// Cleanup deletes entries older than the given number of days. The
// retention floor is enforced here, not in handlers, so every caller
// (HTTP and worker alike) gets the same guarantee.
func (s *Service) Cleanup(ctx context.Context, days int) (*model.CleanupResult, error) {
	if days < MinRetentionDays {
		return nil, errors.Validation(fmt.Sprintf("retention period must be at least %d days", MinRetentionDays))
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	deleted, err := s.repo.DeleteBefore(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to cleanup audit logs: %w", err)
	}
	return &model.CleanupResult{Deleted: deleted, Cutoff: cutoff}, nil
}
