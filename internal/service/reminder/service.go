package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/clinicore/records-api/internal/model"
	"github.com/clinicore/records-api/internal/notifier"
	"github.com/clinicore/records-api/internal/repository"
	"github.com/clinicore/records-api/internal/service/audit"
	apperrors "github.com/clinicore/records-api/pkg/errors"
	"github.com/clinicore/records-api/pkg/messaging"
	"github.com/clinicore/records-api/pkg/metrics"
	"github.com/clinicore/records-api/pkg/phone"
)

const (
	defaultListLimit  = 20
	reminderChannel   = "reminders"
	defaultBatchLimit = 100
)

type Service interface {
	Create(ctx context.Context, actor *model.Actor, req *model.CreateReminderRequest) (*model.Reminder, error)
	Get(ctx context.Context, actor *model.Actor, id uuid.UUID) (*model.Reminder, error)
	List(ctx context.Context, actor *model.Actor, filter *model.ReminderFilter) ([]*model.Reminder, int64, error)
	ProcessDue(ctx context.Context) (*model.DispatchSummary, error)
}

type service struct {
	repo        repository.ReminderRepository
	patientRepo repository.PatientRepository
	sender      notifier.Notifier
	broker      messaging.Broker
	metrics     *metrics.Metrics
	auditor     *audit.Service
	batchLimit  int
}

func NewService(
	repo repository.ReminderRepository,
	patientRepo repository.PatientRepository,
	sender notifier.Notifier,
	broker messaging.Broker,
	m *metrics.Metrics,
	auditor *audit.Service,
	batchLimit int,
) Service {
	if batchLimit <= 0 {
		batchLimit = defaultBatchLimit
	}
	return &service{
		repo:        repo,
		patientRepo: patientRepo,
		sender:      sender,
		broker:      broker,
		metrics:     m,
		auditor:     auditor,
		batchLimit:  batchLimit,
	}
}

func (s *service) Create(ctx context.Context, actor *model.Actor, req *model.CreateReminderRequest) (*model.Reminder, error) {
	if _, err := s.patientRepo.Get(ctx, req.PatientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Validation("patient does not exist")
		}
		return nil, fmt.Errorf("failed to verify patient: %w", err)
	}

	now := time.Now()
	reminder := &model.Reminder{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		PatientID: req.PatientID,
		SurgeryID: req.SurgeryID,
		CreatedBy: actor.ID,
		Message:   req.Message,
		DueAt:     req.DueAt,
		Status:    model.ReminderStatusPending,
	}

	if err := s.repo.Create(ctx, reminder); err != nil {
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}

	s.auditor.Log(ctx, actor, model.AuditActionCreate, "reminder", reminder.ID, true, "")
	return reminder, nil
}

func (s *service) Get(ctx context.Context, actor *model.Actor, id uuid.UUID) (*model.Reminder, error) {
	reminder, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("reminder")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reminder: %w", err)
	}
	return reminder, nil
}

func (s *service) List(ctx context.Context, actor *model.Actor, filter *model.ReminderFilter) ([]*model.Reminder, int64, error) {
	filter.Normalize(defaultListLimit)

	reminders, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reminders: %w", err)
	}
	return reminders, total, nil
}

// ProcessDue dispatches every pending reminder whose due time has passed.
// Reminders are marked one at a time; a failure records its reason on the
// reminder and the batch moves on.
func (s *service) ProcessDue(ctx context.Context) (*model.DispatchSummary, error) {
	start := time.Now()

	due, err := s.repo.ListDue(ctx, start, s.batchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list due reminders: %w", err)
	}

	summary := &model.DispatchSummary{Processed: len(due)}
	for _, reminder := range due {
		if err := s.dispatch(ctx, reminder); err != nil {
			summary.Failed++
			if s.metrics != nil {
				s.metrics.RemindersFailed.Inc()
			}
			s.markFailed(ctx, reminder, err)
			continue
		}
		summary.Sent++
		if s.metrics != nil {
			s.metrics.RemindersSent.Inc()
		}
		s.markSent(ctx, reminder)
	}

	if s.metrics != nil {
		s.metrics.ReminderBatchTime.Observe(time.Since(start).Seconds())
	}
	if summary.Processed > 0 {
		log.Info().
			Int("processed", summary.Processed).
			Int("sent", summary.Sent).
			Int("failed", summary.Failed).
			Msg("reminder batch complete")
	}
	return summary, nil
}

func (s *service) dispatch(ctx context.Context, reminder *model.Reminder) error {
	patient, err := s.patientRepo.Get(ctx, reminder.PatientID)
	if err != nil {
		return fmt.Errorf("failed to resolve patient: %w", err)
	}

	to, err := phone.Normalize(patient.Phone)
	if err != nil {
		return fmt.Errorf("unusable phone number %q: %w", patient.Phone, err)
	}

	if err := s.sender.Send(ctx, to, reminder.Message); err != nil {
		return fmt.Errorf("send failed: %w", err)
	}
	return nil
}

func (s *service) markSent(ctx context.Context, reminder *model.Reminder) {
	if err := s.repo.MarkSent(ctx, reminder.ID, time.Now()); err != nil {
		log.Error().Err(err).Str("reminder_id", reminder.ID.String()).Msg("failed to mark reminder sent")
		return
	}
	s.publishOutcome(ctx, reminder, model.ReminderStatusSent, "")
}

func (s *service) markFailed(ctx context.Context, reminder *model.Reminder, cause error) {
	if err := s.repo.MarkFailed(ctx, reminder.ID, cause.Error()); err != nil {
		log.Error().Err(err).Str("reminder_id", reminder.ID.String()).Msg("failed to mark reminder failed")
		return
	}
	s.publishOutcome(ctx, reminder, model.ReminderStatusFailed, cause.Error())
}

// publishOutcome is fire-and-forget; subscribers are informational only.
func (s *service) publishOutcome(ctx context.Context, reminder *model.Reminder, status, reason string) {
	if s.broker == nil {
		return
	}
	msg := messaging.Message{
		Type: "reminder." + status,
		Payload: map[string]any{
			"reminder_id": reminder.ID,
			"patient_id":  reminder.PatientID,
			"status":      status,
			"reason":      reason,
		},
	}
	if err := s.broker.Publish(ctx, reminderChannel, msg); err != nil {
		log.Warn().Err(err).Msg("failed to publish reminder outcome")
	}
}
