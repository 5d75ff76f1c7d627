package document

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
	"github.com/clinicore/records-api/pkg/metrics"
	"github.com/clinicore/records-api/pkg/phone"
)

const (
	defaultListLimit = 20
	notifyTimeout    = 10 * time.Second
)

type Service interface {
	Create(ctx context.Context, actor *model.Actor, req *model.CreateDocumentRequestRequest) (*model.DocumentRequest, error)
	List(ctx context.Context, actor *model.Actor, patientID *uuid.UUID, p *model.Pagination) ([]*model.DocumentRequest, int64, error)
}

type service struct {
	repo        repository.DocumentRequestRepository
	patientRepo repository.PatientRepository
	whatsapp    notifier.Notifier
	email       notifier.Notifier
	metrics     *metrics.Metrics
	auditor     *audit.Service
}

func NewService(
	repo repository.DocumentRequestRepository,
	patientRepo repository.PatientRepository,
	whatsapp, email notifier.Notifier,
	m *metrics.Metrics,
	auditor *audit.Service,
) Service {
	return &service{
		repo:        repo,
		patientRepo: patientRepo,
		whatsapp:    whatsapp,
		email:       email,
		metrics:     m,
		auditor:     auditor,
	}
}

// Create persists the request and notifies the patient asynchronously.
// A notification failure is logged but never fails the request.
func (s *service) Create(ctx context.Context, actor *model.Actor, req *model.CreateDocumentRequestRequest) (*model.DocumentRequest, error) {
	patient, err := s.patientRepo.Get(ctx, req.PatientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Validation("patient does not exist")
		}
		return nil, fmt.Errorf("failed to verify patient: %w", err)
	}

	now := time.Now()
	request := &model.DocumentRequest{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		PatientID:    req.PatientID,
		RequestedBy:  actor.ID,
		DocumentType: req.DocumentType,
		Message:      req.Message,
		Status:       model.DocumentRequestStatusPending,
	}

	if err := s.repo.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to create document request: %w", err)
	}

	s.auditor.Log(ctx, actor, model.AuditActionCreate, "document_request", request.ID, true, req.DocumentType)

	go s.notify(patient, request)

	return request, nil
}

func (s *service) List(ctx context.Context, actor *model.Actor, patientID *uuid.UUID, p *model.Pagination) ([]*model.DocumentRequest, int64, error) {
	p.Normalize(defaultListLimit)

	requests, total, err := s.repo.List(ctx, patientID, p)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list document requests: %w", err)
	}
	return requests, total, nil
}

// notify tries WhatsApp first and falls back to email. Runs outside the
// request lifecycle with its own timeout.
func (s *service) notify(patient *model.Patient, request *model.DocumentRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	message := request.Message
	if message == "" {
		message = fmt.Sprintf("Please provide the following document: %s", request.DocumentType)
	}

	if to, err := phone.Normalize(patient.Phone); err == nil {
		if err := s.whatsapp.Send(ctx, to, message); err == nil {
			s.countSent("whatsapp")
			return
		} else if !errors.Is(err, notifier.ErrNotConfigured) {
			log.Warn().Err(err).Str("request_id", request.ID.String()).Msg("whatsapp notification failed")
			s.countFailed("whatsapp")
		}
	}

	if patient.Email == "" {
		return
	}
	if err := s.email.Send(ctx, patient.Email, message); err != nil {
		if !errors.Is(err, notifier.ErrNotConfigured) {
			log.Warn().Err(err).Str("request_id", request.ID.String()).Msg("email notification failed")
			s.countFailed("email")
		}
		return
	}
	s.countSent("email")
}

func (s *service) countSent(channel string) {
	if s.metrics != nil {
		s.metrics.NotificationsSent.WithLabelValues(channel).Inc()
	}
}

func (s *service) countFailed(channel string) {
	if s.metrics != nil {
		s.metrics.NotificationsFailed.WithLabelValues(channel).Inc()
	}
}
