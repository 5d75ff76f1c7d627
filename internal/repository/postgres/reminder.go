package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/clinicore/records-api/internal/model"
	"github.com/clinicore/records-api/internal/repository"
)

type reminderRepository struct {
	BaseRepository
}

func NewReminderRepository(db *sqlx.DB) repository.ReminderRepository {
	return &reminderRepository{NewBaseRepository(db)}
}

func (r *reminderRepository) Create(ctx context.Context, reminder *model.Reminder) error {
	query := `
		INSERT INTO reminders (
			id, patient_id, surgery_id, created_by, message, due_at,
			status, failure_reason, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, '', $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		reminder.ID,
		reminder.PatientID,
		reminder.SurgeryID,
		reminder.CreatedBy,
		reminder.Message,
		reminder.DueAt,
		reminder.Status,
		reminder.CreatedAt,
		reminder.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create reminder: %w", err)
	}
	return nil
}

func (r *reminderRepository) Get(ctx context.Context, id uuid.UUID) (*model.Reminder, error) {
	var reminder model.Reminder
	err := r.db.GetContext(ctx, &reminder, `SELECT * FROM reminders WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reminder: %w", err)
	}
	return &reminder, nil
}

func (r *reminderRepository) List(ctx context.Context, filter *model.ReminderFilter) ([]*model.Reminder, int64, error) {
	where := "WHERE 1=1"
	var args []interface{}

	if filter.PatientID != nil {
		args = append(args, *filter.PatientID)
		where += fmt.Sprintf(" AND patient_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM reminders "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count reminders: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset())
	query := fmt.Sprintf(
		"SELECT * FROM reminders %s ORDER BY due_at DESC LIMIT $%d OFFSET $%d",
		where, len(args)-1, len(args),
	)

	var reminders []*model.Reminder
	if err := r.db.SelectContext(ctx, &reminders, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list reminders: %w", err)
	}
	return reminders, total, nil
}

func (r *reminderRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*model.Reminder, error) {
	query := `
		SELECT * FROM reminders
		WHERE status = $1 AND due_at <= $2
		ORDER BY due_at ASC
		LIMIT $3
	`
	var reminders []*model.Reminder
	if err := r.db.SelectContext(ctx, &reminders, query, model.ReminderStatusPending, now, limit); err != nil {
		return nil, fmt.Errorf("failed to list due reminders: %w", err)
	}
	return reminders, nil
}

func (r *reminderRepository) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE reminders
		SET status = $1, sent_at = $2, updated_at = $2
		WHERE id = $3 AND status = $4
	`
	result, err := r.db.ExecContext(ctx, query, model.ReminderStatusSent, at, id, model.ReminderStatusPending)
	if err != nil {
		return fmt.Errorf("failed to mark reminder sent: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *reminderRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	query := `
		UPDATE reminders
		SET status = $1, failure_reason = $2, updated_at = $3
		WHERE id = $4 AND status = $5
	`
	result, err := r.db.ExecContext(ctx, query, model.ReminderStatusFailed, reason, time.Now(), id, model.ReminderStatusPending)
	if err != nil {
		return fmt.Errorf("failed to mark reminder failed: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

type documentRequestRepository struct {
	BaseRepository
}

func NewDocumentRequestRepository(db *sqlx.DB) repository.DocumentRequestRepository {
	return &documentRequestRepository{NewBaseRepository(db)}
}

func (r *documentRequestRepository) Create(ctx context.Context, request *model.DocumentRequest) error {
	query := `
		INSERT INTO document_requests (
			id, patient_id, requested_by, document_type, message, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		request.ID,
		request.PatientID,
		request.RequestedBy,
		request.DocumentType,
		request.Message,
		request.Status,
		request.CreatedAt,
		request.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create document request: %w", err)
	}
	return nil
}

func (r *documentRequestRepository) List(ctx context.Context, patientID *uuid.UUID, p *model.Pagination) ([]*model.DocumentRequest, int64, error) {
	where := "WHERE 1=1"
	var args []interface{}

	if patientID != nil {
		args = append(args, *patientID)
		where += fmt.Sprintf(" AND patient_id = $%d", len(args))
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM document_requests "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count document requests: %w", err)
	}

	args = append(args, p.Limit, p.Offset())
	query := fmt.Sprintf(
		"SELECT * FROM document_requests %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		where, len(args)-1, len(args),
	)

	var requests []*model.DocumentRequest
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list document requests: %w", err)
	}
	return requests, total, nil
}
