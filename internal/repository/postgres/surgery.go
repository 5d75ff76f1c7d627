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

type surgeryRepository struct {
	BaseRepository
}

func NewSurgeryRepository(db *sqlx.DB) repository.SurgeryRepository {
	return &surgeryRepository{NewBaseRepository(db)}
}

func (r *surgeryRepository) Create(ctx context.Context, surgery *model.Surgery) error {
	query := `
		INSERT INTO surgeries (
			id, patient_id, surgeon_id, title, description, scheduled_at,
			status, is_archived, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		surgery.ID,
		surgery.PatientID,
		surgery.SurgeonID,
		surgery.Title,
		surgery.Description,
		surgery.ScheduledAt,
		surgery.Status,
		surgery.CreatedAt,
		surgery.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create surgery: %w", err)
	}
	return nil
}

func (r *surgeryRepository) Get(ctx context.Context, id uuid.UUID) (*model.Surgery, error) {
	var surgery model.Surgery
	err := r.db.GetContext(ctx, &surgery, `SELECT * FROM surgeries WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get surgery: %w", err)
	}
	return &surgery, nil
}

func (r *surgeryRepository) Update(ctx context.Context, surgery *model.Surgery, ownedBy *uuid.UUID) error {
	query := `
		UPDATE surgeries
		SET title = $1, description = $2, scheduled_at = $3, status = $4, updated_at = $5
		WHERE id = $6 AND is_archived = FALSE
	`
	args := []interface{}{
		surgery.Title,
		surgery.Description,
		surgery.ScheduledAt,
		surgery.Status,
		time.Now(),
		surgery.ID,
	}
	if ownedBy != nil {
		query += " AND surgeon_id = $7"
		args = append(args, *ownedBy)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update surgery: %w", err)
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

func (r *surgeryRepository) Archive(ctx context.Context, id uuid.UUID, ownedBy *uuid.UUID) (*model.Surgery, error) {
	query := `
		UPDATE surgeries
		SET is_archived = TRUE, archived_at = $1, updated_at = $1
		WHERE id = $2 AND is_archived = FALSE
	`
	args := []interface{}{time.Now(), id}
	if ownedBy != nil {
		query += " AND surgeon_id = $3"
		args = append(args, *ownedBy)
	}
	query += " RETURNING *"

	var surgery model.Surgery
	err := r.db.GetContext(ctx, &surgery, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to archive surgery: %w", err)
	}
	return &surgery, nil
}

func (r *surgeryRepository) List(ctx context.Context, filter *model.SurgeryFilter) ([]*model.Surgery, int64, error) {
	where := "WHERE 1=1"
	var args []interface{}

	if !filter.IncludeArchived {
		where += " AND is_archived = FALSE"
	}
	if filter.PatientID != nil {
		args = append(args, *filter.PatientID)
		where += fmt.Sprintf(" AND patient_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM surgeries "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count surgeries: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset())
	query := fmt.Sprintf(
		"SELECT * FROM surgeries %s ORDER BY scheduled_at DESC LIMIT $%d OFFSET $%d",
		where, len(args)-1, len(args),
	)

	var surgeries []*model.Surgery
	if err := r.db.SelectContext(ctx, &surgeries, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list surgeries: %w", err)
	}
	return surgeries, total, nil
}

func (r *surgeryRepository) CreateFollowUp(ctx context.Context, followUp *model.FollowUp) error {
	query := `
		INSERT INTO follow_ups (id, surgery_id, notes, due_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		followUp.ID,
		followUp.SurgeryID,
		followUp.Notes,
		followUp.DueAt,
		followUp.CreatedAt,
		followUp.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create follow-up: %w", err)
	}
	return nil
}

func (r *surgeryRepository) ListFollowUps(ctx context.Context, surgeryID uuid.UUID) ([]*model.FollowUp, error) {
	var followUps []*model.FollowUp
	query := `SELECT * FROM follow_ups WHERE surgery_id = $1 ORDER BY due_at ASC`
	if err := r.db.SelectContext(ctx, &followUps, query, surgeryID); err != nil {
		return nil, fmt.Errorf("failed to list follow-ups: %w", err)
	}
	return followUps, nil
}

func (r *surgeryRepository) CompleteFollowUp(ctx context.Context, surgeryID, followUpID uuid.UUID, at time.Time) error {
	query := `
		UPDATE follow_ups
		SET completed_at = $1, updated_at = $1
		WHERE id = $2 AND surgery_id = $3 AND completed_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, at, followUpID, surgeryID)
	if err != nil {
		return fmt.Errorf("failed to complete follow-up: %w", err)
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
